package numeric

// Candidate is a scanned solution together with its loss.
type Candidate struct {
	Value float32
	Loss  float32
}

// BestList keeps the lowest-loss candidates seen so far, ordered by loss,
// in a fixed-capacity backing array. Insertion shifts in place; nothing is
// allocated after construction.
type BestList struct {
	items [maxBest]Candidate
	size  int
	cap   int
}

// maxBest bounds the backing array; the adaptive search uses far fewer.
const maxBest = 32

// NewBestList creates a list keeping at most capacity candidates.
// Capacity is limited to the fixed backing size.
func NewBestList(capacity int) *BestList {
	if capacity <= 0 {
		capacity = 1
	}
	if capacity > maxBest {
		capacity = maxBest
	}
	return &BestList{cap: capacity}
}

// Clear empties the list without releasing storage.
func (l *BestList) Clear() {
	l.size = 0
}

// Len returns the number of candidates currently held.
func (l *BestList) Len() int {
	return l.size
}

// Add inserts the candidate if its loss ranks among the best seen.
func (l *BestList) Add(c Candidate) {
	if l.size == l.cap && c.Loss >= l.items[l.size-1].Loss {
		return
	}
	// Find the insertion point, shifting worse candidates down.
	i := l.size
	if i == l.cap {
		i--
	}
	for i > 0 && l.items[i-1].Loss > c.Loss {
		l.items[i] = l.items[i-1]
		i--
	}
	l.items[i] = c
	if l.size < l.cap {
		l.size++
	}
}

// Mean returns the mean value of the held candidates. It is the answer of a
// finished search: averaging the minima smooths over sweep noise.
func (l *BestList) Mean() float32 {
	if l.size == 0 {
		return 0
	}
	var sum float32
	for i := 0; i < l.size; i++ {
		sum += l.items[i].Value
	}
	return sum / float32(l.size)
}
