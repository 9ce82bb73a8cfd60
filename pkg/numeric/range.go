package numeric

// FloatRange divides the half-open interval [Start, End) into a fixed number
// of equal steps. Used by the range-search algorithms to sweep a variable
// without allocating a slice of candidates.
type FloatRange struct {
	Start float32 // Lower bound, inclusive
	End   float32 // Upper bound, exclusive
	Steps int     // Number of subdivisions
}

// NewFloatRange creates a range over [start, end) with the given number of steps.
func NewFloatRange(start, end float32, steps int) FloatRange {
	return FloatRange{Start: start, End: end, Steps: steps}
}

// ForEach calls fn for every value in the range, in ascending order.
func (r FloatRange) ForEach(fn func(x float32)) {
	if r.Steps <= 0 {
		return
	}
	inc := (r.End - r.Start) / float32(r.Steps)
	x := r.Start
	for i := 0; i < r.Steps; i++ {
		fn(x)
		x += inc
	}
}

// Width returns the length of the interval.
func (r FloatRange) Width() float32 {
	return r.End - r.Start
}
