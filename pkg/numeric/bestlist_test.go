package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBestListOrdering(t *testing.T) {
	l := NewBestList(3)

	l.Add(Candidate{Value: 1, Loss: 0.5})
	l.Add(Candidate{Value: 2, Loss: 0.1})
	l.Add(Candidate{Value: 3, Loss: 0.9})
	l.Add(Candidate{Value: 4, Loss: 0.2})

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, Candidate{Value: 2, Loss: 0.1}, l.items[0])
	assert.Equal(t, Candidate{Value: 4, Loss: 0.2}, l.items[1])
	// 0.9 was pushed out by 0.2; mean over {2, 4, 1}.
	assert.InDelta(t, (2.0+4.0+1.0)/3.0, float64(l.Mean()), 1e-6)
}

func TestBestListRejectsWorseWhenFull(t *testing.T) {
	l := NewBestList(2)
	l.Add(Candidate{Value: 1, Loss: 0.1})
	l.Add(Candidate{Value: 2, Loss: 0.2})
	l.Add(Candidate{Value: 3, Loss: 0.3})

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, float32(0.1), l.items[0].Loss)
	assert.InDelta(t, 1.5, float64(l.Mean()), 1e-6)
}

func TestBestListClear(t *testing.T) {
	l := NewBestList(2)
	l.Add(Candidate{Value: 1, Loss: 0.1})
	l.Clear()

	assert.Zero(t, l.Len())
	assert.Zero(t, l.Mean())
}

func TestBestListCapacityBounds(t *testing.T) {
	assert.NotPanics(t, func() {
		l := NewBestList(0)
		l.Add(Candidate{Value: 1, Loss: 1})
		assert.Equal(t, 1, l.Len())
	})
	assert.NotPanics(t, func() {
		NewBestList(1000).Add(Candidate{Value: 1, Loss: 1})
	})
}
