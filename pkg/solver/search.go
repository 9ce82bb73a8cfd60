package solver

import (
	"github.com/chewxy/math32"

	"github.com/itohio/bioristor/pkg/numeric"
)

// BruteForce evaluates the equation over every point of the range and
// returns the candidate with the lowest absolute loss. It needs no
// derivative and no initial guess, at the cost of one evaluation per step.
// An empty range produces no candidate and reports MaxIterationsReached.
func BruteForce(eq Equation, r numeric.FloatRange) ScalarResult {
	if r.Steps <= 0 {
		return ScalarResult{Status: MaxIterationsReached, X: r.Start, Loss: math32.MaxFloat32}
	}

	best := numeric.Candidate{Value: r.Start, Loss: math32.MaxFloat32}
	r.ForEach(func(x float32) {
		if err := math32.Abs(eq.Value(x)); err < best.Loss {
			best = numeric.Candidate{Value: x, Loss: err}
		}
	})
	return ScalarResult{Status: Converged, X: best.Value, Loss: best.Loss, Iterations: r.Steps}
}

// AdaptiveParams configures the range-refinement search.
type AdaptiveParams struct {
	// Range is the initial search interval.
	Range numeric.FloatRange `yaml:"range"`
	// MaxIterations bounds the number of refinement rounds.
	MaxIterations int `yaml:"max_iterations"`
	// ReductionFactor shrinks the interval half-width after each round.
	ReductionFactor float32 `yaml:"reduction_factor"`
	// Minima is how many of the best candidates are averaged to recenter
	// the interval.
	Minima int `yaml:"minima"`
	// Tolerance is the loss threshold at which refinement stops.
	Tolerance float32 `yaml:"tolerance"`
}

// Adaptive sweeps the range, recenters it on the mean of the best candidates
// and shrinks it, repeating until the loss falls below the tolerance or the
// round budget runs out. The answer is the mean of the held minima, not the
// single best sweep point. A run that never produced a candidate keeps an
// infinite loss and reports MaxIterationsReached.
func Adaptive(eq Equation, p AdaptiveParams) ScalarResult {
	best := numeric.NewBestList(p.Minima)

	r := p.Range
	semiWidth := r.Width() * 0.5
	min, max := r.Start, r.End

	x := r.Start + semiWidth
	err := float32(math32.MaxFloat32)
	iter := 0
	for iter < p.MaxIterations && err > p.Tolerance {
		best.Clear()
		r.ForEach(func(v float32) {
			best.Add(numeric.Candidate{Value: v, Loss: math32.Abs(eq.Value(v))})
		})
		if best.Len() == 0 {
			// Empty sweep: nothing to recenter on.
			break
		}

		x = best.Mean()
		err = math32.Abs(eq.Value(x))

		semiWidth *= p.ReductionFactor
		r = numeric.FloatRange{
			Start: math32.Max(x-semiWidth, min),
			End:   math32.Min(x+semiWidth, max),
			Steps: p.Range.Steps,
		}
		iter++
	}

	status := MaxIterationsReached
	if err <= p.Tolerance {
		status = Converged
	}
	return ScalarResult{Status: status, X: x, Loss: err, Iterations: iter}
}
