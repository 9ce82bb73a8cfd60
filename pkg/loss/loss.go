// Package loss provides the error metrics used to judge how well a candidate
// state satisfies the model equations.
package loss

import (
	"github.com/chewxy/math32"
)

// Pair holds the two sides of one model equation evaluated at a candidate
// state: the measured quantity and the value predicted by the circuit model.
type Pair struct {
	Measured  float32
	Predicted float32
}

// Loss reduces the three equation pairs to a single non-negative error.
type Loss func(pairs [3]Pair) float32

// relative computes |measured - predicted| / (|measured| + |predicted|).
// Epsilon in the denominator avoids division by zero.
func relative(p Pair) float32 {
	const eps = 1.1920929e-7 // FLT_EPSILON
	return math32.Abs(p.Measured-p.Predicted) /
		(math32.Abs(p.Measured) + math32.Abs(p.Predicted) + eps)
}

// MaxRelative is the maximum of the per-equation relative errors.
func MaxRelative(pairs [3]Pair) float32 {
	return math32.Max(relative(pairs[0]),
		math32.Max(relative(pairs[1]), relative(pairs[2])))
}

// MeanRelative is the mean of the per-equation relative errors.
func MeanRelative(pairs [3]Pair) float32 {
	return SumRelative(pairs) * (1.0 / 3.0)
}

// SumRelative is the sum of the per-equation relative errors.
func SumRelative(pairs [3]Pair) float32 {
	return relative(pairs[0]) + relative(pairs[1]) + relative(pairs[2])
}

// Absolute is the loss of the single-equation model formulation: the
// magnitude of the equation value itself.
func Absolute(value float32) float32 {
	return math32.Abs(value)
}
