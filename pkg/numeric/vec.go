package numeric

import (
	"github.com/chewxy/math32"
)

// N is the dimensionality of the equivalent-circuit model: three unknowns
// (concentration, wet resistance, saturation) constrained by three equations.
const N = 3

// Vec3 is a fixed-size vector of float32. It is a value type so that solver
// iterations stay on the stack; the core never allocates.
type Vec3 [N]float32

// Mat3 is a fixed-size row-major 3x3 matrix of float32.
type Mat3 [N][N]float32

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Scale returns s * v.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{s * v[0], s * v[1], s * v[2]}
}

// Norm returns the Euclidean norm of v.
func (v Vec3) Norm() float32 {
	return math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// IsFinite reports whether every component is a finite number.
func (v Vec3) IsFinite() bool {
	for _, x := range v {
		if math32.IsNaN(x) || math32.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// IsFinite reports whether every element is a finite number.
func (m Mat3) IsFinite() bool {
	for _, row := range m {
		for _, x := range row {
			if math32.IsNaN(x) || math32.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}

// MulVec returns m * v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	var out Vec3
	for i := 0; i < N; i++ {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

// Clamp returns x limited to the closed interval [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
