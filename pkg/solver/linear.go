package solver

import (
	"github.com/chewxy/math32"

	"github.com/itohio/bioristor/pkg/numeric"
)

// solveLinear solves the 3x3 system a*x = b by Gaussian elimination with
// partial pivoting, in place on value copies. It reports failure when the
// best available pivot falls below eps, which marks the matrix as singular
// or too ill-conditioned to produce a usable step.
//
// The matrix is small and fixed-size, so a direct dense solve is cheaper and
// simpler than anything iterative.
func solveLinear(a numeric.Mat3, b numeric.Vec3, eps float32) (numeric.Vec3, bool) {
	for col := 0; col < numeric.N; col++ {
		// Select the largest remaining pivot in this column.
		pivot := col
		for row := col + 1; row < numeric.N; row++ {
			if math32.Abs(a[row][col]) > math32.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math32.Abs(a[pivot][col]) < eps {
			return numeric.Vec3{}, false
		}
		if pivot != col {
			a[pivot], a[col] = a[col], a[pivot]
			b[pivot], b[col] = b[col], b[pivot]
		}

		// Eliminate below the pivot.
		for row := col + 1; row < numeric.N; row++ {
			f := a[row][col] / a[col][col]
			if f == 0 {
				continue
			}
			for k := col; k < numeric.N; k++ {
				a[row][k] -= f * a[col][k]
			}
			b[row] -= f * b[col]
		}
	}

	// Back substitution.
	var x numeric.Vec3
	for row := numeric.N - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < numeric.N; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, true
}
