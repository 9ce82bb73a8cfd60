package solver

import (
	"github.com/chewxy/math32"
)

// Equation is the single-variable counterpart of Model: one governing
// equation in one unknown, with its first derivative.
type Equation interface {
	Value(x float32) float32
	Gradient(x float32) float32
}

// ScalarResult is the outcome of a single-variable solve.
type ScalarResult struct {
	Status     Status
	X          float32
	Loss       float32
	Iterations int
}

// SolveScalar runs damped Newton iteration on a single-variable equation.
// The gradient tolerance plays the role the singular-pivot check plays in
// the vector solver: a vanished derivative means the equation is locally
// flat and iteration cannot improve the estimate. The gradient guard comes
// before the tolerance check, so a point the iteration cannot be steered
// away from is reported as singular even when its value happens to satisfy
// the tolerance.
func SolveScalar(eq Equation, guess float32, cfg Config) ScalarResult {
	x := guess
	prevStep := float32(0)
	hasPrevStep := false

	for iter := 0; ; iter++ {
		v := eq.Value(x)
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return ScalarResult{Status: NumericalOverflow, X: x, Iterations: iter}
		}
		err := math32.Abs(v)

		g := eq.Gradient(x)
		if math32.IsNaN(g) || math32.IsInf(g, 0) {
			return ScalarResult{Status: NumericalOverflow, X: x, Loss: err, Iterations: iter}
		}
		if math32.Abs(g) < cfg.GradTolerance {
			return ScalarResult{Status: SingularJacobian, X: x, Loss: err, Iterations: iter}
		}
		if err < cfg.Tolerance {
			return ScalarResult{Status: Converged, X: x, Loss: err, Iterations: iter}
		}
		if iter >= cfg.MaxIterations {
			return ScalarResult{Status: MaxIterationsReached, X: x, Loss: err, Iterations: iter}
		}

		step := cfg.Damping * v / g
		stepNorm := math32.Abs(step)
		if hasPrevStep && prevStep > 0 && stepNorm > prevStep*cfg.DivergenceThreshold {
			return ScalarResult{Status: Diverged, X: x, Loss: err, Iterations: iter + 1}
		}
		prevStep = stepNorm
		hasPrevStep = true
		x -= step
	}
}
