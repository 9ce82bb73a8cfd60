package solver

import (
	"github.com/chewxy/math32"
)

// DescentParams configures the gradient descent fallback.
type DescentParams struct {
	// LearningRateInit is the step size of the first iteration; later
	// iterations update it with the Barzilai-Borwein method.
	LearningRateInit float32 `yaml:"learning_rate_init"`
	// MaxIterations is the hard cap on descent steps.
	MaxIterations int `yaml:"max_iterations"`
	// Tolerance is the loss threshold at which the search stops.
	Tolerance float32 `yaml:"tolerance"`
	// GradTolerance is the gradient magnitude below which the search
	// stops at a stationary point.
	GradTolerance float32 `yaml:"grad_tolerance"`
}

// GradientDescent minimizes the squared equation value, which shares its
// zeros with the equation itself. It is slower than Newton but tolerates
// poor initial guesses better, so the device firmware kept it as a fallback.
func GradientDescent(eq Equation, guess float32, p DescentParams) ScalarResult {
	gradient := func(x float32) float32 {
		// d/dx f(x)^2 = 2 f(x) f'(x)
		return 2 * eq.Value(x) * eq.Gradient(x)
	}

	x := guess
	grad := gradient(x)
	rate := p.LearningRateInit
	err := math32.Abs(eq.Value(x))

	iter := 0
	for iter < p.MaxIterations && err > p.Tolerance && math32.Abs(grad) > p.GradTolerance {
		xPrev := x
		gradPrev := grad

		x -= rate * grad
		grad = gradient(x)

		// Barzilai-Borwein step length.
		dg := grad - gradPrev
		rate = math32.Abs((x-xPrev)*dg) / (dg * dg)

		err = math32.Abs(eq.Value(x))
		iter++
	}

	status := MaxIterationsReached
	if err <= p.Tolerance {
		status = Converged
	}
	if math32.IsNaN(x) || math32.IsNaN(err) {
		status = NumericalOverflow
	}
	return ScalarResult{Status: status, X: x, Loss: err, Iterations: iter}
}
