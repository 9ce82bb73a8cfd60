// Package solver implements the damped Newton-Raphson root-finder that
// inverts the circuit model, together with the derivative-free search
// algorithms inherited from the reference device firmware.
//
// The solver runs to completion within the calling goroutine, performs no
// allocation inside the iteration loop, and reports every failure as an
// explicit status value.
package solver

import (
	"fmt"

	"github.com/itohio/bioristor/pkg/numeric"
	"github.com/itohio/bioristor/pkg/params"
)

// Model is what the Newton solver needs from a physical model: the residual
// of the governing equations at a candidate state. Models that additionally
// implement Differentiable supply an analytic Jacobian; otherwise the solver
// falls back to central finite differences with Config.JacobianStep.
type Model interface {
	Residual(state numeric.Vec3) numeric.Vec3
}

// Differentiable is implemented by models with an analytic Jacobian.
type Differentiable interface {
	Jacobian(state numeric.Vec3) numeric.Mat3
}

// Status is the terminal outcome of a solve.
type Status int

const (
	// Converged means the residual norm fell below the tolerance.
	Converged Status = iota
	// MaxIterationsReached means the iteration cap was hit; the carried
	// state is a best-effort, low-confidence estimate.
	MaxIterationsReached
	// Diverged means the step norm grew beyond the divergence bound.
	Diverged
	// SingularJacobian means the derivative matrix was not invertible; the
	// model is locally unobservable from the reached state.
	SingularJacobian
	// NumericalOverflow means a non-finite value appeared during
	// evaluation.
	NumericalOverflow
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max-iterations"
	case Diverged:
		return "diverged"
	case SingularJacobian:
		return "singular-jacobian"
	case NumericalOverflow:
		return "numerical-overflow"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Config holds the iteration budget and the numeric thresholds of the solver.
type Config struct {
	// MaxIterations is the hard cap on Newton steps.
	MaxIterations int `yaml:"max_iterations"`
	// Tolerance is the residual-norm stopping threshold.
	Tolerance float32 `yaml:"tolerance"`
	// Damping attenuates every Newton step; in (0, 1].
	Damping float32 `yaml:"damping"`
	// JacobianStep is the finite-difference perturbation used when the
	// model has no analytic Jacobian.
	JacobianStep float32 `yaml:"jacobian_step"`
	// DivergenceThreshold is the step-norm growth ratio across consecutive
	// iterations beyond which the solve is declared diverged.
	DivergenceThreshold float32 `yaml:"divergence_threshold"`
	// PivotEpsilon is the smallest pivot magnitude accepted by the linear
	// solve before the Jacobian is declared singular.
	PivotEpsilon float32 `yaml:"pivot_epsilon"`
	// GradTolerance is the smallest derivative magnitude accepted by the
	// scalar solver before it declares the gradient vanished.
	GradTolerance float32 `yaml:"grad_tolerance"`
}

// DefaultConfig returns the solver settings used on the reference device.
func DefaultConfig() Config {
	return Config{
		MaxIterations:       10,
		Tolerance:           1e-6,
		Damping:             1.0,
		JacobianStep:        1e-4,
		DivergenceThreshold: 2.0,
		PivotEpsilon:        1e-9,
		GradTolerance:       1e-9,
	}
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be non-negative, got %d", c.MaxIterations)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", c.Tolerance)
	}
	if c.Damping <= 0 || c.Damping > 1 {
		return fmt.Errorf("damping must be in (0, 1], got %g", c.Damping)
	}
	if c.JacobianStep <= 0 {
		return fmt.Errorf("jacobian_step must be positive, got %g", c.JacobianStep)
	}
	if c.DivergenceThreshold <= 0 {
		return fmt.Errorf("divergence_threshold must be positive, got %g", c.DivergenceThreshold)
	}
	if c.PivotEpsilon <= 0 {
		return fmt.Errorf("pivot_epsilon must be positive, got %g", c.PivotEpsilon)
	}
	return nil
}

// Result is the outcome of one solve, owned by the caller after return.
// Iterations never exceeds Config.MaxIterations. ResidualNorm is finite and
// non-negative whenever Status is Converged or MaxIterationsReached.
type Result struct {
	Status       Status
	State        numeric.Vec3
	ResidualNorm float32
	Iterations   int
}

// Solve runs damped Newton-Raphson iteration on the model from the given
// initial guess. Each step is attenuated by Config.Damping and clamped to
// the domain bounds: the model is only locally linear and an unclamped step
// can leave the region where it is defined.
//
// A guess that already satisfies the tolerance returns Converged with zero
// iterations. MaxIterations of zero returns MaxIterationsReached with the
// guess untouched.
func Solve(m Model, guess numeric.Vec3, bounds params.Bounds, cfg Config) Result {
	state := guess
	prevStepNorm := float32(0)
	hasPrevStep := false

	for iter := 0; ; iter++ {
		residual := m.Residual(state)
		if !residual.IsFinite() {
			return Result{Status: NumericalOverflow, State: state, Iterations: iter}
		}
		norm := residual.Norm()
		if norm < cfg.Tolerance {
			return Result{Status: Converged, State: state, ResidualNorm: norm, Iterations: iter}
		}
		if iter >= cfg.MaxIterations {
			// Best-effort estimate: the caller decides whether a
			// partially converged state is still usable.
			return Result{Status: MaxIterationsReached, State: state, ResidualNorm: norm, Iterations: iter}
		}

		jac := jacobian(m, state, cfg.JacobianStep)
		if !jac.IsFinite() {
			return Result{Status: NumericalOverflow, State: state, ResidualNorm: norm, Iterations: iter}
		}

		delta, ok := solveLinear(jac, residual.Scale(-1), cfg.PivotEpsilon)
		if !ok {
			return Result{Status: SingularJacobian, State: state, ResidualNorm: norm, Iterations: iter}
		}

		next := bounds.Clamp(state.Add(delta.Scale(cfg.Damping)))
		stepNorm := next.Sub(state).Norm()
		if hasPrevStep && prevStepNorm > 0 && stepNorm > prevStepNorm*cfg.DivergenceThreshold {
			return Result{Status: Diverged, State: state, ResidualNorm: norm, Iterations: iter + 1}
		}
		prevStepNorm = stepNorm
		hasPrevStep = true
		state = next
	}
}

// jacobian returns the model's analytic Jacobian when available, otherwise a
// central finite-difference estimate with the configured step.
func jacobian(m Model, state numeric.Vec3, step float32) numeric.Mat3 {
	if d, ok := m.(Differentiable); ok {
		return d.Jacobian(state)
	}

	var jac numeric.Mat3
	for col := 0; col < numeric.N; col++ {
		fwd, bwd := state, state
		fwd[col] += step
		bwd[col] -= step
		rf := m.Residual(fwd)
		rb := m.Residual(bwd)
		for row := 0; row < numeric.N; row++ {
			jac[row][col] = (rf[row] - rb[row]) / (2 * step)
		}
	}
	return jac
}
