// Package fit orchestrates a full model inversion: measurement validation,
// initial-guess selection, solver invocation and diagnostic reporting.
package fit

import (
	"errors"
	"fmt"

	"github.com/itohio/bioristor/pkg/config"
	"github.com/itohio/bioristor/pkg/loss"
	"github.com/itohio/bioristor/pkg/model"
	"github.com/itohio/bioristor/pkg/params"
	"github.com/itohio/bioristor/pkg/solver"
)

// Failure taxonomy of a fit. MaxIterationsReached is deliberately absent:
// a best-effort estimate with low confidence is returned instead of an error.
var (
	// ErrInvalidMeasurement marks a measurement outside the sensor's valid
	// operating range; the caller should discard the reading.
	ErrInvalidMeasurement = errors.New("measurement outside valid operating range")
	// ErrSingularJacobian marks a solve whose derivative matrix was not
	// invertible even after the retry.
	ErrSingularJacobian = errors.New("singular jacobian")
	// ErrDiverged marks a solve whose iterates grew beyond the divergence
	// bound even after the retry.
	ErrDiverged = errors.New("solver diverged")
	// ErrNumericalOverflow marks a non-finite value during evaluation.
	ErrNumericalOverflow = errors.New("numerical overflow")
)

// Estimate is the caller-facing result of a successful fit.
type Estimate struct {
	// Variables is the estimated physical state.
	Variables params.Variables
	// ResidualNorm is the final residual norm of the solve.
	ResidualNorm float32
	// RelativeError is the configured relative-loss reduction over the
	// measured and predicted side of each equation at the final state.
	RelativeError float32
	// Confidence grades the estimate in (0, 1] from the residual norm and
	// the terminal status.
	Confidence float32
	// Iterations is the number of Newton steps consumed.
	Iterations int
	// Status is the solver's terminal status.
	Status solver.Status
}

// Fitter validates measurements and drives the solver. It owns the previous
// converged state used as the next initial guess; there is a single thread
// of control, so the state needs no locking.
type Fitter struct {
	modelParams params.ModelParams
	solverCfg   solver.Config
	domain      params.Bounds
	bounds      config.MeasurementConfig
	policy      config.FitConfig
	pairLoss    loss.Loss

	prev    params.Variables
	hasPrev bool
}

// New creates a Fitter from the application configuration.
func New(cfg *config.Config) (*Fitter, error) {
	if err := cfg.Solver.Validate(); err != nil {
		return nil, fmt.Errorf("invalid solver configuration: %w", err)
	}
	pl, err := pairLoss(cfg.Fit.Loss)
	if err != nil {
		return nil, err
	}
	return &Fitter{
		modelParams: cfg.Model,
		solverCfg:   cfg.Solver,
		domain:      cfg.Domain,
		bounds:      cfg.Measurement,
		policy:      cfg.Fit,
		pairLoss:    pl,
	}, nil
}

// pairLoss maps the configured loss name to its reduction.
func pairLoss(name string) (loss.Loss, error) {
	switch name {
	case "", "max":
		return loss.MaxRelative, nil
	case "mean":
		return loss.MeanRelative, nil
	case "sum":
		return loss.SumRelative, nil
	default:
		return nil, fmt.Errorf("unknown loss %q", name)
	}
}

// Fit validates the measurement, inverts the model and wraps the outcome.
// Solver failures are retried exactly once from the configured alternate
// guess; retries beyond that are policy the caller owns.
func (f *Fitter) Fit(c params.Currents) (Estimate, error) {
	if err := f.validate(c); err != nil {
		return Estimate{}, err
	}

	m := model.NewSystem(f.modelParams, c)

	res := solver.Solve(m, f.initialGuess().Vector(), f.domain, f.solverCfg)
	if res.Status == solver.SingularJacobian || res.Status == solver.Diverged {
		res = solver.Solve(m, f.policy.RetryGuess.Vector(), f.domain, f.solverCfg)
	}

	switch res.Status {
	case solver.Converged:
		f.prev = params.VariablesFromVector(res.State)
		f.hasPrev = true
		return f.estimate(m, res), nil
	case solver.MaxIterationsReached:
		// Partially converged states are still diagnostically useful.
		return f.estimate(m, res), nil
	case solver.SingularJacobian:
		return Estimate{}, fmt.Errorf("fit failed after %d iterations: %w", res.Iterations, ErrSingularJacobian)
	case solver.Diverged:
		return Estimate{}, fmt.Errorf("fit failed after %d iterations: %w", res.Iterations, ErrDiverged)
	default:
		return Estimate{}, fmt.Errorf("fit failed after %d iterations: %w", res.Iterations, ErrNumericalOverflow)
	}
}

// Previous returns the previous converged state, if any.
func (f *Fitter) Previous() (params.Variables, bool) {
	return f.prev, f.hasPrev
}

// Reset clears the previous converged state so the next fit starts from the
// configured default guess.
func (f *Fitter) Reset() {
	f.prev = params.Variables{}
	f.hasPrev = false
}

func (f *Fitter) initialGuess() params.Variables {
	if f.policy.ReusePrevious && f.hasPrev {
		return f.prev
	}
	return f.policy.InitialGuess
}

func (f *Fitter) validate(c params.Currents) error {
	if !c.IsFinite() {
		return fmt.Errorf("non-finite currents: %w", ErrInvalidMeasurement)
	}
	lo, hi := f.bounds.Min, f.bounds.Max
	for _, ch := range [3]struct {
		name      string
		x, lo, hi float32
	}{
		{"i_ds_off", c.IDsOff, lo.IDsOff, hi.IDsOff},
		{"i_ds_on", c.IDsOn, lo.IDsOn, hi.IDsOn},
		{"i_gs_on", c.IGsOn, lo.IGsOn, hi.IGsOn},
	} {
		if ch.x < ch.lo || ch.x > ch.hi {
			return fmt.Errorf("%s = %g outside [%g, %g]: %w", ch.name, ch.x, ch.lo, ch.hi, ErrInvalidMeasurement)
		}
	}
	return nil
}

func (f *Fitter) estimate(m *model.System, res solver.Result) Estimate {
	confidence := f.solverCfg.Tolerance / (f.solverCfg.Tolerance + res.ResidualNorm)
	if res.Status == solver.MaxIterationsReached {
		confidence *= 0.5
	}
	return Estimate{
		Variables:     params.VariablesFromVector(res.State),
		ResidualNorm:  res.ResidualNorm,
		RelativeError: f.pairLoss(m.Pairs(res.State)),
		Confidence:    confidence,
		Iterations:    res.Iterations,
		Status:        res.Status,
	}
}
