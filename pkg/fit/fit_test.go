package fit

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/bioristor/pkg/config"
	"github.com/itohio/bioristor/pkg/model"
	"github.com/itohio/bioristor/pkg/params"
	"github.com/itohio/bioristor/pkg/solver"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Solver.MaxIterations = 50
	return cfg
}

// truthCurrents synthesizes a measurement with a known ground truth inside
// the default domain.
func truthCurrents(cfg *config.Config) (params.Variables, params.Currents) {
	truth := params.Variables{Concentration: 5e-3, Resistance: 40, Saturation: 0.6}
	return truth, model.Forward(cfg.Model, truth)
}

func TestFitRecoversKnownState(t *testing.T) {
	cfg := testConfig()
	f, err := New(cfg)
	require.NoError(t, err)

	truth, currents := truthCurrents(cfg)

	est, err := f.Fit(currents)
	require.NoError(t, err)
	assert.Equal(t, solver.Converged, est.Status)
	assert.InEpsilon(t, float64(truth.Concentration), float64(est.Variables.Concentration), 0.05)
	assert.InEpsilon(t, float64(truth.Resistance), float64(est.Variables.Resistance), 0.05)
	assert.InEpsilon(t, float64(truth.Saturation), float64(est.Variables.Saturation), 0.05)
	assert.Less(t, float64(est.RelativeError), 0.05)
	assert.Greater(t, est.Confidence, float32(0))
	assert.LessOrEqual(t, est.Iterations, cfg.Solver.MaxIterations)
}

func TestFitRetriesFromAlternateGuess(t *testing.T) {
	cfg := testConfig()
	cfg.Fit.ReusePrevious = false
	truth, currents := truthCurrents(cfg)

	// Zero saturation zeroes the concentration and resistance columns of
	// the Jacobian, so the first solve is singular at its starting state.
	// The retry guess satisfies the system and terminates immediately.
	cfg.Fit.InitialGuess = params.Variables{Concentration: 1e-2, Resistance: 50, Saturation: 0}
	cfg.Fit.RetryGuess = truth

	f, err := New(cfg)
	require.NoError(t, err)

	est, err := f.Fit(currents)
	require.NoError(t, err)
	assert.Equal(t, solver.Converged, est.Status)
	assert.InEpsilon(t, float64(truth.Concentration), float64(est.Variables.Concentration), 0.05)
	assert.InEpsilon(t, float64(truth.Resistance), float64(est.Variables.Resistance), 0.05)
	assert.InEpsilon(t, float64(truth.Saturation), float64(est.Variables.Saturation), 0.05)
}

func TestFitSurfacesFailureWhenRetryFails(t *testing.T) {
	cfg := testConfig()
	cfg.Fit.ReusePrevious = false

	// Both guesses sit at zero saturation, so the solve stays singular
	// through the retry and the failure reaches the caller.
	cfg.Fit.InitialGuess = params.Variables{Concentration: 1e-2, Resistance: 50, Saturation: 0}
	cfg.Fit.RetryGuess = params.Variables{Concentration: 1e-3, Resistance: 20, Saturation: 0}

	f, err := New(cfg)
	require.NoError(t, err)

	_, currents := truthCurrents(cfg)

	est, err := f.Fit(currents)
	assert.ErrorIs(t, err, ErrSingularJacobian)
	assert.Equal(t, Estimate{}, est)
}

func TestFitRejectsOutOfRangeMeasurement(t *testing.T) {
	cfg := testConfig()
	f, err := New(cfg)
	require.NoError(t, err)

	tests := []struct {
		name     string
		currents params.Currents
	}{
		{"below minimum", params.Currents{IDsOff: -1, IDsOn: -2.7e-3, IGsOn: 1.2e-6}},
		{"above maximum", params.Currents{IDsOff: -3e-3, IDsOn: -2.7e-3, IGsOn: 1}},
		{"positive drain current", params.Currents{IDsOff: 3e-3, IDsOn: -2.7e-3, IGsOn: 1.2e-6}},
		{"nan", params.Currents{IDsOff: math32.NaN(), IDsOn: -2.7e-3, IGsOn: 1.2e-6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := f.Fit(tt.currents)
			assert.ErrorIs(t, err, ErrInvalidMeasurement)
			// Rejected before solving: no iterations consumed.
			assert.Zero(t, est.Iterations)
		})
	}
}

func TestFitReusesPreviousConvergedState(t *testing.T) {
	cfg := testConfig()
	cfg.Fit.ReusePrevious = true
	f, err := New(cfg)
	require.NoError(t, err)

	_, currents := truthCurrents(cfg)

	first, err := f.Fit(currents)
	require.NoError(t, err)
	require.Equal(t, solver.Converged, first.Status)

	prev, ok := f.Previous()
	require.True(t, ok)
	assert.Equal(t, first.Variables, prev)

	// Re-fitting the same measurement starts from the converged state and
	// terminates immediately.
	second, err := f.Fit(currents)
	require.NoError(t, err)
	assert.Equal(t, solver.Converged, second.Status)
	assert.Zero(t, second.Iterations)
	assert.Equal(t, first.Variables, second.Variables)
}

func TestFitReset(t *testing.T) {
	cfg := testConfig()
	f, err := New(cfg)
	require.NoError(t, err)

	_, currents := truthCurrents(cfg)
	_, err = f.Fit(currents)
	require.NoError(t, err)

	_, ok := f.Previous()
	require.True(t, ok)

	f.Reset()
	_, ok = f.Previous()
	assert.False(t, ok)
}

func TestFitZeroIterationBudget(t *testing.T) {
	cfg := testConfig()
	cfg.Solver.MaxIterations = 0
	f, err := New(cfg)
	require.NoError(t, err)

	_, currents := truthCurrents(cfg)

	est, err := f.Fit(currents)
	require.NoError(t, err)
	assert.Equal(t, solver.MaxIterationsReached, est.Status)
	assert.Zero(t, est.Iterations)
	assert.Equal(t, cfg.Fit.InitialGuess, est.Variables)
	// A best-effort estimate carries a reduced confidence.
	assert.Less(t, est.Confidence, float32(0.5))
}

func TestFitConfidenceGrading(t *testing.T) {
	cfg := testConfig()
	f, err := New(cfg)
	require.NoError(t, err)

	_, currents := truthCurrents(cfg)

	est, err := f.Fit(currents)
	require.NoError(t, err)
	// A converged residual well under the tolerance grades close to one.
	assert.Greater(t, est.Confidence, float32(0.5))
	assert.LessOrEqual(t, est.Confidence, float32(1))
}

func TestNewRejectsInvalidSolverConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Solver.Tolerance = -1

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNewLossSelection(t *testing.T) {
	for _, name := range []string{"", "max", "mean", "sum"} {
		cfg := testConfig()
		cfg.Fit.Loss = name
		_, err := New(cfg)
		assert.NoError(t, err, "loss %q", name)
	}

	cfg := testConfig()
	cfg.Fit.Loss = "median"
	_, err := New(cfg)
	assert.Error(t, err)
}
