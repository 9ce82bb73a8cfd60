package model

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/bioristor/pkg/numeric"
	"github.com/itohio/bioristor/pkg/params"
)

func TestSystemAccessors(t *testing.T) {
	p, c := mockParams()
	s := NewSystem(p, c)

	assert.Equal(t, p, s.Params())
	assert.Equal(t, c, s.Currents())
}

func TestSystemResidualMatchesPairs(t *testing.T) {
	p, c := mockParams()
	s := NewSystem(p, c)

	state := numeric.Vec3{10, 11, 12}
	pairs := s.Pairs(state)
	residual := s.Residual(state)

	for i := range residual {
		assert.Equal(t, pairs[i].Measured-pairs[i].Predicted, residual[i])
	}
	assert.Equal(t, c.IDsOn, pairs[0].Measured)
	assert.Equal(t, c.IDsOff, pairs[1].Measured)
	assert.Equal(t, c.IGsOn, pairs[2].Measured)
}

func TestSystemJacobianMatchesFiniteDifference(t *testing.T) {
	p, c := mockParams()
	s := NewSystem(p, c)

	state := numeric.Vec3{10, 11, 12}
	analytic := s.Jacobian(state)

	const h = 1e-3
	for col := 0; col < numeric.N; col++ {
		fwd, bwd := state, state
		fwd[col] += h
		bwd[col] -= h
		rf := s.Residual(fwd)
		rb := s.Residual(bwd)
		for row := 0; row < numeric.N; row++ {
			fd := (rf[row] - rb[row]) / (2 * h)
			tol := 0.02*math32.Abs(analytic[row][col]) + 1e-4
			assert.InDelta(t, float64(fd), float64(analytic[row][col]), float64(tol),
				"entry (%d,%d)", row, col)
		}
	}
}

func TestForwardRoundTrip(t *testing.T) {
	// Currents synthesized from a state must satisfy the system exactly at
	// that state.
	p := params.ModelParams{
		Modulation:        params.ModulationParams{A: 0, B: -0.01463, C: -0.32},
		RDry:              38.2,
		StemResistanceInv: params.StemResistanceInvParams{A: 1.35e-6, B: 2.73e-4},
		Voltages:          params.Voltages{VDs: -0.05, VGs: 0.5},
	}
	truth := params.Variables{Concentration: 5e-3, Resistance: 40, Saturation: 0.6}

	c := Forward(p, truth)
	require.True(t, c.IsFinite())
	s := NewSystem(p, c)
	residual := s.Residual(truth.Vector())
	assert.Less(t, float64(residual.Norm()), 1e-8)
}
