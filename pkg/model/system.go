package model

import (
	"github.com/itohio/bioristor/pkg/loss"
	"github.com/itohio/bioristor/pkg/numeric"
	"github.com/itohio/bioristor/pkg/params"
)

// System is the three-equation formulation of the circuit model:
//
//	i_ds_on  = i_gs_on + v_ds / (r_dry + s*(r/(m(c)+1) - r_dry))
//	i_ds_off = v_ds / (r_dry + s*(r - r_dry))
//	i_gs_on  = v_gs * s * q(c)
//
// where c, r, s are the state (concentration, wet resistance, saturation),
// m is the modulation function and q the inverse stem resistance.
type System struct {
	base
}

var _ SystemModel = (*System)(nil)

// NewSystem builds the system formulation for one measurement.
func NewSystem(p params.ModelParams, c params.Currents) *System {
	return &System{base{params: p, currents: c}}
}

// Pairs evaluates the measured and predicted side of each equation.
func (s *System) Pairs(state numeric.Vec3) [3]loss.Pair {
	c, r, sat := state[0], state[1], state[2]
	p := s.params
	m := s.modulation(c)
	q := s.stemResistanceInv(c)

	return [3]loss.Pair{
		{
			Measured:  s.currents.IDsOn,
			Predicted: s.currents.IGsOn + p.Voltages.VDs/(p.RDry+sat*(r/(m+1)-p.RDry)),
		},
		{
			Measured:  s.currents.IDsOff,
			Predicted: p.Voltages.VDs / (p.RDry + sat*(r-p.RDry)),
		},
		{
			Measured:  s.currents.IGsOn,
			Predicted: p.Voltages.VGs * sat * q,
		},
	}
}

// Residual returns measured - predicted for each equation.
func (s *System) Residual(state numeric.Vec3) numeric.Vec3 {
	pairs := s.Pairs(state)
	var out numeric.Vec3
	for i, p := range pairs {
		out[i] = p.Measured - p.Predicted
	}
	return out
}

// Jacobian returns the analytic derivative of the residual with respect to
// the state, ordered (concentration, resistance, saturation).
func (s *System) Jacobian(state numeric.Vec3) numeric.Mat3 {
	c, r, sat := state[0], state[1], state[2]
	p := s.params

	m := s.modulation(c)
	dm := s.modulationGradient(c)
	q := s.stemResistanceInv(c)
	dq := s.stemResistanceInvGradient(c)

	den1 := p.RDry - sat*(p.RDry-r/(m+1))
	den1 *= den1
	den2 := p.RDry + sat*(r-p.RDry)
	den2 *= den2

	return numeric.Mat3{
		{
			-(r * sat * p.Voltages.VDs * dm) / ((m + 1) * (m + 1) * den1),
			(sat * p.Voltages.VDs) / ((m + 1) * den1),
			-(p.Voltages.VDs * (p.RDry - r/(m+1))) / den1,
		},
		{
			0,
			(sat * p.Voltages.VDs) / den2,
			(p.Voltages.VDs * (r - p.RDry)) / den2,
		},
		{
			-sat * p.Voltages.VGs * dq,
			0,
			-p.Voltages.VGs * q,
		},
	}
}
