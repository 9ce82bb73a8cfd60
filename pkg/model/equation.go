package model

import (
	"github.com/itohio/bioristor/pkg/params"
)

// Equation is the single-variable formulation: the three-equation system
// solved symbolically for resistance and saturation, leaving one equation in
// the ion concentration. The coefficients depend only on the measurement and
// the model constants, so they are computed once at construction.
type Equation struct {
	base

	funcCoeffs       [4]float32
	resistanceCoeffs [3]float32
	saturationCoeffs [3]float32
}

var _ EquationModel = (*Equation)(nil)

// NewEquation builds the single-variable formulation for one measurement.
func NewEquation(p params.ModelParams, c params.Currents) *Equation {
	v := p.Voltages
	return &Equation{
		base: base{params: p, currents: c},
		funcCoeffs: [4]float32{
			c.IGsOn,
			v.VGs * v.VDs * (c.IDsOff - c.IDsOn + c.IGsOn),
			v.VGs * c.IDsOff * (v.VDs - c.IDsOn*p.RDry + c.IGsOn*p.RDry),
			c.IDsOff * p.RDry * (c.IDsOn - c.IGsOn),
		},
		resistanceCoeffs: [3]float32{
			p.RDry * v.VDs * (c.IDsOff - c.IDsOn + c.IGsOn),
			v.VDs * (c.IDsOff - c.IDsOn + c.IGsOn),
			c.IDsOff * (v.VDs - c.IDsOn*p.RDry + c.IGsOn*p.RDry),
		},
		saturationCoeffs: [3]float32{
			v.VDs * (c.IDsOff - c.IDsOn + c.IGsOn),
			c.IDsOff * (v.VDs - c.IDsOn*p.RDry + c.IGsOn*p.RDry),
			c.IDsOff * p.RDry * (c.IGsOn - c.IDsOn),
		},
	}
}

// Value evaluates the equation at the given concentration.
func (e *Equation) Value(concentration float32) float32 {
	m := e.modulation(concentration)
	q := e.stemResistanceInv(concentration)

	return e.funcCoeffs[0] +
		(e.funcCoeffs[1]*q+e.funcCoeffs[2]*q*m)/(e.funcCoeffs[3]*m)
}

// Gradient evaluates the first derivative of the equation.
func (e *Equation) Gradient(concentration float32) float32 {
	m := e.modulation(concentration)
	q := e.stemResistanceInv(concentration)
	dm := e.modulationGradient(concentration)
	dq := e.stemResistanceInvGradient(concentration)

	return (e.funcCoeffs[1]*dq+e.funcCoeffs[2]*(m*dq+dm*q))/(e.funcCoeffs[3]*m) -
		((e.funcCoeffs[1]+e.funcCoeffs[2]*m)*q*dm)/(e.funcCoeffs[3]*m*m)
}

// Resistance recovers the wet-channel resistance for a concentration.
func (e *Equation) Resistance(concentration float32) float32 {
	m := e.modulation(concentration)
	return (e.resistanceCoeffs[0] * (m + 1)) /
		(e.resistanceCoeffs[1] + e.resistanceCoeffs[2]*m)
}

// Saturation recovers the water saturation for a concentration.
func (e *Equation) Saturation(concentration float32) float32 {
	m := e.modulation(concentration)
	return (e.saturationCoeffs[0] + e.saturationCoeffs[1]*m) /
		(e.saturationCoeffs[2] * m)
}

// Variables expands a concentration into the full state.
func (e *Equation) Variables(concentration float32) params.Variables {
	return params.Variables{
		Concentration: concentration,
		Resistance:    e.Resistance(concentration),
		Saturation:    e.Saturation(concentration),
	}
}
