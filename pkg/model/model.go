// Package model implements the equivalent-circuit model of the bioristor
// device in two formulations: a system of three equations in three unknowns,
// and a single-variable equation in the ion concentration alone.
//
// Both formulations are stateless after construction: the same instance is
// evaluated repeatedly across sensor reads without reset.
package model

import (
	"github.com/chewxy/math32"

	"github.com/itohio/bioristor/pkg/loss"
	"github.com/itohio/bioristor/pkg/numeric"
	"github.com/itohio/bioristor/pkg/params"
)

// Model is the common surface of all formulations of the circuit model.
type Model interface {
	// Params returns the model constants.
	Params() params.ModelParams
	// Currents returns the measurement the model was built for.
	Currents() params.Currents
}

// SystemModel is the three-equation formulation used by the Newton solver.
type SystemModel interface {
	Model

	// Pairs evaluates the measured and predicted side of each equation at
	// the given state.
	Pairs(state numeric.Vec3) [3]loss.Pair

	// Residual returns the per-equation mismatch (measured - predicted).
	Residual(state numeric.Vec3) numeric.Vec3

	// Jacobian returns the derivative of the residual with respect to the
	// state, evaluated analytically.
	Jacobian(state numeric.Vec3) numeric.Mat3
}

// EquationModel is the single-variable formulation: the system reduced to one
// equation in the ion concentration, with the remaining variables recovered
// in closed form.
type EquationModel interface {
	Model

	// Value evaluates the equation at the given concentration.
	Value(concentration float32) float32

	// Gradient evaluates the first derivative of the equation.
	Gradient(concentration float32) float32

	// Resistance recovers the wet-channel resistance for a concentration.
	Resistance(concentration float32) float32

	// Saturation recovers the water saturation for a concentration.
	Saturation(concentration float32) float32
}

// base carries the constants shared by both formulations together with the
// circuit functions derived from them.
type base struct {
	params   params.ModelParams
	currents params.Currents
}

func (b base) Params() params.ModelParams { return b.params }
func (b base) Currents() params.Currents  { return b.currents }

// modulation is the channel modulation a*c + b*ln(c) + c0.
func (b base) modulation(concentration float32) float32 {
	p := b.params.Modulation
	return p.A*concentration + p.B*math32.Log(concentration) + p.C
}

// modulationGradient is the derivative of the modulation: a + b/c.
func (b base) modulationGradient(concentration float32) float32 {
	p := b.params.Modulation
	return p.A + p.B/concentration
}

// stemResistanceInv is the inverse stem resistance a + b*c^0.955.
func (b base) stemResistanceInv(concentration float32) float32 {
	p := b.params.StemResistanceInv
	return p.A + p.B*math32.Pow(concentration, 0.955)
}

// stemResistanceInvGradient is the derivative of the inverse stem
// resistance: 0.955*b*c^-0.045.
func (b base) stemResistanceInvGradient(concentration float32) float32 {
	p := b.params.StemResistanceInv
	return 0.955 * p.B * math32.Pow(concentration, -0.045)
}
