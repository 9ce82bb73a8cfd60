// Package params defines the physical quantities of the bioristor device:
// the constants of the equivalent-circuit model, the measured currents and
// the variables estimated by the solver.
package params

import (
	"github.com/chewxy/math32"

	"github.com/itohio/bioristor/pkg/numeric"
)

// ModulationParams parameterizes the channel modulation function
// a*x + b*ln(x) + c, where x is the ion concentration.
type ModulationParams struct {
	A float32 `yaml:"a"`
	B float32 `yaml:"b"`
	C float32 `yaml:"c"`
}

// StemResistanceInvParams parameterizes the inverse of the stem resistance
// function a + b*x^0.955, where x is the ion concentration.
type StemResistanceInvParams struct {
	A float32 `yaml:"a"`
	B float32 `yaml:"b"`
}

// Voltages are the input voltages applied to the device.
type Voltages struct {
	// Voltage applied between drain and source [V].
	VDs float32 `yaml:"v_ds"`
	// Voltage applied between gate and source [V].
	VGs float32 `yaml:"v_gs"`
}

// ModelParams are the constants of the equivalent-circuit model, fixed at
// construction time and immutable for the lifetime of a solve.
type ModelParams struct {
	// Modulation function coefficients.
	Modulation ModulationParams `yaml:"modulation"`
	// Resistance of the dry PEDOT channel before exposure to the
	// electrolyte [Ohm].
	RDry float32 `yaml:"r_dry"`
	// Inverse stem resistance function coefficients.
	StemResistanceInv StemResistanceInvParams `yaml:"stem_resistance_inv"`
	// Input voltages of the device.
	Voltages Voltages `yaml:"voltages"`
}

// Currents are the raw electrical measurement supplied per solve call,
// immutable once captured.
type Currents struct {
	// Drain-source current with the gate off [A].
	IDsOff float32 `yaml:"i_ds_off"`
	// Drain-source current with the gate on [A].
	IDsOn float32 `yaml:"i_ds_on"`
	// Gate-source current with the gate on [A].
	IGsOn float32 `yaml:"i_gs_on"`
}

// IsFinite reports whether all three currents are finite numbers.
func (c Currents) IsFinite() bool {
	for _, x := range [3]float32{c.IDsOff, c.IDsOn, c.IGsOn} {
		if math32.IsNaN(x) || math32.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Variables are the unknowns estimated by the solver.
type Variables struct {
	// Concentration of ions in the electrolyte [M].
	Concentration float32 `yaml:"concentration"`
	// Resistance of the wet PEDOT channel with the gate off [Ohm].
	Resistance float32 `yaml:"resistance"`
	// Water saturation of the system [dimensionless].
	Saturation float32 `yaml:"saturation"`
}

// Vector returns the variables as an ordered state vector.
// The ordering (concentration, resistance, saturation) matches the rows of
// the model equations and the columns of the Jacobian.
func (v Variables) Vector() numeric.Vec3 {
	return numeric.Vec3{v.Concentration, v.Resistance, v.Saturation}
}

// VariablesFromVector is the inverse of Variables.Vector.
func VariablesFromVector(s numeric.Vec3) Variables {
	return Variables{Concentration: s[0], Resistance: s[1], Saturation: s[2]}
}

// Bounds is the physically valid domain of the state vector. States outside
// the domain are clamped at every solver step, never accepted as a solution.
type Bounds struct {
	Min Variables `yaml:"min"`
	Max Variables `yaml:"max"`
}

// Clamp limits every component of the state to the domain.
func (b Bounds) Clamp(s numeric.Vec3) numeric.Vec3 {
	lo := b.Min.Vector()
	hi := b.Max.Vector()
	for i := range s {
		s[i] = numeric.Clamp(s[i], lo[i], hi[i])
	}
	return s
}

// Contains reports whether the state lies inside the domain.
func (b Bounds) Contains(s numeric.Vec3) bool {
	lo := b.Min.Vector()
	hi := b.Max.Vector()
	for i := range s {
		if s[i] < lo[i] || s[i] > hi[i] {
			return false
		}
	}
	return true
}
