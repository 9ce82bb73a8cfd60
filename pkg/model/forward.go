package model

import (
	"github.com/itohio/bioristor/pkg/params"
)

// Forward computes the currents the device would output for a known state.
// It is the inverse direction of the solve: useful for simulated devices and
// for constructing measurements with a known ground truth.
func Forward(p params.ModelParams, v params.Variables) params.Currents {
	b := base{params: p}
	m := b.modulation(v.Concentration)
	q := b.stemResistanceInv(v.Concentration)

	iGsOn := p.Voltages.VGs * v.Saturation * q
	iDsOff := p.Voltages.VDs / (p.RDry + v.Saturation*(v.Resistance-p.RDry))
	iDsOn := iGsOn + p.Voltages.VDs/(p.RDry+v.Saturation*(v.Resistance/(m+1)-p.RDry))

	return params.Currents{IDsOff: iDsOff, IDsOn: iDsOn, IGsOn: iGsOn}
}
