// Package device provides the acquisition collaborators of the solver: a
// serial connection to the sensor MCU and a simulated device. Both only
// produce measurements; solving happens elsewhere.
package device

import (
	"time"

	"github.com/itohio/bioristor/pkg/params"
)

// Measurement is one timestamped current triplet read from the sensor.
type Measurement struct {
	Timestamp time.Time
	Currents  params.Currents
}

// Device defines the interface for measurement sources (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Measurements() <-chan Measurement
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
