// Package config loads and persists the application configuration: model
// constants, solver settings, physical domains and device parameters.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/bioristor/pkg/params"
	"github.com/itohio/bioristor/pkg/solver"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig       `yaml:"serial"`
	Model       params.ModelParams `yaml:"model"`
	Solver      solver.Config      `yaml:"solver"`
	Domain      params.Bounds      `yaml:"domain"`
	Measurement MeasurementConfig  `yaml:"measurement"`
	Fit         FitConfig          `yaml:"fit"`
	Profiler    ProfilerConfig     `yaml:"profiler"`
	Mock        MockConfig         `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// MeasurementConfig is the valid operating range of the sensor. Currents
// outside these per-channel bounds are rejected before any solver iteration.
type MeasurementConfig struct {
	Min params.Currents `yaml:"min"`
	Max params.Currents `yaml:"max"`
	// AverageWindow is the size of the sliding window used to smooth the
	// measurement stream before fitting. 1 disables smoothing.
	AverageWindow int `yaml:"average_window"`
}

// FitConfig contains the initial-guess policy of the fit orchestrator.
type FitConfig struct {
	// InitialGuess is the default starting state.
	InitialGuess params.Variables `yaml:"initial_guess"`
	// RetryGuess is the alternate starting state used for the single retry
	// after a singular Jacobian or a diverged solve.
	RetryGuess params.Variables `yaml:"retry_guess"`
	// ReusePrevious starts each solve from the previous converged state to
	// exploit temporal locality across successive reads.
	ReusePrevious bool `yaml:"reuse_previous"`
	// Loss selects the relative-error reduction grading each estimate:
	// "max", "mean" or "sum".
	Loss string `yaml:"loss"`
}

// ProfilerConfig contains the clock used to express solver latency in CPU
// cycles of the target device.
type ProfilerConfig struct {
	CoreFrequencyHz uint64 `yaml:"core_frequency_hz"`
}

// MockConfig contains the simulated device configuration.
type MockConfig struct {
	// State is the ground-truth state the mock synthesizes currents from.
	State params.Variables `yaml:"state"`
	// NoiseLevel is the relative amplitude of the noise added to each
	// synthesized current.
	NoiseLevel float32 `yaml:"noise_level"`
	// SampleRate is the interval between synthesized measurements.
	SampleRate time.Duration `yaml:"sample_rate"`
}

// Default returns a configuration matching the reference device.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Model: params.ModelParams{
			Modulation:        params.ModulationParams{A: 0, B: -0.01463, C: -0.32},
			RDry:              38.2,
			StemResistanceInv: params.StemResistanceInvParams{A: 1.35e-6, B: 2.73e-4},
			Voltages:          params.Voltages{VDs: -0.05, VGs: 0.5},
		},
		Solver: solver.DefaultConfig(),
		Domain: params.Bounds{
			Min: params.Variables{Concentration: 1e-4, Resistance: 10, Saturation: 0},
			Max: params.Variables{Concentration: 1e-1, Resistance: 100, Saturation: 1},
		},
		Measurement: MeasurementConfig{
			Min:           params.Currents{IDsOff: -0.1, IDsOn: -0.1, IGsOn: 0},
			Max:           params.Currents{IDsOff: 0, IDsOn: 0, IGsOn: 1e-3},
			AverageWindow: 4,
		},
		Fit: FitConfig{
			InitialGuess:  params.Variables{Concentration: 1e-2, Resistance: 50, Saturation: 0.5},
			RetryGuess:    params.Variables{Concentration: 1e-3, Resistance: 20, Saturation: 0.9},
			ReusePrevious: true,
			Loss:          "max",
		},
		Profiler: ProfilerConfig{
			CoreFrequencyHz: 216_000_000,
		},
		Mock: MockConfig{
			State:      params.Variables{Concentration: 5e-3, Resistance: 40, Saturation: 0.6},
			NoiseLevel: 0.001,
			SampleRate: 100 * time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Solver.Validate(); err != nil {
		return nil, fmt.Errorf("invalid solver configuration: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Model.RDry == 0 {
		c.Model.RDry = def.Model.RDry
	}
	if c.Model.Voltages == (params.Voltages{}) {
		c.Model.Voltages = def.Model.Voltages
	}
	if c.Model.Modulation == (params.ModulationParams{}) {
		c.Model.Modulation = def.Model.Modulation
	}
	if c.Model.StemResistanceInv == (params.StemResistanceInvParams{}) {
		c.Model.StemResistanceInv = def.Model.StemResistanceInv
	}

	// A zero in the file is indistinguishable from an absent field, so a
	// zero iteration budget cannot be configured through YAML; it remains a
	// programmatic setting.
	if c.Solver.MaxIterations == 0 {
		c.Solver.MaxIterations = def.Solver.MaxIterations
	}
	if c.Solver.Tolerance == 0 {
		c.Solver.Tolerance = def.Solver.Tolerance
	}
	if c.Solver.Damping == 0 {
		c.Solver.Damping = def.Solver.Damping
	}
	if c.Solver.JacobianStep == 0 {
		c.Solver.JacobianStep = def.Solver.JacobianStep
	}
	if c.Solver.DivergenceThreshold == 0 {
		c.Solver.DivergenceThreshold = def.Solver.DivergenceThreshold
	}
	if c.Solver.PivotEpsilon == 0 {
		c.Solver.PivotEpsilon = def.Solver.PivotEpsilon
	}
	if c.Solver.GradTolerance == 0 {
		c.Solver.GradTolerance = def.Solver.GradTolerance
	}

	if c.Domain.Max == (params.Variables{}) {
		c.Domain = def.Domain
	}
	if c.Measurement.Min == (params.Currents{}) && c.Measurement.Max == (params.Currents{}) {
		c.Measurement.Min = def.Measurement.Min
		c.Measurement.Max = def.Measurement.Max
	}
	if c.Measurement.AverageWindow == 0 {
		c.Measurement.AverageWindow = def.Measurement.AverageWindow
	}

	if c.Fit.InitialGuess == (params.Variables{}) {
		c.Fit.InitialGuess = def.Fit.InitialGuess
	}
	if c.Fit.RetryGuess == (params.Variables{}) {
		c.Fit.RetryGuess = def.Fit.RetryGuess
	}
	if c.Fit.Loss == "" {
		c.Fit.Loss = def.Fit.Loss
	}

	if c.Profiler.CoreFrequencyHz == 0 {
		c.Profiler.CoreFrequencyHz = def.Profiler.CoreFrequencyHz
	}

	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.State == (params.Variables{}) {
		c.Mock.State = def.Mock.State
	}
}
