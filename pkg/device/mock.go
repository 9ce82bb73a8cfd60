package device

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/itohio/bioristor/pkg/config"
	"github.com/itohio/bioristor/pkg/model"
)

// Mock simulates a sensor device for testing and development. It runs the
// forward circuit model on a configured ground-truth state and adds relative
// noise, so a fit of its output should recover the configured state.
type Mock struct {
	modelParams *config.Config
	cfg         config.MockConfig

	measurements chan Measurement
	mu           sync.RWMutex
	done         chan struct{}
	wg           sync.WaitGroup
	connected    bool
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.Config) *Mock {
	return &Mock{
		modelParams:  cfg,
		cfg:          cfg.Mock,
		measurements: make(chan Measurement, DefaultBufferSize),
		done:         make(chan struct{}),
	}
}

// Connect starts generating measurements.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.wg.Add(1)
	go m.generate()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	close(m.done)
	m.wg.Wait()
	m.connected = false
	close(m.measurements)

	return nil
}

// Measurements returns the channel for reading measurements.
func (m *Mock) Measurements() <-chan Measurement {
	return m.measurements
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Mock) generate() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			c := model.Forward(m.modelParams.Model, m.cfg.State)
			c.IDsOff *= 1 + m.noise()
			c.IDsOn *= 1 + m.noise()
			c.IGsOn *= 1 + m.noise()

			select {
			case m.measurements <- Measurement{Timestamp: time.Now(), Currents: c}:
			case <-m.done:
				return
			default:
				// Channel full, drop the measurement.
			}
		}
	}
}

func (m *Mock) noise() float32 {
	return m.cfg.NoiseLevel * (2*rand.Float32() - 1)
}
