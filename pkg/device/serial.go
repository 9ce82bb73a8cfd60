package device

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/itohio/bioristor/pkg/params"
)

const (
	// DefaultBaudRate is the baud rate of the sensor MCU's UART.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the measurements channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads measurements from the sensor MCU over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn         serial.Port
	measurements chan Measurement
	mu           sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	connected    bool
}

// NewSerial creates a new Serial device for the given port and baud rate.
func NewSerial(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:         port,
		baudRate:     baudRate,
		bufSize:      bufSize,
		measurements: make(chan Measurement, bufSize),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the serial port and starts reading measurements.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	d.wg.Add(1)
	go d.readMeasurements()

	return nil
}

// Close closes the connection and stops reading measurements.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	// Closing the port unblocks the scanner; wait for the reader to exit
	// before closing the channel it sends on.
	d.wg.Wait()
	close(d.measurements)

	return nil
}

// Measurements returns the channel for reading measurements.
func (d *Serial) Measurements() <-chan Measurement {
	return d.measurements
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readMeasurements reads lines from the serial port and parses them.
func (d *Serial) readMeasurements() {
	defer d.wg.Done()

	scanner := bufio.NewScanner(d.conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			m, err := parseLine(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			select {
			case d.measurements <- m:
			case <-d.ctx.Done():
				return
			default:
				log.Printf("Measurements channel full, dropping measurement")
			}
		}
	}
}

// parseLine parses a line from the MCU into a Measurement.
// Format: i_ds_off,i_ds_on,i_gs_on as decimal floats in Ampere.
// Example: -3.0365e-3,-2.6829e-3,1.1698e-6
func parseLine(line string) (Measurement, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Measurement{}, fmt.Errorf("invalid line format: expected 3 comma-separated values, got %d", len(parts))
	}

	var values [3]float32
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return Measurement{}, fmt.Errorf("invalid current value %q: %w", part, err)
		}
		values[i] = float32(v)
	}

	return Measurement{
		Timestamp: time.Now(),
		Currents: params.Currents{
			IDsOff: values[0],
			IDsOn:  values[1],
			IGsOn:  values[2],
		},
	}, nil
}
