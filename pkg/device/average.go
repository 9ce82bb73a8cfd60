package device

import "github.com/itohio/bioristor/pkg/params"

// Stage transforms a measurement stream. Stages are composable and each one
// owns the goroutine that drives it and the channel it returns.
type Stage func(in <-chan Measurement) <-chan Measurement

// NewAveraging creates a stage that smooths the measurement stream with a
// sliding-window boxcar filter over each current channel. One averaged
// measurement is emitted per input, carrying the timestamp of the most
// recent sample in the window.
func NewAveraging(windowSize, bufSize int) Stage {
	if windowSize <= 0 {
		windowSize = 1
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return func(in <-chan Measurement) <-chan Measurement {
		out := make(chan Measurement, bufSize)

		go func() {
			defer close(out)

			window := make([]Measurement, 0, windowSize)
			for m := range in {
				window = append(window, m)
				if len(window) > windowSize {
					copy(window, window[1:])
					window = window[:windowSize]
				}

				select {
				case out <- averageWindow(window):
				default:
					// Consumer is behind, drop the smoothed sample.
				}
			}
		}()

		return out
	}
}

// averageWindow averages the currents over the window. The caller guarantees
// the window is non-empty.
func averageWindow(window []Measurement) Measurement {
	var sum params.Currents
	for _, m := range window {
		sum.IDsOff += m.Currents.IDsOff
		sum.IDsOn += m.Currents.IDsOn
		sum.IGsOn += m.Currents.IGsOn
	}

	n := float32(len(window))
	return Measurement{
		Timestamp: window[len(window)-1].Timestamp,
		Currents: params.Currents{
			IDsOff: sum.IDsOff / n,
			IDsOn:  sum.IDsOn / n,
			IGsOn:  sum.IGsOn / n,
		},
	}
}
