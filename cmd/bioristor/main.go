// Command bioristor estimates ion concentration from bioristor current
// measurements by inverting the device's equivalent-circuit model.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/itohio/bioristor/pkg/config"
	"github.com/itohio/bioristor/pkg/device"
	"github.com/itohio/bioristor/pkg/fit"
	"github.com/itohio/bioristor/pkg/params"
	"github.com/itohio/bioristor/pkg/profiler"
)

var (
	configFile string
	useMock    bool
	count      int

	iDsOff float32
	iDsOn  float32
	iGsOn  float32
)

func main() {
	root := &cobra.Command{
		Use:   "bioristor",
		Short: "Invert the bioristor equivalent-circuit model against current measurements",
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "bioristor.yaml", "configuration file")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "Fit a single measurement given on the command line",
		RunE:  runSolve,
	}
	solveCmd.Flags().Float32Var(&iDsOff, "i-ds-off", 0, "drain-source current with gate off [A]")
	solveCmd.Flags().Float32Var(&iDsOn, "i-ds-on", 0, "drain-source current with gate on [A]")
	solveCmd.Flags().Float32Var(&iGsOn, "i-gs-on", 0, "gate-source current with gate on [A]")
	for _, name := range []string{"i-ds-off", "i-ds-on", "i-gs-on"} {
		if err := solveCmd.MarkFlagRequired(name); err != nil {
			log.Fatalf("marking flag %s required: %v", name, err)
		}
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Stream measurements from the device and fit each one",
		RunE:  runStream,
	}
	runCmd.Flags().BoolVar(&useMock, "mock", false, "use the simulated device instead of the serial port")
	runCmd.Flags().IntVar(&count, "count", 0, "stop after this many measurements (0 = run forever)")

	portsCmd := &cobra.Command{
		Use:   "ports",
		Short: "List available serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := device.Ports()
			if err != nil {
				return err
			}
			for _, p := range ports {
				fmt.Println(p.Name)
			}
			return nil
		},
	}

	root.AddCommand(solveCmd, runCmd, portsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	fitter, err := fit.New(cfg)
	if err != nil {
		return err
	}

	prof := profiler.New(cfg.Profiler.CoreFrequencyHz)
	currents := params.Currents{IDsOff: iDsOff, IDsOn: iDsOn, IGsOn: iGsOn}

	handle := prof.Start()
	estimate, err := fitter.Fit(currents)
	cycles := prof.Elapsed(handle)
	if err != nil {
		return err
	}

	printEstimate(estimate, prof, cycles)
	return nil
}

func runStream(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	fitter, err := fit.New(cfg)
	if err != nil {
		return err
	}

	var dev device.Device
	if useMock {
		dev = device.NewMock(cfg)
	} else {
		dev = device.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate, 0)
	}

	if err := dev.Connect(); err != nil {
		return err
	}
	defer dev.Close()

	prof := profiler.New(cfg.Profiler.CoreFrequencyHz)

	stream := dev.Measurements()
	if w := cfg.Measurement.AverageWindow; w > 1 {
		stream = device.NewAveraging(w, 0)(stream)
	}

	n := 0
	for m := range stream {
		handle := prof.Start()
		estimate, err := fitter.Fit(m.Currents)
		cycles := prof.Elapsed(handle)
		if err != nil {
			log.Printf("%s fit: %v", m.Timestamp.Format(time.RFC3339), err)
			continue
		}

		printEstimate(estimate, prof, cycles)

		n++
		if count > 0 && n >= count {
			break
		}
	}
	return nil
}

func printEstimate(e fit.Estimate, prof *profiler.Profiler, cycles profiler.Cycles) {
	fmt.Printf("concentration=%.6g M resistance=%.4g Ohm saturation=%.4g  residual=%.3g relerr=%.3g confidence=%.2f iterations=%d status=%s (%d cycles, %d us)\n",
		e.Variables.Concentration, e.Variables.Resistance, e.Variables.Saturation,
		e.ResidualNorm, e.RelativeError, e.Confidence, e.Iterations, e.Status,
		cycles, prof.Micros(cycles))
}
