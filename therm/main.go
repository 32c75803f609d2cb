package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/gotherm/pkg/adc"
	"github.com/itohio/gotherm/pkg/calib"
	"github.com/itohio/gotherm/pkg/config"
	"github.com/itohio/gotherm/pkg/monitor"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated source instead of serial port")
	)
	flag.Parse()

	// Load configuration. Load validates the static acquisition parameters;
	// an unsupported value must fail here, before any hardware is touched.
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	policy, err := calib.FromConfig(&cfg.Calibration)
	if err != nil {
		log.Fatalf("Failed to build calibration policy: %v", err)
	}

	var src adc.Source
	if *mockFlag {
		src = adc.NewSim(cfg)
	} else {
		src = adc.NewStream(cfg)
	}

	mon := monitor.New(cfg, src, policy, monitor.LogReporter{})

	if err := src.Start(); err != nil {
		log.Fatalf("Failed to start acquisition: %v", err)
	}

	// A termination signal stops the source, which wakes the monitor and
	// lets Run return cleanly.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		if err := src.Stop(); err != nil {
			log.Printf("Failed to stop acquisition: %v", err)
		}
	}()

	runErr := mon.Run()
	if runErr != nil {
		// Session-fatal acquisition error; release the hardware and exit.
		if err := src.Stop(); err != nil {
			log.Printf("Failed to stop acquisition: %v", err)
		}
	}
	if err := src.Close(); err != nil {
		log.Printf("Failed to close acquisition source: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Acquisition terminated: %v", runErr)
	}
}
