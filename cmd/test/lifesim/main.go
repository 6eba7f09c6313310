package main

import (
	"context"
	"os"

	"github.com/core-tools/hsu-lifesim/pkg/exitcontrol"
	"github.com/core-tools/hsu-lifesim/pkg/logging"
	"github.com/core-tools/hsu-lifesim/pkg/processfile"
	"github.com/core-tools/hsu-lifesim/pkg/simulator"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	settings, problems := resolveSettings(os.Args[1:])

	diagnostics := zap.New(logging.NewDiagnosticCore(os.Stderr, settings.Debug))
	logger := logging.NewZapLogger("lifesim: ", diagnostics.Sugar())
	for _, problem := range multierr.Errors(problems) {
		logger.Warnf("%v", problem)
	}
	logger.Debugf("settings: %+v", settings)

	records := logging.NewRecorder(os.Stdout)
	controller := exitcontrol.NewController(os.Exit, logger)

	workingDirectory, err := os.Getwd()
	if err != nil {
		logger.Warnf("Failed to get working directory: %v", err)
		workingDirectory = "<unknown>"
	}

	pid := os.Getpid()
	if settings.PIDFile != "" {
		pidFile := processfile.NewPIDFile(settings.PIDFile, logger)
		if err := pidFile.Write(pid); err != nil {
			logger.Warnf("Continuing without PID file: %v", err)
		} else {
			controller.OnExit(pidFile.Remove)
		}
	}

	sim := simulator.NewSimulator(simulator.SimulatorOptions{
		Scenario:         settings.Scenario,
		Thresholds:       settings.Thresholds,
		Interval:         settings.Interval,
		PID:              pid,
		RunID:            uuid.NewString(),
		WorkingDirectory: workingDirectory,
		Args:             os.Args,
	}, records, logger)

	outcome := sim.Run(context.Background())

	controller.Terminate(outcome)
}
