package simulator

import (
	"context"
	"os"
	"time"

	"github.com/core-tools/hsu-lifesim/pkg/errors"
	"github.com/core-tools/hsu-lifesim/pkg/exitcontrol"
	"github.com/core-tools/hsu-lifesim/pkg/logging"
	"github.com/core-tools/hsu-lifesim/pkg/scenario"

	"go.uber.org/atomic"
)

// DefaultInterval is the heartbeat cadence of the interactive simulator.
const DefaultInterval = 2 * time.Second

type SimulatorOptions struct {
	Scenario   scenario.Scenario
	Thresholds scenario.Thresholds
	Interval   time.Duration

	// Startup record contents
	PID              int
	RunID            string
	WorkingDirectory string
	Args             []string

	// Signals to intercept; nil means DefaultSignals, empty means none.
	Signals []os.Signal
}

// Simulator runs the heartbeat loop for one process lifetime.
type Simulator struct {
	options SimulatorOptions
	trigger *scenario.Trigger
	state   *RunState
	signals *signalHandler
	phase   *atomic.Int32
	records *logging.Recorder
	logger  logging.Logger
}

func NewSimulator(options SimulatorOptions, records *logging.Recorder, logger logging.Logger) *Simulator {
	if options.Interval <= 0 {
		options.Interval = DefaultInterval
	}
	if options.Scenario == "" {
		options.Scenario = scenario.Normal
	}
	if options.Thresholds == (scenario.Thresholds{}) {
		options.Thresholds = scenario.DefaultThresholds()
	}
	if options.Signals == nil {
		options.Signals = DefaultSignals()
	}

	return &Simulator{
		options: options,
		trigger: options.Scenario.Trigger(options.Thresholds),
		state:   newRunState(time.Now()),
		signals: newSignalHandler(options.Signals, records, logger),
		phase:   atomic.NewInt32(int32(PhaseStarting)),
		records: records,
		logger:  logger,
	}
}

func (s *Simulator) Phase() Phase {
	return Phase(s.phase.Load())
}

func (s *Simulator) State() *RunState {
	return s.state
}

// RequestTermination delivers a termination request as if sig had been
// received from the OS. It is safe to call from any goroutine and more than
// once; only the first request counts.
func (s *Simulator) RequestTermination(sig os.Signal) bool {
	return s.signals.deliver(sig)
}

// Run executes the lifecycle up to Stopped and returns how it ended.
// Cancelling ctx stops the loop like a termination request without a signal.
func (s *Simulator) Run(ctx context.Context) exitcontrol.Outcome {
	s.records.Recordf("Test service started, PID: %d, run: %s, working directory: %s, arguments: %q, scenario: %s",
		s.options.PID, s.options.RunID, s.options.WorkingDirectory, s.options.Args, s.options.Scenario)

	s.signals.install()
	defer s.signals.uninstall()

	ticker := time.NewTicker(s.options.Interval)
	defer ticker.Stop()

	s.setPhase(PhaseRunning)
	s.logger.Debugf("Heartbeat loop running, scenario: %s, interval: %v", s.options.Scenario, s.options.Interval)

	for {
		// A request that ended the previous wait stops the loop before
		// another heartbeat is emitted.
		if s.signals.Requested() {
			return s.stopOnSignal()
		}
		if ctx.Err() != nil {
			return s.stopOnCancel(ctx)
		}

		counter := s.state.tick()
		s.records.Recordf("Service heartbeat #%d", counter)

		if s.signals.Requested() {
			return s.stopOnSignal()
		}
		if s.trigger.Fires(counter) {
			s.records.Recordf("%s", s.trigger.Announcement)
			return s.stop(exitcontrol.Outcome{
				Path:       s.trigger.Path,
				Scenario:   s.options.Scenario.String(),
				Heartbeats: counter,
			})
		}

		select {
		case <-ticker.C:
		case <-s.signals.Wake():
		case <-ctx.Done():
		}
	}
}

func (s *Simulator) stopOnSignal() exitcontrol.Outcome {
	<-s.signals.Wake()
	return s.stopping(exitcontrol.Outcome{
		Path:       exitcontrol.PathSignal,
		Scenario:   s.options.Scenario.String(),
		Heartbeats: s.state.Counter(),
		Signal:     s.signals.Signal(),
	})
}

func (s *Simulator) stopOnCancel(ctx context.Context) exitcontrol.Outcome {
	s.logger.Debugf("Stopping: %v", errors.NewCancelledError("heartbeat loop context done", ctx.Err()))
	return s.stop(exitcontrol.Outcome{
		Path:       exitcontrol.PathSignal,
		Scenario:   s.options.Scenario.String(),
		Heartbeats: s.state.Counter(),
	})
}

// stop ends a run that was not caused by a termination request. Requests
// arriving from here on are ignored.
func (s *Simulator) stop(outcome exitcontrol.Outcome) exitcontrol.Outcome {
	if !s.signals.seal() {
		s.logger.Debugf("Termination requested while stopping on %s, keeping that path", outcome.Path)
	}
	return s.stopping(outcome)
}

func (s *Simulator) stopping(outcome exitcontrol.Outcome) exitcontrol.Outcome {
	s.setPhase(PhaseStopping)
	s.state.stop()

	// A crash must look unexpected, so it leaves no summary behind.
	if !outcome.Path.Abnormal() {
		s.records.Recordf("Service shutting down after %d heartbeats (exit code %d)",
			outcome.Heartbeats, exitcontrol.Code(outcome.Path))
	}

	s.setPhase(PhaseStopped)
	s.logger.Debugf("Heartbeat loop stopped, uptime: %v, outcome: %s", s.state.Uptime(), outcome)
	return outcome
}

func (s *Simulator) setPhase(phase Phase) {
	s.phase.Store(int32(phase))
}
