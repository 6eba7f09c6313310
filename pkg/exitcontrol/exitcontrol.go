package exitcontrol

import (
	"fmt"
	"sync"

	"github.com/core-tools/hsu-lifesim/pkg/errors"
	"github.com/core-tools/hsu-lifesim/pkg/logging"

	"go.uber.org/multierr"
)

// Path identifies how a run reached Stopped.
type Path string

const (
	PathSignal        Path = "signal"
	PathScenarioError Path = "scenario-error"
	PathScenarioQuick Path = "scenario-quick"
	PathScenarioCrash Path = "scenario-crash"
)

const (
	ExitCodeClean = 0
	ExitCodeError = 1

	// ExitCodeCrash is what the Go runtime exits with after an unrecovered
	// panic. It is never passed to an exit function.
	ExitCodeCrash = 2
)

// Abnormal reports whether the path ends in a crash rather than an exit.
func (p Path) Abnormal() bool {
	return p == PathScenarioCrash
}

// Code returns the exit status for the path.
func Code(p Path) int {
	switch p {
	case PathScenarioError:
		return ExitCodeError
	case PathScenarioCrash:
		return ExitCodeCrash
	default:
		return ExitCodeClean
	}
}

// Outcome is the result of a simulator run.
type Outcome struct {
	Path       Path
	Scenario   string
	Heartbeats uint64
	Signal     string
}

func (o Outcome) String() string {
	if o.Signal != "" {
		return fmt.Sprintf("path=%s scenario=%s heartbeats=%d signal=%s", o.Path, o.Scenario, o.Heartbeats, o.Signal)
	}
	return fmt.Sprintf("path=%s scenario=%s heartbeats=%d", o.Path, o.Scenario, o.Heartbeats)
}

// ExitFunc terminates the process; os.Exit in production.
type ExitFunc func(code int)

// Controller turns an Outcome into the final process status.
type Controller struct {
	logger   logging.Logger
	exit     ExitFunc
	mutex    sync.Mutex
	cleanups []func() error
	done     bool
}

func NewController(exit ExitFunc, logger logging.Logger) *Controller {
	return &Controller{
		logger: logger,
		exit:   exit,
	}
}

// OnExit registers a cleanup that runs before a clean exit. Cleanups run in
// reverse registration order and are skipped on the crash path.
func (c *Controller) OnExit(cleanup func() error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cleanups = append(c.cleanups, cleanup)
}

// Terminate ends the process according to the outcome. For the crash path
// it panics with a process error and never returns; otherwise it runs the
// cleanups and calls the exit function once.
func (c *Controller) Terminate(outcome Outcome) {
	c.mutex.Lock()
	if c.done {
		c.mutex.Unlock()
		c.logger.Debugf("Terminate called again, ignoring, outcome: %s", outcome)
		return
	}
	c.done = true
	cleanups := c.cleanups
	c.cleanups = nil
	c.mutex.Unlock()

	if outcome.Path.Abnormal() {
		panic(errors.NewProcessError("simulated crash", nil).
			WithContext("scenario", outcome.Scenario).
			WithContext("heartbeats", outcome.Heartbeats))
	}

	var err error
	for i := len(cleanups) - 1; i >= 0; i-- {
		err = multierr.Append(err, cleanups[i]())
	}
	if err != nil {
		c.logger.Warnf("Cleanup finished with %d error(s): %v", len(multierr.Errors(err)), err)
	}

	code := Code(outcome.Path)
	c.logger.Debugf("Exiting, code: %d, outcome: %s", code, outcome)
	c.exit(code)
}
