package scenario

import (
	"github.com/core-tools/hsu-lifesim/pkg/exitcontrol"
)

// Scenario is the behavior profile selected once at startup.
type Scenario string

const (
	Normal Scenario = "normal"
	Error  Scenario = "error"
	Crash  Scenario = "crash"
	Quick  Scenario = "quick"
)

// Default heartbeat thresholds at which each scenario fires.
const (
	DefaultErrorThreshold uint64 = 3
	DefaultCrashThreshold uint64 = 5
	DefaultQuickThreshold uint64 = 2
)

// Parse maps an invocation argument to a Scenario. Anything unrecognized,
// including the empty string, is Normal.
func Parse(arg string) Scenario {
	switch arg {
	case "error":
		return Error
	case "crash", "panic":
		return Crash
	case "quick":
		return Quick
	default:
		return Normal
	}
}

// Select reads the first positional argument, if any.
func Select(args []string) Scenario {
	if len(args) == 0 {
		return Normal
	}
	return Parse(args[0])
}

func (s Scenario) String() string {
	return string(s)
}

// Thresholds holds the heartbeat count at which each self-terminating
// scenario fires.
type Thresholds struct {
	Error uint64
	Crash uint64
	Quick uint64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Error: DefaultErrorThreshold,
		Crash: DefaultCrashThreshold,
		Quick: DefaultQuickThreshold,
	}
}

// Trigger describes when and how a scenario ends the run.
type Trigger struct {
	Threshold    uint64
	Announcement string
	Path         exitcontrol.Path
}

// Fires reports whether the trigger holds for the counter value observed
// after an increment.
func (t *Trigger) Fires(counter uint64) bool {
	return t != nil && counter >= t.Threshold
}

// Trigger returns the scenario's trigger, or nil for Normal, which only
// stops on an external request.
func (s Scenario) Trigger(thresholds Thresholds) *Trigger {
	switch s {
	case Error:
		return &Trigger{
			Threshold:    thresholds.Error,
			Announcement: "Simulating error exit",
			Path:         exitcontrol.PathScenarioError,
		}
	case Crash:
		return &Trigger{
			Threshold:    thresholds.Crash,
			Announcement: "Simulating crash",
			Path:         exitcontrol.PathScenarioCrash,
		}
	case Quick:
		return &Trigger{
			Threshold:    thresholds.Quick,
			Announcement: "Quick exit",
			Path:         exitcontrol.PathScenarioQuick,
		}
	default:
		return nil
	}
}
