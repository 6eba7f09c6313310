package simulator

// Phase is the heartbeat loop's lifecycle state. Phases only move forward:
// Starting → Running → Stopping → Stopped.
type Phase int32

const (
	PhaseStarting Phase = iota
	PhaseRunning
	PhaseStopping
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseRunning:
		return "running"
	case PhaseStopping:
		return "stopping"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
