package simulator

import (
	"os"
	"syscall"
)

// DefaultSignals are the termination requests intercepted by default. On
// Windows, Ctrl+C and Ctrl+Break arrive as os.Interrupt and console close,
// logoff and shutdown events arrive as syscall.SIGTERM.
func DefaultSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM}
}
