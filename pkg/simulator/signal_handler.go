package simulator

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/core-tools/hsu-lifesim/pkg/logging"

	"go.uber.org/atomic"
)

// signalHandler converts external termination requests into a single
// TerminationRequest. Only the first request counts; later ones are logged
// and dropped without blocking.
type signalHandler struct {
	signals   []os.Signal
	notify    chan os.Signal
	requested *atomic.Bool
	received  *atomic.String
	wake      chan struct{}
	quit      chan struct{}
	wg        sync.WaitGroup
	records   *logging.Recorder
	logger    logging.Logger
}

func newSignalHandler(signals []os.Signal, records *logging.Recorder, logger logging.Logger) *signalHandler {
	return &signalHandler{
		signals:   signals,
		notify:    make(chan os.Signal, 1),
		requested: atomic.NewBool(false),
		received:  atomic.NewString(""),
		wake:      make(chan struct{}),
		quit:      make(chan struct{}),
		records:   records,
		logger:    logger,
	}
}

func (h *signalHandler) install() {
	if len(h.signals) > 0 {
		signal.Notify(h.notify, h.signals...)
	}

	h.wg.Add(1)
	go h.run()

	h.logger.Debugf("Signal handler installed, signals: %v", h.signals)
}

// uninstall stops the handler goroutine. The Notify registration is kept so
// that a late request is dropped instead of killing the process with the
// default action while it is still shutting down.
func (h *signalHandler) uninstall() {
	close(h.quit)
	h.wg.Wait()

	h.logger.Debugf("Signal handler uninstalled")
}

func (h *signalHandler) run() {
	defer h.wg.Done()

	for {
		select {
		case sig := <-h.notify:
			h.deliver(sig)
		case <-h.quit:
			return
		}
	}
}

// deliver records sig as the TerminationRequest if none is active yet.
func (h *signalHandler) deliver(sig os.Signal) bool {
	name := signalName(sig)
	if !h.requested.CAS(false, true) {
		h.logger.Debugf("Termination already requested, ignoring signal: %s", name)
		return false
	}

	h.received.Store(name)
	h.records.Recordf("Received signal %s, shutting down gracefully...", name)
	close(h.wake)
	return true
}

// seal closes the handler to new requests once the loop is stopping. It
// returns false when a request got in first; that request's record is
// written before seal returns, so it always precedes the summary.
func (h *signalHandler) seal() bool {
	if h.requested.CAS(false, true) {
		return true
	}
	<-h.wake
	return false
}

// Requested reports whether a TerminationRequest is active.
func (h *signalHandler) Requested() bool {
	return h.requested.Load()
}

// Wake is closed once the TerminationRequest has been fully recorded.
func (h *signalHandler) Wake() <-chan struct{} {
	return h.wake
}

// Signal returns the name of the signal that caused the request. Only
// meaningful after Wake is closed.
func (h *signalHandler) Signal() string {
	return h.received.Load()
}

func signalName(sig os.Signal) string {
	switch sig {
	case os.Interrupt:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return sig.String()
	}
}
