package simcore

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// handshake is the channel-based rendezvous between the coordinator
// goroutine and a node's dedicated worker strand. It plays the role the
// teacher's Circuit gives its wc []chan struct{} / sync.WaitGroup pair in
// hwsim.go's worker()/Step(): a signal channel wakes the worker, and a
// completion channel reports back, except here there is exactly one
// worker and steps are request/response rather than fire-and-forget.
type handshake struct {
	stepCh       chan struct{} // buffered 1: StepBegin -> worker
	doneCh       chan struct{} // buffered 1: worker -> StepWait
	stopCh       chan struct{} // closed once: Destroy -> worker
	stoppedCh    chan struct{} // closed once: worker -> Destroy, exit confirmed
	rebootCh     chan Firmware // unbuffered: Reboot -> worker, new Firmware to Setup
	rebootDoneCh chan struct{} // unbuffered: worker -> Reboot, Setup finished

	closeOnce sync.Once
}

func newHandshake() *handshake {
	return &handshake{
		stepCh:       make(chan struct{}, 1),
		doneCh:       make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
		stoppedCh:    make(chan struct{}),
		rebootCh:     make(chan Firmware),
		rebootDoneCh: make(chan struct{}),
	}
}

// signalStep wakes the worker to run one step. Caller must have already
// transitioned the Context to StateRunning.
func (h *handshake) signalStep() {
	h.stepCh <- struct{}{}
}

// signalDone reports that the worker finished staging a StepResult.
func (h *handshake) signalDone() {
	h.doneCh <- struct{}{}
}

// signalStop requests the worker exit its loop and blocks until it has,
// mirroring hwsim.go's Dispose(): close the signal, then wait for
// confirmation instead of a WaitGroup since there is exactly one worker.
func (h *handshake) signalStop() {
	h.closeOnce.Do(func() { close(h.stopCh) })
	<-h.stoppedCh
}

// signalReboot hands the worker a freshly constructed Firmware to Setup,
// blocking until it has done so.
func (h *handshake) signalReboot(fw Firmware) {
	h.rebootCh <- fw
	<-h.rebootDoneCh
}

// waitDone blocks until the worker reports completion, the node is torn
// down, or ctx is cancelled. A cancelled ctx does not stop the firmware
// strand itself, only the caller's wait -- the "no timeout at core"
// invariant lives in the worker loop, not here.
func (h *handshake) waitDone(ctx context.Context) error {
	select {
	case <-h.doneCh:
		return nil
	case <-h.stopCh:
		return ErrShuttingDown
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "simcore: step wait")
	}
}
