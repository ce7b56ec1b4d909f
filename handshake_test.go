package simcore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHandshakeSignalStepThenDoneRoundTrips(t *testing.T) {
	h := newHandshake()
	done := make(chan struct{})
	go func() {
		<-h.stepCh
		h.signalDone()
		close(done)
	}()
	h.signalStep()
	require.NoError(t, h.waitDone(context.Background()))
	<-done
}

func TestHandshakeWaitDoneRespectsContextCancellation(t *testing.T) {
	h := newHandshake()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.waitDone(ctx)
	require.Error(t, err)
}

func TestHandshakeSignalStopJoinsWorker(t *testing.T) {
	h := newHandshake()
	go func() {
		<-h.stopCh
		close(h.stoppedCh)
	}()
	done := make(chan struct{})
	go func() {
		h.signalStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("signalStop did not return after stoppedCh closed")
	}
}

func TestHandshakeSignalRebootBlocksUntilAcked(t *testing.T) {
	h := newHandshake()
	var got Firmware
	go func() {
		got = <-h.rebootCh
		h.rebootDoneCh <- struct{}{}
	}()

	fw := &fakeFirmware{}
	h.signalReboot(fw)
	require.Equal(t, fw, got)
}

type fakeFirmware struct{}

func (f *fakeFirmware) Setup(*Node) {}
func (f *fakeFirmware) Loop(*Node)  {}
