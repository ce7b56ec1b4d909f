// Package simtest provides utility functions for testing simcore nodes,
// principally a determinism-replay comparison adapted from the teacher's
// hwtest.ComparePart: build two independent instances from the same
// configuration, drive them through an identical scripted input sequence,
// and diff their outputs step by step.
package simtest

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/signalsfoundry/mcsim"
)

// RadioRXInput is one packet to inject before a step.
type RadioRXInput struct {
	Bytes []byte
	RSSI  float32
	SNR   float32
}

// StepInput is one scripted quantum: the coordinator-supplied time, plus
// whatever inputs to inject immediately before stepping.
type StepInput struct {
	Millis           uint64
	RTCSecs          uint32
	SerialRX         []byte
	RadioRX          []RadioRXInput
	NotifyTXComplete bool
}

// CompareRuns builds two nodes from the same nodeType/cfg/factory, drives
// both through the identical script, and fails t if their StepResult
// streams ever diverge. It directly answers the harness's determinism
// invariant: identical config, identical RNG seed, identical input
// sequence must produce identical output sequences.
func CompareRuns(t *testing.T, nodeType string, cfg simcore.Config, factory simcore.FirmwareFactory, script []StepInput) {
	t.Helper()

	cfg1, cfg2 := cfg, cfg
	n1 := simcore.Create(nodeType, &cfg1, factory)
	n2 := simcore.Create(nodeType, &cfg2, factory)
	defer n1.Destroy()
	defer n2.Destroy()

	start := time.Now()
	ctx := context.Background()

	for i, step := range script {
		applyInputs(n1, step)
		applyInputs(n2, step)

		r1, err1 := n1.Step(ctx, step.Millis, step.RTCSecs)
		r2, err2 := n2.Step(ctx, step.Millis, step.RTCSecs)

		if (err1 == nil) != (err2 == nil) {
			t.Fatalf("step %d: err1=%v err2=%v", i, err1, err2)
		}
		if err1 != nil {
			continue
		}
		if diff := diffResults(r1, r2); diff != "" {
			t.Fatalf("step %d diverged: %s", i, diff)
		}
	}

	t.Logf("%d steps compared in %v", len(script), time.Since(start))
}

func applyInputs(n *simcore.Node, step StepInput) {
	if len(step.SerialRX) > 0 {
		n.InjectSerialRX(step.SerialRX)
	}
	for _, pkt := range step.RadioRX {
		n.InjectRadioRX(pkt.Bytes, pkt.RSSI, pkt.SNR)
	}
	if step.NotifyTXComplete {
		n.NotifyTXComplete()
	}
}

func diffResults(a, b simcore.StepResult) string {
	if a.Reason != b.Reason {
		return fmt.Sprintf("reason %s != %s", a.Reason, b.Reason)
	}
	if a.Reason == simcore.YieldIdle && a.WakeMillis != b.WakeMillis {
		return fmt.Sprintf("wake_millis %d != %d", a.WakeMillis, b.WakeMillis)
	}
	if !bytes.Equal(a.SerialTX, b.SerialTX) {
		return fmt.Sprintf("serial_tx %q != %q", a.SerialTX, b.SerialTX)
	}
	if !bytes.Equal(a.LogBytes, b.LogBytes) {
		return fmt.Sprintf("log %q != %q", a.LogBytes, b.LogBytes)
	}
	switch {
	case a.TXFrame == nil && b.TXFrame == nil:
	case a.TXFrame == nil || b.TXFrame == nil:
		return "tx_frame nil mismatch"
	case !bytes.Equal(a.TXFrame.Bytes, b.TXFrame.Bytes):
		return fmt.Sprintf("tx_frame %x != %x", a.TXFrame.Bytes, b.TXFrame.Bytes)
	}
	return ""
}
