package simcore

import (
	"fmt"
	"time"

	"github.com/signalsfoundry/mcsim/strand"
)

// runWorker is the dedicated goroutine body for one node. It mirrors
// sim_node_base.h's threadMain(): bind the strand's hardware substitutes,
// run Setup once, then repeatedly wait for a step signal, run the
// double-loop idle detector, stage a StepResult, and report done -- until
// told to stop.
func runWorker(n *Node, fw Firmware) {
	ctx := n.ctx
	hs := n.hs

	unbind := strand.Bind(&strand.Handles{
		Radio:  ctx.Radio,
		Board:  ctx.Board,
		RTC:    ctx.RTC,
		Millis: ctx.Millis,
		RNG:    ctx.RNG,
		FS:     ctx.FS,
		Serial: ctx.Serial,
	})
	defer unbind()

	fw.Setup(n)
	ctx.log.Debug("strand started")

	for {
		select {
		case <-hs.stopCh:
			ctx.setState(StateShutdown)
			ctx.log.Debug("strand shutting down")
			close(hs.stoppedCh)
			return
		case <-hs.stepCh:
			runStep(n, fw)
			ctx.setState(StateYielded)
			hs.signalDone()
		case next := <-hs.rebootCh:
			fw = next
			fw.Setup(n)
			ctx.log.Debug("strand rebooted")
			hs.rebootDoneCh <- struct{}{}
		}
	}
}

// runStep executes one quantum: the double-loop idle detector from
// sim_node_base.h, followed by result classification and wake-registry
// bookkeeping. It always terminates -- the K-consecutive-non-productive
// bound guarantees a finite number of Loop calls per step. A panicking
// Loop is recovered into a YieldError result rather than taking down the
// worker strand.
func runStep(n *Node, fw Firmware) {
	ctx := n.ctx
	start := time.Now()
	result := computeStep(n, fw)
	result.SerialTX = ctx.Serial.DrainTX()
	result.LogBytes = ctx.Serial.DrainLog()
	ctx.stageResult(result)
	ctx.metrics.observe(ctx.nodeType, ctx.nodeName, ctx.spin.loopIterationsThisStep, time.Since(start).Seconds(), result.Reason)

	if result.Reason == YieldError {
		ctx.log.Warnw("step yielded with error", "reason", result.Reason, "message", result.ErrorMessage,
			"iterations", ctx.spin.loopIterationsThisStep)
	} else {
		ctx.log.Debugw("step yielded", "reason", result.Reason, "iterations", ctx.spin.loopIterationsThisStep,
			"duration", time.Since(start))
	}
}

func computeStep(n *Node, fw Firmware) (result StepResult) {
	ctx := n.ctx
	defer func() {
		if r := recover(); r != nil {
			result = StepResult{Reason: YieldError, ErrorMessage: fmt.Sprintf("panic: %v", r)}
		}
	}()

	ctx.spin.loopIterationsThisStep = 0

	// txStartedThisStep is only set on the not-pending -> pending edge, so a
	// frame left unacknowledged from an earlier step never makes a later,
	// otherwise unproductive step report TX_STARTED again.
	txStartedThisStep := false
	loopsWithoutOutput := uint32(0)
	for loopsWithoutOutput < ctx.spin.idleLoopsBeforeYield {
		serialTXBefore := ctx.Serial.TXLen()
		hadPendingTXBefore := ctx.Radio.HasPendingTx()

		fw.Loop(n)

		ctx.spin.loopIterationsThisStep++
		ctx.spin.totalLoopIterations++

		txEdge := ctx.Radio.HasPendingTx() && !hadPendingTXBefore
		if txEdge {
			txStartedThisStep = true
			break
		}
		if ctx.Board.RebootRequested() || ctx.Board.PowerOffRequested() {
			break
		}

		hadSerialOutput := ctx.Serial.TXLen() > serialTXBefore
		if hadSerialOutput {
			loopsWithoutOutput = 0
		} else {
			loopsWithoutOutput++
		}
	}

	if ctx.spin.logLoopIterations {
		ctx.Serial.Printf("[LOOP] step completed: %d iterations this step, %d total\n",
			ctx.spin.loopIterationsThisStep, ctx.spin.totalLoopIterations)
	}
	if ctx.spin.logSpinDetection && ctx.spin.threshold > 0 &&
		uint64(ctx.spin.loopIterationsThisStep) >= uint64(ctx.spin.threshold) {
		ctx.Serial.Printf("[SPIN] step exceeded spin_detection_threshold=%d (%d iterations)\n",
			ctx.spin.threshold, ctx.spin.loopIterationsThisStep)
		ctx.log.Warnw("spin detection threshold exceeded",
			"threshold", ctx.spin.threshold, "iterations", ctx.spin.loopIterationsThisStep)
	}

	ctx.Wakes.PurgeExpired(ctx.CurrentMillis())

	switch {
	case txStartedThisStep:
		result.Reason = YieldTXStarted
		if f, ok := ctx.Radio.PendingFrame(); ok {
			frame := f
			result.TXFrame = &frame
		}
	case ctx.Board.RebootRequested():
		result.Reason = YieldReboot
	case ctx.Board.PowerOffRequested():
		result.Reason = YieldPowerOff
	default:
		result.Reason = YieldIdle
		if wake, ok := ctx.Wakes.NextWake(ctx.CurrentMillis()); ok {
			result.WakeMillis = wake
		} else {
			result.WakeMillis = ctx.CurrentMillis() + 100
		}
	}

	return result
}
