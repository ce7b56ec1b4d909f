package simcore

import "github.com/signalsfoundry/mcsim/hw"

// YieldReason is why the worker strand stopped a step.
type YieldReason int32

const (
	// YieldIdle means the firmware settled: idle detection tripped after
	// the configured number of consecutive non-productive iterations.
	YieldIdle YieldReason = iota
	// YieldTXStarted means firmware started a radio transmission.
	YieldTXStarted
	// YieldReboot means firmware requested a reboot.
	YieldReboot
	// YieldPowerOff means firmware requested a power-off.
	YieldPowerOff
	// YieldError means the step aborted on an internal fault; ErrorMessage
	// carries a human-readable description.
	YieldError
)

// String implements fmt.Stringer for readable logs.
func (r YieldReason) String() string {
	switch r {
	case YieldIdle:
		return "IDLE"
	case YieldTXStarted:
		return "TX_STARTED"
	case YieldReboot:
		return "REBOOT"
	case YieldPowerOff:
		return "POWER_OFF"
	case YieldError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StepResult is everything a coordinator learns from one step.
type StepResult struct {
	Reason YieldReason
	// WakeMillis is only meaningful when Reason == YieldIdle: the absolute
	// simulated time the coordinator should schedule the next step for.
	WakeMillis uint64
	// TXFrame is populated when Reason == YieldTXStarted.
	TXFrame      *hw.Frame
	LogBytes     []byte
	SerialTX     []byte
	ErrorMessage string
}
