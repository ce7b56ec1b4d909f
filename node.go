package simcore

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/signalsfoundry/mcsim/hw"
)

// FirmwareFactory builds a fresh Firmware instance bound against ctx. Node
// calls it once at Create and again at Reboot, mirroring the C-ABI's
// sim_reboot re-running setup without re-spawning the worker strand.
type FirmwareFactory func(ctx *Context) Firmware

// Node is one simulated firmware instance running on its own dedicated
// worker goroutine, driven by the coordinator through the step handshake.
type Node struct {
	nodeType string
	factory  FirmwareFactory

	ctx *Context
	hs  *handshake
}

// Create spawns a node's worker strand and returns without waiting for it;
// the strand runs firmware Setup before it takes the first step. nodeType is
// reported verbatim by NodeType (sim_get_node_type in the C-ABI).
func Create(nodeType string, cfg *Config, factory FirmwareFactory) *Node {
	return CreateWithOptions(nodeType, cfg, factory, nil, nil)
}

// CreateWithMetrics is Create with an explicit Metrics collector; pass the
// same *Metrics to every node in a simulated mesh to get aggregate
// step/loop/yield counters across the whole run.
func CreateWithMetrics(nodeType string, cfg *Config, factory FirmwareFactory, m *Metrics) *Node {
	return CreateWithOptions(nodeType, cfg, factory, m, nil)
}

// CreateWithOptions is the fully general constructor: nil metrics or
// logger fall back to a no-op collector/logger, matching Create's
// zero-configuration behavior.
func CreateWithOptions(nodeType string, cfg *Config, factory FirmwareFactory, m *Metrics, logger *zap.SugaredLogger) *Node {
	ctx := NewContext(cfg)
	ctx.attachMetrics(m, nodeType)
	ctx.attachLogger(logger)
	n := &Node{
		nodeType: nodeType,
		factory:  factory,
		ctx:      ctx,
		hs:       newHandshake(),
	}
	fw := factory(ctx)
	go runWorker(n, fw)
	return n
}

// NodeType returns the firmware flavor this node was created with.
func (n *Node) NodeType() string { return n.nodeType }

// Board returns the node's simulated main board.
func (n *Node) Board() *hw.Board { return n.ctx.Board }

// Radio returns the node's simulated LoRa transceiver.
func (n *Node) Radio() *hw.Radio { return n.ctx.Radio }

// Serial returns the node's simulated UART.
func (n *Node) Serial() *hw.Serial { return n.ctx.Serial }

// RNG returns the node's deterministic random source.
func (n *Node) RNG() *hw.RNG { return n.ctx.RNG }

// FS returns the node's in-memory filesystem.
func (n *Node) FS() *hw.Filesystem { return n.ctx.FS }

// Millis returns the node's monotonic virtual-time clock.
func (n *Node) Millis() *hw.MillisClock { return n.ctx.Millis }

// RTC returns the node's wall-clock substitute.
func (n *Node) RTC() *hw.RTCClock { return n.ctx.RTC }

// Wakes returns the node's wake-time registry, letting firmware register
// a specific absolute millisecond deadline instead of relying on the
// default 100ms idle wake.
func (n *Node) Wakes() *WakeRegistry { return n.ctx.Wakes }

// StepBegin stamps the coordinator's virtual time onto the context, clears
// the board's reboot/power-off request flags, and wakes the worker strand
// to run one step. It returns ErrStepInProgress if a previous step has not
// yet been collected with StepWait, and ErrShuttingDown once Destroy has
// been called.
func (n *Node) StepBegin(millis uint64, rtcSecs uint32) error {
	if n.ctx.State() == StateShutdown {
		return ErrShuttingDown
	}
	if !n.ctx.casState(StateIdle, StateRunning) {
		return ErrStepInProgress
	}
	n.ctx.Board.ClearFlags()
	n.ctx.advanceTime(millis, rtcSecs)
	n.hs.signalStep()
	return nil
}

// StepWait blocks until the worker strand yields, then returns the staged
// StepResult and resets the handshake to StateIdle for the next step. The
// supplied context bounds only the coordinator's wait -- it never cancels
// the firmware strand itself, matching the "no timeout at core" rule.
// ErrNoStepInProgress is returned if StepBegin was not called first.
func (n *Node) StepWait(ctx context.Context) (StepResult, error) {
	if n.ctx.State() == StateIdle {
		return StepResult{}, ErrNoStepInProgress
	}
	if err := n.hs.waitDone(ctx); err != nil {
		return StepResult{}, err
	}
	result := n.ctx.takeResult()
	n.ctx.casState(StateYielded, StateIdle)
	return result, nil
}

// Step is StepBegin followed by StepWait, for callers that don't need to
// overlap a step with other coordinator work.
func (n *Node) Step(ctx context.Context, millis uint64, rtcSecs uint32) (StepResult, error) {
	if err := n.StepBegin(millis, rtcSecs); err != nil {
		return StepResult{}, err
	}
	return n.StepWait(ctx)
}

// InjectRadioRX delivers an inbound radio packet to the firmware's next
// Poll call.
func (n *Node) InjectRadioRX(data []byte, rssi, snr float32) {
	n.ctx.Radio.InjectRX(data, rssi, snr)
}

// InjectSerialRX delivers bytes on the simulated UART's RX queue.
func (n *Node) InjectSerialRX(data []byte) {
	n.ctx.Serial.InjectRX(data)
}

// NotifyTXComplete acknowledges a previously started transmission,
// releasing the radio back to idle for the firmware.
func (n *Node) NotifyTXComplete() {
	n.ctx.Radio.NotifyTXComplete()
}

// NotifyStateChange records an advisory state-version bump on the radio.
func (n *Node) NotifyStateChange(version uint32) {
	n.ctx.Radio.NotifyStateChange(version)
}

// GetPublicKey returns the node's configured Ed25519 public key.
func (n *Node) GetPublicKey() [PublicKeySize]byte {
	return n.ctx.PublicKey
}

// FSRead is a coordinator-side convenience for reading a path out of the
// node's filesystem without opening a Handle.
func (n *Node) FSRead(path string) ([]byte, bool) { return n.ctx.FS.ReadFile(path) }

// FSWrite is a coordinator-side convenience for writing a path into the
// node's filesystem, returning the number of bytes actually stored.
func (n *Node) FSWrite(path string, data []byte) int { return n.ctx.FS.WriteFile(path, data) }

// FSExists reports whether path has been written in the node's filesystem.
func (n *Node) FSExists(path string) bool { return n.ctx.FS.Exists(path) }

// FSRemove deletes path from the node's filesystem, reporting whether it
// existed.
func (n *Node) FSRemove(path string) bool { return n.ctx.FS.Remove(path) }

// Reboot requires the worker strand to be quiescent (StateIdle or
// StateYielded) and returns an error at once otherwise; it does not wait
// for a running step to finish. On a quiescent strand it re-applies cfg
// while preserving the filesystem, and re-runs firmware Setup on the same
// strand without spawning a new goroutine. This assumes Setup is
// idempotent with respect to already-initialized strand-local state.
func (n *Node) Reboot(cfg *Config) error {
	state := n.ctx.State()
	if state != StateIdle && state != StateYielded {
		return errors.Errorf("simcore: reboot requires a quiescent strand, got %s", state)
	}
	n.ctx.applyReboot(cfg)
	fw := n.factory(n.ctx)
	n.hs.signalReboot(fw)
	n.ctx.setState(StateIdle)
	return nil
}

// Destroy requests the worker strand to stop cooperatively and returns
// once it has done so. Further StepBegin, StepWait and Step calls return
// ErrShuttingDown.
func (n *Node) Destroy() {
	n.hs.signalStop()
}
