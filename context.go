package simcore

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/signalsfoundry/mcsim/hw"
)

// State is one position in the step handshake state machine:
// IDLE -> RUNNING -> YIELDED -> IDLE, with
// SHUTDOWN reachable from any of the three.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateYielded
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateYielded:
		return "YIELDED"
	case StateShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

// spinConfig tracks the loop-iteration bookkeeping used for determinism
// debugging and spin logging. It never forces a step to terminate; the
// double-loop idle detector in worker.go is what bounds a step.
type spinConfig struct {
	threshold          uint32
	logSpinDetection   bool
	logLoopIterations  bool
	idleLoopsBeforeYield uint32

	loopIterationsThisStep uint32
	totalLoopIterations    uint64
}

// Context is the per-node state shared between the coordinator-facing API
// (node.go) and the firmware's dedicated worker goroutine (worker.go). It
// bundles the hardware substitutes the firmware observes through the
// strand registry, the step handshake state, and the staged result of the
// step currently in flight.
//
// The worker goroutine and the coordinator goroutine touch this struct
// from two different goroutines by design. The state and clock fields are
// atomic and result is guarded by mu; the remaining fields are owned by
// one goroutine at a time, handed over by the step handshake.
type Context struct {
	mu sync.Mutex

	state atomic.Int32

	currentMillis  atomic.Uint64
	currentRTCSecs atomic.Uint32

	RNG    *hw.RNG
	FS     *hw.Filesystem
	Serial *hw.Serial
	Radio  *hw.Radio
	Board  *hw.Board
	Millis *hw.MillisClock
	RTC    *hw.RTCClock

	Wakes *WakeRegistry
	spin  spinConfig

	// PublicKey mirrors the identity half of Config that firmware and the
	// coordinator both need to read back after Create/Reboot.
	PublicKey [PublicKeySize]byte

	metrics  *Metrics
	nodeType string
	nodeName string
	log      *zap.SugaredLogger

	// result is the step outcome staged by the worker before it reports
	// YIELDED; StepWait copies it out under mu.
	result StepResult
}

// NewContext builds a Context and a fresh set of hardware substitutes
// configured from cfg. A reboot re-applies a config to these same
// substitutes (see applyReboot) without discarding the Context itself.
func NewContext(cfg *Config) *Context {
	ctx := &Context{
		RNG:    hw.NewRNG(cfg.RNGSeed),
		FS:     hw.NewFilesystem(hw.DefaultCapacity),
		Serial: hw.NewSerial(),
		Radio:  hw.NewRadio(),
		Board:  hw.NewBoard(),
		Millis: hw.NewMillisClock(cfg.InitialMillis),
		RTC:    hw.NewRTCClock(cfg.InitialRTC),
		Wakes:  NewWakeRegistry(),
	}
	ctx.spin = spinConfig{
		threshold:            cfg.SpinDetectionThreshold,
		logSpinDetection:     cfg.LogSpinDetection,
		logLoopIterations:    cfg.LogLoopIterations,
		idleLoopsBeforeYield: cfg.IdleLoopsBeforeYield,
	}
	if ctx.spin.idleLoopsBeforeYield == 0 {
		ctx.spin.idleLoopsBeforeYield = 2
	}
	ctx.state.Store(int32(StateIdle))
	ctx.Radio.Configure(cfg.LoraFreq, cfg.LoraBw, cfg.LoraSF, cfg.LoraCR, cfg.LoraTxPower)
	ctx.Radio.Begin()
	ctx.Millis.SetMillis(cfg.InitialMillis)
	ctx.RTC.SetCurrentTime(cfg.InitialRTC)
	ctx.currentMillis.Store(cfg.InitialMillis)
	ctx.currentRTCSecs.Store(cfg.InitialRTC)
	ctx.PublicKey = cfg.PublicKey
	ctx.nodeName = cfg.NodeNameString()
	ctx.log = zap.NewNop().Sugar()
	return ctx
}

// attachMetrics wires a shared Metrics collector into the context. Called
// once from Create; nil m disables observation.
func (c *Context) attachMetrics(m *Metrics, nodeType string) {
	c.metrics = m
	c.nodeType = nodeType
}

// attachLogger wires a *zap.SugaredLogger scoped to this node's display
// name. Called once from Create, after attachMetrics; a nil logger keeps
// the no-op default.
func (c *Context) attachLogger(l *zap.SugaredLogger) {
	if l == nil {
		return
	}
	c.log = l.With("node_name", c.nodeName, "node_type", c.nodeType)
}

// applyReboot re-applies cfg to every strand-local substitute except the
// filesystem, which a reboot preserves, and resets the wake registry and
// spin bookkeeping. Called with the strand quiescent.
func (c *Context) applyReboot(cfg *Config) {
	c.Serial.Reset()
	c.RNG.Seed(cfg.RNGSeed)
	c.Board.Init()
	c.Radio.Configure(cfg.LoraFreq, cfg.LoraBw, cfg.LoraSF, cfg.LoraCR, cfg.LoraTxPower)
	c.Radio.Begin()
	c.Millis.SetMillis(cfg.InitialMillis)
	c.RTC.SetCurrentTime(cfg.InitialRTC)
	c.currentMillis.Store(cfg.InitialMillis)
	c.currentRTCSecs.Store(cfg.InitialRTC)
	c.PublicKey = cfg.PublicKey
	c.Wakes = NewWakeRegistry()
	c.spin = spinConfig{
		threshold:            cfg.SpinDetectionThreshold,
		logSpinDetection:     cfg.LogSpinDetection,
		logLoopIterations:    cfg.LogLoopIterations,
		idleLoopsBeforeYield: cfg.IdleLoopsBeforeYield,
	}
	if c.spin.idleLoopsBeforeYield == 0 {
		c.spin.idleLoopsBeforeYield = 2
	}
}

func (c *Context) State() State { return State(c.state.Load()) }

func (c *Context) setState(s State) { c.state.Store(int32(s)) }

// casState is a compare-and-swap on the state machine, used by the
// handshake to enforce the legal transition set.
func (c *Context) casState(from, to State) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

func (c *Context) CurrentMillis() uint64 { return c.currentMillis.Load() }
func (c *Context) CurrentRTCSecs() uint32 { return c.currentRTCSecs.Load() }

// advanceTime is called by StepBegin: it stamps the new virtual time onto
// the context and the clock substitutes the firmware reads, mirroring
// sim_step_begin's update of ctx.current_millis / millis_clock / rtc_clock.
func (c *Context) advanceTime(millis uint64, rtcSecs uint32) {
	c.currentMillis.Store(millis)
	c.currentRTCSecs.Store(rtcSecs)
	c.Millis.SetMillis(millis)
	c.RTC.SetCurrentTime(rtcSecs)
}

func (c *Context) stageResult(r StepResult) {
	c.mu.Lock()
	c.result = r
	c.mu.Unlock()
}

func (c *Context) takeResult() StepResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}
