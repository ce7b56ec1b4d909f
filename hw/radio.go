package hw

import (
	"sync"

	"github.com/pkg/errors"
)

// RadioState is one of the four states in the transceiver's state machine.
type RadioState int32

const (
	// RadioIdle means no TX in flight and nothing pending.
	RadioIdle RadioState = iota
	// RadioRXListen means the transceiver is parked listening for RX.
	// The harness does not distinguish this from RadioIdle behaviorally,
	// and no Radio method moves the radio into this state.
	RadioRXListen
	// RadioTXPending means start_send_raw succeeded and the frame is
	// waiting for the coordinator to propagate it and call
	// NotifyTXComplete.
	RadioTXPending
	// RadioTXInFlight means the frame has been handed off to the medium
	// model but TX completion has not yet been acknowledged. No Radio
	// method moves the radio into this state; StartSendRaw treats it as
	// busy, and NotifyTXComplete works directly from RadioTXPending.
	RadioTXInFlight
)

// Params are the LoRa radio parameters firmware configures the transceiver
// with.
type Params struct {
	Freq    float32
	Bw      float32
	SF      float32
	CR      float32
	TxPower float32
}

// Frame is an outbound radio frame captured by start_send_raw, together
// with the PHY parameters it was sent under.
type Frame struct {
	Bytes  []byte
	Params Params
}

// RXPacket is an inbound radio packet injected by the coordinator, carrying
// the PHY quality metrics measured for that reception.
type RXPacket struct {
	Bytes []byte
	RSSI  float32
	SNR   float32
}

// ErrTXBusy is returned by StartSendRaw when a frame is already pending
// completion.
var ErrTXBusy = errors.New("radio: TX already pending")

// ErrFrameTooLarge is returned by StartSendRaw when the outbound buffer
// exceeds the maximum frame size the simulated transceiver accepts.
var ErrFrameTooLarge = errors.New("radio: frame exceeds maximum size")

// MaxFrameBytes is the largest frame StartSendRaw will accept, matching a
// typical LoRa payload ceiling.
const MaxFrameBytes = 255

// Radio is the simulated LoRa transceiver. Firmware drives it through
// Configure/Begin/StartSendRaw/IsSending/HasPendingTx/Poll; the coordinator
// drives it through NotifyTXComplete/NotifyStateChange/InjectRX.
type Radio struct {
	mu      sync.Mutex
	state   RadioState
	params  Params
	pending *Frame
	rx      []RXPacket
	version uint32
}

// NewRadio returns an idle Radio.
func NewRadio() *Radio { return &Radio{state: RadioIdle} }

// Configure sets the LoRa parameters used for subsequent transmissions.
func (r *Radio) Configure(freq, bw, sf, cr, txPower float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = Params{Freq: freq, Bw: bw, SF: sf, CR: cr, TxPower: txPower}
}

// Begin resets the transceiver to RadioIdle with an empty RX queue,
// matching firmware calling begin() after configure().
func (r *Radio) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = RadioIdle
	r.pending = nil
	r.rx = nil
}

// StartSendRaw begins transmitting buf. It fails with ErrTXBusy if a frame
// is already pending completion, and with ErrFrameTooLarge if buf exceeds
// MaxFrameBytes. On success the frame is recorded and the radio moves to
// RadioTXPending; it does not complete on its own — the coordinator must
// call NotifyTXComplete once it has propagated the frame through its
// medium model.
func (r *Radio) StartSendRaw(buf []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == RadioTXPending || r.state == RadioTXInFlight {
		return ErrTXBusy
	}
	if len(buf) > MaxFrameBytes {
		return ErrFrameTooLarge
	}
	frame := make([]byte, len(buf))
	copy(frame, buf)
	r.pending = &Frame{Bytes: frame, Params: r.params}
	r.state = RadioTXPending
	return nil
}

// IsSending reports whether a TX is currently pending or in flight.
func (r *Radio) IsSending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == RadioTXPending || r.state == RadioTXInFlight
}

// HasPendingTx reports whether a frame is waiting for NotifyTXComplete.
// A frame is pending exactly while the radio is in RadioTXPending, so this
// agrees with IsSending.
func (r *Radio) HasPendingTx() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}

// PendingFrame returns the frame currently awaiting completion, if any.
// The coordinator uses this to read the outbound bytes/params before
// propagating them through its medium model.
func (r *Radio) PendingFrame() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return Frame{}, false
	}
	return *r.pending, true
}

// NotifyTXComplete finalizes the outbound frame, moving the radio back to
// RadioIdle. Calling it with no frame pending is a silent no-op.
func (r *Radio) NotifyTXComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
	r.state = RadioIdle
}

// NotifyStateChange is an advisory wake-up hint used to nudge a Poll loop
// that might otherwise be waiting on external state (e.g. a channel
// version bump from the coordinator's medium model). The harness only
// records the version; firmware built against it decides what to do.
func (r *Radio) NotifyStateChange(version uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.version = version
}

// StateVersion returns the last version passed to NotifyStateChange.
func (r *Radio) StateVersion() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// InjectRX appends a packet to the RX queue. Packets injected by successive
// calls are delivered to Poll in the same order they were injected.
func (r *Radio) InjectRX(data []byte, rssi, snr float32) {
	buf := make([]byte, len(data))
	copy(buf, data)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rx = append(r.rx, RXPacket{Bytes: buf, RSSI: rssi, SNR: snr})
}

// Poll drains and returns all packets queued since the last Poll, in FIFO
// order. Firmware calls this once per loop iteration.
func (r *Radio) Poll() []RXPacket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rx) == 0 {
		return nil
	}
	out := r.rx
	r.rx = nil
	return out
}

// State returns the transceiver's current state.
func (r *Radio) State() RadioState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
