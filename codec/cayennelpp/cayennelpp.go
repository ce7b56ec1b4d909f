// Package cayennelpp implements the small subset of the CayenneLPP
// telemetry encoding that demo firmware needs to report node status:
// digital input, analog input, temperature and battery voltage channels.
//
// No CayenneLPP library appears anywhere in the retrieved reference pack,
// so this encoder is hand-written; see the module's DESIGN.md for the
// justification.
package cayennelpp

import "github.com/pkg/errors"

// Data type identifiers, as defined by the CayenneLPP specification.
const (
	TypeDigitalInput = 0
	TypeAnalogInput  = 2
	TypeTemperature  = 103
	TypeBatteryVolts = 116 // vendor extension channel used by mesh firmware for Vbat
)

// MaxBufferSize matches the buffer size the original firmware's CayenneLPP
// stub defaults to.
const MaxBufferSize = 51

// ErrBufferFull is returned when an Add* call would overflow MaxBufferSize.
var ErrBufferFull = errors.New("cayennelpp: buffer full")

// Encoder accumulates CayenneLPP-encoded channels into a fixed-size buffer.
type Encoder struct {
	buf []byte
	max int
}

// NewEncoder returns an empty Encoder with the given maximum size. A size
// of 0 uses MaxBufferSize.
func NewEncoder(max int) *Encoder {
	if max <= 0 {
		max = MaxBufferSize
	}
	return &Encoder{max: max}
}

// Reset clears any encoded channels.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// Bytes returns the encoded buffer built so far.
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) push(channel, typ byte, payload []byte) error {
	if len(e.buf)+2+len(payload) > e.max {
		return ErrBufferFull
	}
	e.buf = append(e.buf, channel, typ)
	e.buf = append(e.buf, payload...)
	return nil
}

// AddDigitalInput encodes a single-byte digital channel reading.
func (e *Encoder) AddDigitalInput(channel byte, value uint8) error {
	return e.push(channel, TypeDigitalInput, []byte{value})
}

// AddAnalogInput encodes a signed value scaled by 0.01.
func (e *Encoder) AddAnalogInput(channel byte, value float32) error {
	return e.push(channel, TypeAnalogInput, encodeSigned16(int32(value*100)))
}

// AddTemperature encodes a signed Celsius value scaled by 0.1.
func (e *Encoder) AddTemperature(channel byte, celsius float32) error {
	return e.push(channel, TypeTemperature, encodeSigned16(int32(celsius*10)))
}

// AddBatteryVolts encodes a millivolt battery reading scaled by 0.001.
func (e *Encoder) AddBatteryVolts(channel byte, millivolts uint16) error {
	return e.push(channel, TypeBatteryVolts, []byte{byte(millivolts >> 8), byte(millivolts)})
}

func encodeSigned16(v int32) []byte {
	u := uint16(int16(v))
	return []byte{byte(u >> 8), byte(u)}
}
