package simcore

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// PrivateKeySize and PublicKeySize are the fixed identity field widths in
// the wire-stable Config layout.
const (
	PrivateKeySize = 64
	PublicKeySize  = 32
	NodeNameSize   = 32
)

// ConfigWireSize is the exact byte length of Config's MarshalBinary output.
// Coordinator and node library must agree on this layout across the C-ABI.
const ConfigWireSize = PrivateKeySize + PublicKeySize + // keys
	4*5 + // lora_freq, bw, sf, cr, tx_power (float32)
	8 + // initial_millis
	4 + // initial_rtc
	4 + // rng_seed
	NodeNameSize +
	4 + // spin_detection_threshold
	1 + // log_spin_detection
	1 + // log_loop_iterations
	4 // idle_loops_before_yield

// Config is the enumerated set of options a coordinator supplies at
// Create/Reboot time. Its field order defines the wire layout used by
// MarshalBinary/UnmarshalBinary, which must stay stable across the C-ABI
// boundary.
type Config struct {
	PrivateKey [PrivateKeySize]byte
	PublicKey  [PublicKeySize]byte

	LoraFreq    float32
	LoraBw      float32
	LoraSF      float32
	LoraCR      float32
	LoraTxPower float32

	InitialMillis uint64
	InitialRTC    uint32
	RNGSeed       uint32

	NodeName [NodeNameSize]byte

	SpinDetectionThreshold uint32
	LogSpinDetection       bool
	LogLoopIterations      bool
	IdleLoopsBeforeYield   uint32
}

// NodeNameString returns NodeName as a Go string, trimmed at the first NUL.
func (c *Config) NodeNameString() string {
	n := bytes.IndexByte(c.NodeName[:], 0)
	if n < 0 {
		n = len(c.NodeName)
	}
	return string(c.NodeName[:n])
}

// SetNodeName copies name into NodeName, truncating and NUL-terminating
// as needed.
func (c *Config) SetNodeName(name string) {
	c.NodeName = [NodeNameSize]byte{}
	n := copy(c.NodeName[:NodeNameSize-1], name)
	c.NodeName[n] = 0
}

// MarshalBinary encodes Config into its fixed-size wire layout.
func (c *Config) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, ConfigWireSize)
	buf = append(buf, c.PrivateKey[:]...)
	buf = append(buf, c.PublicKey[:]...)
	buf = appendFloat32(buf, c.LoraFreq)
	buf = appendFloat32(buf, c.LoraBw)
	buf = appendFloat32(buf, c.LoraSF)
	buf = appendFloat32(buf, c.LoraCR)
	buf = appendFloat32(buf, c.LoraTxPower)
	buf = binary.LittleEndian.AppendUint64(buf, c.InitialMillis)
	buf = binary.LittleEndian.AppendUint32(buf, c.InitialRTC)
	buf = binary.LittleEndian.AppendUint32(buf, c.RNGSeed)
	buf = append(buf, c.NodeName[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, c.SpinDetectionThreshold)
	buf = append(buf, boolByte(c.LogSpinDetection), boolByte(c.LogLoopIterations))
	buf = binary.LittleEndian.AppendUint32(buf, c.IdleLoopsBeforeYield)
	return buf, nil
}

// UnmarshalBinary decodes Config from a buffer previously produced by
// MarshalBinary.
func (c *Config) UnmarshalBinary(data []byte) error {
	if len(data) != ConfigWireSize {
		return errors.Errorf("simcore: config wire size mismatch: got %d want %d", len(data), ConfigWireSize)
	}
	r := bytes.NewReader(data)
	must(r, c.PrivateKey[:])
	must(r, c.PublicKey[:])
	c.LoraFreq = readFloat32(r)
	c.LoraBw = readFloat32(r)
	c.LoraSF = readFloat32(r)
	c.LoraCR = readFloat32(r)
	c.LoraTxPower = readFloat32(r)
	c.InitialMillis = readUint64(r)
	c.InitialRTC = readUint32(r)
	c.RNGSeed = readUint32(r)
	must(r, c.NodeName[:])
	c.SpinDetectionThreshold = readUint32(r)
	c.LogSpinDetection = readByte(r) != 0
	c.LogLoopIterations = readByte(r) != 0
	c.IdleLoopsBeforeYield = readUint32(r)
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func appendFloat32(buf []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
}

func readFloat32(r *bytes.Reader) float32 {
	return math.Float32frombits(readUint32(r))
}

func readUint32(r *bytes.Reader) uint32 {
	var b [4]byte
	must(r, b[:])
	return binary.LittleEndian.Uint32(b[:])
}

func readUint64(r *bytes.Reader) uint64 {
	var b [8]byte
	must(r, b[:])
	return binary.LittleEndian.Uint64(b[:])
}

func readByte(r *bytes.Reader) byte {
	b, _ := r.ReadByte()
	return b
}

func must(r *bytes.Reader, dst []byte) {
	_, _ = r.Read(dst)
}
