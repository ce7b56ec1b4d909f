package hw

import (
	"fmt"
	"sync"
)

// Serial is the simulated UART. RX and TX are independent lock-guarded
// byte queues; a third buffer mirrors formatted-print output so a
// coordinator can separate human-readable tracing from protocol-level
// serial traffic.
type Serial struct {
	rxMu sync.Mutex
	rx   []byte

	txMu sync.Mutex
	tx   []byte

	logMu sync.Mutex
	log   []byte
}

// NewSerial returns an empty Serial.
func NewSerial() *Serial { return &Serial{} }

// InjectRX appends bytes to the RX queue. Safe to call concurrently with
// the firmware strand draining Available/Read/Peek.
func (s *Serial) InjectRX(data []byte) {
	s.rxMu.Lock()
	defer s.rxMu.Unlock()
	s.rx = append(s.rx, data...)
}

// Available returns the number of unread RX bytes.
func (s *Serial) Available() int {
	s.rxMu.Lock()
	defer s.rxMu.Unlock()
	return len(s.rx)
}

// ReadByte pops the next RX byte, FIFO.
func (s *Serial) ReadByte() (byte, bool) {
	s.rxMu.Lock()
	defer s.rxMu.Unlock()
	if len(s.rx) == 0 {
		return 0, false
	}
	b := s.rx[0]
	s.rx = s.rx[1:]
	return b, true
}

// Peek returns the next RX byte without consuming it.
func (s *Serial) Peek() (byte, bool) {
	s.rxMu.Lock()
	defer s.rxMu.Unlock()
	if len(s.rx) == 0 {
		return 0, false
	}
	return s.rx[0], true
}

// TXLen returns the number of bytes currently queued for TX, without
// draining them. Used by the idle detector to tell whether a loop
// iteration produced output.
func (s *Serial) TXLen() int {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return len(s.tx)
}

// Write appends raw bytes to the TX queue, the protocol-level serial
// traffic a coordinator drains via DrainTX.
func (s *Serial) Write(data []byte) int {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.tx = append(s.tx, data...)
	return len(data)
}

// Printf mirrors formatted text into the separate log buffer, kept apart
// from TX so a coordinator can distinguish human-readable tracing from
// protocol bytes.
func (s *Serial) Printf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	s.logMu.Lock()
	defer s.logMu.Unlock()
	s.log = append(s.log, line...)
}

// DrainTX returns and clears the accumulated TX bytes.
func (s *Serial) DrainTX() []byte {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if len(s.tx) == 0 {
		return nil
	}
	out := s.tx
	s.tx = nil
	return out
}

// Reset clears all three buffers. Used by a firmware reboot to discard
// stale UART state without discarding the Serial instance itself.
func (s *Serial) Reset() {
	s.rxMu.Lock()
	s.rx = nil
	s.rxMu.Unlock()

	s.txMu.Lock()
	s.tx = nil
	s.txMu.Unlock()

	s.logMu.Lock()
	s.log = nil
	s.logMu.Unlock()
}

// DrainLog returns and clears the accumulated log bytes.
func (s *Serial) DrainLog() []byte {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	if len(s.log) == 0 {
		return nil
	}
	out := s.log
	s.log = nil
	return out
}
