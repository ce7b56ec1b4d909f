// Package firmware supplies simulated firmware implementations for
// exercising the simcore harness end to end without depending on any real
// mesh radio stack.
package firmware

import (
	"encoding/hex"

	"github.com/signalsfoundry/mcsim"
	"github.com/signalsfoundry/mcsim/codec/cayennelpp"
)

// CommandNode is a minimal command-interpreter firmware, grounded in the
// companion/repeater command handling: it polls serial RX for
// newline-terminated ASCII commands and drives the board/radio/serial
// substitutes in response. It exercises the TX_STARTED, REBOOT, POWER_OFF
// and IDLE yield reasons, the radio state machine, and the CayenneLPP
// codec. It does not register wake deadlines.
//
// Recognized commands:
//
//	reboot        - request a reboot
//	poweroff      - request a power-off
//	send <hex>    - start a radio TX of the hex-decoded payload
//	advert        - write a CayenneLPP status frame to serial and log
type CommandNode struct {
	rxBuf []byte
}

// Setup logs a startup banner and encodes nothing yet; state accumulates
// as commands arrive.
func (c *CommandNode) Setup(n *simcore.Node) {
	n.Serial().Printf("[boot] node ready\n")
}

// Loop drains serial RX, processes every newline-terminated command it
// finds, and reports any queued radio RX packets.
func (c *CommandNode) Loop(n *simcore.Node) {
	c.drainSerial(n)
	c.reportRadioRX(n)
}

func (c *CommandNode) drainSerial(n *simcore.Node) {
	for {
		b, ok := n.Serial().ReadByte()
		if !ok {
			return
		}
		if b == '\n' || b == '\r' {
			if len(c.rxBuf) > 0 {
				c.handleCommand(n, string(c.rxBuf))
				c.rxBuf = c.rxBuf[:0]
			}
			continue
		}
		c.rxBuf = append(c.rxBuf, b)
	}
}

func (c *CommandNode) handleCommand(n *simcore.Node, line string) {
	switch {
	case line == "reboot":
		n.Board().Reboot()
	case line == "poweroff":
		n.Board().PowerOff()
	case line == "advert":
		c.writeAdvert(n)
	case len(line) > 5 && line[:5] == "send ":
		payload, err := hex.DecodeString(line[5:])
		if err != nil {
			n.Serial().Printf("[cmd] bad hex payload: %v\n", err)
			return
		}
		if err := n.Radio().StartSendRaw(payload); err != nil {
			n.Serial().Printf("[cmd] send failed: %v\n", err)
		}
	default:
		n.Serial().Printf("[cmd] unrecognized: %q\n", line)
	}
}

func (c *CommandNode) writeAdvert(n *simcore.Node) {
	enc := cayennelpp.NewEncoder(cayennelpp.MaxBufferSize)
	if err := enc.AddBatteryVolts(0, n.Board().BatteryMilliVolts()); err != nil {
		n.Serial().Printf("[advert] encode failed: %v\n", err)
		return
	}
	frame := enc.Bytes()
	n.Serial().Write(frame)
	n.Serial().Printf("[advert] %s\n", hex.EncodeToString(frame))
}

func (c *CommandNode) reportRadioRX(n *simcore.Node) {
	for _, pkt := range n.Radio().Poll() {
		n.Serial().Printf("[rx] %d bytes rssi=%.1f snr=%.1f\n", len(pkt.Bytes), pkt.RSSI, pkt.SNR)
	}
}
