package simcore

// Firmware is the interface a simulated node implementation must satisfy.
// Setup runs once, immediately after the worker strand binds its hardware
// substitutes into the strand registry. Loop runs repeatedly inside each
// step's double-loop idle detector; a single Loop call is expected to be
// cheap and non-blocking, exactly like an Arduino-style sketch loop().
//
// Both methods receive the owning Node so firmware can reach its Board,
// Radio, Serial, RNG, filesystem and clocks without going through the
// strand registry. Code called deeper in the stack that isn't handed a
// Node -- mirroring how the original firmware reaches board/radio_driver
// through global instances -- can still recover the same handles with
// strand.Current().
type Firmware interface {
	Setup(n *Node)
	Loop(n *Node)
}
