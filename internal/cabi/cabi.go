// Package cabi holds the handle bookkeeping shared by every cmd/<flavor>
// C-ABI binding (companion, repeater, room_server). It has no `import "C"`
// of its own, but its handle table uses runtime/cgo, so building and
// testing it needs cgo enabled. The cmd binaries own the `import "C"`
// boundary and the extern "C" exports, and call into this package to do
// the actual work.
package cabi

import (
	"runtime/cgo"
	"sync"

	"github.com/pkg/errors"

	mcsim "github.com/signalsfoundry/mcsim"
	"github.com/signalsfoundry/mcsim/firmware"
)

// ErrInvalidHandle is returned when a caller passes a handle value that
// was never issued by NewNode, or was already deleted.
var ErrInvalidHandle = errors.New("cabi: invalid node handle")

// registry maps the uintptr value handed across the C boundary back to the
// cgo.Handle needed to recover the *simcore.Node. runtime/cgo.Handle
// already IS a uintptr under the hood, but wrapping it here keeps the
// conversion in one place and lets Delete be idempotent.
var (
	mu  sync.Mutex
	set = make(map[uintptr]cgo.Handle)
)

// NodeType identifies which firmware flavor a binary embeds; each
// cmd/<flavor>/main.go sets this once at init from a constant.
type NodeType string

// NewNode constructs a Node for nodeType from wire-format config bytes and
// registers it, returning the opaque handle value to hand back across the
// C boundary as the SimNodeHandle.
func NewNode(nodeType NodeType, configBytes []byte) (uintptr, error) {
	var cfg mcsim.Config
	if err := cfg.UnmarshalBinary(configBytes); err != nil {
		return 0, errors.Wrap(err, "cabi: decode config")
	}
	n := mcsim.Create(string(nodeType), &cfg, func(*mcsim.Context) mcsim.Firmware {
		return &firmware.CommandNode{}
	})
	h := cgo.NewHandle(n)
	p := uintptr(h)

	mu.Lock()
	set[p] = h
	mu.Unlock()
	return p, nil
}

// Lookup recovers the *simcore.Node registered under handle.
func Lookup(handle uintptr) (*mcsim.Node, error) {
	mu.Lock()
	h, ok := set[handle]
	mu.Unlock()
	if !ok {
		return nil, ErrInvalidHandle
	}
	n, ok := h.Value().(*mcsim.Node)
	if !ok {
		return nil, ErrInvalidHandle
	}
	return n, nil
}

// Delete tears down and forgets handle. Idempotent: deleting an unknown or
// already-deleted handle is a no-op.
func Delete(handle uintptr) {
	mu.Lock()
	h, ok := set[handle]
	if ok {
		delete(set, handle)
	}
	mu.Unlock()
	if !ok {
		return
	}
	if n, ok := h.Value().(*mcsim.Node); ok {
		n.Destroy()
	}
	h.Delete()
}
