// Command roomserver builds a c-shared library exporting the coordinator
// C-ABI (sim_create, sim_step, sim_inject_*, sim_fs_*, ...) for the
// room server firmware flavor. Build with:
//
//	go build -buildmode=c-shared -o libroomserver.so ./cmd/roomserver
package main

/*
#include <stdint.h>
#include <stddef.h>

typedef struct {
	int32_t  reason;
	uint64_t wake_millis;
	const uint8_t* tx_frame;
	size_t         tx_frame_len;
	const uint8_t* log_bytes;
	size_t         log_bytes_len;
	const uint8_t* serial_tx;
	size_t         serial_tx_len;
	const uint8_t* error_message;
	size_t         error_message_len;
} SimStepResult;
*/
import "C"

import (
	"context"
	"unsafe"

	mcsim "github.com/signalsfoundry/mcsim"
	"github.com/signalsfoundry/mcsim/internal/cabi"
)

const nodeType cabi.NodeType = "room_server"

//export sim_create
func sim_create(configBytes *C.uint8_t, configLen C.size_t) C.uintptr_t {
	buf := C.GoBytes(unsafe.Pointer(configBytes), C.int(configLen))
	handle, err := cabi.NewNode(nodeType, buf)
	if err != nil {
		return 0
	}
	return C.uintptr_t(handle)
}

//export sim_destroy
func sim_destroy(node C.uintptr_t) {
	cabi.Delete(uintptr(node))
}

//export sim_step_begin
func sim_step_begin(node C.uintptr_t, simMillis C.uint64_t, simRTCSecs C.uint32_t) {
	n, err := cabi.Lookup(uintptr(node))
	if err != nil {
		return
	}
	_ = n.StepBegin(uint64(simMillis), uint32(simRTCSecs))
}

//export sim_step_wait
func sim_step_wait(node C.uintptr_t) C.SimStepResult {
	n, err := cabi.Lookup(uintptr(node))
	if err != nil {
		return errorResult(err)
	}
	result, err := n.StepWait(context.Background())
	if err != nil {
		return errorResult(err)
	}
	return marshalResult(result)
}

//export sim_step
func sim_step(node C.uintptr_t, simMillis C.uint64_t, simRTCSecs C.uint32_t) C.SimStepResult {
	sim_step_begin(node, simMillis, simRTCSecs)
	return sim_step_wait(node)
}

//export sim_inject_radio_rx
func sim_inject_radio_rx(node C.uintptr_t, data *C.uint8_t, length C.size_t, rssi C.float, snr C.float) {
	n, err := cabi.Lookup(uintptr(node))
	if err != nil {
		return
	}
	n.InjectRadioRX(C.GoBytes(unsafe.Pointer(data), C.int(length)), float32(rssi), float32(snr))
}

//export sim_inject_serial_rx
func sim_inject_serial_rx(node C.uintptr_t, data *C.uint8_t, length C.size_t) {
	n, err := cabi.Lookup(uintptr(node))
	if err != nil {
		return
	}
	n.InjectSerialRX(C.GoBytes(unsafe.Pointer(data), C.int(length)))
}

//export sim_notify_tx_complete
func sim_notify_tx_complete(node C.uintptr_t) {
	n, err := cabi.Lookup(uintptr(node))
	if err != nil {
		return
	}
	n.NotifyTXComplete()
}

//export sim_notify_state_change
func sim_notify_state_change(node C.uintptr_t, stateVersion C.uint32_t) {
	n, err := cabi.Lookup(uintptr(node))
	if err != nil {
		return
	}
	n.NotifyStateChange(uint32(stateVersion))
}

//export sim_get_public_key
func sim_get_public_key(node C.uintptr_t, outKey *C.uint8_t) {
	n, err := cabi.Lookup(uintptr(node))
	if err != nil {
		return
	}
	pk := n.GetPublicKey()
	dst := unsafe.Slice((*byte)(unsafe.Pointer(outKey)), len(pk))
	copy(dst, pk[:])
}

//export sim_fs_write
func sim_fs_write(node C.uintptr_t, path *C.char, data *C.uint8_t, length C.size_t) C.int {
	n, err := cabi.Lookup(uintptr(node))
	if err != nil {
		return -1
	}
	n2 := n.FSWrite(C.GoString(path), C.GoBytes(unsafe.Pointer(data), C.int(length)))
	return C.int(n2)
}

//export sim_fs_read
func sim_fs_read(node C.uintptr_t, path *C.char, out *C.uint8_t, maxLen C.size_t) C.int {
	n, err := cabi.Lookup(uintptr(node))
	if err != nil {
		return -1
	}
	data, ok := n.FSRead(C.GoString(path))
	if !ok {
		return -1
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(out)), int(maxLen))
	return C.int(copy(dst, data))
}

//export sim_fs_exists
func sim_fs_exists(node C.uintptr_t, path *C.char) C.int {
	n, err := cabi.Lookup(uintptr(node))
	if err != nil {
		return 0
	}
	if n.FSExists(C.GoString(path)) {
		return 1
	}
	return 0
}

//export sim_fs_remove
func sim_fs_remove(node C.uintptr_t, path *C.char) C.int {
	n, err := cabi.Lookup(uintptr(node))
	if err != nil {
		return 0
	}
	if n.FSRemove(C.GoString(path)) {
		return 1
	}
	return 0
}

//export sim_reboot
func sim_reboot(node C.uintptr_t, configBytes *C.uint8_t, configLen C.size_t) {
	n, err := cabi.Lookup(uintptr(node))
	if err != nil {
		return
	}
	var cfg mcsim.Config
	buf := C.GoBytes(unsafe.Pointer(configBytes), C.int(configLen))
	if cfg.UnmarshalBinary(buf) != nil {
		return
	}
	_ = n.Reboot(&cfg)
}

//export sim_get_node_type
func sim_get_node_type() *C.char {
	return C.CString(string(nodeType))
}

//export sim_inject_serial_frame
func sim_inject_serial_frame(node C.uintptr_t, data *C.uint8_t, length C.size_t) {
	// Room server drives the byte-oriented UART directly; frame-based
	// serial is not used for this flavor.
	_ = node
	_ = data
	_ = length
}

//export sim_collect_serial_frame
func sim_collect_serial_frame(node C.uintptr_t, out *C.uint8_t, maxLen C.size_t) C.size_t {
	_ = node
	_ = out
	_ = maxLen
	return 0
}

func marshalResult(r mcsim.StepResult) C.SimStepResult {
	out := C.SimStepResult{
		reason:      C.int32_t(r.Reason),
		wake_millis: C.uint64_t(r.WakeMillis),
	}
	if r.TXFrame != nil && len(r.TXFrame.Bytes) > 0 {
		out.tx_frame = (*C.uint8_t)(C.CBytes(r.TXFrame.Bytes))
		out.tx_frame_len = C.size_t(len(r.TXFrame.Bytes))
	}
	if len(r.LogBytes) > 0 {
		out.log_bytes = (*C.uint8_t)(C.CBytes(r.LogBytes))
		out.log_bytes_len = C.size_t(len(r.LogBytes))
	}
	if len(r.SerialTX) > 0 {
		out.serial_tx = (*C.uint8_t)(C.CBytes(r.SerialTX))
		out.serial_tx_len = C.size_t(len(r.SerialTX))
	}
	if r.Reason == mcsim.YieldError && r.ErrorMessage != "" {
		msg := []byte(r.ErrorMessage)
		out.error_message = (*C.uint8_t)(C.CBytes(msg))
		out.error_message_len = C.size_t(len(msg))
	}
	return out
}

// errorResult builds a SimStepResult with reason=ERROR for a coordinator
// call that failed before or during StepWait, e.g. an invalid or
// already-destroyed handle. Unlike every other export, sim_step_wait must
// surface such failures instead of silently no-opping, since its return
// value is the only channel back to the coordinator.
func errorResult(err error) C.SimStepResult {
	return marshalResult(mcsim.StepResult{
		Reason:       mcsim.YieldError,
		ErrorMessage: err.Error(),
	})
}

func main() {}
