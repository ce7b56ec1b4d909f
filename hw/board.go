package hw

import "sync/atomic"

// StartupReason mirrors the firmware-facing startup-cause enum. The harness
// only ever reports a normal boot.
type StartupReason uint8

// StartupNormal is the only startup reason the simulator produces.
const StartupNormal StartupReason = 0

// Board is the simulated main board. reboot() and power_off() are request
// flags, not process-level actions: the worker strand observes them and
// yields with the matching reason; the coordinator clears them at the start
// of the next step.
type Board struct {
	batteryMV    atomic.Uint32
	manufacturer string
	reboot       atomic.Bool
	poweroff     atomic.Bool
}

// NewBoard returns a Board with the default 4200mV battery reading.
func NewBoard() *Board {
	b := &Board{manufacturer: "Simulator"}
	b.batteryMV.Store(4200)
	return b
}

// Init clears any pending request flags. Called on reboot; a new Board
// starts with both flags clear.
func (b *Board) Init() {
	b.reboot.Store(false)
	b.poweroff.Store(false)
}

// BatteryMilliVolts returns the configured battery reading.
func (b *Board) BatteryMilliVolts() uint16 { return uint16(b.batteryMV.Load()) }

// SetBatteryMilliVolts lets the coordinator configure the battery reading.
func (b *Board) SetBatteryMilliVolts(mv uint16) { b.batteryMV.Store(uint32(mv)) }

// ManufacturerName returns the simulated manufacturer string.
func (b *Board) ManufacturerName() string { return b.manufacturer }

// Reboot requests a reboot; the worker strand yields with reason Reboot at
// the next check point.
func (b *Board) Reboot() { b.reboot.Store(true) }

// PowerOff requests a power-off; the worker strand yields with reason
// PowerOff at the next check point.
func (b *Board) PowerOff() { b.poweroff.Store(true) }

// StartupReason reports why the (simulated) board last started.
func (b *Board) StartupReason() StartupReason { return StartupNormal }

// RebootRequested reports whether Reboot() was called since the last Init
// or ClearFlags.
func (b *Board) RebootRequested() bool { return b.reboot.Load() }

// PowerOffRequested reports whether PowerOff() was called since the last
// Init or ClearFlags.
func (b *Board) PowerOffRequested() bool { return b.poweroff.Load() }

// ClearFlags resets both request flags. Called by the coordinator at the
// start of every step.
func (b *Board) ClearFlags() {
	b.reboot.Store(false)
	b.poweroff.Store(false)
}
