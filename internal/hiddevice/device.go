// Package hiddevice is the USB-facing facade (spec §4.6/§6): it owns the
// HID output queue, the up-to-six keycode slots it drains into, and the
// mouse button state, and gates every outbound report on the half's
// current USB-active status (spec §4.9).
package hiddevice

import (
	"github.com/sirupsen/logrus"

	"github.com/benhurstein/teclado/internal/action"
	"github.com/benhurstein/teclado/internal/hidqueue"
)

// Sink transmits an encoded HID report — backed by a tinyusb/TinyGo USB
// stack on real hardware, or a recording fake in tests.
type Sink interface {
	SendKeyboardReport(modifiers action.Modifier, keycodes [6]action.Keycode) error
	SendMouseReport(buttons action.Button, v, h, wv, wh int8) error
}

// Device is the per-half USB HID endpoint.
type Device struct {
	queue     *hidqueue.Queue
	modifiers action.Modifier
	buttons   action.Button
	active    bool
	sink      Sink
	log       *logrus.Entry
}

// New returns a Device backed by sink. sink may be nil in tests that only
// care about queue/report-state bookkeeping.
func New(sink Sink, log *logrus.Entry) *Device {
	return &Device{queue: hidqueue.New(log), sink: sink, log: log}
}

// SetActive marks whether this half currently owns the USB connection
// (spec §4.9); reports are only ever sent while active.
func (d *Device) SetActive(active bool) {
	d.active = active
}

// Active reports the current USB-active state.
func (d *Device) Active() bool {
	return d.active
}

// PressModifier requests a modifier bit be held.
func (d *Device) PressModifier(m action.Modifier) {
	d.modifiers |= m
	d.queue.PressModifier(m)
}

// ReleaseModifier requests a modifier bit be released.
func (d *Device) ReleaseModifier(m action.Modifier) {
	d.modifiers &^= m
	d.queue.ReleaseModifier(m)
}

// SetModifiers diffs the requested modifier byte against what's currently
// held and queues exactly the releases/presses needed to reach it.
func (d *Device) SetModifiers(newModifiers action.Modifier) {
	if release := d.modifiers &^ newModifiers; release != 0 {
		d.ReleaseModifier(release)
	}
	if press := newModifiers &^ d.modifiers; press != 0 {
		d.PressModifier(press)
	}
}

// PressKeycode queues a keycode press, routing modifier keycodes through
// the modifier path (spec §4.6).
func (d *Device) PressKeycode(k action.Keycode) {
	if action.IsModifierKeycode(k) {
		d.PressModifier(action.KeycodeToModifier(k))
		return
	}
	d.queue.PressKeycode(k)
}

// ReleaseKeycode queues a keycode release, routing modifier keycodes
// through the modifier path.
func (d *Device) ReleaseKeycode(k action.Keycode) {
	if action.IsModifierKeycode(k) {
		d.ReleaseModifier(action.KeycodeToModifier(k))
		return
	}
	d.queue.ReleaseKeycode(k)
}

// Task drains at most one batch from the HID queue and, if a batch was
// drained, transmits a keyboard report. Call once per main-loop
// iteration (spec §5).
func (d *Device) Task() {
	if !d.active || !d.queue.Pending() {
		return
	}
	if d.queue.Drain() {
		d.sendKeyboardReport()
	}
}

func (d *Device) sendKeyboardReport() {
	if !d.active || d.sink == nil {
		return
	}
	if err := d.sink.SendKeyboardReport(d.queue.Modifiers(), d.queue.Keycodes()); err != nil && d.log != nil {
		d.log.WithError(err).Warn("keyboard report send failed")
	}
}

// PressMouseButton sets a mouse button bit and sends an immediate mouse
// report (mouse events bypass the keycode queue entirely, spec §4.8).
func (d *Device) PressMouseButton(b action.Button) {
	d.buttons |= b
	d.sendMouseReport(0, 0, 0, 0)
}

// ReleaseMouseButton clears a mouse button bit and sends an immediate
// mouse report.
func (d *Device) ReleaseMouseButton(b action.Button) {
	d.buttons &^= b
	d.sendMouseReport(0, 0, 0, 0)
}

// MoveMouse sends an immediate mouse report carrying the given relative
// motion/wheel deltas (already resolved to mickeys by the caller).
func (d *Device) MoveMouse(v, h, wv, wh int8) {
	d.sendMouseReport(v, h, wv, wh)
}

func (d *Device) sendMouseReport(v, h, wv, wh int8) {
	if !d.active || d.sink == nil {
		return
	}
	if err := d.sink.SendMouseReport(d.buttons, v, h, wv, wh); err != nil && d.log != nil {
		d.log.WithError(err).Warn("mouse report send failed")
	}
}

// PendingOverflowCount exposes the HID queue's overflow counter for
// diagnostics/metrics.
func (d *Device) PendingOverflowCount() int {
	return d.queue.OverflowCount()
}
