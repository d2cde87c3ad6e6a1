// Package hidreport encodes the two USB HID reports this firmware
// exposes (spec §6): report id 1 (keyboard: 1-byte modifier bitset plus
// a 6-byte keycode array) and report id 2 (mouse: 1-byte buttons plus
// signed x/y/wheel-v/wheel-h). It implements hiddevice.Sink over a raw
// byte-oriented Writer, the shape a real tinyusb/TinyGo HID endpoint (or
// a Linux /dev/hidg gadget node, per the teacher's SendKeyboardReports)
// actually wants.
package hidreport

import (
	"github.com/benhurstein/teclado/internal/action"
)

// Report ids, matching spec §6 ("report id 1"/"report id 2"). Consumer
// Control and Gamepad ids are reserved but never emitted by this core.
const (
	ReportIDKeyboard = 1
	ReportIDMouse    = 2
)

// Writer transmits one fully-encoded HID report, prefixed with its
// report id — the same framing a Linux HID gadget char device
// (/dev/hidg0, /dev/hidg1 in the teacher's SendKeyboardReports) or a
// tinyusb tud_hid_report call expects.
type Writer interface {
	WriteReport(reportID byte, data []byte) error
}

// Sink adapts a Writer to hiddevice.Sink, encoding keyboard/mouse state
// into the wire byte layout before handing it to Writer.
type Sink struct {
	w Writer
}

// New returns a hiddevice.Sink-compatible encoder over w.
func New(w Writer) *Sink {
	return &Sink{w: w}
}

// EncodeKeyboard packs modifiers+keycodes into the 8-byte keyboard
// report body (byte 0 modifiers, byte 1 reserved, bytes 2-7 keycodes).
func EncodeKeyboard(modifiers action.Modifier, keycodes [6]action.Keycode) [8]byte {
	var buf [8]byte
	buf[0] = byte(modifiers)
	for i, k := range keycodes {
		buf[2+i] = byte(k)
	}
	return buf
}

// EncodeMouse packs buttons+motion into the 5-byte mouse report body
// (byte 0 buttons, then x, y, vertical wheel, horizontal wheel — the
// same field order usb_sendMouseReport hands to tud_hid_mouse_report).
func EncodeMouse(buttons action.Button, v, h, wv, wh int8) [5]byte {
	return [5]byte{byte(buttons), byte(h), byte(v), byte(wv), byte(wh)}
}

// SendKeyboardReport implements hiddevice.Sink.
func (s *Sink) SendKeyboardReport(modifiers action.Modifier, keycodes [6]action.Keycode) error {
	buf := EncodeKeyboard(modifiers, keycodes)
	return s.w.WriteReport(ReportIDKeyboard, buf[:])
}

// SendMouseReport implements hiddevice.Sink.
func (s *Sink) SendMouseReport(buttons action.Button, v, h, wv, wh int8) error {
	buf := EncodeMouse(buttons, v, h, wv, wh)
	return s.w.WriteReport(ReportIDMouse, buf[:])
}
