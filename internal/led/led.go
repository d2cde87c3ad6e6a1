// Package led maps keyboard status (USB-active, caps-lock, word-lock) to a
// single RGB indicator color (spec "LED state mapping"), grounded on
// original_source/pico/teclado.c's led_updateColor/led_setCapsLock/
// led_setWordLock.
package led

import "time"

// blinkPeriod is the fixed half-second on/off period teclado.c's
// side-not-determined busy loop blinks red at.
const blinkPeriod = 500 * time.Millisecond

// BlinkRedForever never returns: it is the sole fatal path (spec §7
// "side-not-determined at boot"), blinking the indicator red/off at a
// fixed half-second period in a tight loop, mirroring the original's
// busy-wait red blink rather than exiting the process.
func BlinkRedForever(sink Sink) {
	on := false
	for {
		on = !on
		if on {
			sink.SetColor(50, 0, 0)
		} else {
			sink.SetColor(0, 0, 0)
		}
		time.Sleep(blinkPeriod)
	}
}

// Sink drives the physical indicator — a WS2812 on real hardware, or a
// recording fake in tests.
type Sink interface {
	SetColor(r, g, b uint8)
}

// Indicator tracks the state led_updateColor reads and recomputes the
// color on every state change.
type Indicator struct {
	sink Sink

	usbActive          bool
	otherSideUsbActive bool
	capsLock           bool
	wordLock           bool
}

// New returns an Indicator backed by sink.
func New(sink Sink) *Indicator {
	return &Indicator{sink: sink}
}

// SetUSBStatus updates the USB-role bits that gate the "searching for a
// link" red color.
func (i *Indicator) SetUSBStatus(usbActive, otherSideUsbActive bool) {
	i.usbActive = usbActive
	i.otherSideUsbActive = otherSideUsbActive
	i.update()
}

// SetCapsLock updates the caps-lock bit (host-driven, spec §4.8).
func (i *Indicator) SetCapsLock(val bool) {
	i.capsLock = val
	i.update()
}

// SetWordLock updates the word-lock bit (controller-driven, spec §4.8).
func (i *Indicator) SetWordLock(val bool) {
	i.wordLock = val
	i.update()
}

// update recomputes and pushes the color. Priority, matching the
// original exactly: neither half USB-active -> red (searching for
// link); else if this half is USB-active: caps-lock blue, else word-lock
// dim-blue, else dim-green idle. A half that is USB-inactive but whose
// sibling is active shows no color (off).
func (i *Indicator) update() {
	var r, g, b uint8
	switch {
	case !i.usbActive && !i.otherSideUsbActive:
		r = 50
	case i.usbActive:
		switch {
		case i.capsLock:
			b = 10
		case i.wordLock:
			b = 1
		default:
			g = 1
		}
	}
	if i.sink != nil {
		i.sink.SetColor(r, g, b)
	}
}
