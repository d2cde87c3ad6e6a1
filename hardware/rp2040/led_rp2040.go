//go:build tinygo

// Package rp2040 backs internal/led.Sink with the real WS2812 RGB LED
// wired to the PCB, bit-banged through the RP2040's PIO block the way
// original_source/pico/teclado.c's ws2812 helper does on the SDK side.
// Grounded on other_examples/manifests/amken3d-gopper's use of
// github.com/tinygo-org/pio for PIO-driven peripherals on the same chip.
package rp2040

import (
	"machine"

	"github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"
)

// LED drives a single WS2812 LED over one PIO state machine.
type LED struct {
	ws *piolib.WS2812B
}

// NewLED claims a PIO state machine on pin and returns an internal/led.Sink
// backed by it.
func NewLED(pin machine.Pin) (*LED, error) {
	sm, err := rp2pio.PIO0.ClaimStateMachine()
	if err != nil {
		return nil, err
	}
	ws, err := piolib.NewWS2812B(sm, pin)
	if err != nil {
		return nil, err
	}
	return &LED{ws: ws}, nil
}

// SetColor implements internal/led.Sink, driving the single onboard pixel.
func (l *LED) SetColor(r, g, b uint8) {
	l.ws.PutColor(uint32(g)<<16 | uint32(r)<<8 | uint32(b))
}
