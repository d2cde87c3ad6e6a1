//go:build tinygo

// Package rp2040 (continued) backs internal/scanner.ADCReader with the
// RP2040's onboard ADC plus the GPIO select lines the analog mux uses,
// grounded on original_source/pico/teclado.c's adc_select_input /
// adc_read / gpio_put(select_pin, ...) calls in localReader_readAnalogKeys.
package rp2040

import (
	"machine"
	"time"
)

// ADC wires machine.ADC (one per Hall-effect channel) to the 5 GPIO
// select lines gating which physical switch is currently routed onto it.
type ADC struct {
	channels   [4]machine.ADC
	selectPins map[uint8]machine.Pin
	selected   int
}

// NewADC configures channelPins (the 4 ADC-capable input pins shared by
// the mux) as ADC inputs and selectPins as GPIO outputs.
func NewADC(channelPins [4]machine.Pin, selectPins []uint8) *ADC {
	a := &ADC{selectPins: make(map[uint8]machine.Pin, len(selectPins))}
	machine.InitADC()
	for i, p := range channelPins {
		a.channels[i] = machine.ADC{Pin: p}
		a.channels[i].Configure(machine.ADCConfig{})
	}
	for _, raw := range selectPins {
		pin := machine.Pin(raw)
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		a.selectPins[raw] = pin
	}
	return a
}

// SelectChannel implements scanner.ADCReader (adc_select_input).
func (a *ADC) SelectChannel(channel int) {
	a.selected = channel
}

// Read implements scanner.ADCReader (adc_read): the SDK's adc_read returns
// a 12-bit sample; machine.ADC.Get returns a left-shifted 16-bit value, so
// it's shifted back down to match.
func (a *ADC) Read() uint16 {
	return a.channels[a.selected].Get() >> 4
}

// SetSelectPin implements scanner.ADCReader.
func (a *ADC) SetSelectPin(pin uint8, high bool) {
	p, ok := a.selectPins[pin]
	if !ok {
		return
	}
	p.Set(high)
}

// SettleSelectPin implements scanner.ADCReader (sleep_us(250)).
func (a *ADC) SettleSelectPin() {
	time.Sleep(250 * time.Microsecond)
}
