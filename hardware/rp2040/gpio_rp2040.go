//go:build tinygo

package rp2040

import "machine"

// GPIOBank backs internal/scanner.GPIOBank with a fixed set of RP2040
// pins configured as pulled-up inputs, mirroring
// localReader_initDigitalKeys's gpio_set_dir/gpio_pull_up calls.
type GPIOBank struct {
	pins []machine.Pin
}

// NewGPIOBank configures pins as pulled-up inputs and returns a bank that
// packs their live state into one word (bit i = pins[i]), matching the
// original's gpio_get_all bit-per-pin layout.
func NewGPIOBank(pins []machine.Pin) *GPIOBank {
	for _, p := range pins {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	return &GPIOBank{pins: pins}
}

// ReadAll implements scanner.GPIOBank.
func (b *GPIOBank) ReadAll() uint32 {
	var word uint32
	for i, p := range b.pins {
		if p.Get() {
			word |= 1 << uint(i)
		}
	}
	return word
}

// Prober backs internal/revision.Prober with real ADC/GPIO probing of the
// revision-marker pins, mirroring teclado.c's detect_resistor/
// detect_connection.
type Prober struct {
	adc *ADC
}

// NewProber wires a Prober over the same ADC used for analog scanning
// (revision probing reuses the ADC channels before the matrix layout is
// known).
func NewProber(adc *ADC) *Prober {
	return &Prober{adc: adc}
}

// DetectResistor mirrors detect_resistor: drive pin2 low then high,
// comparing the ADC reading on pin1 against the marker-resistor
// threshold.
func (p *Prober) DetectResistor(pin1, pin2 uint8) bool {
	p.adc.SelectChannel(int(pin1) - 26) // GPIO26-29 are ADC0-3
	out := machine.Pin(pin2)
	out.Configure(machine.PinConfig{Mode: machine.PinOutput})
	out.Low()
	p.adc.SettleSelectPin()
	low := p.adc.Read()
	out.High()
	p.adc.SettleSelectPin()
	high := p.adc.Read()
	const resistorThreshold = 200
	diff := int(high) - int(low)
	if diff < 0 {
		diff = -diff
	}
	return diff > resistorThreshold
}

// DetectConnection mirrors detect_connection: drive pin2 low then high
// and observe whether pin1 follows, meaning a jumper ties them together.
func (p *Prober) DetectConnection(pin1, pin2 uint8) bool {
	in := machine.Pin(pin1)
	in.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	out := machine.Pin(pin2)
	out.Configure(machine.PinConfig{Mode: machine.PinOutput})

	out.Low()
	p.adc.SettleSelectPin()
	lowFollowed := !in.Get()

	out.High()
	p.adc.SettleSelectPin()
	highFollowed := in.Get()

	return lowFollowed && highFollowed
}
