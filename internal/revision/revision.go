// Package revision implements hardware-revision auto-detection (spec
// §4.2): a half doesn't know at compile time whether it's wired with
// analog Hall-effect switches or digital chocs, nor which side of the
// split it is — it figures both out at boot by probing a couple of ADC
// pins for a revision-marker resistor or GPIO jumper. Grounded on
// original_source/pico/teclado.c's readKeyboardVersion and
// localReader_discoverTypeSideAndVersion.
package revision

import (
	"github.com/benhurstein/teclado/internal/key"
	"github.com/benhurstein/teclado/internal/scanner"
)

// Prober abstracts the raw GPIO/ADC probing readKeyboardVersion performs
// before the matrix layout is known, so revision detection stays
// testable off real hardware.
type Prober interface {
	// DetectResistor mirrors detect_resistor(pin1, pin2): true if an ADC
	// reading taken with pin2 driven low vs. high differs by more than
	// the marker-resistor threshold. Only valid for ADC-capable pins
	// (26-29 on the RP2040 build).
	DetectResistor(pin1, pin2 uint8) bool
	// DetectConnection mirrors detect_connection(pin1, pin2): true if
	// driving pin2 low then high is observed on pin1, i.e. a jumper
	// ties the two pins together.
	DetectConnection(pin1, pin2 uint8) bool
}

// Version is the detected PCB revision, matching teclado.c's hw_version
// byte values exactly. The bench build's --hw-version flag takes this
// number.
type Version uint8

const (
	VersionAnalogLeft  Version = 0
	VersionAnalogRight Version = 1
	VersionDigitalRight Version = 2
	VersionDigitalLeft Version = 3
	VersionUnknown     Version = 255
)

// Side is this half's physical position, resolved alongside Version.
type Side int

const (
	NoSide Side = iota
	Left
	Right
)

// Kind is the key-sensing technology this half's PCB uses.
type Kind int

const (
	Analog Kind = iota
	Digital
)

// left/rightSelPins are the 5 analog-mux select-line pin numbers per
// half, matching teclado.c's left_sel_pins/right_sel_pins.
var (
	leftSelPins  = []uint8{14, 15, 3, 1, 0}
	rightSelPins = []uint8{0, 1, 3, 6, 7}
)

// leftAnalogHwIdToSwId etc. map a hardware wire id (scan order: sel pin
// outer loop, ADC channel inner loop) to a logical key.Key ID, -1 where
// a PCB position is unpopulated. Copied verbatim from teclado.c's
// leftAnalogHwIdToSwId / rightAnalogHwIdToSwId / rightDigitalHwIdToSwId /
// leftDigitalHwIdToSwId arrays.
var (
	leftAnalogHwIdToSwId = scanner.HWIDMap{
		17, 14, 9, 4, 16, 13, 8, 3, 15, 12,
		7, 2, -1, 11, 6, 1, -1, 10, 5, 0,
	}
	rightAnalogHwIdToSwId = scanner.HWIDMap{
		-1, 32, 27, 22, -1, 31, 26, 21, 34, 30,
		25, 20, 35, 29, 24, 19, 33, 28, 23, 18,
	}
	rightDigitalHwIdToSwId = scanner.HWIDMap{
		-1, -1, 18, 20, 19, 25, 21, 26, 23, 24, 30, 29, 31, 28, 22, 27,
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, 32, 35, 34, 33, -1, -1,
	}
	leftDigitalHwIdToSwId = scanner.HWIDMap{
		-1, -1, 10, 13, 17, 16, 0, 6, 15, 14, 5, 11, 8, 12, 9, 7,
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, 3, 1, 2, 4, -1, -1,
	}
)

// Detect runs readKeyboardVersion's probe sequence: hardware revisions 2
// and 3 (digital chocs) carry a marker resistor across two ADC-capable
// pins; revisions 0 and 1 (analog Hall effect) instead carry a plain
// GPIO jumper. Order matters — the resistor probes must run first, since
// an analog half's floating pins can spuriously read as "connected".
func Detect(p Prober) Version {
	if p.DetectResistor(28, 29) {
		return VersionDigitalRight
	}
	if p.DetectResistor(28, 26) {
		return VersionDigitalLeft
	}
	if p.DetectConnection(1, 2) {
		return VersionAnalogRight
	}
	if p.DetectConnection(3, 2) {
		return VersionAnalogLeft
	}
	return VersionUnknown
}

// Config is everything a Version resolves to: which physical side this
// half is, which sensing Kind it scans with, and the pieces a Scanner
// needs to actually read it.
type Config struct {
	Side     Side
	Kind     Kind
	SelPins  []uint8 // nil for Digital
	HWIDMap  scanner.HWIDMap
}

// Resolve turns a detected Version into a Config, mirroring
// localReader_discoverTypeSideAndVersion's switch. The zero Config (with
// Side==NoSide) is returned for VersionUnknown, matching the original's
// "default: self->side = noSide" fallthrough.
func Resolve(v Version) Config {
	switch v {
	case VersionAnalogLeft:
		return Config{Side: Left, Kind: Analog, SelPins: leftSelPins, HWIDMap: leftAnalogHwIdToSwId}
	case VersionAnalogRight:
		return Config{Side: Right, Kind: Analog, SelPins: rightSelPins, HWIDMap: rightAnalogHwIdToSwId}
	case VersionDigitalRight:
		return Config{Side: Right, Kind: Digital, HWIDMap: rightDigitalHwIdToSwId}
	case VersionDigitalLeft:
		return Config{Side: Left, Kind: Digital, HWIDMap: leftDigitalHwIdToSwId}
	default:
		return Config{Side: NoSide}
	}
}

// NewScanner builds the Scanner this Config calls for, wired to the
// caller-supplied hardware backing (an ADCReader for Analog revisions, a
// GPIOBank for Digital ones). It's the composition root's job to pick
// which one to pass based on c.Kind.
func (c Config) NewScanner(adc scanner.ADCReader, gpio scanner.GPIOBank) *scanner.Scanner {
	if c.Kind == Analog {
		return scanner.NewAnalog(c.SelPins, c.HWIDMap, adc)
	}
	return scanner.NewDigital(c.HWIDMap, gpio)
}

// KeySide converts a revision Side into key.Side, for composition roots
// that need to hand key.NewDigital/key.NewAnalog a uniform Side type.
func (s Side) KeySide() key.Side {
	switch s {
	case Left:
		return key.Left
	case Right:
		return key.Right
	default:
		return key.NoSide
	}
}
