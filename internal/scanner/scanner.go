// Package scanner implements local key scanning (spec §4.2): reading the
// physical analog (Hall-effect) or digital (GPIO) key matrix for whichever
// hardware revision this half was built as, and feeding raw samples into
// the logical internal/key.Key slots. Grounded on
// original_source/pico/teclado.c's LocalReader (localReader_init,
// localReader_readAnalogKeys, localReader_readDigitalKeys).
package scanner

import (
	"github.com/benhurstein/teclado/internal/key"
)

// NSelPins and NAnaPins describe the analog mux: N_SEL_PINS select lines
// each multiplex N_ANA_PINS ADC channels, giving N_SEL_PINS*N_ANA_PINS
// addressable analog switches per half.
const (
	NSelPins         = 5
	NAnaPins         = 4
	NAnalogHWKeys    = NSelPins * NAnaPins
	NDigitalHWKeys   = 32
	rawSettleMicros  = 50
)

// ADCReader abstracts the RP2040 ADC plus the select-pin GPIOs that gate
// which physical switch is currently routed onto a given analog channel.
type ADCReader interface {
	// SelectChannel mirrors adc_select_input.
	SelectChannel(channel int)
	// Read mirrors adc_read: a 12-bit raw sample from the channel last
	// selected.
	Read() uint16
	// SetSelectPin drives one of the mux's select lines high or low.
	SetSelectPin(pin uint8, high bool)
	// SettleSelectPin mirrors sleep_us(250)/sleep_us(50): the mux needs a
	// short settle time after a select line changes before the reading on
	// the other side is trustworthy.
	SettleSelectPin()
}

// GPIOBank abstracts a bank of up to 32 digital GPIO pins read in one
// shot, mirroring gpio_get_all(). Bit i of the returned word is pin i;
// the original firmware wires switches active-low, so a key is pressed
// when its bit reads 0.
type GPIOBank interface {
	ReadAll() uint32
}

// HWIDMap maps a hardware wire id (0..N-1) to a logical key.Key ID, or -1
// if that wire position is unpopulated on this half's PCB.
type HWIDMap []int8

// Scanner drives one half's physical matrix into the logical key.Key set
// registered with it. Exactly one of analog/digital wiring is active for
// a given Scanner, per the hardware revision it was built for (see
// internal/revision).
type Scanner struct {
	analog   bool
	selPins  []uint8
	hwIDToID HWIDMap

	adc  ADCReader
	gpio GPIOBank

	keysByID map[int]*key.Key
}

// NewAnalog returns a Scanner for an analog (Hall-effect) half.
// selPins is this half's 5 select-line pin numbers (spec §4.2's mux
// addressing); hwIDToID is the hardware-wire-id -> logical key-id map for
// this half's PCB revision (see internal/revision).
func NewAnalog(selPins []uint8, hwIDToID HWIDMap, adc ADCReader) *Scanner {
	return &Scanner{
		analog:   true,
		selPins:  selPins,
		hwIDToID: hwIDToID,
		adc:      adc,
		keysByID: make(map[int]*key.Key),
	}
}

// NewDigital returns a Scanner for a digital (debounced GPIO) half.
func NewDigital(hwIDToID HWIDMap, gpio GPIOBank) *Scanner {
	return &Scanner{
		analog:   false,
		hwIDToID: hwIDToID,
		gpio:     gpio,
		keysByID: make(map[int]*key.Key),
	}
}

// RegisterKey associates a logical key.Key with its ID so a raw sample
// decoded off the matrix can be routed to it. Unpopulated wire positions
// (hwIDToID entry -1) have no registered key and are skipped.
func (s *Scanner) RegisterKey(k *key.Key) {
	s.keysByID[k.ID] = k
	if s.analog {
		k.SetMinRawRange(80)
	}
}

// Scan reads the full matrix once and feeds every populated slot's raw
// sample into its registered Key (localReader_readKeys).
func (s *Scanner) Scan() {
	if s.analog {
		s.scanAnalog()
	} else {
		s.scanDigital()
	}
}

func (s *Scanner) scanAnalog() {
	hwID := 0
	for selIdx, pin := range s.selPins {
		_ = selIdx
		s.adc.SetSelectPin(pin, true)
		for ana := 0; ana < NAnaPins; ana++ {
			s.adc.SelectChannel(ana)
			raw := s.adc.Read()
			if k, ok := s.keyForHWID(hwID); ok {
				k.SetNewAnalogRaw(raw)
			}
			hwID++
		}
		s.adc.SetSelectPin(pin, false)
		s.adc.SettleSelectPin()
	}
}

func (s *Scanner) scanDigital() {
	bits := s.gpio.ReadAll()
	for bit := 0; bit < NDigitalHWKeys; bit++ {
		if k, ok := s.keyForHWID(bit); ok {
			// active-low wiring: a 0 bit means the switch is closed.
			k.SetNewDigitalRaw(bits&(1<<uint(bit)) == 0)
		}
	}
}

func (s *Scanner) keyForHWID(hwID int) (*key.Key, bool) {
	if hwID < 0 || hwID >= len(s.hwIDToID) {
		return nil, false
	}
	id := s.hwIDToID[hwID]
	if id < 0 {
		return nil, false
	}
	k, ok := s.keysByID[int(id)]
	return k, ok
}
