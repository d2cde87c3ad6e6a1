package scanner

import (
	"testing"

	"github.com/benhurstein/teclado/internal/clock"
	"github.com/benhurstein/teclado/internal/key"
)

type fakeADC struct {
	selected  int
	callOrder int
	readSeq   []uint16
}

func (f *fakeADC) SelectChannel(ch int)            { f.selected = ch }
func (f *fakeADC) SetSelectPin(pin uint8, hi bool) {}
func (f *fakeADC) SettleSelectPin()                {}
func (f *fakeADC) Read() uint16 {
	v := f.readSeq[f.callOrder]
	f.callOrder++
	return v
}

func TestAnalogScanRoutesRawToRegisteredKey(t *testing.T) {
	// two full scans of NSelPins x NAnaPins channels; only care about hwID 0.
	// The first sample only seeds the key's min/max range, so hwID 0 reads
	// 1234 then 4000 to open a range wide enough to derive a value.
	adc := &fakeADC{readSeq: make([]uint16, 2*NSelPins*NAnaPins)}
	adc.readSeq[0] = 1234
	adc.readSeq[NSelPins*NAnaPins] = 4000

	selPins := []uint8{14, 15, 3, 1, 0}
	hwMap := HWIDMap{17, 14, 9, 4, 16, 13, 8, 3, 15, 12, 7, 2, -1, 11, 6, 1, -1, 10, 5, 0}
	s := NewAnalog(selPins, hwMap, adc)

	k := key.NewAnalog(17) // hwID 0 maps to key id 17
	s.RegisterKey(k)
	s.Scan()
	s.Scan()

	if !k.ConsumeValueChanged() {
		t.Fatal("expected hwID 0's raw sample to reach key 17")
	}
}

func TestUnpopulatedHWIDSkipped(t *testing.T) {
	adc := &fakeADC{readSeq: make([]uint16, NSelPins*NAnaPins)}
	hwMap := HWIDMap{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1}
	s := NewAnalog([]uint8{14, 15, 3, 1, 0}, hwMap, adc)
	s.Scan() // should not panic despite no registered keys
}

type fakeGPIO struct{ bits uint32 }

func (f *fakeGPIO) ReadAll() uint32 { return f.bits }

func TestDigitalScanActiveLow(t *testing.T) {
	hwMap := HWIDMap{-1, -1, 18, 20, 19, 25, 21, 26, 23, 24, 30, 29, 31, 28, 22, 27,
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, 32, 35, 34, 33, -1, -1}
	gpio := &fakeGPIO{bits: ^uint32(0)} // all pins high = nothing pressed
	gpio.bits &^= 1 << 2                // drive bit 2 (key 18) low = pressed

	s := NewDigital(hwMap, gpio)
	k := key.NewDigital(18, clock.NewFake())
	s.RegisterKey(k)
	s.Scan()

	if !k.Pressed {
		t.Fatal("expected key 18 to register pressed when its GPIO bit reads low")
	}
}
