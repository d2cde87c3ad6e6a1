package key

import (
	"testing"

	"github.com/benhurstein/teclado/internal/clock"
)

func warmUpAnalog(k *Key, raw uint16, n int) {
	for i := 0; i < n; i++ {
		k.SetNewAnalogRaw(raw)
	}
}

func TestAnalogValueConvergesAndStays(t *testing.T) {
	k := NewAnalog(0)
	k.SetMinRawRange(1) // keep the test's synthetic raw values simple

	// establish a range by visiting both extremes, then settle on a steady
	// raw reading and confirm the derived value stabilizes.
	warmUpAnalog(k, 0, 50)
	warmUpAnalog(k, 4000, 50)
	warmUpAnalog(k, 2000, 200)

	v1 := k.Value
	for i := 0; i < 50; i++ {
		k.SetNewAnalogRaw(2000)
		if k.Value != v1 {
			t.Fatalf("value drifted after convergence: %d -> %d", v1, k.Value)
		}
	}
}

func TestAnalogEdgeExclusivity(t *testing.T) {
	k := NewAnalog(1)
	k.SetMinRawRange(1)
	warmUpAnalog(k, 0, 50)
	warmUpAnalog(k, 4000, 50)
	k.ConsumeEdge() // drop the press edge the warm-up itself produced

	presses, releases := 0, 0
	lastPressed := k.Pressed
	for i := 0; i < 60; i++ {
		raw := uint16(0)
		if i%2 == 0 {
			raw = 4000
		}
		k.SetNewAnalogRaw(raw)
		if k.ConsumeEdge() {
			if k.Pressed == lastPressed {
				t.Fatalf("edge fired without a pressed-state flip at iter %d", i)
			}
			if k.Pressed {
				presses++
			} else {
				releases++
			}
			lastPressed = k.Pressed
		}
	}
	if presses == 0 || releases == 0 {
		t.Fatalf("expected alternating press/release edges, got presses=%d releases=%d", presses, releases)
	}
}

func TestDigitalDebounce(t *testing.T) {
	fc := clock.NewFake()
	k := NewDigital(2, fc)

	k.SetNewDigitalRaw(true)
	if !k.Pressed || k.Value != 9 {
		t.Fatalf("expected pressed/9 after first raw press, got pressed=%v val=%d", k.Pressed, k.Value)
	}
	k.ConsumeEdge()

	// bounce within the debounce window must be ignored
	k.SetNewDigitalRaw(false)
	if !k.Pressed {
		t.Fatal("bounce within debounce window should have been ignored")
	}

	fc.AdvanceMillis(21)
	k.SetNewDigitalRaw(false)
	if k.Pressed || k.Value != 0 {
		t.Fatalf("expected released/0 after debounce window passed, got pressed=%v val=%d", k.Pressed, k.Value)
	}
}

func TestSetRemoteValDrivesPressReleaseLikeALocalScan(t *testing.T) {
	k := NewAnalog(30) // a key on the other half, mirrored over the link
	k.SetRemoteVal(9)
	if !k.Pressed || !k.ConsumeEdge() {
		t.Fatal("expected a remote value jump to 9 to register a press edge")
	}
	k.SetRemoteVal(0)
	if k.Pressed || !k.ConsumeEdge() {
		t.Fatal("expected a remote value drop to 0 to register a release edge")
	}
}
