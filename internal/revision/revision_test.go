package revision

import "testing"

type fakeProber struct {
	resistor   map[[2]uint8]bool
	connection map[[2]uint8]bool
}

func (p *fakeProber) DetectResistor(pin1, pin2 uint8) bool {
	return p.resistor[[2]uint8{pin1, pin2}]
}

func (p *fakeProber) DetectConnection(pin1, pin2 uint8) bool {
	return p.connection[[2]uint8{pin1, pin2}]
}

func TestDetectDigitalRight(t *testing.T) {
	p := &fakeProber{resistor: map[[2]uint8]bool{{28, 29}: true}}
	if got := Detect(p); got != VersionDigitalRight {
		t.Fatalf("expected VersionDigitalRight, got %v", got)
	}
}

func TestDetectDigitalLeft(t *testing.T) {
	p := &fakeProber{resistor: map[[2]uint8]bool{{28, 26}: true}}
	if got := Detect(p); got != VersionDigitalLeft {
		t.Fatalf("expected VersionDigitalLeft, got %v", got)
	}
}

func TestDetectAnalogRight(t *testing.T) {
	p := &fakeProber{connection: map[[2]uint8]bool{{1, 2}: true}}
	if got := Detect(p); got != VersionAnalogRight {
		t.Fatalf("expected VersionAnalogRight, got %v", got)
	}
}

func TestDetectAnalogLeft(t *testing.T) {
	p := &fakeProber{connection: map[[2]uint8]bool{{3, 2}: true}}
	if got := Detect(p); got != VersionAnalogLeft {
		t.Fatalf("expected VersionAnalogLeft, got %v", got)
	}
}

func TestDetectUnknown(t *testing.T) {
	p := &fakeProber{}
	if got := Detect(p); got != VersionUnknown {
		t.Fatalf("expected VersionUnknown, got %v", got)
	}
}

func TestResolveUnknownYieldsNoSide(t *testing.T) {
	cfg := Resolve(VersionUnknown)
	if cfg.Side != NoSide {
		t.Fatalf("expected NoSide, got %v", cfg.Side)
	}
}

func TestResolveAnalogLeftWiresSelPinsAndMap(t *testing.T) {
	cfg := Resolve(VersionAnalogLeft)
	if cfg.Side != Left || cfg.Kind != Analog {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.SelPins) != 5 {
		t.Fatalf("expected 5 select pins, got %d", len(cfg.SelPins))
	}
	if len(cfg.HWIDMap) != 20 {
		t.Fatalf("expected 20-entry analog hw map, got %d", len(cfg.HWIDMap))
	}
}

func TestResolveDigitalRightHasNoSelPins(t *testing.T) {
	cfg := Resolve(VersionDigitalRight)
	if cfg.Side != Right || cfg.Kind != Digital {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.SelPins != nil {
		t.Fatal("digital revisions have no select pins")
	}
	if len(cfg.HWIDMap) != 32 {
		t.Fatalf("expected 32-entry digital hw map, got %d", len(cfg.HWIDMap))
	}
}

func TestKeySideConversion(t *testing.T) {
	if Left.KeySide() == Right.KeySide() {
		t.Fatal("Left and Right should map to distinct key.Side values")
	}
}
