package controller

import (
	"testing"

	a "github.com/benhurstein/teclado/internal/action"
	"github.com/benhurstein/teclado/internal/clock"
	"github.com/benhurstein/teclado/internal/hiddevice"
	"github.com/benhurstein/teclado/internal/key"
	"github.com/benhurstein/teclado/internal/layout"
)

type recordingSink struct {
	keyboardReports []string
	mouseReports    []string
}

func (s *recordingSink) SendKeyboardReport(mods a.Modifier, keycodes [6]a.Keycode) error {
	s.keyboardReports = append(s.keyboardReports, keyboardReportString(mods, keycodes))
	return nil
}

func (s *recordingSink) SendMouseReport(buttons a.Button, v, h, wv, wh int8) error {
	s.mouseReports = append(s.mouseReports, mouseReportString(buttons, v, h, wv, wh))
	return nil
}

func keyboardReportString(mods a.Modifier, keycodes [6]a.Keycode) string {
	return string(rune(mods)) + "/" + string(keycodes[0])
}

func mouseReportString(buttons a.Button, v, h, wv, wh int8) string {
	return string(rune(buttons))
}

func newTestController(t *testing.T) (*Controller, *hiddevice.Device, *recordingSink, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake()
	sink := &recordingSink{}
	dev := hiddevice.New(sink, nil)
	dev.SetActive(true)
	c := New(layout.Default, dev, nil, clk, nil)
	return c, dev, sink, clk
}

func drainAll(dev *hiddevice.Device) {
	for i := 0; i < 20; i++ {
		dev.Task()
	}
}

func TestTapResolvesToKeyOnSameSideQuickRelease(t *testing.T) {
	c, dev, sink, _ := newTestController(t)
	// key 5 on Colemak (left side, id<18) is KOM(K_A, GUI): a dual-role key.
	k := key.NewDigital(5, clock.NewFake())
	c.RegisterKey(k)
	c.KeyPressed(k)
	c.KeyReleased(k)
	drainAll(dev)

	if dev.Active() != true {
		t.Fatal("device should be active")
	}
	want := keyboardReportString(0, [6]a.Keycode{a.KA})
	if len(sink.keyboardReports) == 0 || sink.keyboardReports[0] != want {
		t.Fatalf("expected the tap to press K_A with no modifier first, got %q", sink.keyboardReports)
	}
}

func TestHoldOnOppositeKeyResolvesToHold(t *testing.T) {
	c, _, _, clk := newTestController(t)
	dualRole := key.NewDigital(5, clk) // left side
	otherSide := key.NewDigital(20, clk) // right side typing key
	c.RegisterKey(dualRole)
	c.RegisterKey(otherSide)

	c.KeyPressed(dualRole)
	// press a key on the opposite side before releasing: resolves as hold.
	c.KeyPressed(otherSide)
	c.KeyReleased(otherSide)
	if c.holdSide != key.Left {
		t.Fatalf("dual-role key should be held on the left side, got hold side %v", c.holdSide)
	}
	c.KeyReleased(dualRole)

	if c.holdSide != key.NoSide {
		t.Fatalf("hold side should have been cleared after release, got %v", c.holdSide)
	}
}

func TestHoldTimeoutResolvesWaitingKeyAsHold(t *testing.T) {
	c, _, _, clk := newTestController(t)
	dualRole := key.NewDigital(5, clk)
	c.RegisterKey(dualRole)

	c.KeyPressed(dualRole)
	clk.Advance(holdDelayMicros + 1)
	c.Task()

	if c.waitingKeys.contains(dualRole) {
		t.Fatal("key should have been resolved out of the waiting queue by the hold timeout")
	}
	if !c.keysBeingHeld.contains(dualRole) {
		t.Fatal("hold timeout should resolve the waiting key as a hold")
	}
}

func TestWordLockTypingThenPunctuationClears(t *testing.T) {
	c, dev, _, _ := newTestController(t)
	c.setWordLock(true)
	c.pressString("ab,")
	drainAll(dev)
	if c.wordLocked {
		t.Fatal("word lock should clear once a non-word rune is typed")
	}
}

func TestWordLockUppercasesLetters(t *testing.T) {
	c, dev, _, _ := newTestController(t)
	c.setWordLock(true)
	ch := c.pressAscii('a', 'A')
	drainAll(dev)
	if ch != 'A' {
		t.Fatalf("word lock should force the uppercase variant, got %q", ch)
	}
}

func TestLockLayerRequiresTwoTaps(t *testing.T) {
	c, _, _, clk := newTestController(t)
	c.lockLayerTo(layout.Fun)
	if c.lockLayer != a.NoLayer {
		t.Fatal("first tap should only mark changeToLayer, not lock yet")
	}
	if c.changeToLayer != layout.Fun {
		t.Fatalf("expected changeToLayer=Fun, got %v", c.changeToLayer)
	}
	c.lockLayerTo(layout.Fun)
	if c.lockLayer != layout.Fun {
		t.Fatal("second tap within the window should lock the layer")
	}

	// unlock on a third tap of the same (already-locked) layer
	c.lockLayerTo(layout.Fun)
	if c.lockLayer != a.NoLayer {
		t.Fatal("tapping the locked layer again should unlock it")
	}
	_ = clk
}

func TestLockLayerWindowExpires(t *testing.T) {
	c, _, _, clk := newTestController(t)
	c.lockLayerTo(layout.Fun)
	clk.Advance(lockDelayMicros + 1)
	c.Task()
	if c.changeToLayer != a.NoLayer {
		t.Fatal("changeToLayer should reset once the lock window elapses")
	}
	c.lockLayerTo(layout.Fun)
	if c.lockLayer != a.NoLayer {
		t.Fatal("a tap after the window expired should restart the two-tap sequence, not lock immediately")
	}
}

func TestMouseMovementAccumulatesAndCarriesResidue(t *testing.T) {
	c, dev, sink, clk := newTestController(t)
	k := key.NewAnalog(20) // rat layer: mou(MoveUp) at this slot
	k.Value = 3
	c.RegisterKey(k)
	c.changeLayer(layout.Rat)

	clk.Advance(mousePeriodMicros + 1)
	c.Task()
	drainAll(dev)

	if len(sink.mouseReports) == 0 {
		t.Fatal("expected at least one mouse report once accumulated motion exceeds one mickey")
	}
	// value 3 moves up 260 centi-mickeys: 2 mickeys are sent, -60 carries over.
	if c.mousePosV != -60 {
		t.Fatalf("expected a residue of -60 centi-mickeys, got %d", c.mousePosV)
	}
}

func TestCapsLockFromHostUpdatesState(t *testing.T) {
	c, _, _, _ := newTestController(t)
	c.SetCapsLock(true)
	if !c.capsLocked {
		t.Fatal("SetCapsLock should update controller state")
	}
}
