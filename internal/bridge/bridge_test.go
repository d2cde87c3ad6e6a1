package bridge

import (
	"testing"

	a "github.com/benhurstein/teclado/internal/action"
	"github.com/benhurstein/teclado/internal/clock"
	"github.com/benhurstein/teclado/internal/controller"
	"github.com/benhurstein/teclado/internal/hiddevice"
	"github.com/benhurstein/teclado/internal/layout"
)

type discardSink struct{}

func (discardSink) SendKeyboardReport(a.Modifier, [6]a.Keycode) error { return nil }
func (discardSink) SendMouseReport(a.Button, int8, int8, int8, int8) error { return nil }

func newController() *controller.Controller {
	clk := clock.NewFake()
	dev := hiddevice.New(discardSink{}, nil)
	return controller.New(layout.Default, dev, nil, clk, nil)
}

func TestSetCapsLockNoopBeforeRegister(t *testing.T) {
	SetCapsLock(true) // must not panic
}

func TestSetCapsLockForwardsToRegistered(t *testing.T) {
	c := newController()
	Register(c)
	SetCapsLock(true)
	if !c.CapsLocked() {
		t.Fatal("expected caps lock forwarded through the bridge")
	}
}
