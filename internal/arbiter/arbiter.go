// Package arbiter implements the USB-role arbiter (spec §4.9): the two
// halves negotiate which one owns the USB connection, using status
// messages carried by internal/link's StatusKeyID and falling back to a
// side-priority timeout if the link ever goes quiet. Grounded on
// original_source/pico/teclado.c's synchronizeAndDecideUsbSide and its
// `status` globals.
package arbiter

import (
	"context"

	"github.com/qmuntal/stateless"
	"github.com/sirupsen/logrus"

	"github.com/benhurstein/teclado/internal/clock"
)

// Side mirrors key.Side without importing it, to keep this package usable
// standalone in bench tests.
type Side int

const (
	NoSide Side = iota
	Left
	Right
)

// Role is the arbiter's externally visible outcome, driven through a
// stateless.StateMachine so LED/USB-activation side effects happen
// exactly once per transition rather than being re-derived every tick.
type Role string

const (
	RoleSearching Role = "searching" // neither half has claimed USB yet
	RoleActive    Role = "active"    // this half owns the USB connection
	RolePassive   Role = "passive"   // the other half owns it
)

const (
	triggerClaim   = "claim"
	triggerYield   = "yield"
	triggerRelease = "release"
)

// commStatusDelayMicros mirrors link.commStatusDelayMicros (COMM_STATUS_DELAY_MS).
const commStatusDelayMicros = 20 * 1000

// Arbiter owns the half-status flags (spec §4.9) and decides, once per
// main-loop tick, whether this half should be USB-active.
type Arbiter struct {
	clk clock.Clock
	log *logrus.Entry
	sm  *stateless.StateMachine

	mySide Side

	usbReady  bool
	usbActive bool
	toggleUsb bool

	otherSide          Side
	otherSideUsbReady  bool
	otherSideUsbActive bool
	otherSideToggleUsb bool

	commOK bool

	lastActiveMicros uint32
	lastSendMicros   uint32

	// snapshot of usbActive/otherSideUsbActive as of the end of the
	// previous Tick, so role transitions are detected across calls even
	// when ReceiveStatus mutated otherSideUsbActive in between ticks.
	prevActive      bool
	prevOtherActive bool

	onRoleChanged func(Role)
}

// New returns an Arbiter for mySide, starting in RoleSearching.
// hardware_init sets status.toggleUsb=true so the first tick always
// re-evaluates the role from scratch.
func New(mySide Side, clk clock.Clock, log *logrus.Entry) *Arbiter {
	ar := &Arbiter{
		clk:              clk,
		log:              log,
		mySide:           mySide,
		otherSide:        opposite(mySide),
		toggleUsb:        true,
		lastActiveMicros: clk.NowMicros(),
	}
	ar.sm = stateless.NewStateMachine(RoleSearching)
	ar.sm.Configure(RoleSearching).
		Permit(triggerClaim, RoleActive).
		Permit(triggerYield, RolePassive)
	ar.sm.Configure(RoleActive).
		Permit(triggerRelease, RoleSearching).
		Permit(triggerYield, RolePassive).
		OnEntry(func(_ context.Context, _ ...interface{}) error { ar.notify(RoleActive); return nil })
	ar.sm.Configure(RolePassive).
		Permit(triggerRelease, RoleSearching).
		Permit(triggerClaim, RoleActive).
		OnEntry(func(_ context.Context, _ ...interface{}) error { ar.notify(RolePassive); return nil })
	return ar
}

func opposite(s Side) Side {
	switch s {
	case Left:
		return Right
	case Right:
		return Left
	default:
		return NoSide
	}
}

// OnRoleChanged registers a callback fired whenever the resolved role
// changes (wire this to hiddevice.Device.SetActive and led.Indicator).
func (a *Arbiter) OnRoleChanged(f func(Role)) {
	a.onRoleChanged = f
}

func (a *Arbiter) notify(r Role) {
	if a.onRoleChanged != nil {
		a.onRoleChanged(r)
	}
	if a.log != nil {
		a.log.Infof("usb role -> %s", r)
	}
}

// SetUSBReady reports whether this half's USB stack is enumerated
// (tud_ready()).
func (a *Arbiter) SetUSBReady(ready bool) {
	a.usbReady = ready
}

// RequestSideToggle marks this half as wanting to give up (or claim) the
// active role on the next tick — the CommandUSBSide key action.
func (a *Arbiter) RequestSideToggle() {
	a.toggleUsb = true
}

// ReceiveStatus applies a status message decoded off the inter-half link.
func (a *Arbiter) ReceiveStatus(isRight, usbReady, usbActive, toggleUsb bool) {
	if isRight {
		a.otherSide = Right
	} else {
		a.otherSide = Left
	}
	a.otherSideUsbReady = usbReady
	a.otherSideUsbActive = usbActive
	a.otherSideToggleUsb = toggleUsb
	a.commOK = true
}

// LinkWentDown should be called once the inter-half link's receive
// watchdog elapses (spec §4.5's last paragraph feeding into §4.9's
// fallback timeout).
func (a *Arbiter) LinkWentDown() {
	a.commOK = false
}

// USBActive reports whether this half currently owns the USB connection.
func (a *Arbiter) USBActive() bool {
	return a.usbActive
}

// OtherSideUSBActive reports whether the sibling half currently owns it.
func (a *Arbiter) OtherSideUSBActive() bool {
	return a.otherSideUsbActive
}

// StatusSnapshot is the outbound half-status, ready for
// link.EncodeStatus(IsRight, USBReady, USBActive, ToggleUsb).
type StatusSnapshot struct {
	IsRight   bool
	USBReady  bool
	USBActive bool
	ToggleUsb bool
}

func (a *Arbiter) timeoutElapsed(since uint32, delay uint32) bool {
	return a.clk.NowMicros()-since > delay
}

// Tick runs synchronizeAndDecideUsbSide's decision once and reports
// whether a status message should be sent this tick, plus the snapshot
// to encode onto the link.
func (a *Arbiter) Tick() (shouldSend bool, snapshot StatusSnapshot) {
	wasActive := a.prevActive
	wasOtherActive := a.prevOtherActive

	shouldSend = a.timeoutElapsed(a.lastSendMicros, commStatusDelayMicros)

	if a.usbActive && !a.usbReady {
		a.toggleUsb = true
	}
	if a.usbActive && a.toggleUsb {
		a.usbActive = false
	}
	if a.otherSideToggleUsb {
		if a.usbReady {
			a.usbActive = true
		}
		a.otherSideToggleUsb = false
		shouldSend = true
	}
	if a.otherSideUsbActive {
		a.usbActive = false
	}
	if a.toggleUsb {
		shouldSend = true
	}
	if a.usbActive || a.otherSideUsbActive {
		a.lastActiveMicros = a.clk.NowMicros()
	}
	if a.usbReady && !a.usbActive && !a.otherSideUsbActive {
		if a.commOK && a.mySide == Left && a.timeoutElapsed(a.lastActiveMicros, commStatusDelayMicros*3) {
			a.usbActive = true
		}
		if a.timeoutElapsed(a.lastActiveMicros, commStatusDelayMicros*6) {
			a.usbActive = true
		}
		if a.usbActive {
			a.lastActiveMicros = a.clk.NowMicros()
			shouldSend = true
		}
	}

	// comm_sendStatus ships the pre-reset toggleUsb bit, then it's cleared.
	toggleToSend := a.toggleUsb
	a.toggleUsb = false

	if shouldSend {
		a.lastSendMicros = a.clk.NowMicros()
	}

	a.transition(wasActive, wasOtherActive)
	a.prevActive = a.usbActive
	a.prevOtherActive = a.otherSideUsbActive

	return shouldSend, StatusSnapshot{
		IsRight:   a.mySide == Right,
		USBReady:  a.usbReady,
		USBActive: a.usbActive,
		ToggleUsb: toggleToSend,
	}
}

func (a *Arbiter) transition(wasActive, wasOtherActive bool) {
	var err error
	switch {
	case a.usbActive && !wasActive:
		err = a.sm.Fire(triggerClaim)
	case a.otherSideUsbActive && !wasOtherActive:
		err = a.sm.Fire(triggerYield)
	case !a.usbActive && !a.otherSideUsbActive && (wasActive || wasOtherActive):
		err = a.sm.Fire(triggerRelease)
	}
	if err != nil && a.log != nil {
		a.log.Warnf("usb role transition rejected: %v", err)
	}
}

// Role returns the current resolved role from the underlying state machine.
func (a *Arbiter) Role() Role {
	return a.sm.MustState().(Role)
}
