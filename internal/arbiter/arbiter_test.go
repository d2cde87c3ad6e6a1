package arbiter

import (
	"testing"

	"github.com/benhurstein/teclado/internal/clock"
)

func TestLeftClaimsActiveAfterFallbackTimeout(t *testing.T) {
	clk := clock.NewFake()
	ar := New(Left, clk, nil)
	ar.SetUSBReady(true)
	ar.ReceiveStatus(true, true, false, false) // link up, right half not yet active

	// first tick: toggleUsb was seeded true by New, so it sends status but
	// does not itself claim active (the 3x fallback window hasn't elapsed).
	ar.Tick()

	clk.Advance(commStatusDelayMicros*3 + 1)
	_, snap := ar.Tick()
	if !snap.USBActive {
		t.Fatal("left half should claim USB active once the fallback window elapses")
	}
	if ar.Role() != RoleActive {
		t.Fatalf("expected RoleActive, got %v", ar.Role())
	}
}

func TestOtherSideActiveYieldsPassive(t *testing.T) {
	clk := clock.NewFake()
	ar := New(Right, clk, nil)
	ar.SetUSBReady(true)
	ar.ReceiveStatus(false, true, true, false) // left half is active

	_, snap := ar.Tick()
	if snap.USBActive {
		t.Fatal("this half should not claim active while the other side already owns it")
	}
	if ar.Role() != RolePassive {
		t.Fatalf("expected RolePassive, got %v", ar.Role())
	}
}

func TestUSBSideToggleRelinquishesActive(t *testing.T) {
	clk := clock.NewFake()
	ar := New(Left, clk, nil)
	ar.SetUSBReady(true)
	clk.Advance(commStatusDelayMicros*6 + 1)
	ar.Tick()
	if !ar.USBActive() {
		t.Fatal("precondition: half should be active")
	}

	ar.RequestSideToggle()
	_, snap := ar.Tick()
	if snap.USBActive {
		t.Fatal("toggling the USB side while active should relinquish it")
	}
}

func TestDirectFlipFromActiveToPassive(t *testing.T) {
	clk := clock.NewFake()
	ar := New(Left, clk, nil) // New seeds toggleUsb=true, mirroring hardware_init
	ar.SetUSBReady(true)
	ar.ReceiveStatus(true, true, false, false) // link up, right half not yet active
	clk.Advance(commStatusDelayMicros*3 + 1)
	ar.Tick() // claims RoleActive via the left-side fast fallback
	if ar.Role() != RoleActive {
		t.Fatalf("precondition: expected RoleActive, got %v", ar.Role())
	}

	// the other half reports itself active on the very next tick (both
	// halves claimed simultaneously at boot) -- this must flip Active
	// straight to Passive without an intervening RoleSearching tick.
	ar.ReceiveStatus(true, true, true, false)
	ar.Tick()
	if ar.Role() != RolePassive {
		t.Fatalf("expected a direct Active->Passive flip, got %v", ar.Role())
	}
}

func TestLinkDownStillAllowsSoleFallbackClaim(t *testing.T) {
	clk := clock.NewFake()
	ar := New(Right, clk, nil) // note: only leftSide gets the fast 3x fallback path
	ar.SetUSBReady(true)
	ar.LinkWentDown()

	clk.Advance(commStatusDelayMicros*6 + 1)
	_, snap := ar.Tick()
	if !snap.USBActive {
		t.Fatal("either side should claim active once the slow 6x fallback elapses, link or no link")
	}
}
