package hidqueue

import (
	"testing"

	"github.com/benhurstein/teclado/internal/action"
)

func TestOverflowDropsAndCounts(t *testing.T) {
	q := New(nil)
	for i := 0; i < Capacity+10; i++ {
		q.PressKeycode(action.KA)
	}
	if q.OverflowCount() != 10 {
		t.Fatalf("expected 10 dropped events, got %d", q.OverflowCount())
	}
}

func TestBatchDrainConsecutivePresses(t *testing.T) {
	q := New(nil)
	q.PressKeycode(action.KA)
	q.PressKeycode(action.KB)
	q.PressKeycode(action.KC)
	q.ReleaseKeycode(action.KA)
	q.ReleaseKeycode(action.KB)

	if !q.Drain() {
		t.Fatal("expected a batch to drain")
	}
	got := q.Keycodes()
	want := [6]action.Keycode{action.KA, action.KB, action.KC}
	if got != want {
		t.Fatalf("press batch: got %v, want %v", got, want)
	}
	if q.Pending() == false {
		t.Fatal("releases should still be pending")
	}

	if !q.Drain() {
		t.Fatal("expected the first release to drain")
	}
	got = q.Keycodes()
	want = [6]action.Keycode{action.KB, action.KC}
	if got != want {
		t.Fatalf("after one release: got %v, want %v", got, want)
	}
	if !q.Pending() {
		t.Fatal("second release should still be pending")
	}

	if !q.Drain() {
		t.Fatal("expected the second release to drain")
	}
	got = q.Keycodes()
	want = [6]action.Keycode{action.KC}
	if got != want {
		t.Fatalf("after two releases: got %v, want %v", got, want)
	}
	if q.Pending() {
		t.Fatal("queue should be empty")
	}
}

func TestSixSlotEvictsOldestOnOverflow(t *testing.T) {
	q := New(nil)
	codes := []action.Keycode{action.KA, action.KB, action.KC, action.KD, action.KE, action.KF, action.KG}
	for _, c := range codes {
		q.PressKeycode(c)
	}
	q.Drain()
	got := q.Keycodes()
	want := [6]action.Keycode{action.KB, action.KC, action.KD, action.KE, action.KF, action.KG}
	if got != want {
		t.Fatalf("expected oldest (KA) evicted, got %v", got)
	}
}

func TestModifierBatchAndRelease(t *testing.T) {
	q := New(nil)
	q.PressModifier(action.ModLeftShft)
	q.PressModifier(action.ModLeftCtrl)
	q.Drain()
	if q.Modifiers() != action.ModLeftShft|action.ModLeftCtrl {
		t.Fatalf("unexpected modifier byte: %#x", q.Modifiers())
	}

	q.ReleaseModifier(action.ModLeftShft)
	q.Drain()
	if q.Modifiers() != action.ModLeftCtrl {
		t.Fatalf("expected only ctrl held, got %#x", q.Modifiers())
	}
}

func TestModifierKeycodeRoutesThroughModifierPath(t *testing.T) {
	q := New(nil)
	q.PressKeycode(action.KLeftShft)
	q.Drain()
	if q.Modifiers() != action.ModLeftShft {
		t.Fatalf("expected shift modifier keycode to set modifier byte, got %#x", q.Modifiers())
	}
	if q.Pending() {
		t.Fatal("modifier keycode should not land in the keycode array/queue")
	}
}

func TestPressThenDifferentKindStopsBatch(t *testing.T) {
	q := New(nil)
	q.PressKeycode(action.KA)
	q.PressModifier(action.ModLeftShft)
	q.Drain()
	got := q.Keycodes()
	want := [6]action.Keycode{action.KA}
	if got != want {
		t.Fatalf("keycode press batch should stop at the modifier press: got %v", got)
	}
	if q.Modifiers() != 0 {
		t.Fatal("modifier press should not have drained yet")
	}
}
