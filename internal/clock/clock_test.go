package clock

import "testing"

func TestTimerElapsed(t *testing.T) {
	fc := NewFake()
	tm := New(fc)

	if tm.Elapsed() {
		t.Fatal("disabled timer must never report elapsed")
	}

	tm.Enable(1000)
	if tm.Elapsed() {
		t.Fatal("freshly armed timer must not be elapsed")
	}

	fc.Advance(999)
	if tm.Elapsed() {
		t.Fatal("timer elapsed before its delay passed")
	}

	fc.Advance(2)
	if !tm.Elapsed() {
		t.Fatal("timer should have elapsed")
	}

	// non-destructive
	if !tm.Elapsed() {
		t.Fatal("elapsed should still report true on a second poll")
	}

	tm.Disable()
	if tm.Elapsed() {
		t.Fatal("disabled timer must not report elapsed")
	}
}

func TestTimerWraparound(t *testing.T) {
	fc := NewFake()
	tm := New(fc)

	fc.Set(0xFFFFFFF0)
	tm.Enable(1000)

	// advance past the uint32 wraparound boundary
	fc.Set(0x00000010 + 1001)
	if !tm.Elapsed() {
		t.Fatal("unsigned subtraction should handle the clock wraparound")
	}
}
