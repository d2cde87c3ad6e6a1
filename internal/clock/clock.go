// Package clock provides the firmware's monotonic microsecond time base and
// the one-shot/periodic Timer built on top of it (spec §4.1).
package clock

// Clock is a monotonic microsecond counter. now=0 is reserved to mean
// "disabled" by Timer, so a real Clock must never return 0 for long —
// Source implementations nudge a genuine 0 reading to 1.
type Clock interface {
	NowMicros() uint32
}

// Timer is a one-shot delay armed against a Clock. It is polled, never
// blocks, and carries no callback: Elapsed merely reports whether the delay
// has passed, the way every timer in this firmware is consumed.
type Timer struct {
	clock     Clock
	timestamp uint32
	delay     uint32
	enabled   bool
}

// New returns a disabled Timer reading time from clk.
func New(clk Clock) *Timer {
	return &Timer{clock: clk}
}

// Enable arms the timer: elapsed after delayMicros have passed from now.
func (t *Timer) Enable(delayMicros uint32) {
	t.timestamp = t.clock.NowMicros()
	t.delay = delayMicros
	t.enabled = true
}

// Disable clears the armed state; Elapsed returns false until re-armed.
func (t *Timer) Disable() {
	t.enabled = false
}

// Enabled reports whether the timer is currently armed.
func (t *Timer) Enabled() bool {
	return t.enabled
}

// Elapsed reports whether the timer is armed and its delay has passed.
// Non-destructive: repeated calls keep returning true until Disable or
// Enable is called. Subtraction is unsigned so a single clock wraparound
// (now < timestamp) still yields the correct elapsed duration, since delays
// are always bounded far below 2^31 microseconds.
func (t *Timer) Elapsed() bool {
	if !t.enabled {
		return false
	}
	return (t.clock.NowMicros() - t.timestamp) > t.delay
}
