package clock

import "github.com/loov/hrtime"

// HRClock is the production Clock, backed by hrtime's high-resolution
// monotonic counter the way the teacher times HID report latency. Both
// composition roots use it, the tinygo build included; there is no
// separate clock backed by the SoC's own microsecond counter.
type HRClock struct {
	start int64 // first NowMicros() reading, subtracted so we start near 0
}

// NewHRClock returns a Clock rooted at the current hrtime reading.
func NewHRClock() *HRClock {
	c := &HRClock{}
	c.start = int64(hrtime.Now())
	return c
}

// NowMicros implements Clock. Never returns 0: the 1-in-2^32 chance of the
// subtraction landing exactly on zero is nudged to 1, mirroring the
// original firmware's time_us_32() guard.
func (c *HRClock) NowMicros() uint32 {
	elapsedNanos := int64(hrtime.Now()) - c.start
	us := uint32(elapsedNanos / 1000)
	if us == 0 {
		return 1
	}
	return us
}
