// Package hidqueue implements the HID output queue (spec §4.6): an ordered
// queue of keycode/modifier press/release events, drained one batch per USB
// tick into the keyboard report's modifier byte and up-to-six keycode
// array.
package hidqueue

import (
	"github.com/sirupsen/logrus"

	"github.com/benhurstein/teclado/internal/action"
)

// Capacity is the queue's fixed size; overflow is logged and dropped
// (spec §4.6, §7).
const Capacity = 200

// eventKind discriminates the queued event.
type eventKind int

const (
	keycodePress eventKind = iota
	keycodeRelease
	modifierPress
	modifierRelease
)

type event struct {
	kind     eventKind
	keycode  action.Keycode
	modifier action.Modifier
}

// Queue is the ordered HID event queue plus the derived keyboard-report
// state (sent modifier byte and up-to-six active keycode slots).
type Queue struct {
	events []event

	keycodes  [6]action.Keycode
	nKeycodes int

	modifiers action.Modifier

	overflowCount int
	log           *logrus.Entry
}

// New returns an empty Queue.
func New(log *logrus.Entry) *Queue {
	return &Queue{log: log}
}

func (q *Queue) insert(e event) {
	if len(q.events) >= Capacity {
		q.overflowCount++
		if q.log != nil {
			q.log.Warnf("hid queue full, dropping event (overflow count=%d)", q.overflowCount)
		}
		return
	}
	q.events = append(q.events, e)
}

// PressKeycode enqueues a keycode press (or, if keycode names a modifier,
// the equivalent modifier press).
func (q *Queue) PressKeycode(k action.Keycode) {
	if action.IsModifierKeycode(k) {
		q.PressModifier(action.KeycodeToModifier(k))
		return
	}
	q.insert(event{kind: keycodePress, keycode: k})
}

// ReleaseKeycode enqueues a keycode release (or modifier release).
func (q *Queue) ReleaseKeycode(k action.Keycode) {
	if action.IsModifierKeycode(k) {
		q.ReleaseModifier(action.KeycodeToModifier(k))
		return
	}
	q.insert(event{kind: keycodeRelease, keycode: k})
}

// PressModifier enqueues a modifier press.
func (q *Queue) PressModifier(m action.Modifier) {
	q.insert(event{kind: modifierPress, modifier: m})
}

// ReleaseModifier enqueues a modifier release.
func (q *Queue) ReleaseModifier(m action.Modifier) {
	q.insert(event{kind: modifierRelease, modifier: m})
}

func (q *Queue) head() (eventKind, bool) {
	if len(q.events) == 0 {
		return 0, false
	}
	return q.events[0].kind, true
}

func (q *Queue) pop() event {
	e := q.events[0]
	q.events = q.events[1:]
	return e
}

// insertKeycodeSlot appends to the up-to-six-slot array; on overflow the
// oldest slot is evicted (spec §4.6).
func (q *Queue) insertKeycodeSlot(k action.Keycode) {
	if q.nKeycodes >= len(q.keycodes) {
		copy(q.keycodes[:], q.keycodes[1:])
		q.nKeycodes--
	}
	q.keycodes[q.nKeycodes] = k
	q.nKeycodes++
}

// removeKeycodeSlot removes all occurrences of k, compacting the array.
func (q *Queue) removeKeycodeSlot(k action.Keycode) {
	out := 0
	for i := 0; i < q.nKeycodes; i++ {
		if q.keycodes[i] == k {
			continue
		}
		q.keycodes[out] = q.keycodes[i]
		out++
	}
	for i := out; i < q.nKeycodes; i++ {
		q.keycodes[i] = 0
	}
	q.nKeycodes = out
}

// Drain processes at most one batch (spec §4.6): if the head is a press,
// every consecutive press of the same exact kind (keycode vs modifier) is
// drained; if the head is a release, exactly one release is drained.
// Drain reports whether a batch was drained and a report should be
// emitted; it returns true for any non-empty queue, even when the batch
// leaves the report state as it was.
func (q *Queue) Drain() bool {
	kind, ok := q.head()
	if !ok {
		return false
	}
	switch kind {
	case keycodePress:
		for {
			k, ok := q.head()
			if !ok || k != keycodePress {
				break
			}
			q.insertKeycodeSlot(q.pop().keycode)
		}
	case modifierPress:
		for {
			k, ok := q.head()
			if !ok || k != modifierPress {
				break
			}
			q.modifiers |= q.pop().modifier
		}
	case keycodeRelease:
		q.removeKeycodeSlot(q.pop().keycode)
	case modifierRelease:
		q.modifiers &^= q.pop().modifier
	}
	return true
}

// Pending reports whether the queue has events awaiting a drain.
func (q *Queue) Pending() bool {
	return len(q.events) > 0
}

// Modifiers returns the modifier byte as it should appear in the next
// keyboard report.
func (q *Queue) Modifiers() action.Modifier {
	return q.modifiers
}

// Keycodes returns the up-to-six active keycodes as they should appear in
// the next keyboard report.
func (q *Queue) Keycodes() [6]action.Keycode {
	return q.keycodes
}

// OverflowCount is the running count of dropped events, for diagnostics.
func (q *Queue) OverflowCount() int {
	return q.overflowCount
}
