// Package key implements the per-key filtering and debouncing described in
// spec §3 (Key data model) and §4.3/§4.4 (analog filtering / digital
// debounce).
package key

import (
	"github.com/benhurstein/teclado/internal/action"
	"github.com/benhurstein/teclado/internal/clock"
)

// Side is the physical half a logical key ID belongs to.
type Side int

const (
	NoSide Side = iota
	Left
	Right
)

// SideOf returns the Side for a logical key ID (0-17 left, 18-35 right).
func SideOf(id int) Side {
	switch {
	case id >= 0 && id <= 17:
		return Left
	case id >= 18 && id <= 35:
		return Right
	default:
		return NoSide
	}
}

// sensitivity is the analog-value delta (on the 0..9 scale) needed to flip
// the press/release edge (spec §4.3).
const sensitivity = 6

// minRequiredRangeDefault is the minimum (max_S-min_S)>>13 raw range before
// an analog key's value is trusted (spec §4.3 "minimum e.g. 80").
const minRequiredRangeDefault = 80

// Key is one of the 36 logical slots. It holds both the analog-only and
// digital-only fields from spec §3; only the fields matching IsAnalog are
// ever written.
type Key struct {
	ID     int
	IsAnalog bool

	Value         int
	Pressed       bool
	EdgeChanged   bool
	ValueChanged  bool
	ReleaseAction action.Action

	// analog-only
	lastRaw       uint16
	filteredS     uint32
	minS          uint32
	maxS          uint32
	hasFiltered   bool
	minRawRange   uint16
	minSinceRelease int
	maxSincePress   int

	// digital-only
	lastStable bool
	rawBool    bool
	ignoring   bool
	debounce   *clock.Timer
}

// NewAnalog returns a key driven by set-and-filter (Hall-effect) sampling.
func NewAnalog(id int) *Key {
	return &Key{
		ID:          id,
		IsAnalog:    true,
		minRawRange: minRequiredRangeDefault,
	}
}

// NewDigital returns a key driven by debounced GPIO sampling.
func NewDigital(id int, clk clock.Clock) *Key {
	return &Key{
		ID:       id,
		debounce: clock.New(clk),
	}
}

// Side returns this key's physical half.
func (k *Key) Side() Side {
	return SideOf(k.ID)
}

// SetMinRawRange overrides the default minimum-trusted-range threshold.
func (k *Key) SetMinRawRange(r uint16) {
	k.minRawRange = r
}

func filterSS(old, new uint32, weight uint) uint32 {
	return old + (new >> weight) - (old >> weight)
}

// SetNewAnalogRaw feeds one raw ADC sample through the min/max-tracking IIR
// filter (spec §4.3) and, once the tracked range is wide enough to trust,
// derives a new 0..9 value with hysteresis.
func (k *Key) SetNewAnalogRaw(raw uint16) {
	k.lastRaw = raw
	k.filterRaw(raw)

	minRaw := k.minS >> 13
	maxRaw := k.maxS >> 13
	if maxRaw < minRaw {
		return
	}
	rawRange := maxRaw - minRaw
	if rawRange < uint32(k.minRawRange) {
		return
	}

	oldVal90 := k.Value * 10
	newVal90 := clampInt(int((int64(raw)-int64(minRaw))*100/int64(rawRange)), 0, 90)
	if absInt(newVal90-oldVal90) > 6 {
		newVal := (newVal90 + 5) / 10
		k.setVal(newVal)
	}
}

func (k *Key) filterRaw(raw uint16) {
	if !k.hasFiltered {
		k.filteredS = uint32(raw) << 13
		k.minS = k.filteredS
		k.maxS = k.filteredS
		k.hasFiltered = true
		return
	}
	k.filteredS = filterSS(k.filteredS, uint32(raw)<<13, 2)

	if k.filteredS < k.minS {
		k.minS = filterSS(k.minS, k.filteredS, 1)
	} else if k.filteredS > k.maxS {
		k.maxS = filterSS(k.maxS, k.filteredS, 1)
	} else {
		dist := (k.maxS - k.minS) / 3
		if (k.filteredS - k.minS) < dist {
			k.minS = filterSS(k.minS, k.filteredS, 13)
		} else if (k.maxS - k.filteredS) < dist {
			k.maxS = filterSS(k.maxS, k.filteredS, 13)
		}
	}
}

// SetNewDigitalRaw feeds one raw GPIO sample through the debounce window
// (spec §4.4) and, when accepted, sets the derived 0/9 value.
func (k *Key) SetNewDigitalRaw(pressed bool) {
	k.rawBool = pressed
	if k.ignoring && k.debounce.Elapsed() {
		k.ignoring = false
	}
	if k.ignoring {
		return
	}
	if pressed == k.lastStable {
		return
	}
	k.lastStable = pressed
	k.debounce.Enable(debouncingDelayMicros)
	k.ignoring = true
	if pressed {
		k.setVal(9)
	} else {
		k.setVal(0)
	}
}

const debouncingDelayMicros = 20 * 1000

// SetRemoteVal applies a 0..9 value decoded off the inter-half link for a
// key mirroring the other half (spec §4.5/comm_task's key_setVal call):
// the sibling half owns the scan, this half only replays the derived
// value through the same press/release hysteresis a locally-scanned key
// would go through.
func (k *Key) SetRemoteVal(val int) {
	k.setVal(val)
}

// setVal records a new 0..9 value and derives the press/release edge event
// using independent min-since-release / max-since-press hysteresis
// (spec §4.3, last paragraph — shared by both analog and digital keys since
// digital keys only ever emit 0 or 9).
func (k *Key) setVal(newVal int) {
	if newVal == k.Value {
		return
	}
	k.Value = newVal
	k.ValueChanged = true

	if k.Pressed {
		if newVal > k.maxSincePress {
			k.maxSincePress = newVal
		}
		if k.maxSincePress-newVal >= sensitivity {
			k.minSinceRelease = newVal
			k.Pressed = false
			k.EdgeChanged = true
		}
	} else {
		if newVal < k.minSinceRelease {
			k.minSinceRelease = newVal
		}
		if newVal-k.minSinceRelease >= sensitivity {
			k.maxSincePress = newVal
			k.Pressed = true
			k.EdgeChanged = true
		}
	}
}

// ConsumeEdge reports and clears EdgeChanged. Callers (the Controller) drain
// edges exactly once per transition.
func (k *Key) ConsumeEdge() bool {
	if !k.EdgeChanged {
		return false
	}
	k.EdgeChanged = false
	return true
}

// ConsumeValueChanged reports and clears ValueChanged. Used by the
// inter-half link sender, which ships one message per changed value.
func (k *Key) ConsumeValueChanged() bool {
	if !k.ValueChanged {
		return false
	}
	k.ValueChanged = false
	return true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
