// Package action defines the tagged action variant that drives every key in
// the layer table (spec §3 "Action"), plus the data tables ("ascii → mod+key"
// and Unicode compose) the Controller needs to actuate them.
package action

// Keycode is a USB HID keyboard usage ID (spec §6).
type Keycode uint8

// Modifier is one bit of the 8-bit HID modifier byte.
type Modifier uint8

const (
	ModLeftCtrl Modifier = 1 << 0
	ModLeftShft Modifier = 1 << 1
	ModLeftAlt  Modifier = 1 << 2
	ModLeftGui  Modifier = 1 << 3
	ModRightCtrl Modifier = 1 << 4
	ModRightShft Modifier = 1 << 5
	ModRightAlt  Modifier = 1 << 6
	ModRightGui  Modifier = 1 << 7
)

// Button is a mouse button bit.
type Button uint8

const (
	ButtonLeft     Button = 1 << 0
	ButtonRight    Button = 1 << 1
	ButtonMiddle   Button = 1 << 2
	ButtonBackward Button = 1 << 3
	ButtonForward  Button = 1 << 4
)

// MouseMove selects which axis/direction a mouse-move action pumps.
type MouseMove int

const (
	MoveUp MouseMove = iota
	MoveDown
	MoveLeft
	MoveRight
	WheelUp
	WheelDown
	WheelLeft
	WheelRight
)

// Command is an internal firmware command (spec §6 "Commands").
type Command int

const (
	CommandReset Command = iota
	CommandWordlock
	CommandUSBSide
)

// LayerID indexes the layer table. NoLayer marks "no lock/base override".
type LayerID int

const NoLayer LayerID = -1

// Kind discriminates the Action union. Dispatch is an exhaustive switch on
// Kind — this is a sum type standing in for the original C tagged union.
type Kind int

const (
	NoOp Kind = iota
	SendKeycode
	SendASCII   // unshifted/shifted pair, e.g. ASC('-','_')
	SendString  // utf-8 string, possibly a single rune
	PressMod
	ReleaseMod
	ChangeLayer
	HoldLayer
	OnceLayer
	LockLayer
	ChangeBaseLayer
	KeyOrMod
	StrOrMod
	KeyOrLayer
	StrOrLayer
	MouseMoveAction
	MouseButton
	RunCommand

	// Release-side variants: never appear in the layer table, only ever
	// recorded as a key's release action or a delayed release action.
	ReleaseKeycode     // release the keycode that was actually pressed
	ReleaseASCII       // release the resolved (unshifted/shifted) ascii char that was pressed
	ReleaseLayerToBase     // hold-layer release: restore current layer to base layer now
	ReleaseOnceLayerToBase // once-layer release: defer a ReleaseLayerToBase to the *next* key release
	ReleaseMouseButton
)

// Action is the tagged variant. Exactly one payload field is meaningful,
// selected by Kind.
type Action struct {
	Kind Kind

	Keycode Keycode

	ASCIIUnshifted byte
	ASCIIShifted   byte

	Str string

	Modifier Modifier

	Layer LayerID

	Move MouseMove

	Button Button

	Command Command
}

// HoldType reports whether this action is dual-role (occupies the tap/hold
// resolver, spec §4.7): it returns the action's own Kind for a dual-role
// action and NoOp for any other. HoldAction gives the hold counterpart.
func (a Action) HoldType() Kind {
	switch a.Kind {
	case KeyOrMod, StrOrMod, KeyOrLayer, StrOrLayer:
		return a.Kind
	default:
		return NoOp
	}
}

// TapAction returns the action to actuate when a dual-role key is resolved
// as a tap. For non-dual-role actions it returns the action unchanged.
func (a Action) TapAction() Action {
	switch a.Kind {
	case KeyOrMod, KeyOrLayer:
		return Action{Kind: SendKeycode, Keycode: a.Keycode}
	case StrOrMod, StrOrLayer:
		return Action{Kind: SendString, Str: a.Str}
	default:
		return a
	}
}

// HoldAction returns the action to actuate when a dual-role key is resolved
// as a hold. For non-dual-role actions it returns the action unchanged,
// mirroring the original's action_holdAction default branch.
func (a Action) HoldAction() Action {
	switch a.Kind {
	case KeyOrMod, StrOrMod:
		return Action{Kind: PressMod, Modifier: a.Modifier}
	case KeyOrLayer, StrOrLayer:
		return Action{Kind: HoldLayer, Layer: a.Layer}
	default:
		return a
	}
}

// IsTypingAction reports whether actuating a produces keyboard character
// output (keycode or ascii) rather than a modifier/layer/mouse/command
// effect. Same-side suppression (spec §4.7) only drops typing actions.
func (a Action) IsTypingAction() bool {
	switch a.Kind {
	case SendKeycode, SendASCII:
		return true
	default:
		return false
	}
}

// Constructors below mirror the original macros (KEY, KOM, ASC, STR, ...)
// so the layer table in internal/layout reads the same shape as the source.

func Key(k Keycode) Action                  { return Action{Kind: SendKeycode, Keycode: k} }
func ASCII(un, sh byte) Action              { return Action{Kind: SendASCII, ASCIIUnshifted: un, ASCIIShifted: sh} }
func Str(s string) Action                   { return Action{Kind: SendString, Str: s} }
func Mod(m Modifier) Action                 { return Action{Kind: PressMod, Modifier: m} }
func ChangeLayerTo(l LayerID) Action        { return Action{Kind: ChangeLayer, Layer: l} }
func LockLayerTo(l LayerID) Action          { return Action{Kind: LockLayer, Layer: l} }
func ChangeBaseLayerTo(l LayerID) Action    { return Action{Kind: ChangeBaseLayer, Layer: l} }
func HoldLayerTo(l LayerID) Action          { return Action{Kind: HoldLayer, Layer: l} }
func OnceLayerTo(l LayerID) Action          { return Action{Kind: OnceLayer, Layer: l} }
func KeyOrModAction(k Keycode, m Modifier) Action {
	return Action{Kind: KeyOrMod, Keycode: k, Modifier: m}
}
func StrOrModAction(s string, m Modifier) Action {
	return Action{Kind: StrOrMod, Str: s, Modifier: m}
}
func KeyOrLayerAction(k Keycode, l LayerID) Action {
	return Action{Kind: KeyOrLayer, Keycode: k, Layer: l}
}
func StrOrLayerAction(s string, l LayerID) Action {
	return Action{Kind: StrOrLayer, Str: s, Layer: l}
}
func MouseMoveTo(m MouseMove) Action { return Action{Kind: MouseMoveAction, Move: m} }
func ButtonAction(b Button) Action   { return Action{Kind: MouseButton, Button: b} }
func Cmd(c Command) Action           { return Action{Kind: RunCommand, Command: c} }

var None = Action{Kind: NoOp}

func ReleaseLayerAction() Action             { return Action{Kind: ReleaseLayerToBase} }
func ReleaseOnceLayerAction() Action         { return Action{Kind: ReleaseOnceLayerToBase} }
func ReleaseButtonAction(b Button) Action    { return Action{Kind: ReleaseMouseButton, Button: b} }
func ReleaseModAction(m Modifier) Action     { return Action{Kind: ReleaseMod, Modifier: m} }
func ReleaseKeycodeAction(k Keycode) Action  { return Action{Kind: ReleaseKeycode, Keycode: k} }
func ReleaseASCIIAction(pressed byte) Action { return Action{Kind: ReleaseASCII, ASCIIUnshifted: pressed} }
