// Package controller implements the Controller (spec §4.7/§4.8): the
// tap/hold resolver, the layer/modifier/word-lock/caps-lock/unicode state
// machine, and the mouse-move pump, grounded on
// original_source/pico/teclado.c's struct controller and its methods.
package controller

import (
	"github.com/sirupsen/logrus"

	a "github.com/benhurstein/teclado/internal/action"
	"github.com/benhurstein/teclado/internal/clock"
	"github.com/benhurstein/teclado/internal/hiddevice"
	"github.com/benhurstein/teclado/internal/key"
	"github.com/benhurstein/teclado/internal/layout"
	"github.com/benhurstein/teclado/internal/led"
)

const (
	holdDelayMicros     = 333 * 1000
	lockDelayMicros      = 200 * 1000
	mousePeriodMicros    = 30 * 1000
)

// mouseMove/mouseWheel are the nonlinear per-tilt-value mickey/wheel step
// tables (spec "mouse motion accumulation"), indexed by the key's 0..9
// analog value.
var mouseMove = [10]int{0, 85, 170, 260, 360, 480, 640, 880, 1280, 2000}
var mouseWheel = [10]int{0, 11, 22, 34, 48, 66, 92, 134, 208, 346}

// Hooks lets the composition root observe commands the Controller cannot
// act on by itself — resetting into the bootloader and toggling the
// USB-active role are both owned by the main loop / arbiter.
type Hooks struct {
	OnReset         func()
	OnUSBSideToggle func()
}

// Controller is the per-keyboard-half (or, for the USB-active half, whole
// keyboard) action resolver and layer/modifier state machine.
type Controller struct {
	table layout.Table
	usb   *hiddevice.Device
	led   *led.Indicator
	log   *logrus.Entry
	hooks Hooks

	keysByID [layout.NKeys]*key.Key

	currentLayer  a.LayerID
	baseLayer     a.LayerID
	lockLayer     a.LayerID
	changeToLayer a.LayerID
	changeLayerTimer *clock.Timer

	waitingKeys     keyQueue
	keysBeingHeld   keyQueue
	waitingKeyTimer *clock.Timer
	holdSide        key.Side

	moveMouseTimer                            *clock.Timer
	mousePosV, mousePosH, mousePosWV, mousePosWH int

	delayedReleaseAction a.Action

	modifiers  a.Modifier
	wordLocked bool
	capsLocked bool
}

// New wires a Controller over table, starting on layout.Colemak.
func New(table layout.Table, usb *hiddevice.Device, ledInd *led.Indicator, clk clock.Clock, log *logrus.Entry) *Controller {
	c := &Controller{
		table:            table,
		usb:              usb,
		led:              ledInd,
		log:              log,
		baseLayer:        layout.Colemak,
		lockLayer:        a.NoLayer,
		changeToLayer:    a.NoLayer,
		changeLayerTimer: clock.New(clk),
		waitingKeyTimer:  clock.New(clk),
		moveMouseTimer:   clock.New(clk),
		holdSide:         key.NoSide,
	}
	c.setCurrentLayer(layout.Colemak)
	return c
}

// SetHooks installs the reset / USB-side-toggle callbacks.
func (c *Controller) SetHooks(h Hooks) {
	c.hooks = h
}

// RegisterKey makes k visible to the mouse-move pump, which needs to read
// the analog value of whichever key on the current layer carries a
// mouse-move action.
func (c *Controller) RegisterKey(k *key.Key) {
	if k.ID >= 0 && k.ID < len(c.keysByID) {
		c.keysByID[k.ID] = k
	}
}

// CurrentLayer returns the layer actions are currently resolved against.
func (c *Controller) CurrentLayer() a.LayerID {
	return c.currentLayer
}

// BaseLayer returns the layer restored on hold-layer/once-layer release.
func (c *Controller) BaseLayer() a.LayerID {
	return c.baseLayer
}

// SetCapsLock is invoked when the host reports a caps-lock LED state
// change (spec §4.8); it is never driven by a key action.
func (c *Controller) SetCapsLock(val bool) {
	c.capsLocked = val
	if c.led != nil {
		c.led.SetCapsLock(val)
	}
}

// CapsLocked reports the caps-lock state last reported by SetCapsLock.
func (c *Controller) CapsLocked() bool {
	return c.capsLocked
}

func (c *Controller) setWordLock(val bool) {
	c.wordLocked = val
	if c.led != nil {
		c.led.SetWordLock(val)
	}
}

func (c *Controller) setCurrentLayer(layerID a.LayerID) {
	c.currentLayer = layerID
	if layout.HasMouseMovementAction(c.table, layerID) {
		c.moveMouseTimer.Enable(mousePeriodMicros)
	} else {
		c.moveMouseTimer.Disable()
	}
}

func (c *Controller) setModifiers(newModifiers a.Modifier) {
	c.modifiers = newModifiers
	c.usb.SetModifiers(newModifiers)
}

func (c *Controller) addModifiers(m a.Modifier) {
	c.setModifiers(c.modifiers | m)
}

func (c *Controller) removeModifiers(m a.Modifier) {
	c.setModifiers(c.modifiers &^ m)
}

func (c *Controller) isShifted() bool {
	return c.modifiers&(a.ModLeftShft|a.ModRightShft) != 0
}

func (c *Controller) changeLayer(layerID a.LayerID) {
	if c.lockLayer == a.NoLayer {
		c.setCurrentLayer(layerID)
	}
}

func (c *Controller) lockLayerTo(layerID a.LayerID) {
	if c.lockLayer == layerID {
		c.lockLayer = a.NoLayer
		c.setCurrentLayer(c.baseLayer)
		return
	}
	if c.changeToLayer != layerID {
		c.changeToLayer = layerID
		c.changeLayerTimer.Enable(lockDelayMicros)
	} else {
		c.lockLayer = layerID
		c.setCurrentLayer(layerID)
		c.changeLayerTimer.Disable()
	}
}

func (c *Controller) changeBaseLayer(layerID a.LayerID) {
	if c.changeToLayer != layerID {
		c.changeToLayer = layerID
		c.changeLayerTimer.Enable(lockDelayMicros)
	} else {
		c.baseLayer = layerID
		c.changeLayerTimer.Disable()
	}
}

// pressKey resolves the layer action for k's press, applying same-side
// suppression and the tap/hold split (spec §4.7).
func (c *Controller) pressKey(k *key.Key) {
	act := c.table[c.currentLayer][k.ID]
	if act.Kind == a.MouseMoveAction {
		return
	}
	k.ReleaseAction = a.None
	if k.Side() == c.holdSide {
		if act.IsTypingAction() {
			return
		}
		c.keysBeingHeld.insert(k)
		act = act.HoldAction()
	} else {
		act = act.TapAction()
	}
	c.actuate(act, k)
}

func (c *Controller) releaseKey(k *key.Key) {
	act := k.ReleaseAction
	if c.holdSide != key.NoSide {
		c.keysBeingHeld.remove(k)
		if c.keysBeingHeld.empty() {
			c.holdSide = key.NoSide
		}
	}
	c.actuate(act, k)
	k.ReleaseAction = a.None
}

func (c *Controller) resetWaitingKeyTimeout() {
	if !c.waitingKeys.empty() {
		c.waitingKeyTimer.Enable(holdDelayMicros)
	} else {
		c.waitingKeyTimer.Disable()
	}
}

// KeyPressed feeds one press edge into the tap/hold resolver.
func (c *Controller) KeyPressed(k *key.Key) {
	if c.waitingKeys.empty() {
		act := c.table[c.currentLayer][k.ID]
		if act.HoldType() == a.NoOp {
			c.pressKey(k)
		} else {
			c.waitingKeys.insert(k)
			c.resetWaitingKeyTimeout()
		}
	} else {
		c.waitingKeys.insert(k)
		c.resetWaitingKeyTimeout()
	}
}

func (c *Controller) holdWaitingKeysUntilKey(lastKey *key.Key) {
	if c.waitingKeys.empty() {
		return
	}
	c.holdSide = c.waitingKeys.first().Side()
	for !c.waitingKeys.empty() {
		k := c.waitingKeys.removeFirst()
		c.pressKey(k)
		if k == lastKey {
			break
		}
	}
}

func (c *Controller) tapWaitingKeysUntilKey(lastKey *key.Key) {
	if c.waitingKeys.empty() {
		return
	}
	for !c.waitingKeys.empty() {
		k := c.waitingKeys.removeFirst()
		c.pressKey(k)
		if k == lastKey {
			break
		}
	}
}

// KeyReleased feeds one release edge into the tap/hold resolver.
func (c *Controller) KeyReleased(k *key.Key) {
	delayed := c.delayedReleaseAction
	c.delayedReleaseAction = a.None
	if c.waitingKeys.contains(k) {
		first := c.waitingKeys.first()
		if first == k || first.Side() == k.Side() {
			c.tapWaitingKeysUntilKey(k)
		} else {
			c.holdWaitingKeysUntilKey(k)
		}
		c.resetWaitingKeyTimeout()
	}
	c.releaseKey(k)
	c.actuate(delayed, k)
}

func (c *Controller) pressKeycode(keycode a.Keycode) {
	if a.IsModifierKeycode(keycode) {
		c.addModifiers(a.KeycodeToModifier(keycode))
	} else {
		c.sendPressKeycode(keycode)
	}
}

func (c *Controller) releaseKeycode(keycode a.Keycode) {
	if a.IsModifierKeycode(keycode) {
		c.removeModifiers(a.KeycodeToModifier(keycode))
	} else {
		c.sendReleaseKeycode(keycode)
	}
}

func (c *Controller) sendPressKeycode(keycode a.Keycode) {
	if c.wordLocked && !keycodeInWord(keycode, c.isShifted()) {
		c.setWordLock(false)
	}
	if c.wordLocked && keycodeInWordInvertShift(keycode) {
		c.usb.SetModifiers(c.modifiers ^ (a.ModLeftShft | a.ModRightShft))
	} else {
		c.usb.SetModifiers(c.modifiers)
	}
	c.usb.PressKeycode(keycode)
	c.usb.SetModifiers(c.modifiers)
}

func (c *Controller) sendReleaseKeycode(keycode a.Keycode) {
	c.usb.SetModifiers(c.modifiers)
	c.usb.ReleaseKeycode(keycode)
}

// keycodeInWord mirrors keycode_in_word: which keycodes keep word-lock
// engaged (spec §4.8 "word-lock").
func keycodeInWord(keycode a.Keycode, shifted bool) bool {
	switch {
	case keycode == a.KMinus && shifted:
		return true
	case keycode == a.K0 && !shifted:
		return true
	case keycode >= a.K1 && keycode <= a.K9 && !shifted:
		return true
	case a.IsLetterKeycode(keycode):
		return true
	case keycode == a.KBackspace || keycode == a.KDelete:
		return true
	default:
		return false
	}
}

func keycodeInWordInvertShift(keycode a.Keycode) bool {
	return a.IsLetterKeycode(keycode)
}

func (c *Controller) sendUsbPressAsciiChar(ch byte) {
	mk, ok := a.ASCIIToModKey(ch)
	if !ok {
		return
	}
	mod := (c.modifiers &^ (a.ModLeftShft | a.ModRightShft)) | mk.Mod
	c.usb.SetModifiers(mod)
	c.usb.PressKeycode(mk.Key)
}

func (c *Controller) sendUsbReleaseAsciiChar(ch byte) {
	mk, ok := a.ASCIIToModKey(ch)
	if !ok {
		return
	}
	mod := (c.modifiers &^ (a.ModLeftShft | a.ModRightShft)) | mk.Mod
	c.usb.SetModifiers(mod)
	c.usb.ReleaseKeycode(mk.Key)
}

func (c *Controller) sendUsbHexNibble(h byte) {
	ch := h + '0'
	if ch > '9' {
		ch += 'a' - ('9' + 1)
	}
	c.sendUsbPressAsciiChar(ch)
	c.sendUsbReleaseAsciiChar(ch)
}

func (c *Controller) sendUsbHex(hex uint32) {
	sent := false
	for n := 7; n >= 0; n-- {
		nib := byte(hex>>uint(n*4)) & 0b1111
		if nib != 0 || sent || n == 0 {
			c.sendUsbHexNibble(nib)
			sent = true
		}
	}
}

// sendUsbUnicodeChar types one rune: straight ASCII, a Latin-1 compose
// sequence, or a Ctrl+Shift+U hex escape as a last resort (spec §4.8
// "unicode typing").
func (c *Controller) sendUsbUnicodeChar(uni rune) {
	switch {
	case uni < 128:
		c.sendUsbPressAsciiChar(byte(uni))
		c.sendUsbReleaseAsciiChar(byte(uni))
	default:
		if seq, ok := a.ComposeSequence(uni); ok {
			c.usb.PressKeycode(a.KCompose)
			c.usb.ReleaseKeycode(a.KCompose)
			for i := 0; i < len(seq) && i < 3; i++ {
				c.sendUsbPressAsciiChar(seq[i])
				c.sendUsbReleaseAsciiChar(seq[i])
			}
			return
		}
		c.setModifiers(a.ModRightCtrl | a.ModRightShft)
		c.usb.PressKeycode(a.KU)
		c.usb.ReleaseKeycode(a.KU)
		c.setModifiers(0)
		c.sendUsbHex(uint32(uni))
		c.sendUsbPressAsciiChar('\n')
		c.sendUsbReleaseAsciiChar('\n')
	}
}

// uppercaseForWordLock mirrors unicode_to_upper: a deliberately narrow
// Latin/Latin-1/Latin-Extended-A uppercasing table, kept narrow because
// the compose table above only knows how to type Latin-1.
func uppercaseForWordLock(lower rune) rune {
	switch {
	case lower >= 'a' && lower <= 'z':
		return lower - 0x20
	case lower >= 0xe0 && lower <= 0xfe && lower != 0xf7:
		return lower - 0x20
	case lower == 0xff:
		return 0x178
	case lower >= 0x100 && lower <= 0x137 && lower&1 == 1:
		return lower - 1
	case lower >= 0x139 && lower <= 0x148 && lower&1 == 0:
		return lower - 1
	case lower >= 0x14a && lower <= 0x177 && lower&1 == 1:
		return lower - 1
	case lower >= 0x179 && lower <= 0x17e && lower&1 == 0:
		return lower - 1
	default:
		return lower
	}
}

func (c *Controller) sendUtf8Str(s string) {
	saveModifiers := c.modifiers
	capsLocked := c.capsLocked
	shifted := c.isShifted()
	if capsLocked {
		c.usb.PressKeycode(a.KCapsLock)
		c.usb.ReleaseKeycode(a.KCapsLock)
	}
	for _, r := range s {
		if c.wordLocked && !a.IsWordRune(r) {
			c.setWordLock(false)
		}
		if shifted != capsLocked != c.wordLocked {
			r = uppercaseForWordLock(r)
		}
		c.sendUsbUnicodeChar(r)
	}
	if capsLocked {
		c.usb.PressKeycode(a.KCapsLock)
		c.usb.ReleaseKeycode(a.KCapsLock)
	}
	c.setModifiers(saveModifiers)
}

func (c *Controller) sendPressAsciiChar(ch byte) byte {
	if c.wordLocked && !a.IsWordRune(rune(ch)) {
		c.setWordLock(false)
	}
	if c.wordLocked {
		ch = byte(uppercaseForWordLock(rune(ch)))
	}
	c.sendUsbPressAsciiChar(ch)
	c.usb.SetModifiers(c.modifiers)
	return ch
}

func (c *Controller) sendReleaseAsciiChar(ch byte) {
	c.sendUsbReleaseAsciiChar(ch)
	c.usb.SetModifiers(c.modifiers)
}

func (c *Controller) pressAscii(unshifted, shifted byte) byte {
	ch := unshifted
	if c.isShifted() {
		ch = shifted
	}
	return c.sendPressAsciiChar(ch)
}

func (c *Controller) releaseAscii(pressed byte) {
	c.sendReleaseAsciiChar(pressed)
}

func (c *Controller) pressString(s string) {
	c.sendUtf8Str(s)
}

func (c *Controller) pressModifier(m a.Modifier) {
	c.addModifiers(m)
}

func (c *Controller) releaseModifier(m a.Modifier) {
	c.removeModifiers(m)
}

func (c *Controller) setDelayedReleaseAction(act a.Action) {
	c.delayedReleaseAction = act
}

func (c *Controller) pressMouseButton(b a.Button) {
	c.usb.PressMouseButton(b)
}

func (c *Controller) releaseMouseButton(b a.Button) {
	c.usb.ReleaseMouseButton(b)
}

func (c *Controller) moveMouse(v, h, wv, wh int) {
	c.mousePosV += v
	c.mousePosH += h
	c.mousePosWV += wv
	c.mousePosWH += wh
}

// sendMouseMovement converts the accumulated centi-mickey position into
// whole mickeys, emits one mouse report, and carries the fractional
// residue over to the next tick (spec "fractional residue carry-over").
func (c *Controller) sendMouseMovement() {
	v := c.mousePosV / 100
	h := c.mousePosH / 100
	wv := c.mousePosWV / 100
	wh := c.mousePosWH / 100
	if v != 0 || h != 0 || wv != 0 || wh != 0 {
		c.mousePosV -= v * 100
		c.mousePosH -= h * 100
		c.mousePosWV -= wv * 100
		c.mousePosWH -= wh * 100
		c.usb.MoveMouse(int8(v), int8(h), int8(wv), int8(wh))
	}
}

func (c *Controller) actuateMouseMove(act a.Action, k *key.Key) {
	if k == nil || k.Value == 0 {
		return
	}
	val := k.Value
	var v, h, wv, wh int
	switch act.Move {
	case a.MoveUp:
		v = -mouseMove[val]
	case a.MoveDown:
		v = mouseMove[val]
	case a.MoveRight:
		h = mouseMove[val]
	case a.MoveLeft:
		h = -mouseMove[val]
	case a.WheelUp:
		wv = mouseWheel[val]
	case a.WheelDown:
		wv = -mouseWheel[val]
	case a.WheelRight:
		wh = mouseWheel[val]
	case a.WheelLeft:
		wh = -mouseWheel[val]
	}
	c.moveMouse(v, h, wv, wh)
}

func (c *Controller) timedMoveMouse() {
	for id := 0; id < layout.NKeys; id++ {
		act := c.table[c.currentLayer][id]
		if act.Kind == a.MouseMoveAction {
			c.actuateMouseMove(act, c.keysByID[id])
		}
	}
	c.sendMouseMovement()
	c.moveMouseTimer.Enable(mousePeriodMicros)
}

func (c *Controller) doCommand(cmd a.Command) {
	switch cmd {
	case a.CommandWordlock:
		c.setWordLock(!c.wordLocked)
	case a.CommandReset:
		if c.hooks.OnReset != nil {
			c.hooks.OnReset()
		}
	case a.CommandUSBSide:
		if c.hooks.OnUSBSideToggle != nil {
			c.hooks.OnUSBSideToggle()
		}
	default:
		if c.log != nil {
			c.log.Warnf("%v not implemented", cmd)
		}
	}
}

// actuate is the exhaustive dispatch over Action.Kind, the Go counterpart
// of action_actuate's switch (spec Design Note on tagged unions).
func (c *Controller) actuate(act a.Action, k *key.Key) {
	switch act.Kind {
	case a.NoOp:
	case a.SendKeycode:
		c.pressKeycode(act.Keycode)
		if k != nil {
			k.ReleaseAction = a.ReleaseKeycodeAction(act.Keycode)
		}
	case a.SendASCII:
		pressed := c.pressAscii(act.ASCIIUnshifted, act.ASCIIShifted)
		if k != nil {
			k.ReleaseAction = a.ReleaseASCIIAction(pressed)
		}
	case a.SendString:
		c.pressString(act.Str)
		if k != nil {
			k.ReleaseAction = a.None
		}
	case a.PressMod:
		c.pressModifier(act.Modifier)
		if k != nil {
			k.ReleaseAction = a.ReleaseModAction(act.Modifier)
		}
	case a.ChangeLayer:
		c.changeLayer(act.Layer)
		if k != nil {
			k.ReleaseAction = a.None
		}
	case a.ChangeBaseLayer:
		c.changeBaseLayer(act.Layer)
		if k != nil {
			k.ReleaseAction = a.None
		}
	case a.HoldLayer:
		c.changeLayer(act.Layer)
		if k != nil {
			k.ReleaseAction = a.ReleaseLayerAction()
		}
	case a.OnceLayer:
		c.changeLayer(act.Layer)
		if k != nil {
			k.ReleaseAction = a.ReleaseOnceLayerAction()
		}
	case a.LockLayer:
		c.lockLayerTo(act.Layer)
		if k != nil {
			k.ReleaseAction = a.None
		}
	case a.MouseMoveAction:
		c.actuateMouseMove(act, k)
	case a.MouseButton:
		c.pressMouseButton(act.Button)
		if k != nil {
			k.ReleaseAction = a.ReleaseButtonAction(act.Button)
		}
	case a.RunCommand:
		c.doCommand(act.Command)
		if k != nil {
			k.ReleaseAction = a.None
		}
	case a.ReleaseKeycode:
		c.releaseKeycode(act.Keycode)
	case a.ReleaseASCII:
		c.releaseAscii(act.ASCIIUnshifted)
	case a.ReleaseMod:
		c.releaseModifier(act.Modifier)
	case a.ReleaseLayerToBase:
		c.changeLayer(c.baseLayer)
	case a.ReleaseOnceLayerToBase:
		c.setDelayedReleaseAction(a.ReleaseLayerAction())
	case a.ReleaseMouseButton:
		c.releaseMouseButton(act.Button)
	default:
		if c.log != nil {
			c.log.Warnf("do not know how to actuate action kind %d", act.Kind)
		}
	}
}

// Task advances the layer-lock confirmation timeout, the mouse-move pump,
// and the tap/hold timeout. Call once per main-loop iteration after
// feeding in this tick's key edges (spec §5).
func (c *Controller) Task() {
	if c.changeLayerTimer.Elapsed() {
		c.changeToLayer = a.NoLayer
	}
	if c.moveMouseTimer.Elapsed() {
		c.timedMoveMouse()
	}
	if c.waitingKeyTimer.Elapsed() {
		c.holdWaitingKeysUntilKey(nil)
	}
}
