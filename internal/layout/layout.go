// Package layout carries the fixed, build-time layer table (spec §3
// "Layer table"): 36 actions per layer, indexed [layer][key]. It is data,
// not logic — the Controller only ever reads it.
package layout

import (
	a "github.com/benhurstein/teclado/internal/action"
)

// Layer IDs, in the order the original firmware declares them.
const (
	Colemak a.LayerID = iota
	Acc
	Qwerty
	Rat
	Nav
	Num
	Sym
	Fun
	Num2
	layerCount
)

// NKeys is the number of logical key slots per layer (spec §3).
const NKeys = 36

// Table is a [layer][key] matrix of actions.
type Table [][NKeys]a.Action

var (
	key   = a.Key
	asc   = a.ASCII
	str   = a.Str
	mod   = a.Mod
	kom   = a.KeyOrModAction
	som   = a.StrOrModAction
	kol   = a.KeyOrLayerAction
	la1   = a.OnceLayerTo
	lah   = a.HoldLayerTo
	lck   = a.LockLayerTo
	bas   = a.ChangeBaseLayerTo
	mou   = a.MouseMoveTo
	but   = a.ButtonAction
	com   = a.Cmd
	no    = a.None
)

// Default is the concrete 9-layer Colemak-based layout carried over from
// original_source/pico/teclado.c, translated macro-for-macro (KEY->key,
// KOM->kom, KOL->kol with the layer argument moved to the hold side, etc).
var Default = Table{
	Colemak: {
		key(a.KQ), key(a.KW), key(a.KF), key(a.KP), key(a.KB),
		kom(a.KA, a.ModLeftGui), kom(a.KR, a.ModLeftAlt), kom(a.KS, a.ModLeftCtrl), kom(a.KT, a.ModLeftShft), key(a.KG),
		key(a.KZ), kom(a.KX, a.ModRightAlt), key(a.KC), key(a.KD), key(a.KV),
		kol(a.KEsc, Rat), kol(a.KSpace, Nav), kol(a.KTab, Num),
		key(a.KJ), key(a.KL), key(a.KU), key(a.KY), la1(Acc),
		key(a.KM), kom(a.KN, a.ModLeftShft), kom(a.KE, a.ModLeftCtrl), kom(a.KI, a.ModLeftAlt), kom(a.KO, a.ModLeftGui),
		key(a.KK), key(a.KH), key(a.KComma), kom(a.KDot, a.ModRightAlt), key(a.KSlash),
		kol(a.KEnt, Acc), kol(a.KBackspace, Sym), kol(a.KDelete, Fun),
	},
	Acc: {
		asc('\'', '`'), asc('"', '~'), str("«"), str("»"), str("ª"),
		str("á"), str("à"), key(a.KS), kom(a.KT, a.ModLeftShft), key(a.KG),
		str("â"), str("ã"), str("ç"), key(a.KD), key(a.KV),
		kol(a.KEsc, Rat), kol(a.KSpace, Nav), kol(a.KTab, Num),
		str("º"), str("€"), str("ú"), key(a.KY), key(a.KCompose),
		key(a.KM), som("ñ", a.ModLeftShft), str("é"), str("í"), str("ó"),
		key(a.KK), key(a.KH), str("ê"), str("õ"), str("ô"),
		kol(a.KEnt, Num2), kol(a.KBackspace, Sym), kol(a.KDelete, Fun),
	},
	Qwerty: {
		key(a.KQ), key(a.KW), key(a.KE), key(a.KR), key(a.KT),
		kom(a.KA, a.ModLeftGui), kom(a.KS, a.ModLeftAlt), kom(a.KD, a.ModLeftCtrl), kom(a.KF, a.ModLeftShft), key(a.KG),
		key(a.KZ), kom(a.KX, a.ModRightAlt), key(a.KC), key(a.KV), key(a.KB),
		kol(a.KEsc, Rat), kol(a.KSpace, Nav), kol(a.KTab, Num),
		key(a.KY), key(a.KU), key(a.KI), key(a.KO), key(a.KP),
		key(a.KH), kom(a.KJ, a.ModLeftShft), kom(a.KK, a.ModLeftCtrl), kom(a.KL, a.ModLeftAlt), kom(a.KSemicolon, a.ModLeftGui),
		key(a.KN), key(a.KM), key(a.KComma), kom(a.KDot, a.ModRightAlt), key(a.KSlash),
		kol(a.KEnt, Num2), kol(a.KBackspace, Sym), kol(a.KDelete, Fun),
	},
	Rat: {
		com(a.CommandReset), no, bas(Qwerty), bas(Colemak), no,
		mod(a.ModLeftGui), mod(a.ModLeftAlt), mod(a.ModLeftCtrl), mod(a.ModLeftShft), no,
		no, mod(a.ModRightAlt), lck(Fun), lck(Rat), no,
		no, no, no,
		key(a.KVolUp), mou(a.WheelLeft), mou(a.MoveUp), mou(a.WheelRight), mou(a.WheelUp),
		key(a.KVolDown), mou(a.MoveLeft), mou(a.MoveDown), mou(a.MoveRight), mou(a.WheelDown),
		key(a.KMute), no, no, no, no,
		but(a.ButtonRight), but(a.ButtonLeft), but(a.ButtonMiddle),
	},
	Nav: {
		com(a.CommandUSBSide), no, bas(Qwerty), bas(Colemak), no,
		mod(a.ModLeftGui), mod(a.ModLeftAlt), mod(a.ModLeftCtrl), mod(a.ModLeftShft), no,
		no, mod(a.ModRightAlt), lck(Sym), lck(Nav), no,
		no, no, no,
		key(a.KInsert), key(a.KHome), key(a.KUp), key(a.KEnd), key(a.KPageUp),
		com(a.CommandWordlock), key(a.KLeft), key(a.KDown), key(a.KRight), key(a.KPageDown),
		no, no, no, no, no,
		key(a.KEnt), key(a.KBackspace), key(a.KDelete),
	},
	Num: {
		no, no, bas(Qwerty), bas(Colemak), no,
		mod(a.ModLeftGui), mod(a.ModLeftAlt), mod(a.ModLeftCtrl), mod(a.ModLeftShft), no,
		no, mod(a.ModRightAlt), lck(Num2), lck(Num), no,
		no, no, no,
		asc('*', '|'), key(a.K7), key(a.K8), key(a.K9), asc('+', '='),
		asc('/', '\\'), key(a.K4), key(a.K5), key(a.K6), key(a.K0),
		asc('-', '_'), key(a.K1), key(a.K2), key(a.K3), asc('.', ','),
		key(a.KEnt), key(a.KBackspace), key(a.KDelete),
	},
	Sym: {
		asc('\'', '/'), asc('"', '?'), asc('[', '{'), asc(']', '}'), asc('-', '_'),
		asc(';', ':'), asc('*', '^'), asc('(', '<'), asc(')', '>'), asc('=', '+'),
		asc('`', '~'), asc('!', '$'), asc('@', '%'), asc('#', '&'), asc('\\', '|'),
		key(a.KEsc), key(a.KSpace), key(a.KTab),
		no, bas(Colemak), bas(Qwerty), no, com(a.CommandUSBSide),
		no, mod(a.ModLeftShft), mod(a.ModLeftCtrl), mod(a.ModLeftAlt), mod(a.ModLeftGui),
		no, lck(Sym), lck(Nav), mod(a.ModRightAlt), no,
		no, no, no,
	},
	Fun: {
		key(a.KF12), key(a.KF7), key(a.KF8), key(a.KF9), key(a.KPrintScreen),
		key(a.KF11), key(a.KF4), key(a.KF5), key(a.KF6), key(a.KScrollLock),
		key(a.KF10), key(a.KF1), key(a.KF2), key(a.KF3), key(a.KPause),
		key(a.KApp), key(a.KSpace), key(a.KTab),
		no, bas(Colemak), bas(Qwerty), no, no,
		no, mod(a.ModLeftShft), mod(a.ModLeftCtrl), mod(a.ModLeftAlt), mod(a.ModLeftGui),
		no, lck(Fun), lck(Rat), mod(a.ModRightAlt), no,
		no, no, no,
	},
	Num2: {
		key(a.KLBraket), key(a.K7), key(a.K8), key(a.K9), key(a.KRBraket),
		key(a.KSemicolon), key(a.K4), key(a.K5), key(a.K6), key(a.KEqual),
		key(a.KGrave), key(a.K1), key(a.K2), key(a.K3), key(a.KBackslash),
		key(a.KDot), key(a.K0), key(a.KMinus),
		no, bas(Colemak), bas(Qwerty), no, no,
		no, mod(a.ModLeftShft), mod(a.ModLeftCtrl), mod(a.ModLeftAlt), mod(a.ModLeftGui),
		no, lck(Num2), lck(Num), mod(a.ModRightAlt), no,
		no, no, no,
	},
}

// HasMouseMovementAction reports whether layer l contains any mouse-move
// action — the mouse pump (spec §4.8) is only active then.
func HasMouseMovementAction(t Table, l a.LayerID) bool {
	if int(l) < 0 || int(l) >= len(t) {
		return false
	}
	for _, act := range t[l] {
		if act.Kind == a.MouseMoveAction {
			return true
		}
	}
	return false
}
