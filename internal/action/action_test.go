package action

import "testing"

func TestKeyOrModTapHold(t *testing.T) {
	a := KeyOrModAction(KA, ModLeftGui)
	tap := a.TapAction()
	if tap.Kind != SendKeycode || tap.Keycode != KA {
		t.Fatalf("tap action wrong: %+v", tap)
	}
	hold := a.HoldAction()
	if hold.Kind != PressMod || hold.Modifier != ModLeftGui {
		t.Fatalf("hold action wrong: %+v", hold)
	}
}

func TestKeyOrLayerTapHold(t *testing.T) {
	a := KeyOrLayerAction(KEsc, 5)
	tap := a.TapAction()
	if tap.Kind != SendKeycode || tap.Keycode != KEsc {
		t.Fatalf("tap action wrong: %+v", tap)
	}
	hold := a.HoldAction()
	if hold.Kind != HoldLayer || hold.Layer != 5 {
		t.Fatalf("hold action wrong: %+v", hold)
	}
}

func TestIsWordRune(t *testing.T) {
	cases := map[rune]bool{
		'a': true, 'Z': true, '5': true, '_': true,
		' ': false, ',': false, '.': false,
		'é': true, // upper != self
	}
	for r, want := range cases {
		if got := IsWordRune(r); got != want {
			t.Errorf("IsWordRune(%q) = %v, want %v", r, got, want)
		}
	}
}

func TestComposeSequence(t *testing.T) {
	seq, ok := ComposeSequence('é')
	if !ok || seq != "'e" {
		t.Fatalf("compose(é) = %q,%v, want 'e,true", seq, ok)
	}
	if _, ok := ComposeSequence('A'); ok {
		t.Fatal("compose table must not cover ASCII range")
	}
}

func TestIsTypingAction(t *testing.T) {
	if !Key(KA).IsTypingAction() {
		t.Fatal("a keycode action must be a typing action")
	}
	if !ASCII('a', 'A').IsTypingAction() {
		t.Fatal("an ascii action must be a typing action")
	}
	if Str("hello").IsTypingAction() {
		t.Fatal("a string action must not be a typing action (teclado.c's action_isTypingAction leaves str_action commented out)")
	}
	if StrOrModAction("hello", ModLeftGui).TapAction().IsTypingAction() {
		t.Fatal("a StrOrMod tap resolves to SendString and must not count as a typing action")
	}
	if Mod(ModLeftShft).IsTypingAction() {
		t.Fatal("a modifier action must not be a typing action")
	}
}

func TestASCIIToModKey(t *testing.T) {
	mk, ok := ASCIIToModKey('A')
	if !ok || mk.Mod != ModLeftShft || mk.Key != KA {
		t.Fatalf("ASCIIToModKey('A') = %+v, %v", mk, ok)
	}
	mk, ok = ASCIIToModKey('a')
	if !ok || mk.Mod != 0 || mk.Key != KA {
		t.Fatalf("ASCIIToModKey('a') = %+v, %v", mk, ok)
	}
}
