package layout

import (
	"testing"

	a "github.com/benhurstein/teclado/internal/action"
)

func TestEveryLayerHasNKeysActions(t *testing.T) {
	for id, layer := range Default {
		if len(layer) != NKeys {
			t.Fatalf("layer %d has %d actions, want %d", id, len(layer), NKeys)
		}
	}
}

func TestRatLayerHasMouseMovement(t *testing.T) {
	if !HasMouseMovementAction(Default, Rat) {
		t.Fatal("rat layer should contain mouse-move actions")
	}
	if HasMouseMovementAction(Default, Colemak) {
		t.Fatal("colemak layer should not contain mouse-move actions")
	}
}

func TestColemakHomeRow(t *testing.T) {
	act := Default[Colemak][5] // KOM(K_A, GUI)
	if act.Kind != a.KeyOrMod || act.Keycode != a.KA || act.Modifier != a.ModLeftGui {
		t.Fatalf("unexpected home row action: %+v", act)
	}
}
