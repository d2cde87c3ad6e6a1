// Helpers shared by the bench (main.go) and on-target (main_tinygo.go)
// composition roots.
package main

import (
	"github.com/benhurstein/teclado/internal/arbiter"
	"github.com/benhurstein/teclado/internal/controller"
	"github.com/benhurstein/teclado/internal/key"
)

// dispatchEdges drains every changed key's press/release edge into the
// Controller (main()'s controller_task key-scan loop).
func dispatchEdges(ctrl *controller.Controller, keys []*key.Key) {
	for _, k := range keys {
		if k == nil || !k.ConsumeEdge() {
			continue
		}
		if k.Pressed {
			ctrl.KeyPressed(k)
		} else {
			ctrl.KeyReleased(k)
		}
	}
}

func arbiterSide(s key.Side) arbiter.Side {
	switch s {
	case key.Left:
		return arbiter.Left
	case key.Right:
		return arbiter.Right
	default:
		return arbiter.NoSide
	}
}
