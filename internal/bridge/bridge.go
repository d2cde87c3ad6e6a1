// Package bridge re-exposes the firmware's one global Controller/USB pair
// (spec Design Note "Global singletons") as a narrow, explicitly
// registered object, instead of letting every package reach for a global
// pointer the way original_source/pico/teclado.c's controller/usb globals
// do. The callers are the composition roots (cmd/teclado,
// cmd/teclado-simulate) and whatever
// host-callback shim needs to reach back into the running firmware (the
// caps-lock LED callback the real USB stack invokes).
package bridge

import "github.com/benhurstein/teclado/internal/controller"

// capsLockSetter is the one callback teclado.c's USB stack fires into the
// controller: tud_hid_set_report_cb forwarding HID LED state.
type capsLockSetter interface {
	SetCapsLock(val bool)
}

var current capsLockSetter

// Register installs the running Controller as the target of host
// callbacks. Call once, from the composition root, after the Controller
// is constructed.
func Register(c *controller.Controller) {
	current = c
}

// SetCapsLock forwards a caps-lock report from the USB host into
// whichever Controller was last Registered. It is a no-op before
// Register is called (e.g. a stray callback during USB enumeration).
func SetCapsLock(val bool) {
	if current == nil {
		return
	}
	current.SetCapsLock(val)
}
