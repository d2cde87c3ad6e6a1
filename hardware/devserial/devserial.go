//go:build linux

// Package devserial backs internal/link with a real UART, for bench
// testing two firmware halves wired over a USB-serial adapter pair
// instead of the SoC-to-SoC link on the real PCB. Grounded on the
// BAUD_RATE constant in original_source/pico/teclado.c and on
// github.com/tarm/serial's usage in the TinyGo firmware referenced by
// other_examples/manifests/amken3d-gopper/go.mod.
package devserial

import (
	"github.com/tarm/serial"
)

// BaudRate mirrors teclado.c's BAUD_RATE (#define BAUD_RATE 500000).
const BaudRate = 500000

// Open returns an io.ReadWriter over devicePath (e.g. "/dev/ttyACM0")
// configured at the firmware's link baud rate, suitable for
// link.New(rw, ...).
func Open(devicePath string) (*serial.Port, error) {
	return serial.OpenPort(&serial.Config{
		Name: devicePath,
		Baud: BaudRate,
	})
}
