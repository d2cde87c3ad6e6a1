//go:build linux

// Package linuxgpio backs scanner.GPIOBank with a real Linux GPIO
// character device, for running the digital scan path (spec §4.2) on an
// SBC bring-up board instead of the RP2040 target. Grounded on
// u-bmc-u-bmc's pkg/gpio wrapper around github.com/warthog618/go-gpiocdev.
package linuxgpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Bank requests a block of GPIO lines up front and reads them all in one
// gpiocdev.Lines.Values call per scan, matching gpio_get_all's single
// 32-bit snapshot semantics.
type Bank struct {
	lines  *gpiocdev.Lines
	offsets []int
	nbits   int
}

// Open requests chip's lineOffsets as pulled-up inputs. nbits bounds how
// many bits ReadAll packs (scanner.NDigitalHWKeys on the real matrix).
func Open(chip string, lineOffsets []int, nbits int) (*Bank, error) {
	lines, err := gpiocdev.RequestLines(chip, lineOffsets,
		gpiocdev.WithConsumer("teclado"),
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
	)
	if err != nil {
		return nil, fmt.Errorf("linuxgpio: request lines on %s: %w", chip, err)
	}
	return &Bank{lines: lines, offsets: lineOffsets, nbits: nbits}, nil
}

// Close releases the line handles.
func (b *Bank) Close() error {
	return b.lines.Close()
}

// ReadAll packs every requested line's value into bit <offset index>,
// mirroring localReader_readDigitalKeys' gpio_get_all() + bitmask walk.
func (b *Bank) ReadAll() uint32 {
	values := make([]int, len(b.offsets))
	if err := b.lines.Values(values); err != nil {
		// A transient read failure leaves every bit reading high (not
		// pressed); the next successful read self-corrects.
		return ^uint32(0)
	}
	var word uint32
	for i, v := range values {
		if v != 0 {
			word |= 1 << uint(i)
		}
	}
	return word
}
