// Package simulate drives the Controller from a real USB keyboard/mouse
// plugged into a Linux dev machine, standing in for one PCB half
// during bring-up and layout iteration before hardware is available. It
// reads raw input events with github.com/gvalkov/golang-evdev (the same
// library the teacher uses to read local input devices) and watches for
// the simulated device disappearing with github.com/jochenvg/go-udev (the
// teacher's disconnect-monitoring dependency), rather than polling.
package simulate

import (
	"context"
	"fmt"

	evdev "github.com/gvalkov/golang-evdev"
	udev "github.com/jochenvg/go-udev"
	"github.com/sirupsen/logrus"
)

// KeyEvent is one logical key transition decoded off the simulated
// device, ready to feed straight into this half's local key.Key set
// (via key.SetNewDigitalRaw — a plugged-in keyboard's switches are
// inherently digital); no scanner.Scanner is involved.
type KeyEvent struct {
	HWID    int // id from the ScancodeMap, after translation
	Pressed bool
}

// ScancodeMap translates the physical keyboard's evdev scancodes into
// ids the composition root uses directly as the index of this half's
// local key (key id modulo 18); no revision.Config.HWIDMap is applied.
type ScancodeMap map[uint16]int

// Source reads one evdev input device and emits KeyEvents.
type Source struct {
	dev     *evdev.InputDevice
	scanmap ScancodeMap
	log     *logrus.Entry
}

// Open grabs devicePath (e.g. "/dev/input/event4") exclusively, the same
// way HandleKeyboard/HandleMouse do in the teacher, so the host OS stops
// also interpreting the simulated half's keystrokes.
func Open(devicePath string, scanmap ScancodeMap, log *logrus.Entry) (*Source, error) {
	dev, err := evdev.Open(devicePath)
	if err != nil {
		return nil, fmt.Errorf("simulate: open %s: %w", devicePath, err)
	}
	if err := dev.Grab(); err != nil {
		return nil, fmt.Errorf("simulate: grab %s: %w", devicePath, err)
	}
	return &Source{dev: dev, scanmap: scanmap, log: log}, nil
}

// Close releases the exclusive grab.
func (s *Source) Close() error {
	return s.dev.Release()
}

// ReadOne blocks for the next key-down/key-up event and reports it
// translated through the ScancodeMap. ok is false for any other evdev
// event type (EV_REL, EV_SYN, ...), which callers should simply ignore.
func (s *Source) ReadOne() (ev KeyEvent, ok bool, err error) {
	raw, err := s.dev.ReadOne()
	if err != nil {
		return KeyEvent{}, false, err
	}
	if raw.Type != evdev.EV_KEY {
		return KeyEvent{}, false, nil
	}
	ke := evdev.NewKeyEvent(raw)
	hwID, known := s.scanmap[ke.Scancode]
	if !known {
		if s.log != nil {
			s.log.Debugf("simulate: unmapped scancode %d", ke.Scancode)
		}
		return KeyEvent{}, false, nil
	}
	return KeyEvent{HWID: hwID, Pressed: ke.State != 0}, true, nil
}

// WatchDisconnect reports on removed whenever a USB input device goes
// away, so the composition root can stop feeding a Source whose evdev
// node just vanished instead of spinning on read errors. It runs until
// ctx is cancelled.
func WatchDisconnect(ctx context.Context, removed chan<- string) error {
	u := udev.Udev{}
	mon := u.NewMonitorFromNetlink("udev")
	if err := mon.FilterAddMatchSubsystem("input"); err != nil {
		return fmt.Errorf("simulate: filter udev monitor: %w", err)
	}
	devCh, err := mon.DeviceChan(ctx)
	if err != nil {
		return fmt.Errorf("simulate: start udev monitor: %w", err)
	}
	go func() {
		for d := range devCh {
			if d.Action() == "remove" {
				select {
				case removed <- d.Syspath():
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return nil
}
