//go:build linux

// Command teclado-simulate is a bench composition root for bring-up and
// layout iteration: it drives one keyboard half's logical key set from a
// real USB keyboard plugged into a Linux dev box, via internal/simulate,
// instead of scanning a real PCB matrix (see cmd/teclado for that). Wiring
// shape otherwise matches cmd/teclado's bench build exactly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/benhurstein/teclado/internal/arbiter"
	"github.com/benhurstein/teclado/internal/bridge"
	"github.com/benhurstein/teclado/internal/clock"
	"github.com/benhurstein/teclado/internal/controller"
	"github.com/benhurstein/teclado/internal/hiddevice"
	"github.com/benhurstein/teclado/internal/hidreport"
	"github.com/benhurstein/teclado/internal/key"
	"github.com/benhurstein/teclado/internal/layout"
	"github.com/benhurstein/teclado/internal/led"
	"github.com/benhurstein/teclado/internal/link"
	"github.com/benhurstein/teclado/internal/simulate"

	"github.com/benhurstein/teclado/hardware/devserial"
)

// consoleLED logs color changes instead of driving a real WS2812 — there
// is no LED on a bench box.
type consoleLED struct{ log *logrus.Entry }

func (c consoleLED) SetColor(r, g, b uint8) {
	if c.log != nil {
		c.log.Debugf("led: r=%d g=%d b=%d", r, g, b)
	}
}

type gadgetWriter struct {
	files map[byte]*os.File
}

func openGadgetWriter(keyboardPath, mousePath string) (*gadgetWriter, error) {
	kb, err := os.OpenFile(keyboardPath, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", keyboardPath, err)
	}
	mouse, err := os.OpenFile(mousePath, os.O_WRONLY, 0)
	if err != nil {
		kb.Close()
		return nil, fmt.Errorf("open %s: %w", mousePath, err)
	}
	return &gadgetWriter{files: map[byte]*os.File{
		hidreport.ReportIDKeyboard: kb,
		hidreport.ReportIDMouse:    mouse,
	}}, nil
}

func (g *gadgetWriter) WriteReport(reportID byte, data []byte) error {
	f, ok := g.files[reportID]
	if !ok {
		return fmt.Errorf("gadgetWriter: no file for report id %d", reportID)
	}
	_, err := f.Write(data)
	return err
}

// parseScancodeMap reads "scancode=hwid,scancode=hwid,..." into a
// simulate.ScancodeMap, e.g. "16=0,17=1,18=2" maps evdev scancodes 16/17/18
// onto this half's local key ids 0/1/2.
func parseScancodeMap(spec string) (simulate.ScancodeMap, error) {
	m := make(simulate.ScancodeMap)
	if spec == "" {
		return m, nil
	}
	for _, pair := range strings.Split(spec, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("bad scancode-map entry %q", pair)
		}
		sc, err := strconv.ParseUint(kv[0], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("bad scancode %q: %w", kv[0], err)
		}
		hwid, err := strconv.Atoi(kv[1])
		if err != nil {
			return nil, fmt.Errorf("bad key id %q: %w", kv[1], err)
		}
		m[uint16(sc)] = hwid
	}
	return m, nil
}

func main() {
	logLevelPtr := flag.String("loglevel", "warn", "log level (panic, fatal, error, warn, info, debug, trace)")
	sideFlag := flag.String("side", "left", "which half this simulated device stands in for (left or right)")
	inputDevice := flag.String("input-device", "/dev/input/event0", "evdev node of the real keyboard standing in for this half's matrix")
	scancodeMapSpec := flag.String("scancode-map", "", "evdev-scancode=local-key-id pairs, e.g. \"16=0,17=1\"; unmapped scancodes are ignored")
	linkDevice := flag.String("link-device", "/dev/ttyACM0", "serial device carrying the inter-half link")
	keyboardGadget := flag.String("hid-keyboard", "/dev/hidg0", "keyboard HID gadget device node")
	mouseGadget := flag.String("hid-mouse", "/dev/hidg1", "mouse HID gadget device node")
	flag.Parse()

	logLevel, err := logrus.ParseLevel(*logLevelPtr)
	if err != nil {
		panic(err)
	}
	log := logrus.New()
	log.SetLevel(logLevel)
	entry := logrus.NewEntry(log)

	var mySide key.Side
	switch *sideFlag {
	case "left":
		mySide = key.Left
	case "right":
		mySide = key.Right
	default:
		entry.Fatalf("--side must be left or right, got %q", *sideFlag)
	}

	scancodeMap, err := parseScancodeMap(*scancodeMapSpec)
	if err != nil {
		entry.Fatalf("--scancode-map: %v", err)
	}

	src, err := simulate.Open(*inputDevice, scancodeMap, entry)
	if err != nil {
		entry.Fatalf("open simulated input device: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	removed := make(chan string, 1)
	if err := simulate.WatchDisconnect(ctx, removed); err != nil {
		entry.Warnf("disconnect monitoring unavailable: %v", err)
	}

	events := make(chan simulate.KeyEvent, 32)
	go func() {
		for {
			ev, ok, err := src.ReadOne()
			if err != nil {
				entry.Errorf("simulated input device read failed: %v", err)
				close(events)
				return
			}
			if ok {
				events <- ev
			}
		}
	}()

	clk := clock.NewHRClock()

	var localKeys, remoteKeys [18]*key.Key
	for i := 0; i < layout.NKeys; i++ {
		k := key.NewDigital(i, clk)
		if key.SideOf(i) == mySide {
			localKeys[i%18] = k
		} else {
			remoteKeys[i%18] = k
		}
	}

	serialPort, err := devserial.Open(*linkDevice)
	if err != nil {
		entry.Fatalf("open link device: %v", err)
	}
	defer serialPort.Close()
	lnk := link.New(serialPort, clk, entry)

	gadget, err := openGadgetWriter(*keyboardGadget, *mouseGadget)
	if err != nil {
		entry.Fatalf("open HID gadget: %v", err)
	}
	sink := hidreport.New(gadget)
	dev := hiddevice.New(sink, entry)

	ledInd := led.New(consoleLED{log: entry})

	ctrl := controller.New(layout.Default, dev, ledInd, clk, entry)
	for _, k := range localKeys {
		ctrl.RegisterKey(k)
	}
	for _, k := range remoteKeys {
		ctrl.RegisterKey(k)
	}
	bridge.Register(ctrl)

	arb := arbiter.New(arbiterSide(mySide), clk, entry)
	arb.SetUSBReady(true)
	arb.OnRoleChanged(func(role arbiter.Role) {
		active := role == arbiter.RoleActive
		dev.SetActive(active)
		ledInd.SetUSBStatus(active, role == arbiter.RolePassive)
	})
	ctrl.SetHooks(controller.Hooks{
		OnReset:         func() { entry.Warn("RESET requested; simulate build ignores it") },
		OnUSBSideToggle: func() { arb.RequestSideToggle() },
	})

	entry.Infof("simulating %s half from %s", *sideFlag, *inputDevice)

	for {
		select {
		case path := <-removed:
			entry.Warnf("input device removed: %s", path)
		default:
		}

		lnk.Poll(func(msg link.Message) {
			if msg.KeyID == link.StatusKeyID {
				isRight, usbReady, usbActive, toggleUsb := link.DecodeStatus(msg.Val)
				arb.ReceiveStatus(isRight, usbReady, usbActive, toggleUsb)
				return
			}
			if key.SideOf(msg.KeyID) != key.NoSide && key.SideOf(msg.KeyID) != mySide {
				if rk := remoteKeys[msg.KeyID%18]; rk != nil {
					rk.SetRemoteVal(msg.Val)
				}
			}
		})
		if !lnk.LinkOK() {
			arb.LinkWentDown()
		}

		drainEvents(localKeys[:], events)

		if arb.USBActive() {
			dispatchEdges(ctrl, localKeys[:])
			dispatchEdges(ctrl, remoteKeys[:])
			ctrl.Task()
		} else if arb.OtherSideUSBActive() {
			for _, k := range localKeys {
				if k != nil && k.ConsumeValueChanged() {
					lnk.SendKeyValue(k.ID, k.Value)
				}
			}
		}

		dev.Task()

		shouldSend, snap := arb.Tick()
		if shouldSend {
			lnk.SendStatus(snap.IsRight, snap.USBReady, snap.USBActive, snap.ToggleUsb)
		}
	}
}

// drainEvents applies every simulated key event queued since the last
// tick to the matching local key, matching teclado.c's per-tick
// non-blocking matrix read.
func drainEvents(localKeys []*key.Key, events <-chan simulate.KeyEvent) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.HWID >= 0 && ev.HWID < len(localKeys) && localKeys[ev.HWID] != nil {
				localKeys[ev.HWID].SetNewDigitalRaw(ev.Pressed)
			}
		default:
			return
		}
	}
}

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
