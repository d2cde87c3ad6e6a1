//go:build !tinygo

// Command teclado is the composition root for one keyboard half: it
// resolves the hardware revision (from --hw-version on this build), wires the scanner/controller/link/USB
// stack together, and runs the cooperative main loop (spec §5), mirroring
// original_source/pico/teclado.c's main(). This build targets a Linux
// bring-up/bench box rather than the real RP2040 — see main_tinygo.go for
// the on-target build — standing in a real USB-serial link
// (hardware/devserial), a real digital key matrix (hardware/linuxgpio;
// cmd/teclado-simulate drives keys from internal/simulate instead), and a
// HID gadget device node
// for report output.
package main

import (
	"flag"
	"fmt"
	"os"

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
	"github.com/benhurstein/teclado/internal/revision"
	"github.com/benhurstein/teclado/internal/scanner"

	"github.com/benhurstein/teclado/hardware/devserial"
	"github.com/benhurstein/teclado/hardware/linuxgpio"
)

// gadgetWriter writes HID reports to Linux USB-gadget character devices,
// one file descriptor per report id, the way the teacher's
// SendKeyboardReports/SendMouseReports open /dev/hidg0 and /dev/hidg1.
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

// consoleLED logs color changes instead of driving a real WS2812 — there
// is no LED on a bench box.
type consoleLED struct{ log *logrus.Entry }

func (c consoleLED) SetColor(r, g, b uint8) {
	if c.log != nil {
		c.log.Debugf("led: r=%d g=%d b=%d", r, g, b)
	}
}

func main() {
	logLevelPtr := flag.String("loglevel", "warn", "log level (panic, fatal, error, warn, info, debug, trace)")
	hwVersion := flag.Int("hw-version", -1, "hardware revision override (0-3); -1 auto-detects (unsupported on this build, bench boxes must pass one explicitly)")
	linkDevice := flag.String("link-device", "/dev/ttyACM0", "serial device carrying the inter-half link")
	gpioChip := flag.String("gpio-chip", "/dev/gpiochip0", "GPIO chip for a digital-revision half's key matrix")
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

	if *hwVersion < 0 {
		entry.Fatal("bench build cannot auto-detect hardware revision (no ADC/GPIO prober on a dev box): pass --hw-version")
	}
	cfg := revision.Resolve(revision.Version(*hwVersion))
	if cfg.Side == revision.NoSide {
		// spec §7: side-not-determined at boot is the sole fatal condition,
		// and it never exits the process — it blinks red forever.
		entry.Error("cannot determine keyboard side; blinking red forever")
		led.BlinkRedForever(consoleLED{log: entry})
	}

	clk := clock.NewHRClock()

	if cfg.Kind != revision.Digital {
		// a bench box has no onboard ADC; this build only drives digital
		// (choc, GPIO-debounced) halves. Analog halves need the real
		// RP2040 build (main_tinygo.go).
		entry.Fatal("analog hardware revision detected but this build has no ADC backing; use the tinygo build")
	}
	bank, err := linuxgpio.Open(*gpioChip, digitalLineOffsets(), scanner.NDigitalHWKeys)
	if err != nil {
		entry.Fatalf("open gpio bank: %v", err)
	}
	defer bank.Close()
	scn := cfg.NewScanner(nil, bank)

	mySide := cfg.Side.KeySide()
	var localKeys, remoteKeys [18]*key.Key
	for i := 0; i < layout.NKeys; i++ {
		k := key.NewDigital(i, clk)
		if key.SideOf(i) == mySide {
			localKeys[i%18] = k
			scn.RegisterKey(k)
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
	arb.SetUSBReady(true) // a gadget-backed dev box is always "enumerated"
	arb.OnRoleChanged(func(role arbiter.Role) {
		active := role == arbiter.RoleActive
		dev.SetActive(active)
		ledInd.SetUSBStatus(active, role == arbiter.RolePassive)
	})

	ctrl.SetHooks(controller.Hooks{
		OnReset:         func() { entry.Warn("RESET requested; bench build does not re-enter a bootloader") },
		OnUSBSideToggle: func() { arb.RequestSideToggle() },
	})

	entry.Infof("teclado half ready: side=%v kind=%v", cfg.Side, cfg.Kind)

	for {
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

		scn.Scan()

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

// digitalLineOffsets are the line offsets 0..NDigitalHWKeys-1 (32 lines,
// one per bit the digital scanner reads) requested as pulled-up inputs;
// on this bench build they're passed straight through to the gpio chip
// rather than hardcoded to the RP2040's own numbering.
func digitalLineOffsets() []int {
	offsets := make([]int, 0, scanner.NDigitalHWKeys)
	for i := 0; i < scanner.NDigitalHWKeys; i++ {
		offsets = append(offsets, i)
	}
	return offsets
}
