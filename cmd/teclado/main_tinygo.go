//go:build tinygo

// Command teclado (tinygo build) is the on-target composition root: the
// real RP2040 half, running on bare metal. It mirrors main.go's bench
// build exactly in wiring shape but backs every interface with real
// machine/PIO peripherals instead of Linux device nodes, following
// original_source/pico/teclado.c's main() loop ordering.
package main

import (
	"machine"
	"time"

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

	"github.com/benhurstein/teclado/hardware/rp2040"
)

// adcChannelPins are the RP2040's 4 ADC-capable GPIOs shared by the
// analog mux (GPIO26-29, i.e. ADC0-3).
var adcChannelPins = [4]machine.Pin{machine.ADC0, machine.ADC1, machine.ADC2, machine.ADC3}

// uartWriter adapts machine.UART to io.ReadWriter for internal/link.
type uartWriter struct{ uart *machine.UART }

func (u uartWriter) Read(p []byte) (int, error)  { return u.uart.Read(p) }
func (u uartWriter) Write(p []byte) (int, error) { return u.uart.Write(p) }

// gadgetWriter backs hidreport.Writer with the board's USB HID endpoints.
type gadgetWriter struct{ kb, mouse machine.USBHID }

func (g gadgetWriter) WriteReport(reportID byte, data []byte) error {
	if reportID == hidreport.ReportIDMouse {
		_, err := g.mouse.SendReport(data)
		return err
	}
	_, err := g.kb.SendReport(data)
	return err
}

func main() {
	time.Sleep(500 * time.Millisecond) // let USB enumerate before logging

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	entry := logrus.NewEntry(log)

	ledPin := machine.Pin(16)
	rgbLED, err := rp2040.NewLED(ledPin)
	if err != nil {
		entry.Fatalf("init status led: %v", err)
	}

	// both halves' possible select-line pins are configured as outputs up
	// front, since the side isn't known until revision.Detect resolves it
	// below; the unused set is simply never driven.
	allSelPins := []uint8{14, 15, 3, 1, 0, 6, 7}
	adc := rp2040.NewADC(adcChannelPins, allSelPins)
	prober := rp2040.NewProber(adc)
	version := revision.Detect(prober)
	cfg := revision.Resolve(version)
	if cfg.Side == revision.NoSide {
		// spec §7: the sole fatal condition, and it never exits — it
		// blinks red forever instead of halting the process.
		led.BlinkRedForever(rgbLED)
	}

	clk := clock.NewHRClock()

	var scn *scanner.Scanner
	if cfg.Kind == revision.Analog {
		scn = cfg.NewScanner(adc, nil)
	} else {
		gpioPins := make([]machine.Pin, scanner.NDigitalHWKeys)
		for i := range gpioPins {
			gpioPins[i] = machine.Pin(i)
		}
		scn = cfg.NewScanner(nil, rp2040.NewGPIOBank(gpioPins))
	}

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

	// digital revisions talk over UART0; analog ones use UART1, since
	// their select lines occupy GPIO0/1.
	uart := machine.UART1
	if cfg.Kind == revision.Digital {
		uart = machine.UART0
	}
	uart.Configure(machine.UARTConfig{BaudRate: rp2040BaudRate})
	lnk := link.New(uartWriter{uart: uart}, clk, entry)

	ledInd := led.New(rgbLED)

	sink := hidreport.New(gadgetWriter{kb: machine.Keyboard, mouse: machine.Mouse})
	dev := hiddevice.New(sink, entry)

	ctrl := controller.New(layout.Default, dev, ledInd, clk, entry)
	for _, k := range localKeys {
		ctrl.RegisterKey(k)
	}
	for _, k := range remoteKeys {
		ctrl.RegisterKey(k)
	}
	bridge.Register(ctrl)

	arb := arbiter.New(arbiterSide(mySide), clk, entry)
	arb.OnRoleChanged(func(role arbiter.Role) {
		active := role == arbiter.RoleActive
		dev.SetActive(active)
		ledInd.SetUSBStatus(active, role == arbiter.RolePassive)
	})
	ctrl.SetHooks(controller.Hooks{
		OnReset:         machine.EnterBootloader,
		OnUSBSideToggle: func() { arb.RequestSideToggle() },
	})

	for {
		arb.SetUSBReady(machine.USBDevice.Configured())

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

// rp2040BaudRate matches teclado.c's BAUD_RATE for the inter-half link.
const rp2040BaudRate = 500000
