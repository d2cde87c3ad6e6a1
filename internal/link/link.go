// Package link implements the inter-half framed serial protocol (spec
// §4.5): a two-byte-per-message wire format shipping key-value updates and
// half-status between the two microcontrollers, with checksum validation
// and resync on sync loss.
package link

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/benhurstein/teclado/internal/clock"
)

// StatusKeyID is the special logical ID (62) carrying half-status instead
// of a key value.
const StatusKeyID = 62

// commStatusDelayMicros is COMM_STATUS_DELAY_MS (spec §6).
const commStatusDelayMicros = 20 * 1000

// Message is one decoded key-value or status update.
type Message struct {
	KeyID int
	Val   int
}

// encodeKeyVal reproduces the wire encoding from spec §4.5:
//
//	x = val*3 + keyId
//	y = (x>>3) ^ x
//	byte0 = ((y & 0b0111) << 4) | val        (high bit 0: frame start)
//	byte1 = ((y & 0b1000) << 3) | 0x80 | keyId (high bit 1: continuation)
func encodeKeyVal(keyID, val int) [2]byte {
	x := byte(val*3 + keyID)
	y := (x >> 3) ^ x
	b0 := ((y & 0b0111) << 4) | byte(val)
	b1 := ((y & 0b1000) << 3) | 0x80 | byte(keyID)
	return [2]byte{b0, b1}
}

// Encode returns the two-byte frame for (keyID, val).
func Encode(keyID, val int) [2]byte {
	return encodeKeyVal(keyID, val)
}

// decodeKeyVal extracts (keyID, val) from a frame pair and reports whether
// re-encoding them reproduces the same bytes (the protocol's checksum).
func decodeKeyVal(b0, b1 byte) (keyID, val int, match bool) {
	val = int(b0 & 0x0F)
	keyID = int(b1 & 0x3F)
	recomputed := encodeKeyVal(keyID, val)
	return keyID, val, recomputed[0] == b0 && recomputed[1] == b1
}

// EncodeStatus packs a half-status into the 4-bit val field carried by
// StatusKeyID (spec §4.5 "Special ID 62").
func EncodeStatus(isRight, usbReady, usbActive, toggleUsb bool) int {
	val := 0
	if isRight {
		val |= 0b0001
	}
	if usbReady {
		val |= 0b0010
	}
	if usbActive {
		val |= 0b0100
	}
	if toggleUsb {
		val |= 0b1000
	}
	return val
}

// DecodeStatus unpacks a status value produced by EncodeStatus.
func DecodeStatus(val int) (isRight, usbReady, usbActive, toggleUsb bool) {
	isRight = val&0b0001 != 0
	usbReady = val&0b0010 != 0
	usbActive = val&0b0100 != 0
	toggleUsb = val&0b1000 != 0
	return
}

// Receiver is the byte-at-a-time frame decoder: feed it bytes as they
// arrive and it reports a decoded Message whenever a full, checksummed
// frame completes. Link frame errors (sync loss, checksum mismatch,
// out-of-range ID/value) are counted and dropped, never propagated
// (spec §7).
type Receiver struct {
	haveFirst   bool
	first       byte
	ErrorCount  int
	FrameCount  int
	log         *logrus.Entry
}

// NewReceiver returns an empty Receiver. log may be nil to disable logging.
func NewReceiver(log *logrus.Entry) *Receiver {
	return &Receiver{log: log}
}

func (r *Receiver) warnf(format string, args ...interface{}) {
	if r.log != nil {
		r.log.Warnf(format, args...)
	}
}

// Feed processes one received byte and reports a decoded Message when a
// frame completes successfully.
func (r *Receiver) Feed(b byte) (Message, bool) {
	if !r.haveFirst {
		if b&0x80 != 0 {
			r.ErrorCount++
			r.warnf("link: sync loss, byte0 had high bit set: %#02x", b)
			return Message{}, false
		}
		r.first = b
		r.haveFirst = true
		return Message{}, false
	}

	r.haveFirst = false
	r.FrameCount++
	keyID, val, match := decodeKeyVal(r.first, b)
	if !match {
		r.ErrorCount++
		r.warnf("link: checksum mismatch: %#02x %#02x", r.first, b)
		return Message{}, false
	}
	if keyID != StatusKeyID && (keyID < 0 || keyID > 35) {
		r.ErrorCount++
		r.warnf("link: invalid key id %d", keyID)
		return Message{}, false
	}
	if keyID != StatusKeyID && (val < 0 || val > 9) {
		r.ErrorCount++
		r.warnf("link: invalid value %d for key %d", val, keyID)
		return Message{}, false
	}
	return Message{KeyID: keyID, Val: val}, true
}

// Link owns one direction's worth of framed byte transport plus the
// receive watchdog that asserts/de-asserts link-OK (spec §4.5 last
// paragraph).
type Link struct {
	rw       io.ReadWriter
	recv     *Receiver
	watchdog *clock.Timer
	ok       bool
	log      *logrus.Entry
}

// New wires a Link over rw (the UART, or any io.ReadWriter standing in for
// it in tests/bench harnesses).
func New(rw io.ReadWriter, clk clock.Clock, log *logrus.Entry) *Link {
	return &Link{
		rw:       rw,
		recv:     NewReceiver(log),
		watchdog: clock.New(clk),
		log:      log,
	}
}

// SendKeyValue ships one key-value update.
func (l *Link) SendKeyValue(keyID, val int) error {
	frame := Encode(keyID, val)
	_, err := l.rw.Write(frame[:])
	return err
}

// SendStatus ships one half-status update under StatusKeyID.
func (l *Link) SendStatus(isRight, usbReady, usbActive, toggleUsb bool) error {
	return l.SendKeyValue(StatusKeyID, EncodeStatus(isRight, usbReady, usbActive, toggleUsb))
}

// Poll drains any bytes currently available on rw (a non-blocking read is
// assumed — callers pass an io.Reader that returns io.EOF/0,nil instead of
// blocking) and invokes onMessage for each decoded frame. Any successful
// receive re-arms the watchdog; LinkOK decays once 2*COMM_STATUS_DELAY_MS
// passes without one.
func (l *Link) Poll(onMessage func(Message)) {
	buf := make([]byte, 64)
	for {
		n, err := l.rw.Read(buf)
		if n == 0 {
			break
		}
		for _, b := range buf[:n] {
			msg, ok := l.recv.Feed(b)
			if ok {
				l.ok = true
				l.watchdog.Enable(2 * commStatusDelayMicros)
				onMessage(msg)
			}
		}
		if err != nil {
			break
		}
	}
	if l.ok && l.watchdog.Elapsed() {
		l.ok = false
	}
}

// LinkOK reports whether a frame has been received within the watchdog
// window.
func (l *Link) LinkOK() bool {
	return l.ok
}

// ErrorCount is the running count of dropped frames (sync loss, checksum,
// or invalid ID/value), for diagnostics.
func (l *Link) ErrorCount() int {
	return l.recv.ErrorCount
}
