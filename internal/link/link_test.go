package link

import (
	"bytes"
	"testing"

	"github.com/benhurstein/teclado/internal/clock"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for keyID := 0; keyID < 64; keyID++ {
		for val := 0; val < 16; val++ {
			frame := Encode(keyID, val)
			gotID, gotVal, ok := decodeKeyVal(frame[0], frame[1])
			if !ok || gotID != keyID || gotVal != val {
				t.Fatalf("round trip failed for (%d,%d): got (%d,%d,%v)", keyID, val, gotID, gotVal, ok)
			}
		}
	}
}

func TestBitFlipDetectedOrResynced(t *testing.T) {
	for keyID := 0; keyID < 64; keyID += 7 {
		for val := 0; val < 16; val += 3 {
			frame := Encode(keyID, val)
			for bit := 0; bit < 16; bit++ {
				flipped := frame
				flipped[bit/8] ^= 1 << uint(bit%8)

				r := NewReceiver(nil)
				var got Message
				var ok bool
				for _, b := range flipped {
					got, ok = r.Feed(b)
				}
				if ok && (got.KeyID != keyID || got.Val != val) {
					// silently accepting a different message would be a
					// checksum failure — it must have been flagged.
					t.Fatalf("bit %d flip in (%d,%d) produced a different accepted message %+v without an error", bit, keyID, val, got)
				}
			}
		}
	}
}

func TestReceiverResyncsOnHighBitFirstByte(t *testing.T) {
	r := NewReceiver(nil)
	// a byte with the high bit set while expecting byte0 must be dropped,
	// not consumed as byte0.
	if _, ok := r.Feed(0x80); ok {
		t.Fatal("unexpected frame completion")
	}
	frame := Encode(5, 3)
	var msg Message
	var ok bool
	for _, b := range frame {
		msg, ok = r.Feed(b)
	}
	if !ok || msg.KeyID != 5 || msg.Val != 3 {
		t.Fatalf("failed to resync after bad leading byte: %+v %v", msg, ok)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	val := EncodeStatus(true, true, false, true)
	isRight, usbReady, usbActive, toggleUsb := DecodeStatus(val)
	if !isRight || !usbReady || usbActive || !toggleUsb {
		t.Fatalf("status round trip mismatch: %v %v %v %v", isRight, usbReady, usbActive, toggleUsb)
	}
}

func TestLinkPollDeliversMessages(t *testing.T) {
	var buf bytes.Buffer
	frame := Encode(3, 7)
	buf.Write(frame[:])

	l := New(&buf, clock.NewFake(), nil)
	var got []Message
	l.Poll(func(m Message) { got = append(got, m) })
	if len(got) != 1 || got[0].KeyID != 3 || got[0].Val != 7 {
		t.Fatalf("expected one decoded message, got %+v", got)
	}
}
