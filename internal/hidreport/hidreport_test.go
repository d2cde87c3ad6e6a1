package hidreport

import (
	"testing"

	"github.com/benhurstein/teclado/internal/action"
)

type recordingWriter struct {
	reportID byte
	data     []byte
}

func (w *recordingWriter) WriteReport(reportID byte, data []byte) error {
	w.reportID = reportID
	w.data = append([]byte(nil), data...)
	return nil
}

func TestEncodeKeyboardLayout(t *testing.T) {
	buf := EncodeKeyboard(action.ModLeftShft, [6]action.Keycode{4, 5, 0, 0, 0, 0})
	if buf[0] != byte(action.ModLeftShft) {
		t.Fatalf("expected modifier byte 0 = %d, got %d", action.ModLeftShft, buf[0])
	}
	if buf[2] != 4 || buf[3] != 5 {
		t.Fatalf("expected keycodes starting at byte 2, got %v", buf)
	}
}

func TestSendKeyboardReportUsesReportID1(t *testing.T) {
	w := &recordingWriter{}
	s := New(w)
	if err := s.SendKeyboardReport(0, [6]action.Keycode{}); err != nil {
		t.Fatal(err)
	}
	if w.reportID != ReportIDKeyboard {
		t.Fatalf("expected report id %d, got %d", ReportIDKeyboard, w.reportID)
	}
	if len(w.data) != 8 {
		t.Fatalf("expected 8-byte keyboard report, got %d bytes", len(w.data))
	}
}

func TestSendMouseReportUsesReportID2(t *testing.T) {
	w := &recordingWriter{}
	s := New(w)
	if err := s.SendMouseReport(action.ButtonLeft, 5, -5, 0, 0); err != nil {
		t.Fatal(err)
	}
	if w.reportID != ReportIDMouse {
		t.Fatalf("expected report id %d, got %d", ReportIDMouse, w.reportID)
	}
	if len(w.data) != 5 {
		t.Fatalf("expected 5-byte mouse report, got %d bytes", len(w.data))
	}
	if w.data[0] != byte(action.ButtonLeft) {
		t.Fatalf("expected buttons byte 0, got %v", w.data)
	}
}
