package replay

import (
	"testing"
	"time"
)

func TestDecoded_LocalTimesApplyZoneOffset(t *testing.T) {
	start := time.Date(2020, 1, 18, 12, 0, 0, 0, time.UTC)
	decoded := Decoded{
		StartTime:     start,
		EndTime:       start.Add(15 * time.Minute),
		TimeZoneHours: 2,
	}

	if got := decoded.LocalStart(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("unexpected local start: %s", got)
	}
	if got := decoded.LocalEnd(); !got.Equal(start.Add(2*time.Hour + 15*time.Minute)) {
		t.Fatalf("unexpected local end: %s", got)
	}
}

func TestDecoded_Is1v1(t *testing.T) {
	if !(Decoded{GameType: "1v1"}).Is1v1() {
		t.Fatalf("expected 1v1")
	}
	if (Decoded{GameType: "2v2"}).Is1v1() {
		t.Fatalf("expected 2v2 to be rejected")
	}
}
