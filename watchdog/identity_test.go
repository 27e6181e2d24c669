package watchdog

import (
	"testing"
	"time"
)

func TestFormatDateKey(t *testing.T) {
	d := time.Date(2025, 6, 7, 10, 30, 0, 0, time.UTC)
	if got := FormatDateKey(d); got != "7/6/2025" {
		t.Fatalf("expected 7/6/2025, got %q", got)
	}
	d = time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)
	if got := FormatDateKey(d); got != "25/12/2025" {
		t.Fatalf("expected 25/12/2025, got %q", got)
	}
}

func TestParseDateKey_Strict(t *testing.T) {
	for _, bad := range []string{"", "  ", "Sl No.", "Pump House", "REMARKS", "2025-06-07", "7/6", "not a date"} {
		if _, ok := ParseDateKey(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
	got, ok := ParseDateKey("7/6/2025")
	if !ok {
		t.Fatal("expected parse")
	}
	if got.Day() != 7 || got.Month() != time.June || got.Year() != 2025 {
		t.Fatalf("unexpected date: %s", got)
	}
}

func TestSameDateKey(t *testing.T) {
	if !SameDateKey("7/6/2025", "7/6/2025") {
		t.Fatal("expected match")
	}
	// Equivalent padded rendering denotes the same date.
	if !SameDateKey("07/06/2025", "7/6/2025") {
		t.Fatal("expected padded form to match")
	}
	if SameDateKey("8/6/2025", "7/6/2025") {
		t.Fatal("expected mismatch")
	}
	if SameDateKey("", "7/6/2025") {
		t.Fatal("blank cell must never match")
	}
}

func TestAssetKey_IgnoresIDAndOrigin(t *testing.T) {
	a := Asset{ID: "1", Scheme: "S", Name: "P", Type: "Basic", Origin: OriginLegacy}
	b := Asset{ID: "other", Scheme: "S", Name: "P", Type: "Basic", Origin: OriginCurrent}
	if a.Key() != b.Key() {
		t.Fatalf("expected identical keys, got %+v vs %+v", a.Key(), b.Key())
	}
}
