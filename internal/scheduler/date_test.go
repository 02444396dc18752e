package scheduler

import (
	"testing"
	"time"
)

func TestDateOf(t *testing.T) {
	cst := time.FixedZone("CST", -6*60*60)

	// 03:30 UTC on the 16th is still the 15th in CST
	utc := time.Date(2026, 10, 16, 3, 30, 0, 0, time.UTC)

	if got := DateOf(utc); got != (Date{2026, time.October, 16}) {
		t.Errorf("DateOf(utc) = %v, want 2026-10-16", got)
	}
	if got := DateOf(utc.In(cst)); got != (Date{2026, time.October, 15}) {
		t.Errorf("DateOf(cst) = %v, want 2026-10-15", got)
	}
}

func TestDate_Compare(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Date
		wantBefore bool
		wantAfter  bool
	}{
		{"same day", Date{2026, 10, 15}, Date{2026, 10, 15}, false, false},
		{"next day", Date{2026, 10, 16}, Date{2026, 10, 15}, false, true},
		{"month boundary", Date{2026, 10, 31}, Date{2026, 11, 1}, true, false},
		{"year boundary", Date{2026, 12, 31}, Date{2027, 1, 1}, true, false},
		{"zero before any date", Date{}, Date{1, 1, 1}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Before(tt.b); got != tt.wantBefore {
				t.Errorf("%v.Before(%v) = %v, want %v", tt.a, tt.b, got, tt.wantBefore)
			}
			if got := tt.a.After(tt.b); got != tt.wantAfter {
				t.Errorf("%v.After(%v) = %v, want %v", tt.a, tt.b, got, tt.wantAfter)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-10-15")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d != (Date{2026, time.October, 15}) {
		t.Errorf("ParseDate() = %v, want 2026-10-15", d)
	}
	if d.String() != "2026-10-15" {
		t.Errorf("String() = %q, want 2026-10-15", d.String())
	}

	zero, err := ParseDate("")
	if err != nil || !zero.IsZero() {
		t.Errorf("ParseDate(\"\") = %v, %v, want zero date", zero, err)
	}
	if zero.String() != "never" {
		t.Errorf("zero String() = %q, want never", zero.String())
	}

	if _, err := ParseDate("10/15/2026"); err == nil {
		t.Error("ParseDate() expected error for wrong layout")
	}
}
