package core

import (
	"testing"
	"time"
)

func TestDateParse(t *testing.T) {
	cases := []struct {
		in   Date
		want time.Time
		ok   bool
	}{
		{"2025-03-15", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"2025-03-31T23:30:00-05:00", time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), true},
		{"2025-01-01T00:30:00+02:00", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2025-03-15 10:00:00", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"15/03/2025", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"not a date", time.Time{}, false},
		{"2025-13-01", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := tc.in.Parse()
		if ok != tc.ok {
			t.Fatalf("%q expected ok=%v, got %v", tc.in, tc.ok, ok)
		}
		if ok && !got.Equal(tc.want) {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestDateDisplay(t *testing.T) {
	if got := Date("2025-03-05").Display(); got != "05/03/2025" {
		t.Fatalf("expected 05/03/2025, got %s", got)
	}
	if got := Date("garbage").Display(); got != "garbage" {
		t.Fatalf("expected raw text, got %s", got)
	}
	if got := NewDate(time.Date(2024, 12, 1, 15, 0, 0, 0, time.UTC)); got != "2024-12-01" {
		t.Fatalf("expected 2024-12-01, got %s", got)
	}
}
