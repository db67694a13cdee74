package timeparse

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "bare hour", input: "7", want: "07:00", ok: true},
		{name: "zero padded hour", input: "07", want: "07:00", ok: true},
		{name: "hour with h suffix", input: "7h", want: "07:00", ok: true},
		{name: "hour h minutes", input: "7h30", want: "07:30", ok: true},
		{name: "colon form", input: "7:30", want: "07:30", ok: true},
		{name: "canonical form", input: "07:30", want: "07:30", ok: true},
		{name: "midnight", input: "0", want: "00:00", ok: true},
		{name: "last minute of day", input: "23h59", want: "23:59", ok: true},
		{name: "hour out of range", input: "24", ok: false},
		{name: "minute out of range", input: "7h60", ok: false},
		{name: "negative hour", input: "-1", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "garbage", input: "noon", ok: false},
		{name: "whitespace tolerated", input: " 7h30 ", want: "07:30", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTime(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseTime(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseTime(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, paris)

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "day month only", input: "18/11", want: "2025-11-18", ok: true},
		{name: "full year", input: "18/11/2025", want: "2025-11-18", ok: true},
		{name: "two digit year", input: "18/11/25", want: "2025-11-18", ok: true},
		{name: "single digit fields", input: "1/2", want: "2025-02-01", ok: true},
		{name: "impossible date", input: "31/02", ok: false},
		{name: "month out of range", input: "10/13", ok: false},
		{name: "day out of range", input: "32/01", ok: false},
		{name: "not a date", input: "tomorrow", ok: false},
		{name: "too many parts", input: "1/2/3/4", ok: false},
		{name: "leap day valid year", input: "29/02/2028", want: "2028-02-29", ok: true},
		{name: "leap day invalid year", input: "29/02/2025", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input, now, paris)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// November is outside DST, so Paris is UTC+1.
	got, ok := Combine("2025-11-18", "07:30", paris)
	if !ok {
		t.Fatal("Combine returned not ok for a valid date and time")
	}
	want := time.Date(2025, 11, 18, 6, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Combine = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("Combine location = %v, want UTC", got.Location())
	}

	// July is inside DST, Paris is UTC+2.
	got, ok = Combine("2025-07-18", "07:30", paris)
	if !ok {
		t.Fatal("Combine returned not ok for a valid summer date")
	}
	want = time.Date(2025, 7, 18, 5, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Combine (DST) = %v, want %v", got, want)
	}

	if _, ok := Combine("not-a-date", "07:30", paris); ok {
		t.Error("Combine accepted malformed date")
	}
	if _, ok := Combine("2025-11-18", "7h30", paris); ok {
		t.Error("Combine accepted non-canonical time")
	}
}

func TestNextDay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-11-18", "2025-11-19"},
		{"2025-11-30", "2025-12-01"},
		{"2025-12-31", "2026-01-01"},
		{"2024-02-28", "2024-02-29"},
	}
	for _, tt := range tests {
		got, ok := NextDay(tt.in)
		if !ok {
			t.Fatalf("NextDay(%q) returned not ok", tt.in)
		}
		if got != tt.want {
			t.Errorf("NextDay(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, ok := NextDay("18/11/2025"); ok {
		t.Error("NextDay accepted a non-ISO date")
	}
}
