package frame_test

import (
	"testing"
	"time"

	"picframe/internal/frame"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"whole seconds", time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local), "2024-01-15T10:30:00"},
		{"microseconds", time.Date(2024, 1, 15, 10, 30, 0, 123456000, time.Local), "2024-01-15T10:30:00.123456"},
		{"nanoseconds truncated", time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.Local), "2024-01-15T10:30:00.123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := frame.FormatTimestamp(tt.in); got != tt.want {
				t.Errorf("FormatTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	local := time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local)

	tests := []struct {
		name   string
		in     string
		want   time.Time
		wantOK bool
	}{
		{"written layout", "2024-01-15T10:30:00", local, true},
		{"fractional", "2024-01-15T10:30:00.5", local.Add(500 * time.Millisecond), true},
		{"rfc3339", "2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), true},
		{"garbage", "yesterday", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := frame.ParseTimestamp(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
