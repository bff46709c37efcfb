package booking

import (
	"testing"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "midnight", input: "00:00", want: 0},
		{name: "morning slot", input: "09:00", want: 540},
		{name: "half hour", input: "10:30", want: 630},
		{name: "last valid minute", input: "23:59", want: 1439},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "negative hour", input: "-1:00", wantErr: true},
		{name: "missing colon", input: "1030", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "not a number", input: "ab:cd", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseClock(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestEndTime(t *testing.T) {
	tests := []struct {
		name          string
		startTime     string
		durationHours float64
		want          string
		wantErr       bool
	}{
		{name: "whole hour", startTime: "10:00", durationHours: 1.0, want: "11:00"},
		{name: "half hour", startTime: "10:00", durationHours: 0.5, want: "10:30"},
		{name: "hour rollover", startTime: "16:30", durationHours: 1.0, want: "17:30"},
		{name: "rollover across noon", startTime: "11:30", durationHours: 1.0, want: "12:30"},
		{name: "long booking", startTime: "09:00", durationHours: 8.0, want: "17:00"},
		{name: "ends exactly at midnight", startTime: "23:00", durationHours: 1.0, wantErr: true},
		{name: "crosses midnight", startTime: "23:30", durationHours: 1.0, wantErr: true},
		{name: "invalid start", startTime: "25:00", durationHours: 1.0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EndTime(tt.startTime, tt.durationHours)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("EndTime(%q, %v) expected error, got %q", tt.startTime, tt.durationHours, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("EndTime(%q, %v) unexpected error: %v", tt.startTime, tt.durationHours, err)
			}
			if got != tt.want {
				t.Errorf("EndTime(%q, %v) = %q, want %q", tt.startTime, tt.durationHours, got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{name: "identical intervals", aStart: 600, aEnd: 660, bStart: 600, bEnd: 660, want: true},
		{name: "partial overlap", aStart: 630, aEnd: 690, bStart: 600, bEnd: 660, want: true},
		{name: "contained", aStart: 610, aEnd: 650, bStart: 600, bEnd: 660, want: true},
		{name: "containing", aStart: 600, aEnd: 660, bStart: 610, bEnd: 650, want: true},
		{name: "back to back before", aStart: 540, aEnd: 600, bStart: 600, bEnd: 660, want: false},
		{name: "back to back after", aStart: 660, aEnd: 720, bStart: 600, bEnd: 660, want: false},
		{name: "disjoint", aStart: 540, aEnd: 570, bStart: 600, bEnd: 660, want: false},
		{name: "one minute overlap", aStart: 659, aEnd: 700, bStart: 600, bEnd: 660, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps(%d, %d, %d, %d) = %v, want %v", tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Errorf("Overlaps(%d, %d, %d, %d) = %v, want %v", tt.bStart, tt.bEnd, tt.aStart, tt.aEnd, got, tt.want)
			}
		})
	}
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		hours float64
		want  int
	}{
		{hours: 0.5, want: 30},
		{hours: 1.0, want: 60},
		{hours: 2.5, want: 150},
		{hours: 8.0, want: 480},
	}
	for _, tt := range tests {
		if got := DurationMinutes(tt.hours); got != tt.want {
			t.Errorf("DurationMinutes(%v) = %d, want %d", tt.hours, got, tt.want)
		}
	}
}

func TestFormatBookingID(t *testing.T) {
	tests := []struct {
		seq  int
		want string
	}{
		{seq: 1, want: "BK0001"},
		{seq: 42, want: "BK0042"},
		{seq: 9999, want: "BK9999"},
		{seq: 10000, want: "BK10000"},
	}
	for _, tt := range tests {
		if got := FormatBookingID(tt.seq); got != tt.want {
			t.Errorf("FormatBookingID(%d) = %q, want %q", tt.seq, got, tt.want)
		}
	}
}
