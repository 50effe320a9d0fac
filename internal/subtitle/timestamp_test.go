package subtitle

import (
	"errors"
	"math"
	"testing"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"01:02:03.456", 3723.456},
		{"02:03.456", 123.456},
		{"5.5", 5.5},
		{"00:00:00.000", 0},
		{"00:00:01,500", 1.5},
		{" 00:01:00.250 ", 60.25},
		{"10:00:00", 36000},
		{"7", 7},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) returned error: %v", tt.input, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	inputs := []string{
		"",
		"abc",
		"aa:01:02.000",
		"00:bb:02.000",
		"00:01:xx",
		"1:2:3:4",
		"-1.0",
		"00:-1:00.000",
		"NaN",
		"Inf",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTimestamp(input)
			if err == nil {
				t.Fatalf("expected error for %q", input)
			}
			if !errors.Is(err, ErrInvalidTimestamp) {
				t.Errorf("expected ErrInvalidTimestamp, got %v", err)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{3723.456, "01:02:03.456"},
		{0, "00:00:00.000"},
		{5.5, "00:00:05.500"},
		{59.9996, "00:01:00.000"},
		{36000, "10:00:00.000"},
		{-3, "00:00:00.000"},
		{math.NaN(), "00:00:00.000"},
	}

	for _, tt := range tests {
		got := FormatTimestamp(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatSRTTimestamp(t *testing.T) {
	if got := FormatSRTTimestamp(3723.456); got != "01:02:03,456" {
		t.Errorf("expected 01:02:03,456, got %q", got)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	for _, seconds := range []float64{0, 0.001, 1.25, 61.999, 3599.5, 7384.042} {
		got, err := ParseTimestamp(FormatTimestamp(seconds))
		if err != nil {
			t.Fatalf("round trip of %v failed: %v", seconds, err)
		}
		if math.Abs(got-seconds) > 0.0005 {
			t.Errorf("round trip of %v gave %v", seconds, got)
		}
	}
}
