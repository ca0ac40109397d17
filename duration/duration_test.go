package duration

import (
	"errors"
	"testing"
	"time"

	"github.com/ASHU16DEV/StaffManager/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"30m", 30 * time.Minute},
		{"2h", 2 * time.Hour},
		{"2HR", 2 * time.Hour},
		{"1 hour", time.Hour},
		{"5d", 5 * 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"1month", 30 * 24 * time.Hour},
		{"3 Months", 90 * 24 * time.Hour},
		{"1y", 365 * 24 * time.Hour},
		{"2d 3h", 51 * time.Hour},
		{"3h30m", 3*time.Hour + 30*time.Minute},
		{"1.5h", 90 * time.Minute},
		{"2 days, 3 hours", 51 * time.Hour},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{"", InvalidFormat},
		{"soon", InvalidFormat},
		{"42", InvalidFormat},
		{"5x", InvalidUnit},
		{"2d 3fortnights", InvalidUnit},
		{"0h", OutOfRange},
		{"366d", OutOfRange},
		{"1y 1s", OutOfRange},
		{"585y", OutOfRange},
		{"585 years", OutOfRange},
		{"18446747673.71s", OutOfRange},
		{"0.0001s", OutOfRange},
	}

	for _, tt := range tests {
		_, err := Parse(tt.in)
		var perr *Error
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q) error = %v, want *Error", tt.in, err)
			continue
		}
		if perr.Kind != tt.kind {
			t.Errorf("Parse(%q) kind = %v, want %v", tt.in, perr.Kind, tt.kind)
		}
		if !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("Parse(%q) error does not match ErrInvalidInput", tt.in)
		}
	}
}

func TestParseMaxIsInclusive(t *testing.T) {
	got, err := Parse("365d")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != Max {
		t.Errorf("got %v, want %v", got, Max)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{45 * time.Second, "45 seconds"},
		{time.Minute, "1 minute"},
		{90 * time.Second, "1 minute, 30 seconds"},
		{2 * time.Hour, "2 hours"},
		{51 * time.Hour, "2 days, 3 hours"},
		{24 * time.Hour, "1 day"},
		{35 * 24 * time.Hour, "1 month, 5 days"},
		{60 * 24 * time.Hour, "2 months"},
	}

	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatShort(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{5 * time.Minute, "5m"},
		{51 * time.Hour, "2d"},
		{3 * time.Hour, "3h"},
		{95 * 24 * time.Hour, "3mo"},
	}

	for _, tt := range tests {
		if got := FormatShort(tt.in); got != tt.want {
			t.Errorf("FormatShort(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	inputs := []string{"45s", "90m", "2d 3h", "7d", "30d", "3month", "1y", "2w 1h"}

	for _, in := range inputs {
		d, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}

		again, err := Parse(Format(d))
		if err != nil {
			t.Fatalf("Parse(Format(%v)) = Parse(%q): %v", d, Format(d), err)
		}

		// Format keeps two units, so the loss is below the smaller one.
		diff := d - again
		if diff < 0 || diff >= 24*time.Hour {
			t.Errorf("%q: round trip %v -> %q -> %v", in, d, Format(d), again)
		}
	}
}
