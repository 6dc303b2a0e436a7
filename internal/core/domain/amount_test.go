package domain

import (
	"errors"
	"math"
	"testing"
)

func TestToMist_Floors(t *testing.T) {
	tests := []struct {
		in   float64
		want uint64
	}{
		{0, 0},
		{1, 1_000_000_000},
		{1.5, 1_500_000_000},
		{5, 5_000_000_000},
		{2.0000000019, 2_000_000_001},
		{0.0000000009, 0},
	}

	for _, tt := range tests {
		got, err := ToMist(tt.in)
		if err != nil {
			t.Fatalf("ToMist(%v) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ToMist(%v) = %d, want %d", tt.in, got, tt.want)
		}
		if float64(got) != math.Floor(tt.in*MistPerSUI) {
			t.Errorf("ToMist(%v) = %d is not floor(a*1e9)", tt.in, got)
		}
	}
}

func TestToMist_RejectsInvalid(t *testing.T) {
	for _, in := range []float64{-1, math.NaN(), math.Inf(1), 1e20} {
		if _, err := ToMist(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ToMist(%v) error = %v, want ErrInvalidAmount", in, err)
		}
	}
}

func TestFromMist(t *testing.T) {
	if got := FromMist(5_000_000_000); got != 5.0 {
		t.Errorf("FromMist(5e9) = %v, want 5.0", got)
	}
	if got := FromMist(1); got != 1e-9 {
		t.Errorf("FromMist(1) = %v, want 1e-9", got)
	}
}

func TestParseSUI(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"5", 5_000_000_000, false},
		{"1.25", 1_250_000_000, false},
		{".5", 500_000_000, false},
		{"0.0000000019", 1, false},
		{"12.000000001", 12_000_000_001, false},
		{"", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"18446744074", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSUI(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSUI(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseSUI(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseSUI(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatSUI(t *testing.T) {
	tests := map[uint64]string{
		5_000_000_000: "5.0",
		1_250_000_000: "1.25",
		1:             "0.000000001",
		0:             "0.0",
	}
	for in, want := range tests {
		if got := FormatSUI(in); got != want {
			t.Errorf("FormatSUI(%d) = %q, want %q", in, got, want)
		}
	}
}
