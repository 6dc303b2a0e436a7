package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MistPerSUI is the number of MIST (smallest unit) in one SUI.
const MistPerSUI = 1_000_000_000

const suiDecimals = 9

// ErrInvalidAmount is returned for amounts that cannot be expressed in MIST.
var ErrInvalidAmount = errors.New("invalid amount")

// ToMist converts a display amount to MIST, flooring any fractional MIST.
func ToMist(sui float64) (uint64, error) {
	if math.IsNaN(sui) || math.IsInf(sui, 0) || sui < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, sui)
	}
	mist := math.Floor(sui * MistPerSUI)
	if mist >= math.MaxUint64 {
		return 0, fmt.Errorf("%w: %v overflows u64", ErrInvalidAmount, sui)
	}
	return uint64(mist), nil
}

// FromMist converts MIST to the display unit. Lossy above 2^53 MIST.
func FromMist(mist uint64) float64 {
	return float64(mist) / MistPerSUI
}

// ParseSUI parses a decimal display amount ("1.25") into MIST without going
// through float64. Digits beyond the ninth decimal are truncated.
func ParseSUI(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if w > math.MaxUint64/MistPerSUI {
		return 0, fmt.Errorf("%w: %q overflows u64", ErrInvalidAmount, s)
	}

	if len(frac) > suiDecimals {
		frac = frac[:suiDecimals]
	}
	frac += strings.Repeat("0", suiDecimals-len(frac))
	f, err := strconv.ParseUint(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	total := w*MistPerSUI + f
	if total < w*MistPerSUI {
		return 0, fmt.Errorf("%w: %q overflows u64", ErrInvalidAmount, s)
	}
	return total, nil
}

// FormatSUI renders MIST as a decimal display string, e.g. 5000000000 -> "5.0".
func FormatSUI(mist uint64) string {
	frac := strings.TrimRight(fmt.Sprintf("%09d", mist%MistPerSUI), "0")
	if frac == "" {
		frac = "0"
	}
	return fmt.Sprintf("%d.%s", mist/MistPerSUI, frac)
}
