package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ReturnMode selects how one-year return cells are read.
type ReturnMode string

const (
	// ReturnPercent reads cells as percentages, "12.34%" or "12.34" → 12.34.
	ReturnPercent ReturnMode = "percent"
	// ReturnFraction reads bare numbers as fractions and scales them by 100.
	// Cells that still carry a percent sign are read as percentages.
	ReturnFraction ReturnMode = "fraction"
)

func ParseReturnMode(s string) (ReturnMode, error) {
	switch ReturnMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ReturnPercent:
		return ReturnPercent, nil
	case ReturnFraction:
		return ReturnFraction, nil
	default:
		return "", fmt.Errorf("unknown return mode %q, must be one of: percent, fraction", s)
	}
}

var numberNoise = strings.NewReplacer(
	"%", "",
	",", "",
	"$", "",
	"₩", "",
	" ", "",
	"\u00a0", "",
)

// parseNumber strips percent signs, thousands separators and currency marks
// and parses what is left. fellBack is true when a non-blank cell could not
// be parsed and zero was substituted.
func parseNumber(s string) (v float64, fellBack bool) {
	cleaned := numberNoise.Replace(strings.TrimSpace(s))
	if cleaned == "" || cleaned == "-" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true
	}
	if negative {
		v = -v
	}
	return v, false
}

// ParsePercent converts a percent-like cell to a number in percent units.
// "12.34%" → 12.34, "1,234.5%" → 1234.5, "N/A" → 0.
func ParsePercent(s string) float64 {
	v, _ := parseNumber(s)
	return v
}

// ParseAmount converts a currency-like cell to a number. Unparseable → 0.
func ParseAmount(s string) float64 {
	v, _ := parseNumber(s)
	return v
}

// CoerceReturn converts a one-year return cell to percent units under mode.
func CoerceReturn(s string, mode ReturnMode) (float64, bool) {
	v, fellBack := parseNumber(s)
	if mode == ReturnFraction && !strings.Contains(s, "%") {
		v *= 100
	}
	return v, fellBack
}

// FormatPercent renders a percent-unit value for display, 12.3456 → "12.35%".
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// FormatNumber renders a value so that ParsePercent/ParseAmount read it back
// unchanged.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
