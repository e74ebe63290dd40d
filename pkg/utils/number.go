// Package utils provides common utility functions for etftracker.
package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseNumber extracts a float from scraped text.
// Percent signs, thousands separators and whitespace are ignored.
// It reports false for empty, "-" or unparsable input. Text that parses to
// NaN or ±Inf yields (0, true): parseable but degenerate.
func ParseNumber(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" || s == "-" {
		return 0, false
	}

	s = strings.Map(func(r rune) rune {
		if r == '%' || r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Overflowing literals such as "1e400" come back as ±Inf with ErrRange.
		if errors.Is(err, strconv.ErrRange) && math.IsInf(val, 0) {
			return 0, true
		}
		return 0, false
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, true
	}
	return val, true
}

// ParseNumberOr is ParseNumber with a fallback for absent values.
func ParseNumberOr(text string, fallback float64) float64 {
	if v, ok := ParseNumber(text); ok {
		return v
	}
	return fallback
}

// IsFinite reports whether f is neither NaN nor ±Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Finite returns f, or 0 when f is NaN or ±Inf.
func Finite(f float64) float64 {
	if !IsFinite(f) {
		return 0
	}
	return f
}

// Round2 rounds the exact binary value of f to two decimal places, ties to
// even, so 2.675 (stored as 2.67499...) gives 2.67 and 0.125 gives 0.12.
// Non-finite input rounds to 0.
func Round2(f float64) float64 {
	if !IsFinite(f) {
		return 0
	}
	return decimal.NewFromFloatWithExponent(f, -exactDigits).RoundBank(2).InexactFloat64()
}

// exactDigits keeps enough fractional digits of a float64 that rounding to
// cents never sees a tie the binary value does not have.
const exactDigits = 40

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatPrice formats a NAV or price with two decimals, "-" when zero.
func FormatPrice(v float64) string {
	if v == 0 {
		return "-"
	}
	return decimal.NewFromFloat(Round2(v)).StringFixed(2)
}

// FormatFloat renders f in its shortest round-tripping decimal form.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
