package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParsePaise converts a decimal amount string to paise (1/100 of a rupee).
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Negative amounts are rejected;
// zero is allowed (a budget can legitimately be set to zero).
func ParsePaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		return 0, ErrInvalidAmount
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	var frac int64
	switch {
	case fracPart == "":
		frac = 0
	case len(fracPart) == 1:
		d, _ := strconv.ParseInt(fracPart, 10, 64)
		frac = d * 10
	case len(fracPart) == 2:
		frac, _ = strconv.ParseInt(fracPart, 10, 64)
	default:
		frac, _ = strconv.ParseInt(fracPart[:2], 10, 64)
		// half-up rounding on the third decimal
		if fracPart[2] >= '5' {
			frac++
		}
	}

	paise := iv*100 + frac
	if paise < 0 {
		return 0, ErrInvalidAmount
	}
	return paise, nil
}

// FormatPaise renders paise as a plain decimal string, e.g. 1234 -> "12.34".
func FormatPaise(p int64) string {
	sign := ""
	if p < 0 {
		sign = "-"
		p = -p
	}
	return fmt.Sprintf("%s%d.%02d", sign, p/100, p%100)
}

// Rupees renders paise with the currency symbol, e.g. 1234 -> "₹12.34".
func Rupees(p int64) string {
	return "₹" + FormatPaise(p)
}
