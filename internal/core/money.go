package core

import (
	"strconv"
	"strings"
)

// maxWholeUnits bounds the integer part so the cents conversion cannot
// overflow int64.
const maxWholeUnits = (1<<63 - 1) / 100

// ParseDecimalToCents converts a user-entered decimal amount to cents.
// Both "12.34" and "12,34" are accepted; a third decimal digit rounds the
// cent half-up ("12.345" -> 1234, "12.346" -> 1235). Amounts must be
// strictly positive: signs, malformed input, and zero all return
// ErrInvalidAmount.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, ErrInvalidAmount
	}

	whole, frac, _ := strings.Cut(s, ".")
	if strings.Contains(frac, ".") {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, ErrInvalidAmount
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > maxWholeUnits {
		return 0, ErrInvalidAmount
	}

	cents := units * 100
	switch {
	case len(frac) >= 2:
		cents += int64(frac[0]-'0')*10 + int64(frac[1]-'0')
		if len(frac) > 2 && frac[2] >= '5' {
			cents++
		}
	case len(frac) == 1:
		cents += int64(frac[0]-'0') * 10
	}

	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Units returns the amount in currency units for display. Calculations stay
// in cents.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}
