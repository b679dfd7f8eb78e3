// Package core holds the pure domain model of the household ledger:
// entries, accounts, personas, the view filter, the aggregator and the
// settlement calculator. It performs no I/O.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents. Both dot and
// comma are accepted as decimal separator; a third decimal digit rounds
// half-up. Only positive amounts are valid.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidAmount
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || iv > (1<<63-1)/100 {
		return 0, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
	}
	if len(fracPart) > 1 {
		frac += int64(fracPart[1] - '0')
	}
	if len(fracPart) > 2 && fracPart[2] >= '5' {
		frac++
	}
	cents := iv*100 + frac
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// HalveCents returns n/2 in integer cents using round-half-to-even, so a
// leftover half cent goes to the nearest even amount. The primary keeps
// the undivided figure; the family sum may differ from 2x the half by at
// most one cent, resolved in favor of the primary.
func HalveCents(n int64) int64 {
	half := n / 2
	if n%2 != 0 && half%2 != 0 {
		half++
	}
	return half
}

// DivideRound divides n by d rounding half away from zero. Used to
// normalize semiannual and annual amounts to a monthly figure.
func DivideRound(n, d int64) int64 {
	if n < 0 {
		return -DivideRound(-n, d)
	}
	return (n + d/2) / d
}

// String formats the amount as a decimal with two digits, e.g. "120.00".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
