package core

import "strings"

// NormalizeIBAN strips spaces and uppercases. Call before validating or
// storing.
func NormalizeIBAN(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// ValidateIBAN checks the normalized format: country code, two check
// digits, 11 to 30 alphanumerics, and the mod-97 checksum. The IBAN is
// advisory only; it never influences derivations.
func ValidateIBAN(s string) error {
	s = NormalizeIBAN(s)
	if len(s) < 15 || len(s) > 34 {
		return ErrInvalidIBAN
	}
	if s[0] < 'A' || s[0] > 'Z' || s[1] < 'A' || s[1] > 'Z' {
		return ErrInvalidIBAN
	}
	if s[2] < '0' || s[2] > '9' || s[3] < '0' || s[3] > '9' {
		return ErrInvalidIBAN
	}
	// Move the country code and check digits to the end, expand letters
	// to two-digit numbers, then take the whole thing mod 97.
	rearranged := s[4:] + s[:4]
	rem := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case c >= '0' && c <= '9':
			rem = (rem*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			rem = (rem*100 + int(c-'A') + 10) % 97
		default:
			return ErrInvalidIBAN
		}
	}
	if rem != 1 {
		return ErrInvalidIBAN
	}
	return nil
}
