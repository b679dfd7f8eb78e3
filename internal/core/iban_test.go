package core

import "testing"

func TestValidateIBAN(t *testing.T) {
	valid := []string{
		"DE89370400440532013000",
		"de89 3704 0044 0532 0130 00", // normalized first
		"GB82WEST12345698765432",
	}
	for _, s := range valid {
		if err := ValidateIBAN(s); err != nil {
			t.Fatalf("ValidateIBAN(%q) = %v", s, err)
		}
	}
	invalid := []string{
		"",
		"DE12345",                 // too short
		"DE89370400440532013001",  // checksum off by one
		"1289370400440532013000",  // digits where country code expected
		"DEAB370400440532013000",  // letters where check digits expected
		"DE89-3704-0044-0532-0130", // separator survives normalization
	}
	for _, s := range invalid {
		if err := ValidateIBAN(s); err == nil {
			t.Fatalf("ValidateIBAN(%q) expected error", s)
		}
	}
}
