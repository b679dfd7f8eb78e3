package core

import "testing"

func TestParseView(t *testing.T) {
	if v, err := ParseView(""); err != nil || v != ViewCombined {
		t.Fatalf("empty view: got %q, %v", v, err)
	}
	if _, err := ParseView("everyone"); err == nil {
		t.Fatal("expected error for unknown view")
	}
}

func TestFilteredExclusivity(t *testing.T) {
	entries := []Entry{
		{ID: "m1", Owner: PersonaShared},                      // master
		{ID: "m1_main", Owner: PersonaMain, LinkedID: "m1"},   // shadow
		{ID: "m1_partner", Owner: PersonaPartner, LinkedID: "m1"},
		{ID: "p1", Owner: PersonaMain, IsShared: true},        // split primary
		{ID: "p1_partner", Owner: PersonaPartner, LinkedID: "p1"},
		{ID: "solo", Owner: PersonaPartner},
	}

	combined := Filtered(entries, ViewCombined)
	if len(combined) != 3 {
		t.Fatalf("combined: got %d entries, want 3", len(combined))
	}
	for _, e := range combined {
		if e.IsShadow() {
			t.Fatalf("combined view leaked shadow %s", e.ID)
		}
	}

	main := Filtered(entries, ViewMain)
	if len(main) != 2 {
		t.Fatalf("main: got %d entries, want 2", len(main))
	}
	for _, e := range main {
		if e.Owner != PersonaMain {
			t.Fatalf("main view leaked owner %s", e.Owner)
		}
	}

	partner := Filtered(entries, ViewPartner)
	if len(partner) != 3 {
		t.Fatalf("partner: got %d entries, want 3", len(partner))
	}
}
