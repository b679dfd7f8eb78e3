package core

import "testing"

func TestSettleSymmetry(t *testing.T) {
	s := Snapshot{
		Budget: []Entry{
			{ID: "e1", Name: "Tickets", Amount: Money{Cents: 5000}, Account: "N26",
				Owner: PersonaPartner, PaidBy: PersonaMain, Category: CategoryBudget},
		},
		Accounts: []Account{{ID: "a", Name: "N26", Owner: PersonaMain}},
	}
	got := Settle(s, NewAccountIndex(s.Accounts))
	if got.Direction != PartnerOwesMain || got.Amount.Cents != 5000 {
		t.Fatalf("got %+v, want partnerOwesMain 5000", got)
	}

	// flip owner/payer, direction flips
	s.Budget[0].Owner = PersonaMain
	s.Budget[0].PaidBy = PersonaPartner
	got = Settle(s, NewAccountIndex(s.Accounts))
	if got.Direction != MainOwesPartner || got.Amount.Cents != 5000 {
		t.Fatalf("got %+v, want mainOwesPartner 5000", got)
	}
}

func TestSettleIgnoresSharedAndUnknownAccounts(t *testing.T) {
	s := Snapshot{
		Budget: []Entry{
			{ID: "e1", Name: "x", Amount: Money{Cents: 5000}, Account: "Joint",
				Owner: PersonaPartner, PaidBy: PersonaMain, Category: CategoryBudget},
			{ID: "e2", Name: "y", Amount: Money{Cents: 7000}, Account: UnassignedAccount,
				Owner: PersonaPartner, PaidBy: PersonaMain, Category: CategoryBudget},
		},
		Accounts: []Account{{ID: "a", Name: "Joint", Owner: PersonaShared}},
	}
	got := Settle(s, NewAccountIndex(s.Accounts))
	if got.Direction != Settled || got.Amount.Cents != 0 {
		t.Fatalf("got %+v, want settled", got)
	}
}

func TestSettleNetsBothDirections(t *testing.T) {
	s := Snapshot{
		Budget: []Entry{
			{ID: "e1", Name: "a", Amount: Money{Cents: 5000}, Account: "N26",
				Owner: PersonaPartner, PaidBy: PersonaMain, Category: CategoryBudget},
			{ID: "e2", Name: "b", Amount: Money{Cents: 2000}, Account: "C24",
				Owner: PersonaMain, PaidBy: PersonaPartner, Category: CategoryBudget},
		},
		Accounts: []Account{
			{ID: "a1", Name: "N26", Owner: PersonaMain},
			{ID: "a2", Name: "C24", Owner: PersonaPartner},
		},
	}
	got := Settle(s, NewAccountIndex(s.Accounts))
	if got.Direction != PartnerOwesMain || got.Amount.Cents != 3000 {
		t.Fatalf("got %+v, want partnerOwesMain 3000", got)
	}
}

func TestSettleShadowDrivesDebt(t *testing.T) {
	// split gym subscription: primary paid by main in full, the partner
	// shadow carries the debt
	s := Snapshot{
		Fixed: []Entry{
			{ID: "g1", Name: "Gym", Amount: Money{Cents: 3000}, Account: "N26",
				Owner: PersonaMain, PaidBy: PersonaMain, IsShared: true,
				Category: CategoryFixed, Fixed: &FixedDetails{Interval: IntervalMonthly, Category: "subscription"}},
			{ID: "g1_partner", Name: "Gym", Amount: Money{Cents: 1500}, Account: "N26",
				Owner: PersonaPartner, PaidBy: PersonaMain, IsShared: true, LinkedID: "g1",
				Category: CategoryFixed, Fixed: &FixedDetails{Interval: IntervalMonthly, Category: "subscription"}},
		},
		Accounts: []Account{{ID: "a", Name: "N26", Owner: PersonaMain}},
	}
	got := Settle(s, NewAccountIndex(s.Accounts))
	if got.Direction != PartnerOwesMain || got.Amount.Cents != 1500 {
		t.Fatalf("got %+v, want partnerOwesMain 1500", got)
	}
}

func TestOwnerOfUnknown(t *testing.T) {
	ix := NewAccountIndex([]Account{{Name: "N26", Owner: PersonaMain}})
	if ix.OwnerOf("N26") != PersonaMain {
		t.Fatal("known account misclassified")
	}
	if ix.OwnerOf(UnassignedAccount) != PersonaUnknown {
		t.Fatal("sentinel must classify as unknown")
	}
	if ix.OwnerOf("nope") != PersonaUnknown {
		t.Fatal("missing account must classify as unknown")
	}
}
