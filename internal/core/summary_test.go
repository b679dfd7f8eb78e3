package core

import "testing"

func testSnapshot() Snapshot {
	return Snapshot{
		Fixed: []Entry{
			// jointly-paid master with its two shadows
			{ID: "m1", Name: "Rent", Amount: Money{Cents: 120000}, Account: "Joint",
				Owner: PersonaShared, PaidBy: PersonaShared, IsShared: true,
				Category: CategoryFixed, Fixed: &FixedDetails{Interval: IntervalMonthly, Category: "housing"}},
			{ID: "m1_main", Name: "Rent", Amount: Money{Cents: 60000}, Account: "Joint",
				Owner: PersonaMain, PaidBy: PersonaShared, IsShared: true, LinkedID: "m1",
				Category: CategoryFixed, Fixed: &FixedDetails{Interval: IntervalMonthly, Category: "housing"}},
			{ID: "m1_partner", Name: "Rent", Amount: Money{Cents: 60000}, Account: "Joint",
				Owner: PersonaPartner, PaidBy: PersonaShared, IsShared: true, LinkedID: "m1",
				Category: CategoryFixed, Fixed: &FixedDetails{Interval: IntervalMonthly, Category: "housing"}},
			// annual insurance, main only
			{ID: "f2", Name: "Liability", Amount: Money{Cents: 12000}, Account: "N26",
				Owner: PersonaMain, PaidBy: PersonaMain,
				Category: CategoryFixed, Fixed: &FixedDetails{Interval: IntervalAnnual, Category: CostInsurance}},
		},
		Budget: []Entry{
			{ID: "b1", Name: "Groceries", Amount: Money{Cents: 40000}, Account: "Joint",
				Owner: PersonaShared, PaidBy: PersonaShared, Category: CategoryBudget},
		},
		Income: []Entry{
			{ID: "i1", Name: "Salary", Amount: Money{Cents: 300000}, Account: "N26",
				Owner: PersonaMain, PaidBy: PersonaMain, Category: CategoryIncome},
		},
		Savings: []Entry{
			{ID: "s1", Name: "ETF", Amount: Money{Cents: 50000}, Account: "N26",
				Owner: PersonaMain, PaidBy: PersonaMain, Category: CategorySavings,
				Savings: &SavingsDetails{Type: SavingsPlan}},
		},
		Accounts: []Account{
			{ID: "a1", Name: "Joint", Owner: PersonaShared},
			{ID: "a2", Name: "N26", Owner: PersonaMain},
		},
	}
}

func TestSummarizeCombined(t *testing.T) {
	s := testSnapshot()
	sum := Summarize(s, ViewCombined)

	// master undivided, annual insurance normalized to 1000/month
	if sum.Fixed.Cents != 120000 {
		t.Fatalf("fixed = %d, want 120000", sum.Fixed.Cents)
	}
	if sum.Security.Cents != 1000 {
		t.Fatalf("security = %d, want 1000", sum.Security.Cents)
	}
	if sum.Life.Cents != 40000 || sum.Wealth.Cents != 50000 || sum.Income.Cents != 300000 {
		t.Fatalf("unexpected direct sums: %+v", sum)
	}
	wantBuffer := sum.Income.Cents - (sum.Security.Cents + sum.Fixed.Cents + sum.Life.Cents + sum.Wealth.Cents)
	if sum.Buffer.Cents != wantBuffer {
		t.Fatalf("buffer = %d, want %d", sum.Buffer.Cents, wantBuffer)
	}
}

func TestSummarizeMainSeesHalfShare(t *testing.T) {
	sum := Summarize(testSnapshot(), ViewMain)
	// rent shadow (60000) counts against main's fixed bucket
	if sum.Fixed.Cents != 60000 {
		t.Fatalf("fixed = %d, want 60000", sum.Fixed.Cents)
	}
}

func TestSummarizeHalvesSplitPrimary(t *testing.T) {
	s := Snapshot{
		Fixed: []Entry{
			{ID: "g1", Name: "Gym", Amount: Money{Cents: 3000}, Account: "N26",
				Owner: PersonaMain, PaidBy: PersonaMain, IsShared: true,
				Category: CategoryFixed, Fixed: &FixedDetails{Interval: IntervalMonthly, Category: "subscription"}},
			{ID: "g1_partner", Name: "Gym", Amount: Money{Cents: 1500}, Account: "N26",
				Owner: PersonaPartner, PaidBy: PersonaMain, IsShared: true, LinkedID: "g1",
				Category: CategoryFixed, Fixed: &FixedDetails{Interval: IntervalMonthly, Category: "subscription"}},
		},
	}
	// payer's view shows only their half as a commitment
	if got := Summarize(s, ViewMain).Fixed.Cents; got != 1500 {
		t.Fatalf("main fixed = %d, want 1500", got)
	}
	// the counterpart's half is the shadow's own amount, never re-halved
	if got := Summarize(s, ViewPartner).Fixed.Cents; got != 1500 {
		t.Fatalf("partner fixed = %d, want 1500", got)
	}
}

func TestSummarizeNegativeBuffer(t *testing.T) {
	s := Snapshot{
		Budget: []Entry{{ID: "b", Name: "x", Amount: Money{Cents: 1000}, Account: "N26",
			Owner: PersonaMain, Category: CategoryBudget}},
	}
	if got := Summarize(s, ViewMain).Buffer.Cents; got != -1000 {
		t.Fatalf("buffer = %d, want -1000 (not clamped)", got)
	}
}

func TestAccountBalances(t *testing.T) {
	s := testSnapshot()
	ix := NewAccountIndex(s.Accounts)
	balances := AccountBalances(s, ViewMain, ix)

	byName := make(map[string]AccountBalance)
	for _, b := range balances {
		byName[b.Account] = b
	}
	// main view on Joint sees only the rent shadow (shared account, so it
	// stays in): -60000
	if got := byName["Joint"].Net.Cents; got != -60000 {
		t.Fatalf("Joint net = %d, want -60000", got)
	}
	// N26: income 300000 - insurance 1000 - savings 50000
	if got := byName["N26"].Net.Cents; got != 249000 {
		t.Fatalf("N26 net = %d, want 249000", got)
	}
}

func TestAccountBalancesSkipsPersonalShadows(t *testing.T) {
	s := Snapshot{
		Budget: []Entry{
			{ID: "p1", Name: "Dinner", Amount: Money{Cents: 5000}, Account: "N26",
				Owner: PersonaMain, PaidBy: PersonaMain, IsShared: true, Category: CategoryBudget},
			{ID: "p1_partner", Name: "Dinner", Amount: Money{Cents: 2500}, Account: "N26",
				Owner: PersonaPartner, PaidBy: PersonaMain, IsShared: true, LinkedID: "p1",
				Category: CategoryBudget},
		},
		Accounts: []Account{{ID: "a", Name: "N26", Owner: PersonaMain}},
	}
	ix := NewAccountIndex(s.Accounts)
	// the partner's shadow never debited N26, so the partner view has no
	// balance row at all
	if got := AccountBalances(s, ViewPartner, ix); len(got) != 0 {
		t.Fatalf("partner balances = %+v, want none", got)
	}
}
