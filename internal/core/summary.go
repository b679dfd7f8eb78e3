package core

import "sort"

// Summary is the display-ready monthly aggregate for one view, all in
// integer cents. Life is discretionary budget spend, Wealth is savings
// contributions. Buffer may be negative and is never clamped here;
// chart rendering floors it, textual display does not.
type Summary struct {
	Income   Money
	Security Money
	Fixed    Money
	Life     Money
	Wealth   Money
	Buffer   Money
}

// MonthlyAmount normalizes a fixed cost to its monthly figure. Other
// categories are already monthly.
func MonthlyAmount(e Entry) int64 {
	if e.Category != CategoryFixed || e.Fixed == nil {
		return e.Amount.Cents
	}
	switch e.Fixed.Interval {
	case IntervalSemiannual:
		return DivideRound(e.Amount.Cents, 6)
	case IntervalAnnual:
		return DivideRound(e.Amount.Cents, 12)
	}
	return e.Amount.Cents
}

// Summarize folds the snapshot into category totals for the given view.
//
// Fixed costs are normalized to a monthly figure first. A shared primary
// that is not a master (owner is main or partner) is then halved: the
// payer's own view shows only their half as a commitment, while the
// counterpart's half surfaces as that persona's shadow row. Masters stay
// undivided so the combined view shows the full household cost once.
// Budget, income and savings sum directly; their halving, where wanted,
// happens entirely through shadow rows at write time.
func Summarize(s Snapshot, v View) Summary {
	var sum Summary
	for _, e := range Filtered(s.Fixed, v) {
		monthly := MonthlyAmount(e)
		if e.IsShared && !e.IsShadow() && e.Owner != PersonaShared {
			monthly = HalveCents(monthly)
		}
		if e.IsSecurity() {
			sum.Security.Cents += monthly
		} else {
			sum.Fixed.Cents += monthly
		}
	}
	for _, e := range Filtered(s.Budget, v) {
		sum.Life.Cents += e.Amount.Cents
	}
	for _, e := range Filtered(s.Savings, v) {
		sum.Wealth.Cents += e.Amount.Cents
	}
	for _, e := range Filtered(s.Income, v) {
		sum.Income.Cents += e.Amount.Cents
	}
	sum.Buffer.Cents = sum.Income.Cents -
		(sum.Security.Cents + sum.Fixed.Cents + sum.Life.Cents + sum.Wealth.Cents)
	return sum
}

// AccountBalance is the net monthly flow over one account under a view.
// Unknown owners are surfaced so callers can badge them.
type AccountBalance struct {
	Account string
	Owner   Persona
	Net     Money
}

// AccountBalances rolls the filtered ledger up per account: income adds,
// every other category subtracts, fixed costs normalized to monthly.
// Shadows on accounts not owned by shared are skipped because they never
// produced a real bank debit; they are budget bookkeeping only.
func AccountBalances(s Snapshot, v View, ix AccountIndex) []AccountBalance {
	net := make(map[string]int64)
	for _, e := range Filtered(s.AllEntries(), v) {
		if e.IsShadow() && ix.OwnerOf(e.Account) != PersonaShared {
			continue
		}
		amount := MonthlyAmount(e)
		if e.Category != CategoryIncome {
			amount = -amount
		}
		net[e.Account] += amount
	}
	out := make([]AccountBalance, 0, len(net))
	for name, cents := range net {
		out = append(out, AccountBalance{
			Account: name,
			Owner:   ix.OwnerOf(name),
			Net:     Money{Cents: cents},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account < out[j].Account })
	return out
}
