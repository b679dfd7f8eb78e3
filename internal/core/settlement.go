package core

// Direction says who owes whom after netting cross-persona payments.
type Direction string

const (
	PartnerOwesMain Direction = "partnerOwesMain"
	MainOwesPartner Direction = "mainOwesPartner"
	Settled         Direction = "settled"
)

// Settlement is the net inter-persona debt in integer cents. Amount is
// always non-negative; Direction carries the sign.
type Settlement struct {
	Amount    Money
	Direction Direction
}

// Settle scans the entire unfiltered ledger, regardless of the active
// view, and nets every entry where one persona's budget was funded by the
// other's money. Entries on jointly-owned accounts are skipped (joint
// money settles itself), and so are entries on unknown accounts, which
// cannot be attributed safely.
func Settle(s Snapshot, ix AccountIndex) Settlement {
	var partnerOwesMain, mainOwesPartner int64
	for _, e := range s.AllEntries() {
		switch ix.OwnerOf(e.Account) {
		case PersonaShared, PersonaUnknown:
			continue
		}
		switch {
		case e.Owner == PersonaPartner && e.PaidBy == PersonaMain:
			partnerOwesMain += e.Amount.Cents
		case e.Owner == PersonaMain && e.PaidBy == PersonaPartner:
			mainOwesPartner += e.Amount.Cents
		}
	}
	diff := partnerOwesMain - mainOwesPartner
	switch {
	case diff > 0:
		return Settlement{Amount: Money{Cents: diff}, Direction: PartnerOwesMain}
	case diff < 0:
		return Settlement{Amount: Money{Cents: -diff}, Direction: MainOwesPartner}
	}
	return Settlement{Direction: Settled}
}
