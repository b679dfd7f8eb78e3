package core

import (
	"errors"
	"strings"
)

type (
	// Persona identifies whose budget a record belongs to.
	Persona string

	// Category is the entry group discriminator.
	Category string

	// Interval is the billing rhythm of a fixed cost.
	Interval string

	// SavingsType distinguishes cash reserves from recurring plans.
	SavingsType string

	Money struct {
		Cents int64
	}
)

const (
	PersonaMain    Persona = "main"
	PersonaPartner Persona = "partner"
	PersonaShared  Persona = "shared"

	// PersonaUnknown is the classifier result for account names nobody claims.
	// It is a valid lookup result, not an error.
	PersonaUnknown Persona = "unknown"
)

const (
	CategoryFixed   Category = "fixed"
	CategoryBudget  Category = "budget"
	CategoryIncome  Category = "income"
	CategorySavings Category = "savings"
)

const (
	IntervalMonthly    Interval = "monthly"
	IntervalSemiannual Interval = "semiannual"
	IntervalAnnual     Interval = "annual"
)

const (
	SavingsCash SavingsType = "cash"
	SavingsPlan SavingsType = "plan"
)

// UnassignedAccount is the sentinel entries are moved to when their account
// is deleted. It never resolves to a persona.
const UnassignedAccount = "Unassigned"

// CostInsurance marks a fixed cost as security spend in the summary.
const CostInsurance = "insurance"

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidOwner    = errors.New("invalid owner")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrUnknownAccount  = errors.New("unknown account reference")
	ErrInvalidIBAN     = errors.New("invalid IBAN format")

	// ErrShadowEntry signals a direct write or delete against a derived
	// half-share row. Shadows are managed through their primary only.
	ErrShadowEntry = errors.New("entry is managed automatically")

	ErrNotFound     = errors.New("not found")
	ErrAccountInUse = errors.New("account still referenced by entries")

	// ErrDuplicateAccount rejects a second account with a name already
	// taken. Entries reference accounts by display name, so names must
	// stay unique.
	ErrDuplicateAccount = errors.New("account name already exists")

	// ErrInvalidSnapshot rejects an import whose family invariants do
	// not hold as a whole, beyond per-record validation.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// FixedDetails is the payload of a fixed-cost entry.
type FixedDetails struct {
	Interval Interval
	Category string // cost category, e.g. insurance, subscription
}

// SavingsDetails is the payload of a savings entry.
type SavingsDetails struct {
	Type SavingsType
}

// Entry is one ledger record. Category tags which payload applies:
// Fixed is set iff Category == CategoryFixed, Savings iff CategorySavings,
// budget and income entries carry neither.
type Entry struct {
	ID       string
	Name     string
	Amount   Money
	Account  string
	Owner    Persona
	PaidBy   Persona
	IsShared bool
	LinkedID string // set only on shadow entries, points at the primary
	Category Category
	Fixed    *FixedDetails
	Savings  *SavingsDetails
}

// Account is a bank account personas draw from.
type Account struct {
	ID    string
	Name  string
	Owner Persona
	IBAN  string // optional, advisory only
}

// IsShadow reports whether the entry is a derived half-share row.
func (e Entry) IsShadow() bool {
	return e.LinkedID != ""
}

// IsMaster reports whether the entry is a jointly-paid primary.
func (e Entry) IsMaster() bool {
	return !e.IsShadow() && e.Owner == PersonaShared
}

// IsSecurity is derived from the cost category and never stored, so it
// cannot drift from what the caller submits.
func (e Entry) IsSecurity() bool {
	return e.Category == CategoryFixed && e.Fixed != nil && e.Fixed.Category == CostInsurance
}

// ShadowID derives the deterministic id of the persona's half-share row.
// At most one shadow per role can exist because the id is fixed.
func ShadowID(primaryID string, p Persona) string {
	return primaryID + "_" + string(p)
}

// OtherPersona returns the counterpart in a 50/50 split.
func OtherPersona(p Persona) Persona {
	if p == PersonaMain {
		return PersonaPartner
	}
	return PersonaMain
}

func validPersona(p Persona) bool {
	switch p {
	case PersonaMain, PersonaPartner, PersonaShared:
		return true
	}
	return false
}

// ValidCategory reports whether c is one of the four entry groups.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryFixed, CategoryBudget, CategoryIncome, CategorySavings:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Entry) Validate() error {
	if len(strings.TrimSpace(e.Name)) == 0 {
		return ErrEmptyName
	}
	if len(e.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Account) == "" {
		return ErrUnknownAccount
	}
	if !validPersona(e.Owner) {
		return ErrInvalidOwner
	}
	if e.PaidBy != "" && !validPersona(e.PaidBy) {
		return ErrInvalidOwner
	}
	if !ValidCategory(e.Category) {
		return ErrInvalidCategory
	}
	switch e.Category {
	case CategoryFixed:
		if e.Fixed == nil {
			return ErrInvalidInterval
		}
		switch e.Fixed.Interval {
		case IntervalMonthly, IntervalSemiannual, IntervalAnnual:
		default:
			return ErrInvalidInterval
		}
	case CategorySavings:
		if e.Savings == nil {
			return errors.New("missing savings type")
		}
		switch e.Savings.Type {
		case SavingsCash, SavingsPlan:
		default:
			return errors.New("invalid savings type")
		}
	}
	return nil
}

func (a Account) Validate() error {
	if len(strings.TrimSpace(a.Name)) == 0 {
		return ErrEmptyName
	}
	if a.Name == UnassignedAccount {
		return errors.New("account name is reserved")
	}
	if !validPersona(a.Owner) {
		return ErrInvalidOwner
	}
	if a.IBAN != "" {
		if err := ValidateIBAN(a.IBAN); err != nil {
			return err
		}
	}
	return nil
}
