package core

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the full ledger state: the four entry groups plus the
// account records. It is both the read model handed to the aggregator
// and the export/import interchange format.
type Snapshot struct {
	Fixed    []Entry   `json:"fixed"`
	Budget   []Entry   `json:"budget"`
	Income   []Entry   `json:"income"`
	Savings  []Entry   `json:"savings"`
	Accounts []Account `json:"accounts"`
}

// entryJSON is the flat wire form. The group is implied by the list an
// entry sits in, so it carries no category discriminator; isSecurity is
// emitted for display but ignored on input because it is derived.
type entryJSON struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Amount     int64       `json:"amount"`
	Account    string      `json:"account"`
	Owner      Persona     `json:"owner"`
	PaidBy     Persona     `json:"paidBy"`
	IsShared   bool        `json:"isShared"`
	LinkedID   string      `json:"linkedId,omitempty"`
	Interval   Interval    `json:"interval,omitempty"`
	CostCat    string      `json:"category,omitempty"`
	IsSecurity *bool       `json:"isSecurity,omitempty"`
	Type       SavingsType `json:"type,omitempty"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	j := entryJSON{
		ID:       e.ID,
		Name:     e.Name,
		Amount:   e.Amount.Cents,
		Account:  e.Account,
		Owner:    e.Owner,
		PaidBy:   e.PaidBy,
		IsShared: e.IsShared,
		LinkedID: e.LinkedID,
	}
	if e.Fixed != nil {
		j.Interval = e.Fixed.Interval
		j.CostCat = e.Fixed.Category
		sec := e.IsSecurity()
		j.IsSecurity = &sec
	}
	if e.Savings != nil {
		j.Type = e.Savings.Type
	}
	return json.Marshal(j)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var j entryJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*e = Entry{
		ID:       j.ID,
		Name:     j.Name,
		Amount:   Money{Cents: j.Amount},
		Account:  j.Account,
		Owner:    j.Owner,
		PaidBy:   j.PaidBy,
		IsShared: j.IsShared,
		LinkedID: j.LinkedID,
	}
	if j.Interval != "" || j.CostCat != "" {
		e.Fixed = &FixedDetails{Interval: j.Interval, Category: j.CostCat}
	}
	if j.Type != "" {
		e.Savings = &SavingsDetails{Type: j.Type}
	}
	return nil
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type alias Snapshot
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = Snapshot(a)
	s.stampCategories()
	return nil
}

// stampCategories re-tags every entry with the group of the list it was
// decoded from; the wire form does not carry the discriminator.
func (s *Snapshot) stampCategories() {
	for i := range s.Fixed {
		s.Fixed[i].Category = CategoryFixed
	}
	for i := range s.Budget {
		s.Budget[i].Category = CategoryBudget
	}
	for i := range s.Income {
		s.Income[i].Category = CategoryIncome
	}
	for i := range s.Savings {
		s.Savings[i].Category = CategorySavings
	}
}

// AllEntries returns every entry across the four groups.
func (s Snapshot) AllEntries() []Entry {
	all := make([]Entry, 0, len(s.Fixed)+len(s.Budget)+len(s.Income)+len(s.Savings))
	all = append(all, s.Fixed...)
	all = append(all, s.Budget...)
	all = append(all, s.Income...)
	all = append(all, s.Savings...)
	return all
}

// Group returns the entries of one category.
func (s Snapshot) Group(c Category) []Entry {
	switch c {
	case CategoryFixed:
		return s.Fixed
	case CategoryBudget:
		return s.Budget
	case CategoryIncome:
		return s.Income
	case CategorySavings:
		return s.Savings
	}
	return nil
}

// Validate checks the snapshot as a whole before it replaces the ledger.
// Beyond per-record validation it re-checks the family invariants: every
// shadow's linkedId must resolve to a primary in the same group, ids must
// be unique, and account names must be unique. An imported file is never
// trusted blindly.
func (s Snapshot) Validate() error {
	ids := make(map[string]Entry)
	for _, e := range s.AllEntries() {
		if e.ID == "" {
			return fmt.Errorf("entry %q: missing id", e.Name)
		}
		if _, dup := ids[e.ID]; dup {
			return fmt.Errorf("duplicate entry id %q", e.ID)
		}
		ids[e.ID] = e
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %q: %w", e.ID, err)
		}
	}
	for _, e := range s.AllEntries() {
		if !e.IsShadow() {
			continue
		}
		primary, ok := ids[e.LinkedID]
		if !ok {
			return fmt.Errorf("shadow %q: linked primary %q does not exist", e.ID, e.LinkedID)
		}
		if primary.IsShadow() {
			return fmt.Errorf("shadow %q: linked entry %q is itself a shadow", e.ID, e.LinkedID)
		}
		if primary.Category != e.Category {
			return fmt.Errorf("shadow %q: category differs from primary %q", e.ID, e.LinkedID)
		}
		if !e.IsShared || !primary.IsShared {
			return fmt.Errorf("shadow %q: split family not marked shared", e.ID)
		}
	}
	names := make(map[string]bool, len(s.Accounts))
	for _, a := range s.Accounts {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("account %q: %w", a.Name, err)
		}
		if names[a.Name] {
			return fmt.Errorf("account %q: %w", a.Name, ErrDuplicateAccount)
		}
		names[a.Name] = true
	}
	return nil
}
