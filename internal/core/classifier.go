package core

// AccountIndex resolves an account name to its owning persona. It is a
// plain lookup built from the account list; every other component goes
// through it instead of guessing from names.
type AccountIndex map[string]Persona

// NewAccountIndex builds the classifier from the current account records.
func NewAccountIndex(accounts []Account) AccountIndex {
	ix := make(AccountIndex, len(accounts))
	for _, a := range accounts {
		ix[a.Name] = a.Owner
	}
	return ix
}

// OwnerOf returns the persona owning the named account. Unknown names,
// including the Unassigned sentinel, resolve to PersonaUnknown; callers
// must treat that conservatively (excluded from settlement, flagged in
// aggregates) rather than as an error.
func (ix AccountIndex) OwnerOf(name string) Persona {
	if owner, ok := ix[name]; ok {
		return owner
	}
	return PersonaUnknown
}
