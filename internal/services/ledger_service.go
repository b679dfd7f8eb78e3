// Package services orchestrates ledger writes and derived reads. The
// LedgerService is the only component that creates, rewrites or deletes
// shadow entries; everything else sees them read-only.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"haushalt/internal/amqp"
	"haushalt/internal/core"
	"haushalt/internal/metrics"
	"haushalt/internal/storage"
)

// EventPublisher notifies downstream consumers of ledger changes.
// Publishing is best-effort; a failed publish never fails the write.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

type LedgerService struct {
	repo   *storage.SQLiteRepository
	events EventPublisher // nil when no broker is configured
}

func NewLedgerService(repo *storage.SQLiteRepository, events EventPublisher) *LedgerService {
	return &LedgerService{repo: repo, events: events}
}

// UpsertEntry writes one user-authored entry and derives the shadow rows
// its split semantics require, atomically. Three disjoint cases, checked
// in order:
//
//  1. Owner is shared: a jointly-paid master keeps the full amount and
//     gets one half-share shadow per persona, so each individual view
//     shows its half inline.
//  2. A split was requested and a single persona owns the entry: the
//     primary keeps the full amount for bank reconciliation and exactly
//     one shadow is derived for the counterpart, paid by the original
//     payer.
//  3. Plain entry: written as-is, and any shadows from an earlier split
//     are cleared.
//
// Returns the primary's id.
func (s *LedgerService) UpsertEntry(ctx context.Context, category core.Category, draft core.Entry, splitRequested bool) (string, error) {
	if !core.ValidCategory(category) {
		return "", fmt.Errorf("category %q: %w", category, core.ErrInvalidCategory)
	}
	draft.Category = category

	// A caller can never write a shadow, neither by marking the draft nor
	// by reusing a shadow's id.
	if draft.LinkedID != "" {
		return "", fmt.Errorf("entry %s: %w", draft.ID, core.ErrShadowEntry)
	}
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	} else if existing, err := s.repo.GetEntry(ctx, draft.ID); err == nil {
		if existing.IsShadow() {
			return "", fmt.Errorf("entry %s: %w", draft.ID, core.ErrShadowEntry)
		}
	} else if !errors.Is(err, core.ErrNotFound) {
		// A storage failure must not bypass the shadow-overwrite guard.
		return "", fmt.Errorf("lookup entry %s: %w", draft.ID, err)
	}

	// The payer defaults to the owner: a shared-account master is paid by
	// the joint account, a personal entry by its persona.
	if draft.PaidBy == "" {
		draft.PaidBy = draft.Owner
	}

	if err := draft.Validate(); err != nil {
		return "", err
	}
	if err := s.checkAccountRef(ctx, draft.Account); err != nil {
		return "", err
	}

	// A family write derives half-share rows; an amount whose half rounds
	// to zero cents would persist a shadow the snapshot validator (and
	// therefore import) rejects, so it is refused up front.
	if (draft.Owner == core.PersonaShared || splitRequested) &&
		core.HalveCents(draft.Amount.Cents) == 0 {
		return "", fmt.Errorf("amount %d too small to split: %w", draft.Amount.Cents, core.ErrInvalidAmount)
	}

	primary := draft
	var shadows []core.Entry
	switch {
	case draft.Owner == core.PersonaShared:
		primary.IsShared = true
		shadows = []core.Entry{
			shadowOf(primary, core.PersonaMain),
			shadowOf(primary, core.PersonaPartner),
		}
	case splitRequested:
		primary.IsShared = true
		shadows = []core.Entry{shadowOf(primary, core.OtherPersona(draft.Owner))}
	default:
		primary.IsShared = false
	}

	if err := s.repo.UpsertFamily(ctx, primary, shadows); err != nil {
		return "", fmt.Errorf("write entry family: %w", err)
	}

	metrics.EntryWrites.WithLabelValues(string(category)).Inc()
	metrics.ShadowWrites.Add(float64(len(shadows)))

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventEntryUpserted, primary.ID, category))
	return primary.ID, nil
}

// shadowOf derives one persona's half-share row from a primary. The
// shadow keeps the primary's name, account, payload and payer; only the
// owner, the halved amount and the linkage differ. The half uses
// round-half-to-even, so the family may undercount the primary by one
// cent, never overcount.
func shadowOf(primary core.Entry, owner core.Persona) core.Entry {
	sh := primary
	sh.ID = core.ShadowID(primary.ID, owner)
	sh.Owner = owner
	sh.Amount = core.Money{Cents: core.HalveCents(primary.Amount.Cents)}
	sh.LinkedID = primary.ID
	sh.IsShared = true
	if primary.Fixed != nil {
		details := *primary.Fixed
		sh.Fixed = &details
	}
	if primary.Savings != nil {
		details := *primary.Savings
		sh.Savings = &details
	}
	return sh
}

// DeleteEntry removes a primary and cascades to its shadows in one
// transaction. Deleting a shadow directly is rejected.
func (s *LedgerService) DeleteEntry(ctx context.Context, id string) error {
	existing, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsShadow() {
		return fmt.Errorf("entry %s: %w", id, core.ErrShadowEntry)
	}
	if err := s.repo.DeleteFamily(ctx, id); err != nil {
		return err
	}

	metrics.EntryDeletes.Inc()
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventEntryDeleted, id, existing.Category))
	return nil
}

func (s *LedgerService) checkAccountRef(ctx context.Context, name string) error {
	if name == core.UnassignedAccount {
		return nil // entries parked by an account delete stay editable
	}
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	if core.NewAccountIndex(accounts).OwnerOf(name) == core.PersonaUnknown {
		return fmt.Errorf("account %q: %w", name, core.ErrUnknownAccount)
	}
	return nil
}

// ListAccounts returns all account records.
func (s *LedgerService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// UpsertAccount creates or updates an account; renames cascade onto
// referencing entries inside the storage transaction.
func (s *LedgerService) UpsertAccount(ctx context.Context, a core.Account) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.IBAN = core.NormalizeIBAN(a.IBAN)
	if err := a.Validate(); err != nil {
		return "", err
	}
	if err := s.repo.UpsertAccount(ctx, a); err != nil {
		return "", err
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventAccountChanged, "", ""))
	return a.ID, nil
}

// DeleteAccount removes an account. When entries still reference it the
// caller must confirm the reassignment to Unassigned explicitly,
// otherwise the delete is rejected rather than silently coerced.
func (s *LedgerService) DeleteAccount(ctx context.Context, id string, reassignConfirmed bool) error {
	acc, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if !reassignConfirmed {
		n, err := s.repo.CountEntriesForAccount(ctx, acc.Name)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("account %q has %d entries: %w", acc.Name, n, core.ErrAccountInUse)
		}
	}
	if err := s.repo.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventAccountChanged, "", ""))
	return nil
}

// ListEntries returns the full ledger grouped by category.
func (s *LedgerService) ListEntries(ctx context.Context) (core.Snapshot, error) {
	return s.repo.Snapshot(ctx)
}

// Summary aggregates the ledger under the given view. Pure derived read;
// two calls on an unchanged ledger return identical results.
func (s *LedgerService) Summary(ctx context.Context, v core.View) (core.Summary, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(snap, v), nil
}

// Balances rolls up the net monthly flow per account under a view.
func (s *LedgerService) Balances(ctx context.Context, v core.View) ([]core.AccountBalance, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return core.AccountBalances(snap, v, core.NewAccountIndex(snap.Accounts)), nil
}

// Settlement nets cross-persona payments over the whole ledger,
// regardless of the active view.
func (s *LedgerService) Settlement(ctx context.Context) (core.Settlement, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return core.Settlement{}, err
	}
	metrics.SettlementCalcs.Inc()
	return core.Settle(snap, core.NewAccountIndex(snap.Accounts)), nil
}

// Export returns the full-state snapshot for download.
func (s *LedgerService) Export(ctx context.Context) (core.Snapshot, error) {
	return s.repo.Snapshot(ctx)
}

// Import replaces the whole ledger with the snapshot after re-validating
// the family invariants; the file is never trusted blindly.
func (s *LedgerService) Import(ctx context.Context, snap core.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidSnapshot, err)
	}
	if err := s.repo.ReplaceAll(ctx, snap); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventImported, "", ""))
	return nil
}

func (s *LedgerService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger event",
			"kind", ev.Kind, "entry_id", ev.EntryID, "error", err)
	}
}

// Close releases the storage handle.
func (s *LedgerService) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}
