package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"haushalt/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func budgetEntry(id, account string, cents int64, owner core.Persona) core.Entry {
	return core.Entry{
		ID:       id,
		Name:     "entry " + id,
		Amount:   core.Money{Cents: cents},
		Account:  account,
		Owner:    owner,
		PaidBy:   owner,
		Category: core.CategoryBudget,
	}
}

func TestUpsertFamilyAndSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	primary := budgetEntry("p1", "N26", 5000, core.PersonaMain)
	primary.IsShared = true
	shadow := budgetEntry("p1_partner", "N26", 2500, core.PersonaPartner)
	shadow.IsShared = true
	shadow.LinkedID = "p1"
	shadow.PaidBy = core.PersonaMain

	if err := repo.UpsertFamily(ctx, primary, []core.Entry{shadow}); err != nil {
		t.Fatalf("upsert family: %v", err)
	}

	snap, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Budget) != 2 {
		t.Fatalf("got %d budget entries, want 2", len(snap.Budget))
	}

	got, err := repo.GetEntry(ctx, "p1_partner")
	if err != nil {
		t.Fatalf("get shadow: %v", err)
	}
	if got.LinkedID != "p1" || got.PaidBy != core.PersonaMain {
		t.Fatalf("shadow fields lost: %+v", got)
	}
}

func TestUpsertFamilyClearsStaleShadows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	primary := budgetEntry("p1", "N26", 5000, core.PersonaMain)
	primary.IsShared = true
	shadow := budgetEntry("p1_partner", "N26", 2500, core.PersonaPartner)
	shadow.IsShared = true
	shadow.LinkedID = "p1"

	if err := repo.UpsertFamily(ctx, primary, []core.Entry{shadow}); err != nil {
		t.Fatalf("upsert family: %v", err)
	}

	// un-split: same primary, no shadows
	primary.IsShared = false
	if err := repo.UpsertFamily(ctx, primary, nil); err != nil {
		t.Fatalf("un-split upsert: %v", err)
	}

	if _, err := repo.GetEntry(ctx, "p1_partner"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("stale shadow survived: %v", err)
	}
}

func TestDeleteFamilyCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	primary := budgetEntry("p1", "Joint", 10000, core.PersonaShared)
	primary.IsShared = true
	shadows := []core.Entry{
		budgetEntry("p1_main", "Joint", 5000, core.PersonaMain),
		budgetEntry("p1_partner", "Joint", 5000, core.PersonaPartner),
	}
	for i := range shadows {
		shadows[i].IsShared = true
		shadows[i].LinkedID = "p1"
	}
	if err := repo.UpsertFamily(ctx, primary, shadows); err != nil {
		t.Fatalf("upsert family: %v", err)
	}

	if err := repo.DeleteFamily(ctx, "p1"); err != nil {
		t.Fatalf("delete family: %v", err)
	}
	snap, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Budget) != 0 {
		t.Fatalf("cascade left %d entries behind", len(snap.Budget))
	}

	if err := repo.DeleteFamily(ctx, "p1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestAccountRenameCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acc := core.Account{ID: "a1", Name: "N26", Owner: core.PersonaMain}
	if err := repo.UpsertAccount(ctx, acc); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := repo.UpsertFamily(ctx, budgetEntry("e1", "N26", 100, core.PersonaMain), nil); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	acc.Name = "N26 Main"
	if err := repo.UpsertAccount(ctx, acc); err != nil {
		t.Fatalf("rename account: %v", err)
	}

	e, err := repo.GetEntry(ctx, "e1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if e.Account != "N26 Main" {
		t.Fatalf("rename did not cascade, entry account = %q", e.Account)
	}
}

func TestUpsertAccountRejectsDuplicateName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertAccount(ctx, core.Account{ID: "a1", Name: "N26", Owner: core.PersonaMain}); err != nil {
		t.Fatalf("create account: %v", err)
	}

	err := repo.UpsertAccount(ctx, core.Account{ID: "a2", Name: "N26", Owner: core.PersonaPartner})
	if !errors.Is(err, core.ErrDuplicateAccount) {
		t.Fatalf("duplicate insert: got %v, want ErrDuplicateAccount", err)
	}

	// renaming onto a taken name is the same violation
	if err := repo.UpsertAccount(ctx, core.Account{ID: "a2", Name: "DKB", Owner: core.PersonaPartner}); err != nil {
		t.Fatalf("create second account: %v", err)
	}
	err = repo.UpsertAccount(ctx, core.Account{ID: "a2", Name: "N26", Owner: core.PersonaPartner})
	if !errors.Is(err, core.ErrDuplicateAccount) {
		t.Fatalf("rename collision: got %v, want ErrDuplicateAccount", err)
	}
}

func TestDeleteAccountReassignsEntries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertAccount(ctx, core.Account{ID: "a1", Name: "N26", Owner: core.PersonaMain}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := repo.UpsertFamily(ctx, budgetEntry("e1", "N26", 100, core.PersonaMain), nil); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	n, err := repo.CountEntriesForAccount(ctx, "N26")
	if err != nil || n != 1 {
		t.Fatalf("count = %d, %v; want 1", n, err)
	}

	if err := repo.DeleteAccount(ctx, "a1"); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	e, err := repo.GetEntry(ctx, "e1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if e.Account != core.UnassignedAccount {
		t.Fatalf("entry not reassigned, account = %q", e.Account)
	}

	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("account not deleted: %+v", accounts)
	}
}

func TestReplaceAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertFamily(ctx, budgetEntry("old", "N26", 100, core.PersonaMain), nil); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	snap := core.Snapshot{
		Income: []core.Entry{{
			ID: "i1", Name: "Salary", Amount: core.Money{Cents: 300000},
			Account: "N26", Owner: core.PersonaMain, PaidBy: core.PersonaMain,
			Category: core.CategoryIncome,
		}},
		Accounts: []core.Account{{ID: "a1", Name: "N26", Owner: core.PersonaMain}},
	}
	if err := repo.ReplaceAll(ctx, snap); err != nil {
		t.Fatalf("replace all: %v", err)
	}

	got, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(got.Budget) != 0 || len(got.Income) != 1 || len(got.Accounts) != 1 {
		t.Fatalf("unexpected state after import: %+v", got)
	}
}
