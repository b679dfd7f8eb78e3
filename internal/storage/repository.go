// Package storage persists the ledger in SQLite. Entries are flat rows
// with a group_type discriminator; accounts are a simple id/name/owner/
// iban table. Every multi-row family write runs in a single transaction
// so a primary is never visible without its shadows.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"haushalt/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const entryColumns = "id, group_type, name, amount, account, interval, category, savings_type, owner, paid_by, is_shared, linked_id"

// isUniqueViolation matches the driver's constraint failure text; the
// pure Go sqlite driver exposes no typed error for it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (core.Entry, error) {
	var (
		e                          core.Entry
		groupType                  string
		interval, costCat, savings sql.NullString
		linkedID                   sql.NullString
	)
	err := row.Scan(&e.ID, &groupType, &e.Name, &e.Amount.Cents, &e.Account,
		&interval, &costCat, &savings, &e.Owner, &e.PaidBy, &e.IsShared, &linkedID)
	if err != nil {
		return core.Entry{}, err
	}
	e.Category = core.Category(groupType)
	e.LinkedID = linkedID.String
	switch e.Category {
	case core.CategoryFixed:
		e.Fixed = &core.FixedDetails{
			Interval: core.Interval(interval.String),
			Category: costCat.String,
		}
	case core.CategorySavings:
		e.Savings = &core.SavingsDetails{Type: core.SavingsType(savings.String)}
	}
	return e, nil
}

func upsertEntryTx(ctx context.Context, tx *sql.Tx, e core.Entry) error {
	var interval, costCat, savings, linkedID any
	if e.Fixed != nil {
		interval = string(e.Fixed.Interval)
		costCat = e.Fixed.Category
	}
	if e.Savings != nil {
		savings = string(e.Savings.Type)
	}
	if e.LinkedID != "" {
		linkedID = e.LinkedID
	}
	_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO entries
		(`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Category), e.Name, e.Amount.Cents, e.Account,
		interval, costCat, savings, string(e.Owner), string(e.PaidBy), e.IsShared, linkedID)
	if err != nil {
		return fmt.Errorf("upsert entry %s: %w", e.ID, err)
	}
	return nil
}

// GetEntry loads a single entry. Returns core.ErrNotFound for missing ids.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.Entry, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM entries WHERE id = ?", id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, fmt.Errorf("entry %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// Snapshot reads the whole ledger inside one transaction so callers never
// observe a primary without its shadows.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return snap, fmt.Errorf("begin snapshot read: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "SELECT "+entryColumns+" FROM entries ORDER BY created_at, id")
	if err != nil {
		return snap, fmt.Errorf("query entries: %w", err)
	}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan entry: %w", err)
		}
		switch e.Category {
		case core.CategoryFixed:
			snap.Fixed = append(snap.Fixed, e)
		case core.CategoryBudget:
			snap.Budget = append(snap.Budget, e)
		case core.CategoryIncome:
			snap.Income = append(snap.Income, e)
		case core.CategorySavings:
			snap.Savings = append(snap.Savings, e)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return snap, fmt.Errorf("iterate entries: %w", err)
	}
	rows.Close()

	accounts, err := listAccountsTx(ctx, tx)
	if err != nil {
		return snap, err
	}
	snap.Accounts = accounts

	if err := tx.Commit(); err != nil {
		return snap, fmt.Errorf("commit snapshot read: %w", err)
	}
	return snap, nil
}

// UpsertFamily writes a primary and its wanted shadows atomically and
// removes any stale shadow that is no longer part of the family. An
// un-split edit passes an empty shadow list, which clears them all.
func (r *SQLiteRepository) UpsertFamily(ctx context.Context, primary core.Entry, shadows []core.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin family write: %w", err)
	}
	defer tx.Rollback()

	if err := upsertEntryTx(ctx, tx, primary); err != nil {
		return err
	}
	for _, sh := range shadows {
		if err := upsertEntryTx(ctx, tx, sh); err != nil {
			return err
		}
	}

	query := "DELETE FROM entries WHERE linked_id = ?"
	args := []any{primary.ID}
	if len(shadows) > 0 {
		placeholders := make([]string, len(shadows))
		for i, sh := range shadows {
			placeholders[i] = "?"
			args = append(args, sh.ID)
		}
		query += " AND id NOT IN (" + strings.Join(placeholders, ", ") + ")"
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear stale shadows for %s: %w", primary.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit family write: %w", err)
	}
	return nil
}

// DeleteFamily removes a primary together with every entry linked to it.
func (r *SQLiteRepository) DeleteFamily(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin family delete: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE id = ? OR linked_id = ?", id, id)
	if err != nil {
		return fmt.Errorf("delete family %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete family %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %s: %w", id, core.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit family delete: %w", err)
	}
	return nil
}

func listAccountsTx(ctx context.Context, tx *sql.Tx) ([]core.Account, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id, name, owner, COALESCE(iban, '') FROM accounts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Owner, &a.IBAN); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin account read: %w", err)
	}
	defer tx.Rollback()

	accounts, err := listAccountsTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	return accounts, tx.Commit()
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	var a core.Account
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, owner, COALESCE(iban, '') FROM accounts WHERE id = ?", id).
		Scan(&a.ID, &a.Name, &a.Owner, &a.IBAN)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// UpsertAccount creates or updates an account. A rename cascades onto
// every entry referencing the old name, in the same transaction, because
// entries reference accounts by display name.
func (r *SQLiteRepository) UpsertAccount(ctx context.Context, a core.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin account write: %w", err)
	}
	defer tx.Rollback()

	var oldName string
	err = tx.QueryRowContext(ctx, "SELECT name FROM accounts WHERE id = ?", a.ID).Scan(&oldName)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO accounts (id, name, owner, iban) VALUES (?, ?, ?, ?)",
			a.ID, a.Name, string(a.Owner), a.IBAN); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("account %q: %w", a.Name, core.ErrDuplicateAccount)
			}
			return fmt.Errorf("insert account %s: %w", a.Name, err)
		}
	case err != nil:
		return fmt.Errorf("lookup account %s: %w", a.ID, err)
	default:
		if _, err := tx.ExecContext(ctx,
			"UPDATE accounts SET name = ?, owner = ?, iban = ? WHERE id = ?",
			a.Name, string(a.Owner), a.IBAN, a.ID); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("account %q: %w", a.Name, core.ErrDuplicateAccount)
			}
			return fmt.Errorf("update account %s: %w", a.ID, err)
		}
		if oldName != a.Name {
			if _, err := tx.ExecContext(ctx,
				"UPDATE entries SET account = ? WHERE account = ?", a.Name, oldName); err != nil {
				return fmt.Errorf("cascade rename %s -> %s: %w", oldName, a.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit account write: %w", err)
	}
	return nil
}

// CountEntriesForAccount reports how many entries reference the account
// name. Used to gate deletes behind an explicit reassignment confirmation.
func (r *SQLiteRepository) CountEntriesForAccount(ctx context.Context, name string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE account = ?", name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries for account %s: %w", name, err)
	}
	return n, nil
}

// DeleteAccount removes the account and reassigns referencing entries to
// the Unassigned sentinel instead of deleting them (orphan-safe delete).
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin account delete: %w", err)
	}
	defer tx.Rollback()

	var name string
	err = tx.QueryRowContext(ctx, "SELECT name FROM accounts WHERE id = ?", id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup account %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE entries SET account = ? WHERE account = ?", core.UnassignedAccount, name); err != nil {
		return fmt.Errorf("reassign entries of %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit account delete: %w", err)
	}
	return nil
}

// ReplaceAll swaps the entire ledger for the snapshot's contents in one
// transaction. Callers validate the snapshot first.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, snap core.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM accounts"); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}

	for _, a := range snap.Accounts {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO accounts (id, name, owner, iban) VALUES (?, ?, ?, ?)",
			a.ID, a.Name, string(a.Owner), a.IBAN); err != nil {
			return fmt.Errorf("import account %s: %w", a.Name, err)
		}
	}
	for _, e := range snap.AllEntries() {
		if err := upsertEntryTx(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
