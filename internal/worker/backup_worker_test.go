package worker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"haushalt/internal/core"
)

type staticSource struct {
	snap core.Snapshot
}

func (s staticSource) Export(ctx context.Context) (core.Snapshot, error) {
	return s.snap, nil
}

func testSource() staticSource {
	return staticSource{snap: core.Snapshot{
		Income: []core.Entry{{
			ID: "i1", Name: "Salary", Amount: core.Money{Cents: 300000},
			Account: "N26", Owner: core.PersonaMain, PaidBy: core.PersonaMain,
			Category: core.CategoryIncome,
		}},
		Accounts: []core.Account{{ID: "a1", Name: "N26", Owner: core.PersonaMain}},
	}}
}

func TestWriteBackupProducesLoadableSnapshot(t *testing.T) {
	dir := t.TempDir()
	w := NewBackupWorker(testSource(), nil, dir, time.Hour, 5)

	if err := w.WriteBackup(context.Background()); err != nil {
		t.Fatalf("write backup: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "budget_data_*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("got %d backups, %v; want 1", len(matches), err)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal backup: %v", err)
	}
	if len(snap.Income) != 1 || snap.Income[0].Name != "Salary" {
		t.Fatalf("backup lost data: %+v", snap)
	}
	if err := snap.Validate(); err != nil {
		t.Fatalf("backup snapshot invalid: %v", err)
	}
}

func TestPruneKeepsNewestBackups(t *testing.T) {
	dir := t.TempDir()
	w := NewBackupWorker(testSource(), nil, dir, time.Hour, 2)

	names := []string{
		"budget_data_20260101T000000.json",
		"budget_data_20260102T000000.json",
		"budget_data_20260103T000000.json",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := w.prune(); err != nil {
		t.Fatalf("prune: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "budget_data_*.json"))
	if len(matches) != 2 {
		t.Fatalf("got %d backups after prune, want 2", len(matches))
	}
	if filepath.Base(matches[0]) != names[1] || filepath.Base(matches[1]) != names[2] {
		t.Fatalf("pruned wrong files: %v", matches)
	}
}
