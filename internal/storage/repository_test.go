package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "registros.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositorySlotLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	if _, ok, err := repo.Get(ctx, "db_items"); ok || err != nil {
		t.Fatalf("expected missing slot, ok=%v err=%v", ok, err)
	}

	first := []byte(`[{"desc":"Salário","amount":"100.00","type":"Entrada"}]`)
	if err := repo.Set(ctx, "db_items", first); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := repo.Get(ctx, "db_items")
	if err != nil || !ok || string(got) != string(first) {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}

	// Set overwrites the whole slot.
	if err := repo.Set(ctx, "db_items", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = repo.Get(ctx, "db_items")
	if string(got) != "[]" {
		t.Fatalf("expected overwritten slot, got %q", got)
	}

	if err := repo.Delete(ctx, "db_items"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "db_items"); ok {
		t.Fatalf("expected slot to be gone")
	}
	if err := repo.Delete(ctx, "db_items"); err != nil {
		t.Fatalf("deleting a missing slot should not fail: %v", err)
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registros.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	repo.Close()

	if err := RunMigrations(path); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
}
