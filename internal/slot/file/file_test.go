package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	if _, ok, err := s.Get(ctx, "db_items"); ok || err != nil {
		t.Fatalf("expected missing slot, ok=%v err=%v", ok, err)
	}

	payload := []byte(`[{"desc":"Coffee","amount":"3.50","type":"Saida"}]`)
	if err := s.Set(ctx, "db_items", payload); err != nil {
		t.Fatalf("set: %v", err)
	}
	onDisk, err := os.ReadFile(filepath.Join(dir, "db_items.json"))
	if err != nil || string(onDisk) != string(payload) {
		t.Fatalf("unexpected file contents: %q err=%v", onDisk, err)
	}

	if err := s.Set(ctx, "db_items", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, ok, err := s.Get(ctx, "db_items")
	if err != nil || !ok || string(got) != "[]" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}

	// No temp files left behind.
	matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("leftover temp files: %v", matches)
	}

	if err := s.Delete(ctx, "db_items"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "db_items.json")); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
	if err := s.Delete(ctx, "db_items"); err != nil {
		t.Fatalf("deleting a missing slot should not fail: %v", err)
	}
}

func TestFileStoreRejectsBadKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, key := range []string{"", ".", "..", "../escape", `a\b`, "a/b"} {
		if err := s.Set(context.Background(), key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}
