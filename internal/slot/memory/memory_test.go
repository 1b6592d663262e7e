package memory

import (
	"context"
	"testing"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Get(ctx, "db_items"); ok || err != nil {
		t.Fatalf("expected missing slot, ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "db_items", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := s.Get(ctx, "db_items")
	if err != nil || !ok || string(got) != "[]" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}

	// Returned bytes are a copy.
	got[0] = 'x'
	again, _, _ := s.Get(ctx, "db_items")
	if string(again) != "[]" {
		t.Fatalf("store mutated through returned slice: %q", again)
	}

	if err := s.Delete(ctx, "db_items"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "db_items"); ok {
		t.Fatalf("expected slot to be gone")
	}
	if err := s.Delete(ctx, "db_items"); err != nil {
		t.Fatalf("deleting a missing slot should not fail: %v", err)
	}
}

func TestNewSeeded(t *testing.T) {
	seed := map[string][]byte{"k": []byte("v")}
	s := NewSeeded(seed)
	seed["k"][0] = 'x'

	got, ok, err := s.Get(context.Background(), "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("unexpected seeded value: %q ok=%v err=%v", got, ok, err)
	}
}
