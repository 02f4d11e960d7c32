package snapshot

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "s1", "artifact.json", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := s.Get(ctx, "s1", "artifact.json")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("got %q", got)
	}

	// stored content is a copy, not a shared slice
	got[0] = 'X'
	again, err := s.Get(ctx, "s1", "artifact.json")
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if string(again) != `{"a":1}` {
		t.Fatalf("stored content mutated: %q", again)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "s1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_KeyValidation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Put(ctx, "", "p", nil); err == nil {
		t.Fatal("expected error for empty session")
	}
	if err := s.Put(ctx, "s1", " ", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := s.List(ctx, ""); err == nil {
		t.Fatal("expected error for empty session")
	}
}

func TestMemoryStore_ListSorted(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, p := range []string{"result.json", "artifact.json", "preview.html"} {
		if err := s.Put(ctx, "s1", p, []byte("x")); err != nil {
			t.Fatalf("put %s failed: %v", p, err)
		}
	}
	if err := s.Put(ctx, "s2", "other.json", []byte("y")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	paths, err := s.List(ctx, "s1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"artifact.json", "preview.html", "result.json"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
}
