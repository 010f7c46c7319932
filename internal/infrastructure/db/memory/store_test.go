package memory

import (
	"context"
	"testing"
)

func TestStore_GetMissing(t *testing.T) {
	s := NewStore()
	v, found, err := s.Get(context.Background(), "users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || v != nil {
		t.Fatalf("expected missing key, got %q", v)
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.Set(ctx, "current_session", []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, found, err := s.Get(ctx, "current_session")
	if err != nil || !found {
		t.Fatalf("expected value, found=%v err=%v", found, err)
	}
	if string(v) != `{"id":"1"}` {
		t.Fatalf("unexpected value %q", v)
	}

	if err := s.Delete(ctx, "current_session"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := s.Get(ctx, "current_session"); found {
		t.Fatal("expected key to be gone after delete")
	}
	if err := s.Delete(ctx, "current_session"); err != nil {
		t.Fatalf("deleting a missing key must not fail: %v", err)
	}
}

func TestStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	in := []byte("abc")
	_ = s.Set(ctx, "k", in)
	in[0] = 'z'

	out, _, _ := s.Get(ctx, "k")
	if string(out) != "abc" {
		t.Fatalf("stored value changed through caller slice: %q", out)
	}
	out[1] = 'z'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value changed through returned slice: %q", again)
	}
}
