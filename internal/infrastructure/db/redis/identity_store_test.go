package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestIdentityStore_Key(t *testing.T) {
	cases := []struct {
		namespace string
		key       string
		want      string
	}{
		{"inventory", "users", "inventory:users"},
		{"inventory", "current_session", "inventory:current_session"},
		{"", "users", "users"},
	}
	for _, tc := range cases {
		s := NewIdentityStore(nil, tc.namespace)
		if got := s.key(tc.key); got != tc.want {
			t.Errorf("namespace=%q key=%q: want %q, got %q", tc.namespace, tc.key, tc.want, got)
		}
	}
}

func newTestStore(t *testing.T) (*IdentityStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdentityStore(client, "inventory"), mr
}

func TestIdentityStore_RoundTrip(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if _, found, err := s.Get(ctx, "users"); err != nil || found {
		t.Fatalf("missing key: want found=false err=nil, got found=%v err=%v", found, err)
	}

	if err := s.Set(ctx, "users", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := mr.Get("inventory:users"); got != `[{"id":"1"}]` {
		t.Fatalf("expected namespaced key in redis, got %q", got)
	}

	v, found, err := s.Get(ctx, "users")
	if err != nil || !found || string(v) != `[{"id":"1"}]` {
		t.Fatalf("get: unexpected %q found=%v err=%v", v, found, err)
	}

	if err := s.Delete(ctx, "users"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := s.Get(ctx, "users"); found {
		t.Fatal("expected key to be gone after delete")
	}
	if err := s.Delete(ctx, "users"); err != nil {
		t.Fatalf("deleting a missing key should succeed: %v", err)
	}
}

func TestIdentityStore_ConnectionError(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()

	if _, _, err := s.Get(context.Background(), "users"); err == nil {
		t.Fatal("expected error when redis is down")
	}
	if err := s.Set(context.Background(), "users", []byte("[]")); err == nil {
		t.Fatal("expected error when redis is down")
	}
}
