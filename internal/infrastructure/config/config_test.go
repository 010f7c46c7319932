package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port: want 8080, got %q", cfg.Port)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("Backend: want memory, got %q", cfg.Store.Backend)
	}
	if cfg.Store.Namespace != "inventory" {
		t.Errorf("Namespace: want inventory, got %q", cfg.Store.Namespace)
	}
	if cfg.Session.HydrationDelay != 0 {
		t.Errorf("HydrationDelay: want 0, got %v", cfg.Session.HydrationDelay)
	}
	if cfg.Audit.Workers != 4 {
		t.Errorf("Audit.Workers: want 4, got %d", cfg.Audit.Workers)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development env by default")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":            "9090",
		"ENV":             "production",
		"STORE_BACKEND":   "redis",
		"REDIS_ADDR":      "redis:6379",
		"REDIS_DB":        "2",
		"HYDRATION_DELAY": "1s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.Store.Backend != BackendRedis {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Session.HydrationDelay != time.Second {
		t.Fatalf("HydrationDelay: want 1s, got %v", cfg.Session.HydrationDelay)
	}
	if cfg.IsDevelopment() {
		t.Fatal("expected production env")
	}
}

func TestLoadWith_UnknownBackend(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORE_BACKEND": "etcd",
	}))
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadWith_MalformedDuration(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"HYDRATION_DELAY": "soon",
	}))
	if err == nil {
		t.Fatal("expected error for malformed duration")
	}
}
