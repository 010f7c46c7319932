package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cellarstock/inventory-auth/internal/api"
	"github.com/cellarstock/inventory-auth/internal/api/handler"
	"github.com/cellarstock/inventory-auth/internal/api/metrics"
	"github.com/cellarstock/inventory-auth/internal/core/ports"
	"github.com/cellarstock/inventory-auth/internal/core/service"
	"github.com/cellarstock/inventory-auth/internal/infrastructure/audit"
	"github.com/cellarstock/inventory-auth/internal/infrastructure/config"
	"github.com/cellarstock/inventory-auth/internal/infrastructure/db/memory"
	mongodb "github.com/cellarstock/inventory-auth/internal/infrastructure/db/mongo"
	redisdb "github.com/cellarstock/inventory-auth/internal/infrastructure/db/redis"
	"github.com/cellarstock/inventory-auth/internal/infrastructure/queue"
	"github.com/cellarstock/inventory-auth/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("failed to open identity store")
	}
	defer backend.close()

	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, backend.audit, logger.Component("audit-queue"))
	dispatcher.Start(ctx)

	sessions := service.NewSessionManager(backend.store, logger.Component("session"),
		service.WithAuditor(dispatcher),
		service.WithPostHydrationHook(service.DelayHook(cfg.Session.HydrationDelay)),
	)

	// Requests to protected areas answer "loading" until this returns.
	go func() {
		sessions.Hydrate(ctx)
		if sessions.State().Account != nil {
			metrics.SessionActive.Set(1)
		}
	}()

	e := api.NewRouter(api.Deps{
		Sessions: sessions,
		Log:      log,
		Checks:   backend.checks,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Store.Backend).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(log)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	dispatcher.Close()
	cancel()
	log.Info().Msg("stopped")
}

type backend struct {
	store  ports.IdentityStore
	audit  ports.AuditRepository
	checks map[string]handler.PingFunc
	close  func()
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	logAudit := audit.NewLogRepository(log)

	switch cfg.Store.Backend {
	case config.BackendRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return &backend{
			store: redisdb.NewIdentityStore(client, cfg.Store.Namespace),
			audit: logAudit,
			checks: map[string]handler.PingFunc{
				"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
			},
			close: func() { _ = client.Close() },
		}, nil

	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "inventory-auth",
		})
		if err != nil {
			return nil, err
		}
		auditRepo := mongodb.NewAuditRepository(db)
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to create audit indexes")
		}
		return &backend{
			store: mongodb.NewIdentityStore(db),
			audit: auditRepo,
			checks: map[string]handler.PingFunc{
				"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			},
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(ctx)
			},
		}, nil

	default:
		return &backend{
			store:  memory.NewStore(),
			audit:  logAudit,
			checks: map[string]handler.PingFunc{},
			close:  func() {},
		}, nil
	}
}

func waitForShutdown(log zerolog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")
}
