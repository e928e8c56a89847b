package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"child-immunization-history/internal/adapters/auth/odin"
	"child-immunization-history/internal/adapters/lock/redislock"
	pg "child-immunization-history/internal/adapters/storage/postgres"
	"child-immunization-history/internal/domain/schedule"
	"child-immunization-history/internal/platform/config"
	"child-immunization-history/internal/platform/logger"
	"child-immunization-history/internal/platform/metrics"
	"child-immunization-history/internal/ports/auth"
	"child-immunization-history/internal/router"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// app reúne las dependencias de proceso compartidas por serve y worker.
type app struct {
	cfg      config.Config
	log      logger.Logger
	db       *sql.DB
	rdb      *redis.Client
	registry *prometheus.Registry
	opts     router.Options
	svcs     *router.Services
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}

	catalog, err := schedule.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	if cfg.DBDSN != "" {
		if a.db, err = pg.Open(cfg.DBDSN); err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := seedIfEmpty(ctx, pg.NewCatalogRepo(a.db), catalog, log); err != nil {
			a.close()
			return nil, err
		}
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	if cfg.RedisURL != "" {
		if a.rdb, err = redislock.Open(ctx, cfg.RedisURL); err != nil {
			a.close()
			return nil, err
		}
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	if verifier == nil {
		log.Warn("ODIN_BASE_URL not set, accepting X-Debug-User-ID", nil)
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a.opts = router.Options{
		AuthVerifier: verifier,
		DB:           a.db,
		LockTTL:      cfg.LockTTL,
		Catalog:      catalog,
		Location:     loc,
		Logger:       log,
		Metrics:      metrics.NewCollector(a.registry),
		MaxRetries:   cfg.ReconcileMaxRetries,
		Gatherer:     a.registry,
	}
	if a.rdb != nil {
		a.opts.Redis = a.rdb
	}

	if a.svcs, err = router.BuildServices(a.opts); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func newVerifier(cfg config.Config) (auth.AuthVerifier, error) {
	if cfg.OdinBaseURL == "" {
		return nil, nil
	}
	v, err := odin.NewVerifier(odin.Config{BaseURL: cfg.OdinBaseURL, APIKey: cfg.OdinAPIKey})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// seedIfEmpty carga el calendario YAML solo si la base todavía no tiene uno activo.
func seedIfEmpty(ctx context.Context, repo *pg.CatalogRepo, catalog schedule.Catalog, log logger.Logger) error {
	_, err := repo.LoadCatalog(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, schedule.ErrEmptyCatalog) {
		return fmt.Errorf("load catalog: %w", err)
	}
	if err := repo.ReplaceCatalog(ctx, catalog); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	log.Info("catalog seeded", map[string]any{"version": catalog.Version, "entries": len(catalog.Entries)})
	return nil
}

func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

const shutdownTimeout = 10 * time.Second
