// Package app wires the taskd server runtime: config, logging, stores,
// auth, and the HTTP surface.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskd/cmd/identity"
	authapi "taskd/cmd/internal/auth/api"
	"taskd/cmd/internal/auth/token"
	"taskd/cmd/internal/tasks"
)

// App is the taskd server runtime: it owns the HTTP server wiring and the
// persistence handles.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	tokens   *token.Manager
	auth     *authapi.Handler
	tasksAPI *tasks.Handler
}

// New constructs a fully wired App instance from config and logger.
// It fails fast when the token signing secret is missing or too short.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	tokenCfg, err := token.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	tokens, err := token.NewManager(tokenCfg)
	if err != nil {
		return nil, err
	}

	users, taskStore, pool, dbEnabled, err := newStores(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	auth, err := authapi.NewHandler(log, users, tokens, authapi.Config{MaxBodyBytes: cfg.MaxBodyBytes})
	if err != nil {
		return nil, err
	}
	tasksAPI, err := tasks.NewHandler(log, taskStore, tasks.Config{MaxBodyBytes: cfg.MaxBodyBytes})
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		dbPool:    pool,
		dbEnabled: dbEnabled,
		tokens:    tokens,
		auth:      auth,
		tasksAPI:  tasksAPI,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.tokens, a.auth, a.tasksAPI)

	handler := WithRequestLogging(WithMetrics(WithCORS(mux, a.cfg)), a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStores decides between Postgres-backed persistence and the in-memory
// dev stores.
func newStores(ctx context.Context, cfg Config, log Logger) (identity.Store, tasks.Store, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_stores")
		return identity.NewMemoryStore(), tasks.NewMemoryStore(), nil, false, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, false, err
	}

	users, err := identity.NewPostgresStore(pool, identity.WithSchema(cfg.DBSchema))
	if err != nil {
		pool.Close()
		return nil, nil, nil, false, err
	}
	taskStore, err := tasks.NewPostgresStore(pool, tasks.WithSchema(cfg.DBSchema))
	if err != nil {
		pool.Close()
		return nil, nil, nil, false, err
	}

	log.Info("db.enabled.postgres_stores", "schema", cfg.DBSchema)
	return users, taskStore, pool, true, nil
}
