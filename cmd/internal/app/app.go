// Package app wires the uniblog auth server runtime: config, logging, the
// database pool, migrations, HTTP routes, metrics and the refresh-token
// sweeper.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"uniblog/cmd/identity"
	"uniblog/cmd/internal/auth"
	authapi "uniblog/cmd/internal/auth/api"
	"uniblog/cmd/internal/auth/session"
	authtoken "uniblog/cmd/internal/auth/token"
	"uniblog/cmd/security/password"
	sectoken "uniblog/cmd/security/token"
)

// App is the server runtime. It owns the pool lifecycle and the background
// sweeper; request handling is delegated to the auth handler.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	metrics  *Metrics
	sessions session.Store
	auth     *authapi.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	if len(cfg.JWTSecret) < authtoken.MinSecretBytes {
		return nil, fmt.Errorf("app: UNIBLOG_JWT_SECRET must be at least %d bytes", authtoken.MinSecretBytes)
	}
	if cfg.RequireTokenHMAC {
		if _, err := sectoken.HMACKeyFromEnv(32); err != nil {
			return nil, fmt.Errorf("app: token HMAC required: %w", err)
		}
	}

	var (
		dbPool    *pgxpool.Pool
		dbEnabled bool
		dir       identity.Directory
		sessions  session.Store
	)

	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		dir = identity.NewMemoryDirectory()
		sessions = session.NewMemoryStore()
	} else {
		if cfg.MigrateOnStart {
			if err := Migrate(ctx, cfg.DatabaseURL); err != nil {
				return nil, err
			}
			log.Info("db.migrated")
		}

		pool, err := NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("db.enabled.postgres_store")

		pgDir, err := identity.NewPostgresDirectory(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}

		dbPool = pool
		dbEnabled = true
		dir = pgDir
		sessions = session.NewPostgresStore(pool)
	}

	codec, err := authtoken.NewCodec([]byte(cfg.JWTSecret), cfg.AccessTokenTTL)
	if err != nil {
		closePool(dbPool)
		return nil, err
	}

	pw := password.DefaultConfig()
	authority, err := auth.NewAuthority(dir, pw, pw, codec, sessions, cfg.RefreshTokenTTL)
	if err != nil {
		closePool(dbPool)
		return nil, err
	}

	metrics := NewMetrics()
	handler, err := authapi.NewHandler(log, authority, authapi.DefaultConfig(), authapi.WithMetrics(metrics))
	if err != nil {
		closePool(dbPool)
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		metrics:   metrics,
		sessions:  sessions,
		auth:      handler,
	}, nil
}

// Run starts the HTTP server and the sweeper, blocking until context
// cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.auth, a.metrics)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(WithHTTPMetrics(WithSecurityHeaders(mux), a.metrics), a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	sweeperDone := a.startSweeper(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		runErr = err
	}

	stopSweeper()
	<-sweeperDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		if runErr == nil {
			runErr = err
		}
	}

	closePool(a.dbPool)

	if runErr == nil {
		a.log.Info("server.stopped")
	}
	return runErr
}

// startSweeper periodically deletes expired refresh tokens. Stale rows are
// already rejected on use; the sweeper only keeps the table small.
func (a *App) startSweeper(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	if a.cfg.SweepInterval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		ticker := time.NewTicker(a.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := a.sessions.SweepExpired(ctx, time.Now().UTC())
				if err != nil {
					if ctx.Err() == nil {
						a.log.Error("session.sweep.fail", "err", err)
					}
					continue
				}
				a.metrics.ObserveSwept(n)
				if n > 0 {
					a.log.Info("session.sweep", "removed", n)
				}
			}
		}
	}()

	return done
}

func closePool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
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
