package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrmaccess/internal/domain/audit"
	"hrmaccess/internal/domain/auth"
	"hrmaccess/internal/domain/employees"
	"hrmaccess/internal/platform/config"
	"hrmaccess/internal/platform/db"
	"hrmaccess/internal/platform/metrics"
	accesshandler "hrmaccess/internal/transport/http/handlers/access"
	audithandler "hrmaccess/internal/transport/http/handlers/audit"
	authhandler "hrmaccess/internal/transport/http/handlers/auth"
	employeeshandler "hrmaccess/internal/transport/http/handlers/employees"
	usershandler "hrmaccess/internal/transport/http/handlers/users"
	"hrmaccess/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

type UserStore interface {
	authhandler.UserStore
	usershandler.UserLister
}

// Deps are the collaborators the router is assembled from.
type Deps struct {
	Config      config.Config
	Users       UserStore
	Employees   employees.StoreAPI
	AuditSink   employees.AuditSink
	AuditReader audithandler.Reader
	Perms       middleware.PermissionStore
	Metrics     *metrics.Collector
	Ready       func(ctx context.Context) error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	perms, err := auth.NewAuthorizer()
	if err != nil {
		pool.Close()
		return nil, err
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	auditStore := audit.New(pool)
	router := NewRouter(Deps{
		Config:      cfg,
		Users:       auth.NewStore(pool),
		Employees:   employees.NewStore(pool),
		AuditSink:   auditSink(cfg.AuditLogSink, auditStore),
		AuditReader: auditStore,
		Perms:       perms,
		Metrics:     collector,
		Ready:       pool.Ping,
	})

	return &App{Config: cfg, DB: pool, Router: router}, nil
}

func auditSink(kind string, store *audit.Service) employees.AuditSink {
	switch kind {
	case config.AuditSinkLog:
		return audit.NewLogSink(nil)
	case config.AuditSinkBoth:
		return audit.Multi{store, audit.NewLogSink(nil)}
	default:
		return store
	}
}

func NewRouter(d Deps) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(d.Config.Environment == "production"))
	router.Use(middleware.BodyLimit(d.Config.MaxBodyBytes))
	router.Use(middleware.Auth(d.Config.JWTSecret))
	router.Use(middleware.Logger(d.Metrics))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if d.Metrics != nil {
		router.Handle("/metrics", d.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authhandler.NewHandler(d.Users, d.Config.JWTSecret, d.Config.TokenTTL).HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			accesshandler.NewHandler(d.Perms).RegisterRoutes(r)
			usershandler.NewHandler(d.Users, d.Perms).RegisterRoutes(r)
			employeeshandler.NewHandler(employees.NewService(d.Employees, d.AuditSink, d.Metrics), d.Perms).RegisterRoutes(r)
			if d.AuditReader != nil {
				audithandler.NewHandler(d.AuditReader, d.Perms).RegisterRoutes(r)
			}
		})
	})

	return router
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	if err := run(config.Load()); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown failed", "err", err)
		}
	}()

	slog.Info("HRM access server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
