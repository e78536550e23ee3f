// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/cache"
	"github.com/campuslink/campuslink/internal/config"
	"github.com/campuslink/campuslink/internal/geoip"
	"github.com/campuslink/campuslink/internal/handler"
	"github.com/campuslink/campuslink/internal/logging"
	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/scheduler"
	"github.com/campuslink/campuslink/internal/service"
	"github.com/campuslink/campuslink/internal/session"
	"github.com/campuslink/campuslink/internal/storage"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "CampusLink - college campus portal\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSLINK_SESSION_SECRET  Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSLINK_DB_PATH         SQLite database path (default: ./data/campuslink.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSLINK_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSLINK_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSLINK_STORAGE         Attachment store: local|b2 (default: local)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSLINK_REDIS_URL       Redis URL for shared caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSLINK_DO_SEED         Create the demo accounts (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("campuslink %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	logLevel := parseLevel(cfg.LogLevel)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(textHandler))

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	repo := store.NewRepository(db)

	// Warnings and errors also land in the event log
	logger := slog.New(logging.NewEventLogHandler(textHandler, repo.EventLog))
	slog.SetDefault(logger)
	slog.Info("database ready")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, repo, auth.HashPassword); err != nil {
			return fmt.Errorf("seeding demo accounts: %w", err)
		}
		slog.Info("demo accounts ready", "count", len(store.DemoAccounts))
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	attachments, err := storage.New(ctx, storage.Config{
		Driver:       cfg.StorageDriver,
		LocalDir:     cfg.UploadsDir,
		LocalBaseURL: "/uploads",
		B2AccountID:  cfg.B2AccountID,
		B2AppKey:     cfg.B2AppKey,
		B2Bucket:     cfg.B2Bucket,
	})
	if err != nil {
		return fmt.Errorf("initializing attachment storage: %w", err)
	}
	slog.Info("attachment storage initialized", "driver", cfg.StorageDriver)

	statsCache := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTLDuration(),
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	defer func() { _ = statsCache.Close() }()

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("failed to load GeoIP database, country lookups disabled", "path", cfg.GeoIPDBPath, "error", err)
	} else if geo.Enabled() {
		slog.Info("GeoIP lookups enabled", "path", cfg.GeoIPDBPath)
	}
	defer func() { _ = geo.Close() }()

	services := service.New(service.Deps{
		Repo:     repo,
		Storage:  attachments,
		Cache:    statsCache,
		GeoIP:    geo,
		Logger:   logger,
		StatsTTL: cfg.CacheTTLDuration(),
	})

	sched := scheduler.New(scheduler.Options{
		SessionRetention: cfg.SessionRetention(),
		EventRetention:   cfg.EventRetention(),
		PruneSessions:    repo.DeleteUserSessionsBefore,
		PruneEvents:      repo.EventLog.DeleteBefore,
		GeoIP:            geo,
	}, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	renderer, err := handler.NewRenderer(sessionManager, services.Markdown, cfg.IsDevelopment())
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()

	h := handler.New(handler.Deps{
		Services:        services,
		Flow:            auth.NewFlow(repo.Users),
		Sessions:        session.NewStore(sessionManager),
		Renderer:        renderer,
		LoginProtection: loginProtection,
		Logger:          logger,
		MaxUploadBytes:  cfg.MaxUploadBytes(),
		IsDev:           cfg.IsDevelopment(),
	})

	routerCfg := handler.RouterConfig{
		CSRF:   middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerPort),
		Health: handler.NewHealthHandler(db, "", versionInfo),
	}
	if local, ok := attachments.(*storage.Local); ok {
		routerCfg.Uploads = http.FileServer(http.Dir(local.Root()))
		routerCfg.Health = handler.NewHealthHandler(db, local.Root(), versionInfo)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Mount("/", h.Routes(routerCfg))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
