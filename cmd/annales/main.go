package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/arawak/annales/internal/catalog"
	"github.com/arawak/annales/internal/combo"
	"github.com/arawak/annales/internal/config"
	"github.com/arawak/annales/internal/docs"
	"github.com/arawak/annales/internal/httpapi"
	"github.com/arawak/annales/internal/store"
	"github.com/arawak/annales/internal/tags"
	"github.com/arawak/annales/migrations"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With("version", version)

	deps := httpapi.Deps{Docs: docs.NewResolver(cfg.DataDir)}

	if cfg.AuthMode == config.AuthAPIKey {
		deps.APIKeys, err = httpapi.LoadAPIKeys(cfg.APIKeysFile)
		if err != nil {
			logger.Error("failed to load api keys", "error", err)
			os.Exit(1)
		}
	}

	if cfg.TagDenylistFile != "" {
		deps.Denylist, err = tags.LoadDenylist(cfg.TagDenylistFile)
		if err != nil {
			logger.Error("failed to load tag denylist", "error", err)
			os.Exit(1)
		}
	}

	var src catalog.Source = catalog.FileSource{Path: cfg.CatalogPath()}
	var db *sqlx.DB
	if cfg.DBDSN != "" {
		db, err = sqlx.Open("mysql", cfg.DBDSN)
		if err != nil {
			logger.Error("failed to open db", "error", err)
			os.Exit(1)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)

		if err := migrations.Up(cfg.DBDSN); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		st := store.New(db)
		src = st
		deps.DB = st
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	deps.Catalog, err = catalog.Load(loadCtx, src)
	cancelLoad()
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("catalog loaded", "exercises", deps.Catalog.Len())

	if cfg.GeneratorURL != "" {
		deps.Generator = &combo.Client{
			URL:        cfg.GeneratorURL,
			HTTPClient: &http.Client{Timeout: cfg.GeneratorTimeout},
		}
	} else {
		logger.Warn("combo generator not configured, /api/generate will answer 503")
	}

	router := httpapi.NewRouter(cfg, deps, logger)

	srv := &http.Server{Addr: cfg.Bind, Handler: router}
	go func() {
		logger.Info("server starting", "addr", cfg.Bind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}
}
