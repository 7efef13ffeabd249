package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/arawak/annales/internal/catalog"
	"github.com/arawak/annales/internal/config"
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

	file := flag.String("file", cfg.CatalogPath(), "JSON catalog to import")
	standardize := flag.Bool("standardize", false, "map topics onto the standard vocabulary before importing")
	rules := flag.String("rules", "", "YAML topic rules used by -standardize instead of the built-in ones")
	flag.Parse()

	if cfg.DBDSN == "" {
		logger.Error("ANNALES_DB_DSN is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	exercises, err := catalog.FileSource{Path: *file}.Load(ctx)
	if err != nil {
		logger.Error("failed to read catalog", "file", *file, "error", err)
		os.Exit(1)
	}

	if *standardize {
		std := tags.DefaultStandardizer()
		if *rules != "" {
			if std, err = tags.LoadStandardizer(*rules); err != nil {
				logger.Error("failed to load topic rules", "file", *rules, "error", err)
				os.Exit(1)
			}
		}
		exercises = std.Apply(exercises)
		logger.Info("topics standardized", "rules", len(std.Rules), "aliases", len(std.Aliases))
	}

	if err := migrations.Up(cfg.DBDSN); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	db, err := sqlx.Open("mysql", cfg.DBDSN)
	if err != nil {
		logger.Error("failed to open db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	stats, err := store.New(db).ImportExercises(ctx, exercises)
	if err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
	logger.Info("catalog imported", "file", *file, "exercises", stats.Exercises, "tags", stats.Tags, "corrections", stats.Corrections)
}
