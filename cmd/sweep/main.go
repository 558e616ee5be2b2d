// Command sweep reconciles the document catalog with the upload directory.
// It removes files no catalog row references and reports (or prunes) rows
// whose file has gone missing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"complianceadvisor/internal/config"
	"complianceadvisor/internal/db"
	"complianceadvisor/internal/logger"
	"complianceadvisor/internal/repository"
	"complianceadvisor/internal/service"
	"complianceadvisor/internal/storage"
)

const defaultGrace = time.Hour

func main() {
	_ = godotenv.Load()

	grace := flag.Duration("grace", defaultGrace, "leave files younger than this alone")
	dryRun := flag.Bool("dry-run", false, "report without removing anything")
	pruneDangling := flag.Bool("prune-dangling", false, "delete catalog rows whose file is missing")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		log = zap.NewExample()
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	gormDB, err := db.NewMySQL(cfg.DSN())
	if err != nil {
		log.Fatal("database init", zap.Error(err))
	}
	// The schema must exist before the catalog can be listed.
	if err := db.Migrate(gormDB, false, log); err != nil {
		log.Fatal("auto-migrate", zap.Error(err))
	}

	files, err := storage.New(context.Background(), cfg.Storage())
	if err != nil {
		log.Fatal("file store init", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := service.NewReconcileService(repository.NewDocumentRepository(gormDB), files, log)
	report, err := sweeper.Sweep(ctx, service.SweepOptions{
		GracePeriod:   *grace,
		DryRun:        *dryRun,
		PruneDangling: *pruneDangling,
	})
	if err != nil {
		log.Fatal("sweep failed", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal("write report", zap.Error(err))
	}

	if report.CleanupFailures > 0 {
		os.Exit(1)
	}
}
