package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"complianceadvisor/internal/repository"
	"complianceadvisor/internal/storage"
)

// SweepOptions controls a reconciliation pass.
type SweepOptions struct {
	// GracePeriod protects files younger than this; an upload may have
	// written its file and not yet its catalog row.
	GracePeriod time.Duration
	// DryRun reports without changing anything.
	DryRun bool
	// PruneDangling deletes catalog rows whose file is missing.
	PruneDangling bool
}

// DanglingRow is a catalog row whose artifact is gone.
type DanglingRow struct {
	ID           uint   `json:"id"`
	UserID       uint   `json:"user_id"`
	DocumentName string `json:"document_name"`
	StorageKey   string `json:"storage_key"`
}

// SweepReport summarises a reconciliation pass.
type SweepReport struct {
	FilesScanned    int           `json:"files_scanned"`
	RowsScanned     int           `json:"rows_scanned"`
	OrphanFiles     []string      `json:"orphan_files"`
	RemovedFiles    []string      `json:"removed_files"`
	SkippedRecent   []string      `json:"skipped_recent"`
	Foreign         []string      `json:"foreign"`
	DanglingRows    []DanglingRow `json:"dangling_rows"`
	PrunedRows      int           `json:"pruned_rows"`
	CleanupFailures int           `json:"cleanup_failures"`
}

// ReconcileService repairs drift between the catalog and the file store.
type ReconcileService interface {
	Sweep(ctx context.Context, opts SweepOptions) (*SweepReport, error)
}

type reconcileService struct {
	docs  repository.DocumentRepository
	files storage.FileStore
	log   *zap.Logger
	now   func() time.Time
}

// NewReconcileService creates a new reconciliation service.
func NewReconcileService(docs repository.DocumentRepository, files storage.FileStore, log *zap.Logger) ReconcileService {
	return &reconcileService{
		docs:  docs,
		files: files,
		log:   log,
		now:   time.Now,
	}
}

// Sweep removes managed files no catalog row references and reports (optionally
// prunes) rows whose file is missing. The file listing is taken before the
// catalog so an upload finishing mid-sweep is seen as referenced.
func (s *reconcileService) Sweep(ctx context.Context, opts SweepOptions) (*SweepReport, error) {
	entries, err := s.files.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	rows, err := s.docs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	report := &SweepReport{
		FilesScanned:  len(entries),
		RowsScanned:   len(rows),
		OrphanFiles:   []string{},
		RemovedFiles:  []string{},
		SkippedRecent: []string{},
		Foreign:       []string{},
		DanglingRows:  []DanglingRow{},
	}

	referenced := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		referenced[row.StorageKey] = struct{}{}
	}
	onDisk := make(map[string]struct{}, len(entries))
	cutoff := s.now().Add(-opts.GracePeriod)

	for _, entry := range entries {
		onDisk[entry.Key] = struct{}{}
		if _, ok := referenced[entry.Key]; ok {
			continue
		}
		// Only keys this service mints are ever removed.
		if !storage.IsManagedKey(entry.Key) {
			report.Foreign = append(report.Foreign, entry.Key)
			continue
		}
		if entry.ModTime.After(cutoff) {
			report.SkippedRecent = append(report.SkippedRecent, entry.Key)
			continue
		}
		report.OrphanFiles = append(report.OrphanFiles, entry.Key)
		if opts.DryRun {
			continue
		}
		if err := s.files.Remove(ctx, entry.Key); err != nil {
			report.CleanupFailures++
			s.log.Warn("remove orphan failed", zap.String("storage_key", entry.Key), zap.Error(err))
			continue
		}
		report.RemovedFiles = append(report.RemovedFiles, entry.Key)
	}

	for _, row := range rows {
		if _, ok := onDisk[row.StorageKey]; ok {
			continue
		}
		if !s.missing(ctx, row.StorageKey) {
			// written after the listing was taken
			continue
		}
		report.DanglingRows = append(report.DanglingRows, DanglingRow{
			ID:           row.ID,
			UserID:       row.UserID,
			DocumentName: row.DocumentName,
			StorageKey:   row.StorageKey,
		})
		if opts.DryRun || !opts.PruneDangling {
			continue
		}
		if err := s.docs.DeleteByID(ctx, row.ID); err != nil {
			report.CleanupFailures++
			s.log.Warn("prune dangling row failed", zap.Uint("document_id", row.ID), zap.Error(err))
			continue
		}
		report.PrunedRows++
	}

	s.log.Info("sweep finished",
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("files_scanned", report.FilesScanned),
		zap.Int("rows_scanned", report.RowsScanned),
		zap.Int("orphan_files", len(report.OrphanFiles)),
		zap.Int("foreign_files", len(report.Foreign)),
		zap.Int("removed_files", len(report.RemovedFiles)),
		zap.Int("dangling_rows", len(report.DanglingRows)),
		zap.Int("pruned_rows", report.PrunedRows),
	)
	return report, nil
}

func (s *reconcileService) missing(ctx context.Context, key string) bool {
	rc, err := s.files.Open(ctx, key)
	if err != nil {
		return errors.Is(err, storage.ErrNotFound)
	}
	_ = rc.Close()
	return false
}
