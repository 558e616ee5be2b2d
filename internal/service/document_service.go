package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "complianceadvisor/internal/errors"
	"complianceadvisor/internal/model"
	"complianceadvisor/internal/repository"
	"complianceadvisor/internal/storage"
)

// defaultDocumentName is used when an upload does not name its document.
const defaultDocumentName = "unnamed"

// UploadInput is one document upload.
type UploadInput struct {
	DocumentName    string
	Country         string
	EntityType      string
	ProductCategory string
	Filename        string
	Content         io.Reader
}

// DocumentService joins the document catalog and the file store. The catalog
// is the source of truth: a file without a row is an orphan for the sweep,
// never a document.
type DocumentService interface {
	Upload(ctx context.Context, userID uint, in UploadInput) (*model.Document, error)
	List(ctx context.Context, userID uint) ([]model.Document, error)
	Open(ctx context.Context, userID uint, name string) (*model.Document, io.ReadCloser, error)
	Delete(ctx context.Context, userID uint, name string) error
}

type documentService struct {
	docs  repository.DocumentRepository
	files storage.FileStore
	log   *zap.Logger
	now   func() time.Time
}

// NewDocumentService creates a new document service.
func NewDocumentService(docs repository.DocumentRepository, files storage.FileStore, log *zap.Logger) DocumentService {
	return &documentService{
		docs:  docs,
		files: files,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Upload stores the bytes under a fresh key, then upserts the catalog row.
// A failed upsert removes the new file; a replaced row's old file is removed
// afterwards on a best-effort basis.
func (s *documentService) Upload(ctx context.Context, userID uint, in UploadInput) (*model.Document, error) {
	if in.Content == nil || in.Filename == "" {
		return nil, apperrors.ErrMissingFile
	}
	filename, err := storage.SanitizeFileName(in.Filename)
	if err != nil {
		return nil, apperrors.ErrInvalidFilename
	}
	name := strings.TrimSpace(in.DocumentName)
	if name == "" {
		name = defaultDocumentName
	}

	previous, err := s.docs.FindByName(ctx, userID, name)
	if err != nil && !errors.Is(err, apperrors.ErrDocumentNotFound) {
		return nil, fmt.Errorf("lookup existing document: %w", err)
	}

	artifact, err := s.files.Save(ctx, storage.NewKey(userID, filename), in.Content)
	if err != nil {
		return nil, fmt.Errorf("store artifact: %w", err)
	}

	doc := &model.Document{
		UserID:           userID,
		Country:          in.Country,
		EntityType:       in.EntityType,
		ProductCategory:  in.ProductCategory,
		DocumentName:     name,
		StorageKey:       artifact.Key,
		OriginalFilename: filename,
		ContentType:      artifact.ContentType,
		SizeBytes:        artifact.SizeBytes,
		UploadedAt:       s.now(),
	}
	if err := s.docs.Upsert(ctx, doc); err != nil {
		s.removeArtifact(ctx, artifact.Key, "rollback after failed upsert")
		return nil, fmt.Errorf("save document: %w", err)
	}

	if previous != nil && previous.StorageKey != artifact.Key {
		s.removeArtifact(ctx, previous.StorageKey, "replaced by new upload")
	}

	s.log.Info("document uploaded",
		zap.Uint("user_id", userID),
		zap.String("document_name", name),
		zap.String("storage_key", artifact.Key),
		zap.Int64("size_bytes", artifact.SizeBytes),
		zap.Bool("replaced", previous != nil),
	)
	return doc, nil
}

// List returns the user's documents, most recent upload first.
func (s *documentService) List(ctx context.Context, userID uint) ([]model.Document, error) {
	docs, err := s.docs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Open resolves the logical name within the user's own catalog and opens
// the artifact. Other users' documents are never visible.
func (s *documentService) Open(ctx context.Context, userID uint, name string) (*model.Document, io.ReadCloser, error) {
	doc, err := s.docs.FindByName(ctx, userID, name)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.files.Open(ctx, doc.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		s.log.Warn("catalog row has no artifact",
			zap.Uint("user_id", userID),
			zap.String("document_name", name),
			zap.String("storage_key", doc.StorageKey),
		)
		return nil, nil, apperrors.ErrDocumentNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open artifact: %w", err)
	}
	return doc, rc, nil
}

// Delete removes the catalog rows first, then their files. Deleting a name
// that does not exist succeeds.
func (s *documentService) Delete(ctx context.Context, userID uint, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.ErrMissingDocumentName
	}

	doc, err := s.docs.FindByName(ctx, userID, name)
	if errors.Is(err, apperrors.ErrDocumentNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup document: %w", err)
	}

	if _, err := s.docs.DeleteByName(ctx, userID, name); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.removeArtifact(ctx, doc.StorageKey, "document deleted")

	s.log.Info("document deleted",
		zap.Uint("user_id", userID),
		zap.String("document_name", name),
	)
	return nil
}

func (s *documentService) removeArtifact(ctx context.Context, key, reason string) {
	if err := s.files.Remove(ctx, key); err != nil {
		s.log.Warn("artifact cleanup failed, left for sweep",
			zap.String("storage_key", key),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}
