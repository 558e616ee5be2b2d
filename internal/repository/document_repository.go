package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "complianceadvisor/internal/errors"
	"complianceadvisor/internal/model"
)

// DocumentRepository is the document catalog: the source of truth for which
// stored artifact backs a user's logical document name.
type DocumentRepository interface {
	Upsert(ctx context.Context, doc *model.Document) error
	FindByName(ctx context.Context, userID uint, name string) (*model.Document, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Document, error)
	DeleteByName(ctx context.Context, userID uint, name string) (int64, error)
	ListAll(ctx context.Context) ([]model.Document, error)
	DeleteByID(ctx context.Context, id uint) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// upsertColumns are rewritten when (user_id, document_name) already exists.
var upsertColumns = []string{
	"country",
	"entity_type",
	"product_category",
	"storage_key",
	"original_filename",
	"content_type",
	"size_bytes",
	"uploaded_at",
}

// Upsert inserts the document or replaces the row with the same owner and name,
// then reloads it so doc carries the persisted ID.
func (r *documentRepository) Upsert(ctx context.Context, doc *model.Document) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "document_name"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(doc).Error
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Where("user_id = ? AND document_name = ?", doc.UserID, doc.DocumentName).
		First(doc).Error
}

// FindByName returns the caller's document with the given logical name.
func (r *documentRepository) FindByName(ctx context.Context, userID uint, name string) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND document_name = ?", userID, name).
		Order("uploaded_at DESC").
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByUser lists the user's documents, most recent upload first.
func (r *documentRepository) ListByUser(ctx context.Context, userID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("uploaded_at DESC").
		Order("id DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteByName removes every row for (userID, name); zero rows is not an error.
func (r *documentRepository) DeleteByName(ctx context.Context, userID uint, name string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND document_name = ?", userID, name).
		Delete(&model.Document{})
	return res.RowsAffected, res.Error
}

// ListAll returns the identifying columns of every catalog row.
func (r *documentRepository) ListAll(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.WithContext(ctx).
		Select("id", "user_id", "document_name", "storage_key").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Document{}, id).Error
}
