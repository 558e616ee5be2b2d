package model

import "time"

// Document is a catalog entry mapping a user's logical document name to a stored artifact.
// (UserID, DocumentName) is unique; a repeated upload replaces the row.
type Document struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_documents_user_name,priority:1"`
	Country          string    `json:"country" gorm:"size:255"`
	EntityType       string    `json:"entity_type" gorm:"size:255"`
	ProductCategory  string    `json:"product_category" gorm:"size:255"`
	DocumentName     string    `json:"document_name" gorm:"size:255;not null;uniqueIndex:idx_documents_user_name,priority:2"`
	StorageKey       string    `json:"-" gorm:"size:255;not null;uniqueIndex"`
	OriginalFilename string    `json:"original_filename" gorm:"size:255"`
	ContentType      string    `json:"content_type" gorm:"size:255"`
	SizeBytes        int64     `json:"size_bytes"`
	UploadedAt       time.Time `json:"uploaded_at" gorm:"not null;index"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
