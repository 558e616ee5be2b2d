package handler_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	apperrors "complianceadvisor/internal/errors"
	"complianceadvisor/internal/model"
)

type memoryUsers struct {
	mu     sync.Mutex
	nextID uint
	byName map[string]model.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byName: map[string]model.User{}}
}

func (m *memoryUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[user.Username]; ok {
		return apperrors.ErrUsernameTaken
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.byName[user.Username] = *user
	return nil
}

func (m *memoryUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byName {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byName[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

type memoryDocuments struct {
	mu     sync.Mutex
	nextID uint
	rows   []model.Document
}

func (m *memoryDocuments) Upsert(_ context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.UserID == doc.UserID && row.DocumentName == doc.DocumentName {
			doc.ID = row.ID
			m.rows[i] = *doc
			return nil
		}
	}
	m.nextID++
	doc.ID = m.nextID
	m.rows = append(m.rows, *doc)
	return nil
}

func (m *memoryDocuments) FindByName(_ context.Context, userID uint, name string) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.UserID == userID && row.DocumentName == name {
			return &row, nil
		}
	}
	return nil, apperrors.ErrDocumentNotFound
}

func (m *memoryDocuments) ListByUser(_ context.Context, userID uint) ([]model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Document
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (m *memoryDocuments) DeleteByName(_ context.Context, userID uint, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var n int64
	for _, row := range m.rows {
		if row.UserID == userID && row.DocumentName == name {
			n++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return n, nil
}

func (m *memoryDocuments) ListAll(context.Context) ([]model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Document(nil), m.rows...), nil
}

func (m *memoryDocuments) DeleteByID(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

type memorySessions struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memorySessions) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]bool{}
	}
	m.revoked[tokenID] = true
	return nil
}

func (m *memorySessions) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[tokenID], nil
}
