package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no artifact exists under a key.
var ErrNotFound = errors.New("artifact not found")

// ErrInvalidKey is returned for keys that could escape the storage root.
var ErrInvalidKey = errors.New("invalid storage key")

// Artifact describes bytes written to the store.
type Artifact struct {
	Key         string
	SizeBytes   int64
	ContentType string
}

// Entry is a stored artifact as seen by a directory listing.
type Entry struct {
	Key       string
	SizeBytes int64
	ModTime   time.Time
}

// FileStore writes, reads and removes artifact bytes by opaque key.
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader) (Artifact, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	List(ctx context.Context) ([]Entry, error)
}

var extPattern = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

// NewKey generates an opaque artifact key for an owner. The key never embeds
// the logical document name; only a whitelisted extension of the original
// filename survives so served files keep a recognisable suffix.
func NewKey(ownerID uint, originalFilename string) string {
	key := fmt.Sprintf("%d_%s", ownerID, uuid.NewString())
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalFilename), "."))
	if extPattern.MatchString(ext) {
		key += "." + ext
	}
	return key
}

// SanitizeFileName reduces an uploaded filename to a single safe path element.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if s == "" || s == "." || s == ".." {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

var managedKeyPattern = regexp.MustCompile(`^[0-9]+_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[a-z0-9]{1,10})?$`)

// IsManagedKey reports whether key was minted by NewKey or is a leftover
// in-flight write. Anything else in the store belongs to someone else.
func IsManagedKey(key string) bool {
	return strings.HasPrefix(key, tmpPrefix) || managedKeyPattern.MatchString(key)
}

func validateKey(key string) error {
	if key == "" || key == "." || strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}
	return nil
}
