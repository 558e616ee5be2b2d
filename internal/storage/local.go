package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how many leading bytes are buffered for content type detection.
const sniffLen = 3072

// tmpPrefix marks in-flight writes. Leftovers from a crash show up in List
// and are collected by the reconciliation sweep like any other orphan.
const tmpPrefix = ".tmp-"

// LocalStore implements FileStore on a flat directory.
type LocalStore struct {
	root string
}

var _ FileStore = (*LocalStore)(nil)

// NewLocal returns a store rooted at root, creating the directory if absent.
func NewLocal(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Save writes r under key. Bytes land in a temp file that is renamed into
// place, so a reader never observes a partial artifact.
func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader) (Artifact, error) {
	if err := validateKey(key); err != nil {
		return Artifact{}, err
	}
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	f, err := os.CreateTemp(s.root, tmpPrefix+"*")
	if err != nil {
		return Artifact{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := f.Name()
	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(tmpName)
		}
	}()

	sniff := make([]byte, sniffLen)
	n, readErr := io.ReadFull(r, sniff)
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return Artifact{}, fmt.Errorf("read sniff: %w", readErr)
	}
	sniff = sniff[:n]

	if _, err := f.Write(sniff); err != nil {
		return Artifact{}, fmt.Errorf("write sniff: %w", err)
	}
	written, err := io.Copy(f, r)
	if err != nil {
		return Artifact{}, fmt.Errorf("write body: %w", err)
	}
	if err := f.Close(); err != nil {
		return Artifact{}, fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return Artifact{}, fmt.Errorf("commit file: %w", err)
	}
	committed = true

	return Artifact{
		Key:         key,
		SizeBytes:   int64(n) + written,
		ContentType: mimetype.Detect(sniff).String(),
	}, nil
}

// Open opens the artifact for reading.
func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	return f, nil
}

// Remove deletes the artifact; an absent artifact is not an error.
func (s *LocalStore) Remove(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}

// List returns every file under the root, sorted by key.
func (s *LocalStore) List(ctx context.Context) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read storage root: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		entries = append(entries, Entry{
			Key:       de.Name(),
			SizeBytes: info.Size(),
			ModTime:   info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.root, key)
}
