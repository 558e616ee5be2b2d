package storage

import (
	"context"
	"fmt"
)

// Backend names accepted by New.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Options selects and configures a FileStore.
type Options struct {
	Backend  string
	LocalDir string
	S3       S3Options
}

// New returns the FileStore named by opts.Backend. An empty backend means local.
func New(ctx context.Context, opts Options) (FileStore, error) {
	switch opts.Backend {
	case "", BackendLocal:
		store, err := NewLocal(opts.LocalDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendS3:
		store, err := NewS3(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
