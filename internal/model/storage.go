package model

import (
	"context"
	"io"
)

// Storage is an object store for evidence and voice samples.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ArtifactOpener opens a recorded artifact by its URI.
type ArtifactOpener func(uri string) (io.ReadCloser, error)
