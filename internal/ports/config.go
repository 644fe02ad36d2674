package ports

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound reports a missing file in an otherwise readable store.
	ErrNotFound = errors.New("not found")
	// ErrStorageUnavailable reports that the store itself cannot be opened.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ConfigSource opens named files from the device configuration store.
type ConfigSource interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

type StateRepository interface {
	Load(ctx context.Context) (index int, found bool, err error)
	Save(ctx context.Context, index int) error
}
