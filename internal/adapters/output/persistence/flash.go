package persistence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"speaker-remote/internal/ports"
)

// FlashStore serves configuration files from a directory on the device's
// flash filesystem.
type FlashStore struct {
	root string
}

func NewFlashStore(root string) *FlashStore {
	return &FlashStore{root: root}
}

// Path resolves name below the store root. Names cannot escape the root.
func (s *FlashStore) Path(name string) string {
	return filepath.Join(s.root, filepath.Clean("/"+filepath.FromSlash(name)))
}

func (s *FlashStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ports.ErrStorageUnavailable, s.root)
	}

	f, err := os.Open(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ports.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
