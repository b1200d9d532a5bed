package annotations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/felixgeelhaar/keepup/internal/shared/infrastructure/security"
)

// FileBackend stores each namespace as <dir>/<namespace>.json.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a new FileBackend rooted at dir.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (b *FileBackend) path(namespace string) (string, error) {
	path, err := security.PathInDir(b.dir, namespace+".json")
	if err != nil {
		return "", fmt.Errorf("invalid namespace %q: %w", namespace, err)
	}
	return path, nil
}

// Load reads the namespace file.
func (b *FileBackend) Load(ctx context.Context, namespace string) ([]byte, error) {
	path, err := b.path(namespace)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is confined to the store directory
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", namespace, err)
	}
	return data, nil
}

// Store writes the namespace file atomically through a rename.
func (b *FileBackend) Store(ctx context.Context, namespace string, data []byte) error {
	path, err := b.path(namespace)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(b.dir, 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(b.dir, namespace+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", namespace, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to store %s: %w", namespace, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to store %s: %w", namespace, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store %s: %w", namespace, err)
	}
	return nil
}
