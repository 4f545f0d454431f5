package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage holds the bytes of uploaded files.
type Storage interface {
	// Put writes the content of r under key.
	Put(ctx context.Context, key string, r io.Reader) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL of key.
	URL(key string) string
}

// DiskStorage stores files in a local directory.
type DiskStorage struct {
	Dir     string
	BaseURL string
}

var _ Storage = (*DiskStorage)(nil)

// NewDiskStorage creates a disk storage rooted at dir, serving files
// under baseURL.
func NewDiskStorage(dir, baseURL string) *DiskStorage {
	return &DiskStorage{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// Put writes r to Dir/key, creating Dir when needed.
func (d *DiskStorage) Put(_ context.Context, key string, r io.Reader) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("folio/media: create dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("folio/media: create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("folio/media: write file: %w", err)
	}
	return f.Close()
}

// Delete removes Dir/key.
func (d *DiskStorage) Delete(_ context.Context, key string) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("folio/media: delete file: %w", err)
	}
	return nil
}

// URL joins BaseURL and key.
func (d *DiskStorage) URL(key string) string {
	return d.BaseURL + "/" + key
}

func (d *DiskStorage) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("folio/media: invalid key %q", key)
	}
	return filepath.Join(d.Dir, key), nil
}
