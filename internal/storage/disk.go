package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Disk stores blobs as files under a root directory on the local filesystem.
type Disk struct {
	root      string
	publicURL string
}

var _ BlobStore = (*Disk)(nil)

// NewDisk creates the root directory when missing.
func NewDisk(root, publicURL string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &Disk{root: root, publicURL: publicURL}, nil
}

func (d *Disk) Put(_ context.Context, namespace, filename string, data []byte, _ string) (string, error) {
	key := NewKey(namespace, filename)
	dest := d.path(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	return key, nil
}

func (d *Disk) Get(_ context.Context, key string) ([]byte, string, error) {
	if !ValidKey(key) {
		return nil, "", ErrNotFound
	}
	data, err := os.ReadFile(d.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, mimetype.Detect(data).String(), nil
}

func (d *Disk) Delete(_ context.Context, key string) error {
	if !ValidKey(key) {
		return nil
	}
	if err := os.Remove(d.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (d *Disk) URL(key string) string {
	return publicURL(d.publicURL, key)
}

func (d *Disk) path(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(key))
}
