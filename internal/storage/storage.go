// Package storage keeps uploaded files (product images) outside the database.
// Stored objects are addressed by a key such as "products/<uuid>.png"; the key
// is what gets persisted, the public URL is derived from it on read.
package storage

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob not found")

// BlobStore defines the operations the catalog needs from file storage.
type BlobStore interface {
	// Put stores data under a new key inside namespace and returns the key.
	Put(ctx context.Context, namespace, filename string, data []byte, contentType string) (string, error)
	// Get returns the stored bytes and their content type, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, string, error)
	// Delete removes key. Deleting a key that does not exist is not an error.
	Delete(ctx context.Context, key string) error
	// URL resolves key to the address clients use to download it.
	URL(key string) string
}

// NewKey builds a unique key inside namespace, keeping the extension of the
// uploaded filename.
func NewKey(namespace, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return path.Join(namespace, uuid.New().String()+ext)
}

// ValidKey rejects keys that are empty, absolute or escape their namespace.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return false
	}
	clean := path.Clean(key)
	return clean == key && clean != "." && !strings.HasPrefix(clean, "../") && clean != ".."
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
