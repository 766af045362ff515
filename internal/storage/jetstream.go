package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const defaultContentType = "application/octet-stream"

// JetStream stores blobs in a NATS JetStream object store bucket.
type JetStream struct {
	conn      *nats.Conn
	store     jetstream.ObjectStore
	publicURL string
}

var _ BlobStore = (*JetStream)(nil)

// NewJetStream connects to natsURL and opens bucket, creating it when it
// does not exist yet.
func NewJetStream(ctx context.Context, natsURL, bucket, publicURL string) (*JetStream, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	store, err := js.ObjectStore(ctx, bucket)
	if err != nil && !errors.Is(err, jetstream.ErrBucketNotFound) {
		conn.Close()
		return nil, fmt.Errorf("failed to open object store bucket: %w", err)
	}
	if err != nil {
		store, err = js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
			Bucket:      bucket,
			Description: "Catalog product images",
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create object store bucket: %w", err)
		}
	}

	return &JetStream{conn: conn, store: store, publicURL: publicURL}, nil
}

func (s *JetStream) Put(ctx context.Context, namespace, filename string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = defaultContentType
	}
	key := NewKey(namespace, filename)
	meta := jetstream.ObjectMeta{
		Name: key,
		Headers: nats.Header{
			"Content-Type": []string{contentType},
		},
	}
	if _, err := s.store.Put(ctx, meta, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}
	return key, nil
}

func (s *JetStream) Get(ctx context.Context, key string) ([]byte, string, error) {
	result, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to get object: %w", err)
	}
	defer result.Close()

	data, err := io.ReadAll(result)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read object data: %w", err)
	}

	contentType := defaultContentType
	if info, err := result.Info(); err == nil && info.Headers != nil {
		if ct := info.Headers.Get("Content-Type"); ct != "" {
			contentType = ct
		}
	}
	return data, contentType, nil
}

func (s *JetStream) Delete(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrObjectNotFound) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *JetStream) URL(key string) string {
	return publicURL(s.publicURL, key)
}

// Close closes the NATS connection.
func (s *JetStream) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}
