package storage

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory BlobStore useful for tests.
type Memory struct {
	mu        sync.RWMutex
	objects   map[string]memoryObject
	publicURL string

	// PutErr and DeleteErr, when set, are returned by Put and Delete.
	PutErr    error
	DeleteErr error
}

type memoryObject struct {
	data        []byte
	contentType string
}

var _ BlobStore = (*Memory)(nil)

func NewMemory(publicURL string) *Memory {
	return &Memory{objects: map[string]memoryObject{}, publicURL: publicURL}
}

func (m *Memory) Put(_ context.Context, namespace, filename string, data []byte, contentType string) (string, error) {
	if m.PutErr != nil {
		return "", m.PutErr
	}
	key := NewKey(namespace, filename)
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: buf, contentType: contentType}
	return key, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return obj.data, obj.contentType, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) URL(key string) string {
	return publicURL(m.publicURL, key)
}

// Keys returns every stored key in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
