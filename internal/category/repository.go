package category

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound    = errors.New("category not found")
	ErrHasProducts = errors.New("category has products")
)

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int64) (Category, error)
	// FindByIDs returns the categories among ids that exist, in one lookup.
	FindByIDs(ctx context.Context, ids []int64) ([]Category, error)
	Create(ctx context.Context, name string) (Category, error)
	// CreateMany inserts every name or none of them.
	CreateMany(ctx context.Context, names []string) ([]Category, error)
	Update(ctx context.Context, id int64, name string) (Category, error)
	Delete(ctx context.Context, id int64) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Category
	nextID  int64

	// Referenced marks category ids that still own products; deleting one
	// fails with ErrHasProducts.
	Referenced map[int64]bool
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	r := &InMemoryRepository{
		storage:    make([]Category, 0, len(seed)),
		nextID:     1,
		Referenced: map[int64]bool{},
	}
	for _, c := range seed {
		r.storage = append(r.storage, c)
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(ctx context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Category, len(r.storage))
	copy(out, r.storage)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) FindByIDs(ctx context.Context, ids []int64) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]Category, 0, len(ids))
	for _, c := range r.storage {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, name string) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(name), nil
}

func (r *InMemoryRepository) CreateMany(ctx context.Context, names []string) ([]Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Category, 0, len(names))
	for _, name := range names {
		out = append(out, r.insert(name))
	}
	return out, nil
}

func (r *InMemoryRepository) insert(name string) Category {
	now := time.Now().UTC()
	c := Category{ID: r.nextID, Name: name, CreatedAt: now, UpdatedAt: now}
	r.nextID++
	r.storage = append(r.storage, c)
	return c
}

func (r *InMemoryRepository) Update(ctx context.Context, id int64, name string) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage[i].Name = name
			r.storage[i].UpdatedAt = time.Now().UTC()
			return r.storage[i], nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			if r.Referenced[id] {
				return ErrHasProducts
			}
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
