package category

import (
	"context"

	"github.com/wichananm65/catalog-backend/internal/validation"
)

// Service provides business logic for categories.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.GetByID(ctx, id)
}

// FindByIDs returns the existing categories among ids keyed by id. Duplicate
// ids are looked up once.
func (s *Service) FindByIDs(ctx context.Context, ids []int64) (map[int64]Category, error) {
	seen := make(map[int64]bool, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	found, err := s.repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]Category, len(found))
	for _, c := range found {
		out[c.ID] = c
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in Payload) (Category, error) {
	errs := validation.Errors{}
	if err := in.validate("", errs); err != nil {
		return Category{}, err
	}
	if err := errs.Err(); err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, in.Name)
}

// BulkCreate validates every item before inserting any of them, then inserts
// the whole batch atomically. Results keep the input order.
func (s *Service) BulkCreate(ctx context.Context, in BulkPayload) ([]Category, error) {
	errs := validation.Errors{}
	if err := in.validate(errs); err != nil {
		return nil, err
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	names := make([]string, len(in.Categories))
	for i, item := range in.Categories {
		names[i] = item.Name
	}
	return s.repo.CreateMany(ctx, names)
}

func (s *Service) Update(ctx context.Context, id int64, in Payload) (Category, error) {
	errs := validation.Errors{}
	if err := in.validate("", errs); err != nil {
		return Category{}, err
	}
	if err := errs.Err(); err != nil {
		return Category{}, err
	}
	return s.repo.Update(ctx, id, in.Name)
}

// Delete fails with ErrHasProducts while products still belong to id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
