package product

import (
	"context"
	"fmt"
	"log"

	"github.com/wichananm65/catalog-backend/internal/category"
	"github.com/wichananm65/catalog-backend/internal/storage"
	"github.com/wichananm65/catalog-backend/internal/validation"
)

// imageNamespace is the blob store prefix under which product images live.
const imageNamespace = "products"

// CategoryLookup resolves category ids in one round trip.
type CategoryLookup interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]category.Category, error)
}

// Service provides business logic for products.
type Service struct {
	repo       Repository
	categories CategoryLookup
	blobs      storage.BlobStore
	maxImageKB int
}

func NewService(repo Repository, categories CategoryLookup, blobs storage.BlobStore, maxImageKB int) *Service {
	return &Service{repo: repo, categories: categories, blobs: blobs, maxImageKB: maxImageKB}
}

// List returns every product with its category attached. Categories are
// fetched with a single lookup for the whole page.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(items))
	for i, p := range items {
		ids[i] = p.CategoryID
	}
	cats, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	for i := range items {
		items[i] = s.present(items[i], cats)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	cats, err := s.categories.FindByIDs(ctx, []int64{p.CategoryID})
	if err != nil {
		return Product{}, fmt.Errorf("failed to load category: %w", err)
	}
	return s.present(p, cats), nil
}

func (s *Service) Create(ctx context.Context, in Payload) (Product, error) {
	cats, err := s.validate(ctx, []Payload{in}, noPrefix, validation.Errors{})
	if err != nil {
		return Product{}, err
	}

	p := in.product()
	if in.Image != nil {
		key, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return Product{}, err
		}
		p.Image = &key
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		s.discard(ctx, p.Image)
		return Product{}, err
	}
	return s.present(created, cats), nil
}

// BulkCreate validates every item before writing anything. Images are stored
// first, then all rows are inserted in one transaction; if that fails the
// images stored for the batch are removed again.
func (s *Service) BulkCreate(ctx context.Context, in BulkPayload) ([]Product, error) {
	errs := validation.Errors{}
	in.Mismatch.Report("", errs)
	if len(in.Products) == 0 && !errs.Has("products") {
		errs.Fail("products", "required", "")
	}
	cats, err := s.validate(ctx, in.Products, itemPrefix, errs)
	if err != nil {
		return nil, err
	}

	batch := make([]Product, len(in.Products))
	var stored []*string
	for i, item := range in.Products {
		batch[i] = item.product()
		if item.Image == nil {
			continue
		}
		key, err := s.storeImage(ctx, item.Image)
		if err != nil {
			s.discard(ctx, stored...)
			return nil, err
		}
		batch[i].Image = &key
		stored = append(stored, &key)
	}

	created, err := s.repo.CreateMany(ctx, batch)
	if err != nil {
		s.discard(ctx, stored...)
		return nil, err
	}
	for i := range created {
		created[i] = s.present(created[i], cats)
	}
	return created, nil
}

// Update replaces every field of the product. A new image is stored before
// the row changes and the previous one is removed only once the row points
// at the new key, so a failed update never loses the current image.
func (s *Service) Update(ctx context.Context, id int64, in Payload) (Product, error) {
	cats, err := s.validate(ctx, []Payload{in}, noPrefix, validation.Errors{})
	if err != nil {
		return Product{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}

	p := in.product()
	p.Image = current.Image
	var stored *string
	if in.Image != nil {
		key, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return Product{}, err
		}
		p.Image = &key
		stored = &key
	}

	updated, err := s.repo.Update(ctx, id, p)
	if err != nil {
		s.discard(ctx, stored)
		return Product{}, err
	}
	if stored != nil {
		s.discard(ctx, current.Image)
	}
	return s.present(updated, cats), nil
}

// Delete removes the product image before the row. If the image cannot be
// removed the row is kept, so no product ever points at a missing blob.
func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Image != nil {
		if err := s.blobs.Delete(ctx, *current.Image); err != nil {
			return fmt.Errorf("failed to delete image %s: %w", *current.Image, err)
		}
	}
	return s.repo.Delete(ctx, id)
}

// validate checks every item against its field rules, its image and the
// existence of its category. All referenced categories are resolved with a
// single lookup, which is returned for attaching to the results.
func (s *Service) validate(ctx context.Context, items []Payload, prefix func(i int) string, errs validation.Errors) (map[int64]category.Category, error) {
	var ids []int64
	for i, item := range items {
		pre := prefix(i)
		item.Mismatch.Report(pre, errs)
		if err := validation.Check(item, pre, errs); err != nil {
			return nil, err
		}
		if item.Image != nil && !errs.Has(pre+"image") {
			validation.Image(pre+"image", item.Image.Data, s.maxImageKB, errs)
		}
		if item.CategoryID != nil && !errs.Has(pre+"category_id") {
			ids = append(ids, *item.CategoryID)
		}
	}

	cats := map[int64]category.Category{}
	if len(ids) > 0 {
		found, err := s.categories.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to look up categories: %w", err)
		}
		cats = found
	}
	for i, item := range items {
		pre := prefix(i)
		if item.CategoryID == nil || errs.Has(pre+"category_id") {
			continue
		}
		if _, ok := cats[*item.CategoryID]; !ok {
			errs.Fail(pre+"category_id", "exists", "")
		}
	}
	return cats, errs.Err()
}

func (s *Service) storeImage(ctx context.Context, up *Upload) (string, error) {
	contentType, _ := validation.DetectImage(up.Data)
	key, err := s.blobs.Put(ctx, imageNamespace, up.Filename, up.Data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store image %s: %w", up.Filename, err)
	}
	return key, nil
}

// discard removes blobs that no row references any more. Failures are only
// logged.
func (s *Service) discard(ctx context.Context, keys ...*string) {
	for _, key := range keys {
		if key == nil {
			continue
		}
		if err := s.blobs.Delete(ctx, *key); err != nil {
			log.Printf("[product] failed to remove image %s: %v", *key, err)
		}
	}
}

// present fills in the derived fields of p.
func (s *Service) present(p Product, cats map[int64]category.Category) Product {
	p.ImageURL = nil
	if p.Image != nil {
		url := s.blobs.URL(*p.Image)
		p.ImageURL = &url
	}
	p.Category = nil
	if c, ok := cats[p.CategoryID]; ok {
		p.Category = &c
	}
	return p
}
