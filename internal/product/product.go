package product

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/catalog-backend/internal/category"
	"github.com/wichananm65/catalog-backend/internal/validation"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  int64           `json:"category_id"`
	// Image is the blob key of the product image, nil when there is none.
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Derived on read, never stored.
	ImageURL *string            `json:"image_url"`
	Category *category.Category `json:"category,omitempty"`
}

// MarshalJSON renders price as a number with two decimals.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		Price json.Number `json:"price"`
	}{
		alias: alias(p),
		Price: json.Number(p.Price.StringFixed(2)),
	})
}

// Upload is an image file sent with a create or update request.
type Upload struct {
	Filename string
	Data     []byte
}

// Payload is the writable part of a product as sent by clients.
type Payload struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0,lte=99999999.99"`
	CategoryID  *int64           `json:"category_id" validate:"required"`

	Image    *Upload               `json:"-" validate:"-"`
	Mismatch validation.Mismatches `json:"-" validate:"-"`
}

// BindPayload reads a Payload out of request fields. image is the uploaded
// file, if any; a non-file image value is reported as not being an image.
func BindPayload(fields validation.Fields, image *Upload) Payload {
	b := validation.Bind(fields)
	p := Payload{
		Name:        b.String("name"),
		Description: b.String("description"),
		Price:       b.Decimal("price"),
		CategoryID:  b.Int("category_id"),
		Image:       image,
	}
	p.Mismatch = b.Mismatches()
	if image == nil && b.Present("image") {
		p.Mismatch["image"] = "image"
	}
	return p
}

func (p Payload) product() Product {
	out := Product{Name: p.Name, Description: p.Description}
	if p.Price != nil {
		out.Price = p.Price.Round(2)
	}
	if p.CategoryID != nil {
		out.CategoryID = *p.CategoryID
	}
	return out
}

// BulkPayload is the body of a bulk create: {"products": [{...}, ...]}.
type BulkPayload struct {
	Products []Payload

	Mismatch validation.Mismatches
}

// BindBulkPayload reads every item of the products list. image returns the
// upload sent for item i, or nil.
func BindBulkPayload(fields validation.Fields, image func(i int) *Upload) BulkPayload {
	b := validation.Bind(fields)
	items := b.List("products")
	out := BulkPayload{
		Products: make([]Payload, 0, len(items)),
		Mismatch: b.Mismatches(),
	}
	for i, item := range items {
		var up *Upload
		if image != nil {
			up = image(i)
		}
		out.Products = append(out.Products, BindPayload(item, up))
	}
	return out
}

func noPrefix(int) string { return "" }

func itemPrefix(i int) string {
	return fmt.Sprintf("products.%d.", i)
}
