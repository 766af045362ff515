package category

import (
	"fmt"
	"time"

	"github.com/wichananm65/catalog-backend/internal/validation"
)

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payload is the writable part of a category as sent by clients.
type Payload struct {
	Name string `json:"name" validate:"required,max=255"`

	Mismatch validation.Mismatches `json:"-"`
}

// BindPayload reads a Payload out of request fields.
func BindPayload(fields validation.Fields) Payload {
	b := validation.Bind(fields)
	return Payload{
		Name:     b.String("name"),
		Mismatch: b.Mismatches(),
	}
}

func (p Payload) validate(prefix string, errs validation.Errors) error {
	p.Mismatch.Report(prefix, errs)
	return validation.Check(p, prefix, errs)
}

// BulkPayload is the body of a bulk create: {"categories": [{name}, ...]}.
type BulkPayload struct {
	Categories []Payload

	Mismatch validation.Mismatches
}

func BindBulkPayload(fields validation.Fields) BulkPayload {
	b := validation.Bind(fields)
	items := b.List("categories")
	out := BulkPayload{
		Categories: make([]Payload, 0, len(items)),
		Mismatch:   b.Mismatches(),
	}
	for _, item := range items {
		out.Categories = append(out.Categories, BindPayload(item))
	}
	return out
}

func (p BulkPayload) validate(errs validation.Errors) error {
	p.Mismatch.Report("", errs)
	if len(p.Categories) == 0 && !errs.Has("categories") {
		errs.Fail("categories", "required", "")
	}
	for i, item := range p.Categories {
		if err := item.validate(fmt.Sprintf("categories.%d.", i), errs); err != nil {
			return err
		}
	}
	return nil
}
