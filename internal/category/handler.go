package category

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/catalog-backend/internal/interface/http/httpio"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/categories", h.getCategories)
	app.Post("/categories", h.createCategory)
	app.Post("/categories/bulk", h.bulkCreateCategories)
	app.Get("/categories/:id", h.getCategory)
	app.Put("/categories/:id", h.updateCategory)
	app.Delete("/categories/:id", h.deleteCategory)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to retrieve categories.")
	}
	return c.JSON(items)
}

func (h *Handler) createCategory(c *fiber.Ctx) error {
	body, err := httpio.ReadBody(c)
	if err != nil {
		return h.fail(c, err, "Failed to create category.")
	}
	created, err := h.service.Create(c.UserContext(), BindPayload(body.Fields))
	if err != nil {
		return h.fail(c, err, "Failed to create category.")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) bulkCreateCategories(c *fiber.Ctx) error {
	body, err := httpio.ReadBody(c)
	if err != nil {
		return h.fail(c, err, "Failed to create categories.")
	}
	created, err := h.service.BulkCreate(c.UserContext(), BindBulkPayload(body.Fields))
	if err != nil {
		return h.fail(c, err, "Failed to create categories.")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getCategory(c *fiber.Ctx) error {
	id, ok := httpio.ParseID(c)
	if !ok {
		return h.fail(c, ErrNotFound, "")
	}
	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "Failed to retrieve category.")
	}
	return c.JSON(item)
}

func (h *Handler) updateCategory(c *fiber.Ctx) error {
	id, ok := httpio.ParseID(c)
	if !ok {
		return h.fail(c, ErrNotFound, "")
	}
	body, err := httpio.ReadBody(c)
	if err != nil {
		return h.fail(c, err, "Failed to update category.")
	}
	updated, err := h.service.Update(c.UserContext(), id, BindPayload(body.Fields))
	if err != nil {
		return h.fail(c, err, "Failed to update category.")
	}
	return c.JSON(updated)
}

func (h *Handler) deleteCategory(c *fiber.Ctx) error {
	id, ok := httpio.ParseID(c)
	if !ok {
		return h.fail(c, ErrNotFound, "")
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err, "Failed to delete category.")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) fail(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return httpio.Error(c, fiber.StatusNotFound, "Category not found.")
	case errors.Is(err, ErrHasProducts):
		return httpio.Error(c, fiber.StatusConflict, "Category has products and cannot be deleted.")
	}
	return httpio.Fail(c, err, message)
}
