package product

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/catalog-backend/internal/interface/http/httpio"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/products", h.getProducts)
	app.Post("/products", h.createProduct)
	app.Post("/products/bulk", h.bulkCreateProducts)
	app.Get("/products/:id", h.getProduct)
	app.Put("/products/:id", h.updateProduct)
	app.Delete("/products/:id", h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to retrieve products.")
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, ok := httpio.ParseID(c)
	if !ok {
		return h.fail(c, ErrNotFound, "")
	}
	p, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "Failed to retrieve product.")
	}
	return c.JSON(p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	in, err := readPayload(c)
	if err != nil {
		return h.fail(c, err, "Failed to create product.")
	}
	created, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err, "Failed to create product.")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) bulkCreateProducts(c *fiber.Ctx) error {
	body, err := httpio.ReadBody(c)
	if err != nil {
		return h.fail(c, err, "Failed to create products.")
	}

	var readErr error
	in := BindBulkPayload(body.Fields, func(i int) *Upload {
		up, err := readUpload(body.File(httpio.ItemFileKey("products", i, "image")))
		if err != nil && readErr == nil {
			readErr = err
		}
		return up
	})
	if readErr != nil {
		return h.fail(c, readErr, "Failed to create products.")
	}

	created, err := h.service.BulkCreate(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err, "Failed to create products.")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, ok := httpio.ParseID(c)
	if !ok {
		return h.fail(c, ErrNotFound, "")
	}
	in, err := readPayload(c)
	if err != nil {
		return h.fail(c, err, "Failed to update product.")
	}
	updated, err := h.service.Update(c.UserContext(), id, in)
	if err != nil {
		return h.fail(c, err, "Failed to update product.")
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, ok := httpio.ParseID(c)
	if !ok {
		return h.fail(c, ErrNotFound, "")
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err, "Failed to delete product.")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) fail(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, ErrNotFound) {
		return httpio.Error(c, fiber.StatusNotFound, "Product not found.")
	}
	return httpio.Fail(c, err, message)
}

func readPayload(c *fiber.Ctx) (Payload, error) {
	body, err := httpio.ReadBody(c)
	if err != nil {
		return Payload{}, err
	}
	up, err := readUpload(body.File("image"))
	if err != nil {
		return Payload{}, err
	}
	return BindPayload(body.Fields, up), nil
}

func readUpload(fh *multipart.FileHeader) (*Upload, error) {
	if fh == nil {
		return nil, nil
	}
	data, err := httpio.ReadFile(fh)
	if err != nil {
		return nil, err
	}
	return &Upload{Filename: fh.Filename, Data: data}, nil
}
