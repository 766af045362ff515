package storage

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const blobCSP = "default-src 'none'; style-src 'unsafe-inline'; sandbox"

// Handler serves stored blobs over HTTP so the URLs returned by
// BlobStore.URL resolve against this server.
type Handler struct {
	store BlobStore
}

func NewHandler(store BlobStore) *Handler {
	return &Handler{store: store}
}

// RegisterPublicRoutes mounts GET <prefix>/* on app.
func (h *Handler) RegisterPublicRoutes(app fiber.Router, prefix string) {
	app.Get(strings.TrimRight(prefix, "/")+"/*", h.getBlob)
}

func (h *Handler) getBlob(c *fiber.Ctx) error {
	key := c.Params("*")
	if !ValidKey(key) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found."})
	}

	data, contentType, err := h.store.Get(c.UserContext(), key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found."})
		}
		log.Printf("[storage] get %s: %v", key, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve file."})
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	// uploads may be SVG; nothing inside them runs on this origin
	c.Set(fiber.HeaderContentSecurityPolicy, blobCSP)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}
