package router

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/wichananm65/catalog-backend/internal/category"
	"github.com/wichananm65/catalog-backend/internal/interface/http/httpio"
	"github.com/wichananm65/catalog-backend/internal/product"
	"github.com/wichananm65/catalog-backend/internal/storage"
)

// Pinger reports whether the datastore is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	BodyLimit     int
	AllowOrigins  string
	StoragePrefix string
	// DisableLogger turns off the per-request log line.
	DisableLogger bool
}

type Handlers struct {
	Categories *category.Handler
	Products   *product.Handler
	Blobs      *storage.Handler
}

// New builds the fiber app with middleware, health check and every catalog
// route registered.
func New(opts Options, db Pinger, h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: httpio.ErrorHandler,
		BodyLimit:    opts.BodyLimit,
	})

	// cors only answers requests carrying Origin; a wildcard policy is
	// advertised on every response.
	if opts.AllowOrigins == "*" {
		app.Use(func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
			return c.Next()
		})
	}
	app.Use(recover.New())
	if !opts.DisableLogger {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/health", health(db))

	h.Categories.RegisterPublicRoutes(app)
	h.Products.RegisterPublicRoutes(app)
	if h.Blobs != nil && opts.StoragePrefix != "" {
		h.Blobs.RegisterPublicRoutes(app, opts.StoragePrefix)
	}

	app.Use(func(c *fiber.Ctx) error {
		return httpio.Error(c, fiber.StatusNotFound, "Not found.")
	})
	return app
}

func health(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Printf("[health] database ping failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
