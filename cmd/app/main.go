package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/wichananm65/catalog-backend/internal/category"
	"github.com/wichananm65/catalog-backend/internal/config"
	"github.com/wichananm65/catalog-backend/internal/infrastructure/database/postgres"
	"github.com/wichananm65/catalog-backend/internal/interface/http/router"
	"github.com/wichananm65/catalog-backend/internal/product"
	"github.com/wichananm65/catalog-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.Database.URL, postgres.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	blobs, closeBlobs, err := openBlobStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	categoryService := category.NewService(category.NewPostgresRepository(db))
	productService := product.NewService(
		product.NewPostgresRepository(db),
		categoryService,
		blobs,
		cfg.MaxImageKB,
	)

	app := router.New(router.Options{
		BodyLimit:     cfg.BodyLimitMB * 1024 * 1024,
		AllowOrigins:  cfg.CORSAllowOrigins,
		StoragePrefix: storagePrefix(cfg.Storage.PublicURL),
	}, db, router.Handlers{
		Categories: category.NewHandler(categoryService),
		Products:   product.NewHandler(productService),
		Blobs:      storage.NewHandler(blobs),
	})

	go func() {
		log.Printf("Catalog API listening on %s (blob driver: %s)", cfg.Addr, cfg.Storage.Driver)
		if err := app.Listen(cfg.Addr); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// in-flight requests finish before their backends go away
			"catalog": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				httpErr := app.ShutdownWithContext(ctx)
				return errors.Join(httpErr, closeBlobs(), db.Close())
			},
		},
	)

	exitCode := <-wait
	log.Printf("Catalog API exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func openBlobStore(ctx context.Context, cfg config.Storage) (storage.BlobStore, func() error, error) {
	switch cfg.Driver {
	case config.DriverJetStream:
		js, err := storage.NewJetStream(ctx, cfg.NatsURL, cfg.Bucket, cfg.PublicURL)
		if err != nil {
			return nil, nil, err
		}
		return js, js.Close, nil
	case config.DriverDisk:
		d, err := storage.NewDisk(cfg.DiskRoot, cfg.PublicURL)
		if err != nil {
			return nil, nil, err
		}
		return d, func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
}

// storagePrefix is the path under which this server answers blob URLs. A
// public URL on another host still maps onto its path here.
func storagePrefix(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil || u.Path == "" {
		return "/storage"
	}
	return u.Path
}
