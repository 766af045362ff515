package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/catalog")
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Storage.Driver != DriverDisk || cfg.Storage.PublicURL != "/storage" {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.MaxImageKB != 2048 {
		t.Fatalf("expected 2048 KB image limit, got %d", cfg.MaxImageKB)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CONFIG_PATH", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
addr: ":9090"
database:
  url: "postgres://yaml/catalog"
storage:
  driver: jetstream
  natsURL: "nats://nats:4222"
  bucket: images
maxImageKB: 512
shutdownTimeout: 3s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://env/catalog")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Database.URL != "postgres://yaml/catalog" {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.Storage.Driver != DriverJetStream || cfg.Storage.Bucket != "images" {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.MaxImageKB != 512 || cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected limits: %+v", cfg)
	}
	// untouched keys keep their env/default values
	if cfg.Database.MaxOpenConns != 10 {
		t.Fatalf("expected default max open conns, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := Config{
		Database:    Database{URL: "postgres://x"},
		Storage:     Storage{Driver: "s3"},
		MaxImageKB:  1,
		BodyLimitMB: 1,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown driver to be rejected")
	}
}
