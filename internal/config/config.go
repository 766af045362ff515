package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers understood by Load.
const (
	DriverDisk      = "disk"
	DriverJetStream = "jetstream"
)

type Database struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
}

type Storage struct {
	Driver    string `yaml:"driver"`
	DiskRoot  string `yaml:"diskRoot"`
	PublicURL string `yaml:"publicURL"`
	NatsURL   string `yaml:"natsURL"`
	Bucket    string `yaml:"bucket"`
}

// Config holds environment-driven configuration.
type Config struct {
	Addr             string        `yaml:"addr"`
	Database         Database      `yaml:"database"`
	Storage          Storage       `yaml:"storage"`
	MaxImageKB       int           `yaml:"maxImageKB"`
	BodyLimitMB      int           `yaml:"bodyLimitMB"`
	ShutdownTimeout  time.Duration `yaml:"shutdownTimeout"`
	CORSAllowOrigins string        `yaml:"corsAllowOrigins"`
}

// Load reads a .env file when present, then environment variables, then the
// YAML file named by CONFIG_PATH. Values from the YAML file win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr: getEnv("CATALOG_ADDR", ":8080"),
		Database: Database{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		Storage: Storage{
			Driver:    getEnv("BLOB_DRIVER", DriverDisk),
			DiskRoot:  getEnv("BLOB_DISK_ROOT", "./storage/app/public"),
			PublicURL: getEnv("BLOB_PUBLIC_URL", "/storage"),
			NatsURL:   getEnv("NATS_URL", "nats://127.0.0.1:4222"),
			Bucket:    getEnv("NATS_BUCKET", "catalog-images"),
		},
		MaxImageKB:       getEnvInt("MAX_IMAGE_KB", 2048),
		BodyLimitMB:      getEnvInt("BODY_LIMIT_MB", 32),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate reports the first setting that cannot be used to start the server.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	switch c.Storage.Driver {
	case DriverDisk:
		if c.Storage.DiskRoot == "" {
			return errors.New("disk storage requires a root directory")
		}
	case DriverJetStream:
		if c.Storage.NatsURL == "" || c.Storage.Bucket == "" {
			return errors.New("jetstream storage requires a NATS url and bucket")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.MaxImageKB <= 0 {
		return fmt.Errorf("maxImageKB must be positive, got %d", c.MaxImageKB)
	}
	if c.BodyLimitMB <= 0 {
		return fmt.Errorf("bodyLimitMB must be positive, got %d", c.BodyLimitMB)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
