// Package config loads this service's environment-variable configuration,
// grounded on the pack's own auth/gameplay/websocket-service config
// packages: godotenv for an optional local .env file, then envconfig.Process
// against a tagged struct. Secrets (REDIS_PASSWORD, MODEL_API_KEY) are read
// directly with os.Getenv outside the tagged struct; cmd/agentd falls back to
// the internal/secure credential cache when MODEL_API_KEY is empty.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// #region config

// Config is the full set of environment-derived settings for agentd.
type Config struct {
	Env          string `envconfig:"ENV" default:"development"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort   string `envconfig:"SERVER_PORT" default:"8080"`
	MetricsPort  string `envconfig:"METRICS_PORT" default:"9090"`

	KVBackend    string `envconfig:"KV_BACKEND" default:"memory"` // memory | sqlite | redis
	SQLitePath   string `envconfig:"SQLITE_PATH" default:"agentd.db"`
	RedisAddr    string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB      int    `envconfig:"REDIS_DB" default:"0"`

	BlobBackend  string `envconfig:"BLOB_BACKEND" default:"local"` // local | gcs
	BlobLocalDir string `envconfig:"BLOB_LOCAL_DIR" default:"./blobstore"`
	BlobBaseURL  string `envconfig:"BLOB_BASE_URL" default:"/blobs"`
	GCSBucket    string `envconfig:"GCS_BUCKET" default:""`

	ModelProvider   string        `envconfig:"MODEL_PROVIDER" default:"openai"`
	ModelID         string        `envconfig:"MODEL_ID" default:"openai/gpt-4o"`
	ModelBaseURL    string        `envconfig:"MODEL_BASE_URL" default:""`
	CredentialCache string        `envconfig:"CREDENTIAL_CACHE_DIR" default:"./credcache"`
	HeartbeatTTL    time.Duration `envconfig:"HEARTBEAT_TTL" default:"60s"`

	AuditDBPath string `envconfig:"AUDIT_DB_PATH" default:"agentd_audit.db"`

	// RedisPassword and ModelAPIKey are never read from envconfig tags: they
	// are secrets, loaded explicitly in Load so they never appear in a
	// processed-struct dump or log line by accident.
	RedisPassword string
	ModelAPIKey   string
}

// #endregion config

// #region load

// Load reads envFilePath (if present) via godotenv, then processes the
// tagged struct fields from the environment, then reads the two secret
// values directly so they bypass envconfig's reflection-based logging.
func Load(envFilePath string) (Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("[config] warning: could not load %s: %v", envFilePath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("[config] warning: error checking %s: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: process env vars: %w", err)
	}

	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.ModelAPIKey = os.Getenv("MODEL_API_KEY")

	return cfg, nil
}

// #endregion load
