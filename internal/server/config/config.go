// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophbox/internal/common"
)

const (
	BlobBackendLocal = "local"
	BlobBackendS3    = "s3"
)

// Config holds runtime settings for the gophbox server.
//
// Fields:
//   - HTTPAddr: bind address of the JSON API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). When set it wins over DatabasePath.
//   - DatabasePath: SQLite file used when no DSN is configured.
//   - UploadRoot: directory of the local blob store.
//   - BlobBackend: "local" or "s3".
//   - DefaultStorageLimit / MaxUploadSize: quota for new accounts and per-file cap, bytes.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Generated at start when empty.
//   - AccessTokenValidityDuration: token lifetime.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
type Config struct {
	HTTPAddr                    string
	DatabaseDSN                 string
	DatabasePath                string
	UploadRoot                  string
	BlobBackend                 string
	DefaultStorageLimit         int64
	MaxUploadSize               int64
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
	LogLevel                    string
	CORSAllowedOrigins          []string
	ShutdownTimeout             time.Duration
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.DatabaseDSN = ""
	c.DatabasePath = "data/gophbox.db"
	c.UploadRoot = "uploads"
	c.BlobBackend = BlobBackendLocal
	c.DefaultStorageLimit = common.DefaultStorageLimitBytes
	c.MaxUploadSize = common.DefaultMaxUploadSizeBytes
	c.SecretKey = ""
	c.AccessTokenValidityDuration = 1 * time.Hour
	c.S3RootUser = ""
	c.S3RootPassword = ""
	c.S3Bucket = "gophbox"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.LogLevel = "info"
	c.CORSAllowedOrigins = nil
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (including an optional .env
// file) and finally command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}

	if cfg.SecretKey == "" {
		key, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		cfg.SecretKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var problems []string

	if c.HTTPAddr == "" {
		problems = append(problems, "http address is empty")
	}
	if c.DatabaseDSN == "" && c.DatabasePath == "" {
		problems = append(problems, "either database dsn or database path is required")
	}
	switch c.BlobBackend {
	case BlobBackendLocal:
		if c.UploadRoot == "" {
			problems = append(problems, "upload root is empty")
		}
	case BlobBackendS3:
		if c.S3Bucket == "" {
			problems = append(problems, "s3 bucket is empty")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown blob backend %q", c.BlobBackend))
	}
	if c.DefaultStorageLimit <= 0 {
		problems = append(problems, "default storage limit must be positive")
	}
	if c.MaxUploadSize <= 0 {
		problems = append(problems, "max upload size must be positive")
	}
	if c.AccessTokenValidityDuration <= 0 {
		problems = append(problems, "access token validity must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrorValidation, strings.Join(problems, "; "))
	}
	return nil
}

func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }
