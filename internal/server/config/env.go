package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophbox/internal/flagx"
	"github.com/dmitrijs2005/gophbox/internal/sizex"
	"github.com/joho/godotenv"
)

// Environment variable names. UPLOAD_FOLDER and DATABASE_PATH keep the
// names older deployments already use.
const (
	EnvHTTPAddr            = "HTTP_ADDR"
	EnvDatabaseDSN         = "DATABASE_DSN"
	EnvDatabasePath        = "DATABASE_PATH"
	EnvUploadRoot          = "UPLOAD_FOLDER"
	EnvBlobBackend         = "BLOB_BACKEND"
	EnvDefaultStorageLimit = "DEFAULT_STORAGE_LIMIT"
	EnvMaxUploadSize       = "MAX_UPLOAD_SIZE"
	EnvSecretKey           = "SECRET_KEY"
	EnvAccessTokenValidity = "ACCESS_TOKEN_VALIDITY"
	EnvS3RootUser          = "S3_ROOT_USER"
	EnvS3RootPassword      = "S3_ROOT_PASSWORD"
	EnvS3Bucket            = "S3_BUCKET"
	EnvS3Region            = "S3_REGION"
	EnvS3BaseEndpoint      = "S3_BASE_ENDPOINT"
	EnvLogLevel            = "LOG_LEVEL"
	EnvCORSAllowedOrigins  = "CORS_ALLOWED_ORIGINS"
)

const defaultEnvFile = ".env"

// parseEnv loads the dotenv file given with -env (or ./.env when present)
// into the process environment without overriding existing variables, then
// overlays every set variable onto config.
func parseEnv(config *Config) error {
	if err := loadDotEnv(flagx.EnvFileFlags()); err != nil {
		return err
	}

	setString(&config.HTTPAddr, os.Getenv(EnvHTTPAddr))
	setString(&config.DatabaseDSN, os.Getenv(EnvDatabaseDSN))
	setString(&config.DatabasePath, os.Getenv(EnvDatabasePath))
	setString(&config.UploadRoot, os.Getenv(EnvUploadRoot))
	setString(&config.BlobBackend, os.Getenv(EnvBlobBackend))
	setString(&config.SecretKey, os.Getenv(EnvSecretKey))
	setString(&config.S3RootUser, os.Getenv(EnvS3RootUser))
	setString(&config.S3RootPassword, os.Getenv(EnvS3RootPassword))
	setString(&config.S3Bucket, os.Getenv(EnvS3Bucket))
	setString(&config.S3Region, os.Getenv(EnvS3Region))
	setString(&config.S3BaseEndpoint, os.Getenv(EnvS3BaseEndpoint))
	setString(&config.LogLevel, os.Getenv(EnvLogLevel))

	if v := os.Getenv(EnvDefaultStorageLimit); v != "" {
		n, err := sizex.Parse(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDefaultStorageLimit, err)
		}
		config.DefaultStorageLimit = n.Int64()
	}
	if v := os.Getenv(EnvMaxUploadSize); v != "" {
		n, err := sizex.Parse(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxUploadSize, err)
		}
		config.MaxUploadSize = n.Int64()
	}
	if v := os.Getenv(EnvAccessTokenValidity); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAccessTokenValidity, err)
		}
		config.AccessTokenValidityDuration = d
	}
	if v := os.Getenv(EnvCORSAllowedOrigins); v != "" {
		config.CORSAllowedOrigins = splitList(v)
	}

	return nil
}

func loadDotEnv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
