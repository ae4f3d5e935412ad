package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophbox/internal/flagx"
	"github.com/dmitrijs2005/gophbox/internal/sizex"
	"github.com/dmitrijs2005/gophbox/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept "1h"
// or nanoseconds, sizes accept "16 MiB" or a byte count. Absent fields keep
// the value from the previous layer.
type JsonConfig struct {
	HTTPAddr                    string          `json:"http_addr"`
	DatabaseDSN                 string          `json:"database_dsn"`
	DatabasePath                string          `json:"database_path"`
	UploadRoot                  string          `json:"upload_root"`
	BlobBackend                 string          `json:"blob_backend"`
	DefaultStorageLimit         *sizex.ByteSize `json:"default_storage_limit"`
	MaxUploadSize               *sizex.ByteSize `json:"max_upload_size"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string          `json:"s3_root_user"`
	S3RootPassword              string          `json:"s3_root_password"`
	S3Bucket                    string          `json:"s3_bucket"`
	S3Region                    string          `json:"s3_region"`
	S3BaseEndpoint              string          `json:"s3_base_endpoint"`
	LogLevel                    string          `json:"log_level"`
	CORSAllowedOrigins          []string        `json:"cors_allowed_origins"`
	ShutdownTimeout             *timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads the file named by -c/-config, if any, over config.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.DatabasePath, c.DatabasePath)
	setString(&config.UploadRoot, c.UploadRoot)
	setString(&config.BlobBackend, c.BlobBackend)
	if c.DefaultStorageLimit != nil {
		config.DefaultStorageLimit = c.DefaultStorageLimit.Int64()
	}
	if c.MaxUploadSize != nil {
		config.MaxUploadSize = c.MaxUploadSize.Int64()
	}
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
