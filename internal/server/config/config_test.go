package config

import (
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophbox/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "", c.DatabaseDSN)
	assert.Equal(t, "data/gophbox.db", c.DatabasePath)
	assert.Equal(t, "uploads", c.UploadRoot)
	assert.Equal(t, BlobBackendLocal, c.BlobBackend)
	assert.Equal(t, int64(104857600), c.DefaultStorageLimit)
	assert.Equal(t, int64(16777216), c.MaxUploadSize)
	assert.Equal(t, 1*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, "gophbox", c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
}

func TestLoadConfig_UsesDefaultsAndGeneratesSecret(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c, err := LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Len(t, c.SecretKey, 64)

	other, err := LoadConfig()
	require.NoError(t, err)
	assert.NotEqual(t, c.SecretKey, other.SecretKey)
}

func TestLoadConfig_LayersOverride(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"http_addr":       ":7000",
		"max_upload_size": "1 MiB",
		"secret_key":      "from-json",
	})
	t.Setenv(EnvHTTPAddr, ":7100")
	t.Setenv(EnvSecretKey, "from-env")
	os.Args = []string{"testbin", "-c", path, "-a", ":7200"}

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":7200", c.HTTPAddr)
	assert.Equal(t, "from-env", c.SecretKey)
	assert.Equal(t, int64(1<<20), c.MaxUploadSize)
}

func TestLoadConfig_InvalidIsError(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-k", "ftp"}

	_, err := LoadConfig()
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		c.SecretKey = "k"
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no addr", func(c *Config) { c.HTTPAddr = "" }},
		{"no database", func(c *Config) { c.DatabasePath = ""; c.DatabaseDSN = "" }},
		{"no upload root", func(c *Config) { c.UploadRoot = "" }},
		{"s3 without bucket", func(c *Config) { c.BlobBackend = BlobBackendS3; c.S3Bucket = "" }},
		{"unknown backend", func(c *Config) { c.BlobBackend = "tape" }},
		{"zero limit", func(c *Config) { c.DefaultStorageLimit = 0 }},
		{"zero max upload", func(c *Config) { c.MaxUploadSize = 0 }},
		{"zero token validity", func(c *Config) { c.AccessTokenValidityDuration = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), common.ErrorValidation)
		})
	}

	c := valid()
	c.DatabasePath = ""
	c.DatabaseDSN = "postgres://x"
	assert.NoError(t, c.Validate())
}
