package server

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophbox/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.DatabasePath = filepath.Join(dir, "db", "gophbox.db")
	c.UploadRoot = filepath.Join(dir, "uploads")
	c.SecretKey = "test"
	c.ShutdownTimeout = time.Second
	return c
}

func TestNewApp_RunAndStop(t *testing.T) {
	logs := &bytes.Buffer{}
	app, err := NewApp(context.Background(), testConfig(t), logs)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Contains(t, logs.String(), "App configured")
	assert.Contains(t, logs.String(), "App stopped")
}

func TestNewApp_UnknownBackend(t *testing.T) {
	c := testConfig(t)
	c.BlobBackend = "tape"

	_, err := NewApp(context.Background(), c, &bytes.Buffer{})
	require.ErrorContains(t, err, "unknown blob backend")
}

func TestNewApp_NoDatabase(t *testing.T) {
	c := testConfig(t)
	c.DatabasePath = ""

	_, err := NewApp(context.Background(), c, &bytes.Buffer{})
	require.ErrorContains(t, err, "db init error")
}

func TestDatabaseKind(t *testing.T) {
	assert.Equal(t, "postgres", databaseKind(&config.Config{DatabaseDSN: "postgres://x", DatabasePath: "a"}))
	assert.Equal(t, "sqlite:a.db", databaseKind(&config.Config{DatabasePath: "a.db"}))
}
