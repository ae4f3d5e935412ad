// Package server wires configuration, storage backends and the HTTP API
// together and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophbox/internal/logging"
	"github.com/dmitrijs2005/gophbox/internal/server/blobstore"
	"github.com/dmitrijs2005/gophbox/internal/server/config"
	"github.com/dmitrijs2005/gophbox/internal/server/httpserver"
	"github.com/dmitrijs2005/gophbox/internal/server/ledger"
	"github.com/dmitrijs2005/gophbox/internal/server/metrics"
	"github.com/dmitrijs2005/gophbox/internal/server/services"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	config *config.Config
	logger logging.Logger
	ledger *ledger.Ledger
	server *httpserver.HTTPServer
}

// NewApp opens the ledger and blob store and builds the HTTP server.
// Log output goes to logOut.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger := logging.NewJSONLogger(logOut, c.LogLevel)

	l, err := ledger.Open(ctx, ledger.Options{DSN: c.DatabaseDSN, Path: c.DatabasePath})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := newBlobStore(ctx, c)
	if err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	us, err := services.NewUserService(l.DB(), l.Repos(), c)
	if err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("user service init error: %w", err)
	}
	fs := services.NewFileService(l, store, c.MaxUploadSize, logger, m)

	srv := httpserver.NewHTTPServer(httpserver.Options{
		Address:            c.HTTPAddr,
		MaxUploadSize:      c.MaxUploadSize,
		CORSAllowedOrigins: c.CORSAllowedOrigins,
		ShutdownTimeout:    c.ShutdownTimeout,
	}, logger, us, fs, l, m, reg)

	logger.Info(ctx, "App configured",
		"blob_backend", c.BlobBackend,
		"database", databaseKind(c),
		"default_storage_limit", humanize.IBytes(uint64(c.DefaultStorageLimit)),
		"max_upload_size", humanize.IBytes(uint64(c.MaxUploadSize)))

	return &App{config: c, logger: logger, ledger: l, server: srv}, nil
}

func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.BlobBackend {
	case config.BlobBackendLocal:
		return blobstore.NewLocalStore(c.UploadRoot)
	case config.BlobBackendS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}
}

func databaseKind(c *config.Config) string {
	if c.DatabaseDSN != "" {
		return "postgres"
	}
	return "sqlite:" + c.DatabasePath
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is canceled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)

	if cerr := app.ledger.Close(); cerr != nil {
		app.logger.Error(ctx, "closing database", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
