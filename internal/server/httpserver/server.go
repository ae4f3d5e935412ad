// Package httpserver exposes the file service as a JSON API over gin.
package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophbox/internal/logging"
	"github.com/dmitrijs2005/gophbox/internal/server/metrics"
	"github.com/dmitrijs2005/gophbox/internal/server/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// multipartOverhead is allowed on top of the max upload size for part
// headers and boundaries.
const multipartOverhead = 1 << 20

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(token string) (int64, error)
}

type FileService interface {
	Upload(ctx context.Context, userID int64, filename string, content io.Reader) (*models.File, error)
	Download(ctx context.Context, userID, fileID int64) (*models.Download, error)
	Delete(ctx context.Context, userID, fileID int64) error
	ListFiles(ctx context.Context, userID int64) ([]*models.File, error)
	Usage(ctx context.Context, userID int64) (*models.Usage, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Address            string
	MaxUploadSize      int64
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

type HTTPServer struct {
	opts     Options
	users    UserService
	files    FileService
	health   HealthChecker
	logger   logging.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	engine   *gin.Engine
}

func NewHTTPServer(o Options, l logging.Logger, us UserService, fs FileService, hc HealthChecker,
	m *metrics.Metrics, g prometheus.Gatherer) *HTTPServer {

	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	s := &HTTPServer{
		opts:     o,
		logger:   l.With("module", "http_server"),
		users:    us,
		files:    fs,
		health:   hc,
		metrics:  m,
		gatherer: g,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the router, mostly for tests.
func (s *HTTPServer) Handler() http.Handler { return s.engine }

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if len(s.opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  s.opts.CORSAllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowHeaders:  []string{"Authorization", "Content-Type", requestIDHeader},
			ExposeHeaders: []string{"Content-Disposition", requestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)

	authed := api.Group("", s.accessTokenMiddleware())
	authed.GET("/me", s.me)
	authed.GET("/files", s.listFiles)
	authed.POST("/files", s.uploadFile)
	authed.GET("/files/:id", s.downloadFile)
	authed.DELETE("/files/:id", s.deleteFile)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
