package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophbox/internal/common"
	"github.com/dmitrijs2005/gophbox/internal/logging"
	"github.com/dmitrijs2005/gophbox/internal/server/blobstore"
	"github.com/dmitrijs2005/gophbox/internal/server/metrics"
	"github.com/dmitrijs2005/gophbox/internal/server/models"
	"github.com/dmitrijs2005/gophbox/internal/server/quota"
	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dmitrijs2005/gophbox/internal/server/services"

// FileLedger is the part of *ledger.Ledger the file lifecycle needs.
type FileLedger interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	FindFile(ctx context.Context, fileID, userID int64) (*models.File, error)
	ListFiles(ctx context.Context, userID int64) ([]*models.File, error)
	Usage(ctx context.Context, userID int64) (*models.Usage, error)
	CommitUpload(ctx context.Context, rec *models.File) (int64, error)
	CommitDelete(ctx context.Context, rec *models.File) error
}

// FileService runs upload, download, delete and listing for one user at a
// time, keeping the blob store and the ledger in step.
//
// Uploads are written optimistically through a reader capped at what the
// user could still be granted, then committed with an atomic reservation.
// Any rejection after the write removes the blob again.
type FileService struct {
	ledger    FileLedger
	store     blobstore.Store
	maxUpload int64
	logger    logging.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       func() time.Time
}

func NewFileService(l FileLedger, store blobstore.Store, maxUpload int64, logger logging.Logger, m *metrics.Metrics) *FileService {
	if maxUpload <= 0 {
		maxUpload = common.DefaultMaxUploadSizeBytes
	}
	return &FileService{
		ledger:    l,
		store:     store,
		maxUpload: maxUpload,
		logger:    logger.With("module", "files"),
		metrics:   m,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
}

// Upload stores content for userID under filename and returns the committed
// record. Size is whatever was actually read from content.
func (s *FileService) Upload(ctx context.Context, userID int64, filename string, content io.Reader) (_ *models.File, err error) {
	ctx, span := s.tracer.Start(ctx, "FileService.Upload",
		trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer func() { endSpan(span, err) }()

	result := metrics.ResultFailed
	defer func() { s.metrics.Uploads.WithLabelValues(result).Inc() }()

	filename = strings.TrimSpace(filename)
	if filename == "" {
		result = metrics.ResultRejected
		return nil, fmt.Errorf("%w: no file selected", common.ErrorValidation)
	}

	user, err := s.ledger.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err = quota.Admit(user, 1); err != nil {
		result = metrics.ResultRejected
		return nil, err
	}
	headroom := quota.Headroom(user)

	limit := min(headroom, s.maxUpload) + 1
	storedName, size, err := s.store.Put(ctx, userID, filename, io.LimitReader(content, limit))
	if err != nil {
		return nil, fmt.Errorf("write blob: %w", err)
	}
	span.SetAttributes(attribute.String("file.stored_name", storedName), attribute.Int64("file.size", size))

	var reject error
	switch {
	case size == 0:
		reject = common.ErrEmptyUpload
	case size > s.maxUpload:
		reject = fmt.Errorf("%w: limit is %s", common.ErrUploadTooLarge, humanize.IBytes(uint64(s.maxUpload)))
	case size > headroom:
		reject = common.ErrStorageLimitExceeded
	}
	if reject != nil {
		result = metrics.ResultRejected
		s.discardBlob(ctx, userID, storedName)
		return nil, reject
	}

	rec := &models.File{
		UserID:       userID,
		StoredName:   storedName,
		OriginalName: filename,
		SizeBytes:    size,
		CreatedAt:    s.now().UTC(),
	}
	if _, err := s.ledger.CommitUpload(ctx, rec); err != nil {
		s.discardBlob(ctx, userID, storedName)
		if errors.Is(err, common.ErrStorageLimitExceeded) {
			result = metrics.ResultRejected
			return nil, err
		}
		result = metrics.ResultRolledBack
		return nil, fmt.Errorf("commit upload: %w", err)
	}

	result = metrics.ResultOK
	s.metrics.UploadedBytes.Add(float64(size))
	s.logger.Info(ctx, "file uploaded",
		"user_id", userID, "file_id", rec.ID, "stored_name", storedName, "size", humanize.IBytes(uint64(size)))

	return rec, nil
}

// discardBlob removes a blob that has no committed record. A failure leaves
// an orphan, which is logged for reconciliation.
func (s *FileService) discardBlob(ctx context.Context, userID int64, storedName string) {
	err := s.store.Delete(context.WithoutCancel(ctx), storedName)
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		return
	}
	s.logger.Error(ctx, "orphan blob left behind",
		"error", fmt.Errorf("%w: %w", common.ErrConsistency, err),
		"user_id", userID, "stored_name", storedName)
}

// Download opens the blob of a file owned by userID. Missing records, other
// owners' records and missing blobs all yield common.ErrorNotFound.
func (s *FileService) Download(ctx context.Context, userID, fileID int64) (_ *models.Download, err error) {
	ctx, span := s.tracer.Start(ctx, "FileService.Download",
		trace.WithAttributes(attribute.Int64("user.id", userID), attribute.Int64("file.id", fileID)))
	defer func() { endSpan(span, err) }()

	result := metrics.ResultFailed
	defer func() { s.metrics.Downloads.WithLabelValues(result).Inc() }()

	rec, err := s.ledger.FindFile(ctx, fileID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			result = metrics.ResultNotFound
			s.logger.Debug(ctx, "file record not found", "user_id", userID, "file_id", fileID)
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}

	rc, err := s.store.Get(ctx, rec.StoredName)
	if err != nil {
		result = metrics.ResultNotFound
		s.logger.Error(ctx, "blob unavailable for file record",
			"error", err, "user_id", userID, "file_id", fileID, "stored_name", rec.StoredName)
		return nil, common.ErrorNotFound
	}

	result = metrics.ResultOK
	return &models.Download{
		Content:      rc,
		OriginalName: rec.OriginalName,
		SizeBytes:    rec.SizeBytes,
	}, nil
}

// Delete removes the blob, then the record together with its usage.
// A blob that is already gone is treated as deleted.
func (s *FileService) Delete(ctx context.Context, userID, fileID int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "FileService.Delete",
		trace.WithAttributes(attribute.Int64("user.id", userID), attribute.Int64("file.id", fileID)))
	defer func() { endSpan(span, err) }()

	result := metrics.ResultFailed
	defer func() { s.metrics.Deletes.WithLabelValues(result).Inc() }()

	rec, err := s.ledger.FindFile(ctx, fileID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			result = metrics.ResultNotFound
			return common.ErrorNotFound
		}
		return fmt.Errorf("find file: %w", err)
	}

	if err := s.store.Delete(ctx, rec.StoredName); err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("remove blob: %w", err)
		}
		s.logger.Warn(ctx, "blob already gone, deleting record",
			"user_id", userID, "file_id", fileID, "stored_name", rec.StoredName)
	}

	if err := s.ledger.CommitDelete(ctx, rec); err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			result = metrics.ResultNotFound
			return common.ErrorNotFound
		case errors.Is(err, common.ErrConsistency):
			s.logger.Error(ctx, "usage release refused",
				"error", err, "user_id", userID, "file_id", fileID, "size", rec.SizeBytes)
		}
		return fmt.Errorf("commit delete: %w", err)
	}

	result = metrics.ResultOK
	s.metrics.ReleasedBytes.Add(float64(rec.SizeBytes))
	s.logger.Info(ctx, "file deleted", "user_id", userID, "file_id", fileID, "stored_name", rec.StoredName)
	return nil
}

// ListFiles returns the user's files, newest first.
func (s *FileService) ListFiles(ctx context.Context, userID int64) ([]*models.File, error) {
	files, err := s.ledger.ListFiles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

func (s *FileService) Usage(ctx context.Context, userID int64) (*models.Usage, error) {
	u, err := s.ledger.Usage(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usage: %w", err)
	}
	return u, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
