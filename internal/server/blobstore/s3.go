package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/gophbox/internal/common"
)

// s3API is the subset of *s3.Client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Options configure an S3-compatible bucket (AWS, MinIO).
type S3Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	KeyPrefix    string
	// SpoolDir holds uploads while they are measured; empty means os.TempDir.
	SpoolDir string
}

// S3Store keeps blobs as objects in one bucket. Uploads are spooled to a
// temporary file first so the exact size is known and the body is seekable.
type S3Store struct {
	client s3API
	bucket string
	prefix string
	spool  string
	now    func() time.Time
}

func NewS3Store(ctx context.Context, o S3Options) (*S3Store, error) {
	if o.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is required", common.ErrorValidation)
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
			// MinIO and friends
			so.UsePathStyle = true
		}
	})

	return newS3Store(client, o), nil
}

func newS3Store(client s3API, o S3Options) *S3Store {
	return &S3Store{
		client: client,
		bucket: o.Bucket,
		prefix: o.KeyPrefix,
		spool:  o.SpoolDir,
		now:    time.Now,
	}
}

func (s *S3Store) key(name string) *string { return aws.String(s.prefix + name) }

func (s *S3Store) Put(ctx context.Context, ownerID int64, originalName string, content io.Reader) (string, int64, error) {
	tmp, err := os.CreateTemp(s.spool, "gophbox-upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("%w: spool: %w", common.ErrIO, err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, ctxReader{ctx: ctx, r: content})
	if err != nil {
		return "", 0, fmt.Errorf("%w: spool: %w", common.ErrIO, err)
	}

	return putExclusive(ownerID, originalName, s.now(), func(name string) (int64, error) {
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return 0, fmt.Errorf("%w: rewind spool: %w", common.ErrIO, err)
		}
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           s.key(name),
			Body:          tmp,
			ContentLength: aws.Int64(size),
			IfNoneMatch:   aws.String("*"),
		})
		if err != nil {
			if isPreconditionFailed(err) {
				return 0, errNameTaken
			}
			return 0, fmt.Errorf("%w: put %s: %w", common.ErrIO, name, err)
		}
		return size, nil
	})
}

func (s *S3Store) Get(ctx context.Context, storedName string) (io.ReadCloser, error) {
	if err := ValidateStoredName(storedName); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(storedName),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: get %s: %w", common.ErrIO, storedName, err)
	}
	return out.Body, nil
}

// Delete checks existence first: DeleteObject succeeds for missing keys.
func (s *S3Store) Delete(ctx context.Context, storedName string) error {
	if err := ValidateStoredName(storedName); err != nil {
		return err
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(storedName),
	})
	if err != nil {
		if isNotFound(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("%w: head %s: %w", common.ErrIO, storedName, err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(storedName),
	}); err != nil {
		return fmt.Errorf("%w: delete %s: %w", common.ErrIO, storedName, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	var re interface{ HTTPStatusCode() int }
	if errors.As(err, &re) {
		return re.HTTPStatusCode() == http.StatusPreconditionFailed
	}
	return false
}
