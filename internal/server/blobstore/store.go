// Package blobstore keeps file content under server-generated stored names.
//
// Names have the form <owner>_<YYYYmmdd_HHMMSS>_<sanitized original name>.
// Blobs are created exclusively; when a name is taken the store retries with
// a counter suffix on the timestamp (<owner>_<ts>-<n>_<name>).
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophbox/internal/common"
	"github.com/dmitrijs2005/gophbox/internal/filex"
)

// Store is implemented by LocalStore and S3Store.
type Store interface {
	// Put writes the whole stream under a fresh stored name and returns it
	// together with the number of bytes written. Failures wrap common.ErrIO
	// and leave no partial blob behind.
	Put(ctx context.Context, ownerID int64, originalName string, content io.Reader) (string, int64, error)
	// Get opens a blob; common.ErrorNotFound if absent.
	Get(ctx context.Context, storedName string) (io.ReadCloser, error)
	// Delete removes a blob; common.ErrorNotFound if absent.
	Delete(ctx context.Context, storedName string) error
}

const (
	timestampLayout = "20060102_150405"
	maxNameAttempts = 100
)

// errNameTaken is returned by a backend's exclusive create.
var errNameTaken = errors.New("stored name taken")

// StoredName builds the name for attempt n (0 means no counter).
func StoredName(ownerID int64, at time.Time, sanitized string, n int) string {
	ts := at.UTC().Format(timestampLayout)
	if n > 0 {
		ts = fmt.Sprintf("%s-%d", ts, n)
	}
	return fmt.Sprintf("%d_%s_%s", ownerID, ts, sanitized)
}

// ValidateStoredName rejects anything that could address a path outside the
// store root.
func ValidateStoredName(name string) error {
	switch {
	case name == "", name == ".", name == "..",
		strings.ContainsAny(name, `/\`),
		strings.Contains(name, ".."),
		strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: invalid stored name %q", common.ErrorValidation, name)
	}
	return nil
}

// putExclusive drives the naming/collision loop shared by the backends.
// create must return errNameTaken when the name already exists.
func putExclusive(ownerID int64, originalName string, now time.Time,
	create func(name string) (int64, error)) (string, int64, error) {

	sanitized := filex.SanitizeFilename(originalName)
	for n := 0; n < maxNameAttempts; n++ {
		name := StoredName(ownerID, now, sanitized, n)
		size, err := create(name)
		if errors.Is(err, errNameTaken) {
			continue
		}
		if err != nil {
			return "", 0, err
		}
		return name, size, nil
	}
	return "", 0, fmt.Errorf("%w: no free stored name for %q after %d attempts",
		common.ErrIO, sanitized, maxNameAttempts)
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
