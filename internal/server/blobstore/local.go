package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/gophbox/internal/common"
	"github.com/dmitrijs2005/gophbox/internal/filex"
)

// LocalStore keeps blobs as files in one flat directory.
type LocalStore struct {
	root string
	now  func() time.Time
}

func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filex.EnsureDir(root)
	if err != nil {
		return nil, fmt.Errorf("upload root: %w", err)
	}
	return &LocalStore{root: abs, now: time.Now}, nil
}

func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Put(ctx context.Context, ownerID int64, originalName string, content io.Reader) (string, int64, error) {
	return putExclusive(ownerID, originalName, s.now(), func(name string) (int64, error) {
		return s.create(ctx, name, content)
	})
}

func (s *LocalStore) create(ctx context.Context, name string, content io.Reader) (int64, error) {
	path := filepath.Join(s.root, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o660)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, errNameTaken
		}
		return 0, fmt.Errorf("%w: create %s: %w", common.ErrIO, name, err)
	}

	n, err := io.Copy(f, ctxReader{ctx: ctx, r: content})
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("%w: write %s: %w", common.ErrIO, name, err)
	}
	return n, nil
}

func (s *LocalStore) Get(_ context.Context, storedName string) (io.ReadCloser, error) {
	if err := ValidateStoredName(storedName); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.root, storedName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: open %s: %w", common.ErrIO, storedName, err)
	}
	return f, nil
}

func (s *LocalStore) Delete(_ context.Context, storedName string) error {
	if err := ValidateStoredName(storedName); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, storedName)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("%w: remove %s: %w", common.ErrIO, storedName, err)
	}
	return nil
}
