package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophbox/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestStoredName(t *testing.T) {
	assert.Equal(t, "7_20240309_140507_a.txt", StoredName(7, fixedNow, "a.txt", 0))
	assert.Equal(t, "7_20240309_140507-2_a.txt", StoredName(7, fixedNow, "a.txt", 2))
}

func TestValidateStoredName(t *testing.T) {
	for _, bad := range []string{"", ".", "..", "a/b", `a\b`, "../x", "a..b", "a\x00b"} {
		assert.ErrorIs(t, ValidateStoredName(bad), common.ErrorValidation, bad)
	}
	assert.NoError(t, ValidateStoredName("1_20240309_140507_a.txt"))
}

func TestLocalStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestLocalStore(t)

	name, size, err := s.Put(ctx, 1, "../../etc/passwd", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "1_20240309_140507_etc_passwd", name)
	assert.Equal(t, int64(5), size)

	_, err = os.Stat(filepath.Join(s.Root(), name))
	require.NoError(t, err)

	rc, err := s.Get(ctx, name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, name))
	require.ErrorIs(t, s.Delete(ctx, name), common.ErrorNotFound)

	_, err = s.Get(ctx, name)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLocalStore_CollisionGetsCounterSuffix(t *testing.T) {
	ctx := context.Background()
	s := newTestLocalStore(t)

	first, _, err := s.Put(ctx, 3, "a.txt", strings.NewReader("1"))
	require.NoError(t, err)
	second, _, err := s.Put(ctx, 3, "a.txt", strings.NewReader("22"))
	require.NoError(t, err)
	third, _, err := s.Put(ctx, 3, "a.txt", strings.NewReader("333"))
	require.NoError(t, err)

	assert.Equal(t, "3_20240309_140507_a.txt", first)
	assert.Equal(t, "3_20240309_140507-1_a.txt", second)
	assert.Equal(t, "3_20240309_140507-2_a.txt", third)

	// the first blob is untouched
	b, err := os.ReadFile(filepath.Join(s.Root(), first))
	require.NoError(t, err)
	assert.Equal(t, "1", string(b))
}

type failingReader struct {
	n   int
	err error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.n > 0 {
		k := copy(p, bytes.Repeat([]byte("x"), f.n))
		f.n -= k
		return k, nil
	}
	return 0, f.err
}

func TestLocalStore_FailedWriteLeavesNoBlob(t *testing.T) {
	ctx := context.Background()
	s := newTestLocalStore(t)

	readErr := errors.New("client went away")
	_, _, err := s.Put(ctx, 1, "x.bin", &failingReader{n: 10, err: readErr})
	require.ErrorIs(t, err, common.ErrIO)
	require.ErrorIs(t, err, readErr)

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newTestLocalStore(t)

	_, _, err := s.Put(ctx, 1, "x", strings.NewReader("data"))
	require.ErrorIs(t, err, context.Canceled)

	entries, _ := os.ReadDir(s.Root())
	assert.Empty(t, entries)
}

func TestLocalStore_RejectsTraversalOnGetAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestLocalStore(t)

	outside := filepath.Join(filepath.Dir(s.Root()), "secret")
	require.NoError(t, os.WriteFile(outside, []byte("s"), 0o600))

	_, err := s.Get(ctx, "../secret")
	require.ErrorIs(t, err, common.ErrorValidation)
	require.ErrorIs(t, s.Delete(ctx, "../secret"), common.ErrorValidation)

	_, err = os.Stat(outside)
	require.NoError(t, err)
}

func TestLocalStore_ExhaustedNames(t *testing.T) {
	ctx := context.Background()
	s := newTestLocalStore(t)

	for n := 0; n < maxNameAttempts; n++ {
		p := filepath.Join(s.Root(), StoredName(5, fixedNow, "f", n))
		require.NoError(t, os.WriteFile(p, nil, 0o600))
	}
	_, _, err := s.Put(ctx, 5, "f", strings.NewReader("z"))
	require.ErrorIs(t, err, common.ErrIO)
}
