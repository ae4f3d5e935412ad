package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNestedDirectory(t *testing.T) {
	tmp := t.TempDir()
	want := filepath.Join(tmp, "data", "uploads")

	got, err := EnsureDir(want)
	require.NoError(t, err)
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	first, err := EnsureDir(dir)
	require.NoError(t, err)

	second, err := EnsureDir(dir)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o660))

	_, err := EnsureDir(path)
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{`..\..\windows\system32`, "windows_system32"},
		{"i contain cool \u00fcml\u00e4uts.txt", "i_contain_cool_umlauts.txt"},
		{"naïve café.txt", "naive_cafe.txt"},
		{"..", FallbackName},
		{"", FallbackName},
		{"日本語", FallbackName},
		{"con.txt", "_con.txt"},
		{"a$b%c&d.tar.gz", "abcd.tar.gz"},
		{".hidden", "hidden"},
		{"a/../b", "a_._b"},
		{"archive...tar", "archive.tar"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilename_TruncatesAndKeepsExtension(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("a", 300) + ".txt")
	assert.Len(t, got, maxNameLen)
	assert.True(t, strings.HasSuffix(got, ".txt"))
}

func TestSanitizeFilename_NeverProducesSeparators(t *testing.T) {
	for _, in := range []string{"/", "a/b", `a\b`, "./.", "a/../b"} {
		got := SanitizeFilename(in)
		assert.NotContains(t, got, "/")
		assert.NotContains(t, got, `\`)
		assert.NotEqual(t, "..", got)
	}
}
