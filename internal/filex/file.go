// Package filex contains filesystem helpers: directory preparation and the
// filename sanitizer that keeps user input out of on-disk paths.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxNameLen bounds the sanitized name so stored names stay well below
// common filesystem limits once the owner/timestamp prefix is added.
const maxNameLen = 128

// FallbackName replaces names that sanitize to nothing ("../..", "...").
const FallbackName = "unnamed"

// windowsDevices are reserved regardless of extension on Windows shares.
var windowsDevices = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// EnsureDir creates dir (and parents) if needed and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// SanitizeFilename reduces name to a safe single path element made of
// ASCII letters, digits, '_', '.' and '-'. Accents are folded (NFKD) and
// other non-ASCII runes dropped, separators and whitespace runs become '_',
// dot runs collapse to one, leading/trailing dots and underscores are
// trimmed. The result never contains a path separator or "..".
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return ' '
		}
		if r > 127 {
			return -1
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	name = strings.Trim(collapseDots(b.String()), "._")

	if name == "" {
		return FallbackName
	}

	base, _, _ := strings.Cut(name, ".")
	if _, reserved := windowsDevices[strings.ToUpper(base)]; reserved {
		name = "_" + name
	}

	return collapseDots(truncateKeepExt(name, maxNameLen))
}

func collapseDots(s string) string {
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	return s
}

func truncateKeepExt(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) >= limit/2 {
		return name[:limit]
	}
	return name[:limit-len(ext)] + ext
}
