// Package audit keeps a copy of every imported spreadsheet.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Archiver struct {
	Dir string
	now func() time.Time
}

func NewArchiver(dir string) *Archiver {
	return &Archiver{
		Dir: dir,
		now: time.Now,
	}
}

// SaveUpload writes data under a dated sub-directory with a UUID-prefixed
// name and returns the path relative to Dir.
func (a *Archiver) SaveUpload(filename string, data []byte) (string, error) {
	day := a.now().Format("2006-01-02")
	dir := filepath.Join(a.Dir, day)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := uuid.NewString() + "-" + safeName(filename)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o640); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}

	return filepath.Join(day, name), nil
}

// safeName keeps the base name and replaces anything outside [A-Za-z0-9._-].
func safeName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
