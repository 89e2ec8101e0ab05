// Package filestore persists uploaded submission files and returns a link
// that is stored on the submission record.
package filestore

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store uploads one object and returns a link to it.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string) (link string, err error)
}

// ObjectName builds submissions/YYYY/MM/<uuid8>-<sanitized filename>.
func ObjectName(now time.Time, filename string) string {
	now = now.UTC()
	dir := fmt.Sprintf("submissions/%04d/%02d", now.Year(), now.Month())
	return path.Join(dir, uuid.New().String()[:8]+"-"+SanitizeFilename(filename))
}

// SanitizeFilename keeps the base name, maps anything outside [A-Za-z0-9._-]
// to '_' and caps the length at 100 bytes, keeping a short extension.
func SanitizeFilename(filename string) string {
	filename = path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if filename == "." || filename == "/" {
		filename = ""
	}

	out := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if allowed(c) {
			out = append(out, c)
		} else {
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "file"
	}
	if len(out) > 100 {
		ext := filepath.Ext(string(out))
		if len(ext) > 0 && len(ext) < 10 {
			out = append(out[:100-len(ext)], ext...)
		} else {
			out = out[:100]
		}
	}
	return string(out)
}

func allowed(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
