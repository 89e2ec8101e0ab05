package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local writes objects under Root and links them under URLPrefix, which the
// router serves with the WAFFLE file server.
type Local struct {
	Root      string
	URLPrefix string
}

// NewLocal returns a Local store rooted at root.
func NewLocal(root, urlPrefix string) *Local {
	return &Local{Root: root, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (l *Local) Put(ctx context.Context, name string, r io.Reader, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := l.fullPath(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return l.URLPrefix + "/" + filepath.ToSlash(name), nil
}

func (l *Local) fullPath(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(l.Root, clean), nil
}
