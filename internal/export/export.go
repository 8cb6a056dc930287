// Package export writes generated content to local files.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jask/genmark/internal/api"
)

// ErrNoText is returned for content without a text body (e.g. pure images).
var ErrNoText = errors.New("content has no text to export")

// FileName is the export name for content id, e.g. content-42.txt.
func FileName(id int64) string {
	return fmt.Sprintf("content-%d.txt", id)
}

// WriteContent writes c's text to dir/content-<id>.txt and returns the path.
// An existing file is replaced.
func WriteContent(dir string, c api.Content) (string, error) {
	if c.ContentText == "" {
		return "", fmt.Errorf("content %d: %w", c.ID, ErrNoText)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(c.ID))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(c.ContentText), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	return path, nil
}
