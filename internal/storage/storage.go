// Package storage keeps uploaded media files. Paths handed out by Save are
// relative ("posts/cat.gif") and turned into links with URL.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type Storage interface {
	// Save writes r under name and returns the path actually used, which
	// differs from name when name is already taken.
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	// Delete removes a stored file. A missing file is not an error.
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

// alternateName inserts a short random suffix before the extension:
// posts/cat.gif -> posts/cat_1b4e28ba.gif
func alternateName(name string) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + "_" + uuid.NewString()[:8] + ext
}

// cleanName rejects absolute paths and parent references.
func cleanName(name string) string {
	name = path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimPrefix(name, "/")
}
