package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxAttempts bounds how many suffixed names are tried on collision.
const maxAttempts = 5

// LocalStorage 本地磁盘存储，文件由 /media/ 路由直接提供
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStorage{root: root, baseURL: baseURL}
}

func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	name = cleanName(name)
	if name == "" {
		return "", fmt.Errorf("empty file name")
	}

	candidate := name
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		full := filepath.Join(s.root, filepath.FromSlash(candidate))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return "", fmt.Errorf("create media dir: %w", err)
		}

		f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			candidate = alternateName(name)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("open %s: %w", candidate, err)
		}

		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			os.Remove(full)
			return "", fmt.Errorf("write %s: %w", candidate, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", candidate, err)
		}
		return candidate, nil
	}
	return "", fmt.Errorf("no free name for %s", name)
}

func (s *LocalStorage) Delete(ctx context.Context, name string) error {
	name = cleanName(name)
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func (s *LocalStorage) URL(name string) string {
	return s.baseURL + cleanName(name)
}
