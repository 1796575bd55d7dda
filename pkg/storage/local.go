package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type localStorage struct {
	root      string
	urlPrefix string
}

// NewLocalStorage writes files under root/<category>/ and serves them
// from urlPrefix/<category>/<name>.
func NewLocalStorage(root, urlPrefix string) (FileStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("upload directory is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &localStorage{
		root:      root,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

func (s *localStorage) Save(ctx context.Context, category, fileName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	category = cleanCategory(category)
	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create category directory: %w", err)
	}

	name := SafeName(fileName)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path.Join(s.urlPrefix, category, name), nil
}

func (s *localStorage) Delete(ctx context.Context, fileURL string) error {
	rel, ok := strings.CutPrefix(fileURL, s.urlPrefix+"/")
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
