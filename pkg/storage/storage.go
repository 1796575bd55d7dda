package storage

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// FileStorage stores uploaded files under a logical category
// (e.g. "announcements") and hands back the public URL.
type FileStorage interface {
	Save(ctx context.Context, category, fileName string, r io.Reader) (string, error)
	// Delete removes a file previously returned by Save. Unknown URLs are not an error.
	Delete(ctx context.Context, fileURL string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName strips directories and unsafe characters and prefixes a random id
// so two uploads with the same name never collide.
func SafeName(fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	return uuid.NewString() + "_" + base
}

func cleanCategory(category string) string {
	category = unsafeChars.ReplaceAllString(category, "_")
	category = strings.Trim(category, "._")
	if category == "" {
		return "misc"
	}
	return category
}
