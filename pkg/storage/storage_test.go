package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	name := SafeName("../../etc/pass wd.txt")
	assert.True(t, strings.HasSuffix(name, "_pass_wd.txt"), name)
	assert.NotContains(t, name, "/")
	assert.NotEqual(t, SafeName("a.txt"), SafeName("a.txt"))
	assert.True(t, strings.HasSuffix(SafeName("..."), "_file"))
}

func TestLocalStorageSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, "/uploads/")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "announcements", "notice.pdf", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/announcements/"), url)

	stored := filepath.Join(root, "announcements", filepath.Base(url))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(context.Background(), url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	// Deleting again or deleting foreign URLs is a no-op.
	assert.NoError(t, s.Delete(context.Background(), url))
	assert.NoError(t, s.Delete(context.Background(), "https://cdn.example.com/x.png"))
	assert.NoError(t, s.Delete(context.Background(), "/uploads/../secret"))
}

func TestExtractPublicID(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1234/school/announcements/abc.jpg": "school/announcements/abc",
		"https://res.cloudinary.com/demo/image/upload/folder/sample.png":                  "folder/sample",
		"https://res.cloudinary.com/demo/image/upload/":                                   "",
		"https://example.com/no-upload-segment.png":                                       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, extractPublicID(in), in)
	}
}
