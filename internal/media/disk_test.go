package media

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, fh, err := req.FormFile("file")
	require.NoError(t, err)
	return fh
}

func TestDiskStore_SaveAndRelease(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "/static/uploads")

	url, err := store.Save(context.Background(), fileHeader(t, "photo.png", pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/static/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	name := filepath.Base(url)
	_, err = os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)

	require.NoError(t, store.Release(context.Background(), []string{url}))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStore_SaveRejectsEmptyFile(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/static/uploads")

	_, err := store.Save(context.Background(), fileHeader(t, "empty.png", nil))

	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestDiskStore_SaveRejectsUnsupportedType(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/static/uploads")

	_, err := store.Save(context.Background(), fileHeader(t, "notes.txt", []byte("plain text, not an image")))

	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDiskStore_ReleaseToleratesMissingFiles(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/static/uploads")

	err := store.Release(context.Background(), []string{
		"/static/uploads/already-gone.png",
		"https://elsewhere.example.com/not-ours.png",
	})

	assert.NoError(t, err)
}
