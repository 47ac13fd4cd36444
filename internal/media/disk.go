package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxFileSize    = 50 * 1024 * 1024 // 50 MB
	UploadsBaseDir = "./uploads"
	StaticURLBase  = "/static/uploads"
)

// AllowedMimeTypes defines which file types are accepted
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
	"video/mp4":     true,
	"video/webm":    true,
}

// DiskStore keeps gallery files on local disk. Stand-in for the object
// storage used in production deployments.
type DiskStore struct {
	baseDir    string // absolute path to uploads dir
	staticBase string // URL prefix for serving files
}

func NewDiskStore(baseDir, staticBase string) *DiskStore {
	if baseDir == "" {
		baseDir = UploadsBaseDir
	}
	if staticBase == "" {
		staticBase = StaticURLBase
	}
	return &DiskStore{baseDir: baseDir, staticBase: staticBase}
}

func (s *DiskStore) Save(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size == 0 {
		return "", ErrEmptyFile
	}
	if fileHeader.Size > MaxFileSize {
		return "", ErrFileTooLarge
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	mimeType := http.DetectContentType(head[:n])
	// DetectContentType appends charset for text-like types
	mimeType = strings.Split(mimeType, ";")[0]
	if !AllowedMimeTypes[mimeType] {
		return "", ErrUnsupportedType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	dstPath := filepath.Join(s.baseDir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("write file: %w", err)
	}

	return s.staticBase + "/" + name, nil
}

// Release removes all given URLs from disk. Missing files are treated
// as already released; any other failure aborts so the caller can keep
// the owning record consistent with its media.
func (s *DiskStore) Release(ctx context.Context, urls []string) error {
	for _, u := range urls {
		if !strings.HasPrefix(u, s.staticBase+"/") {
			continue
		}
		name := filepath.Base(strings.TrimPrefix(u, s.staticBase+"/"))
		if err := os.Remove(filepath.Join(s.baseDir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: %s: %v", ErrReleaseFailed, u, err)
		}
	}
	return nil
}
