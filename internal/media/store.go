package media

import (
	"context"
	"errors"
	"mime/multipart"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrReleaseFailed   = errors.New("media release failed")
)

// Store is the external media collaborator. Facility galleries live
// behind it; the core never touches storage paths directly. Release
// must remove every given URL or fail without partial effect, because
// facility deletion is blocked on it.
type Store interface {
	Save(ctx context.Context, fileHeader *multipart.FileHeader) (url string, err error)
	Release(ctx context.Context, urls []string) error
}
