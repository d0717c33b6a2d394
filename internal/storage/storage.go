package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrContentTypeNotAllowed = errors.New("content type not allowed")
	ErrFileTooLarge          = errors.New("file too large")
	ErrObjectNotFound        = errors.New("object not found")
)

// ImageContentTypes are the accepted product image formats.
var ImageContentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/avif",
}

// ObjectStorage stores product images under string keys.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
	Name() string
}

// ValidateFileSize validates the file size
func ValidateFileSize(size int64, maxSize int64) error {
	if size > maxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, maxSize)
	}
	return nil
}

// ValidateContentType validates the content type, ignoring parameters
// such as "; charset=".
func ValidateContentType(contentType string, allowedTypes []string) error {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, allowed := range allowedTypes {
		if mediaType == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrContentTypeNotAllowed, contentType)
}

// ExtensionFor maps an image content type to its file extension.
func ExtensionFor(contentType string) string {
	switch strings.ToLower(strings.SplitN(contentType, ";", 2)[0]) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/avif":
		return ".avif"
	}
	return ""
}
