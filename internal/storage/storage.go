// Package storage puts uploaded product and hero images somewhere a browser
// can fetch them. Local storage hands back root-relative URLs served by this
// process; S3 hands back absolute public URLs.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var ErrUnsupportedType = errors.New("unsupported image type")

type PutInput struct {
	Filename    string
	ContentType string
	Size        int64
}

type PutResult struct {
	Key string
	URL string
}

type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
}

// ImageExt returns the normalised extension for an allowed image filename.
func ImageExt(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
		return ext, nil
	default:
		return "", ErrUnsupportedType
	}
}
