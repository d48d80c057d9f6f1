// Package uploads stores images posted as multipart form files.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dalemusser/waffle/pantry/storage"
)

var (
	ErrNoFile   = errors.New("no file was uploaded")
	ErrTooLarge = errors.New("file is too large")
	ErrNotImage = errors.New("file must be a JPEG, PNG, GIF or WebP image")
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// detectContentType sniffs the first 512 bytes and rewinds.
func detectContentType(f io.ReadSeeker) (string, error) {
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if n == 0 {
		return "application/octet-stream", nil
	}
	return http.DetectContentType(buf[:n]), nil
}

// SaveImage checks that fh is an image no larger than maxBytes and stores it
// under prefix. It returns the storage path.
func SaveImage(ctx context.Context, store storage.Store, fh *multipart.FileHeader, prefix string, maxBytes int64) (string, error) {
	if fh == nil || fh.Size == 0 {
		return "", ErrNoFile
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return "", ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	ct, err := detectContentType(f)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if !allowedImageTypes[ct] {
		return "", ErrNotImage
	}

	return uploadFile(ctx, store, prefix, fh.Filename, f, ct)
}

// uploadFile stores r at <prefix>/YYYY/MM/<uuid8>-<filename>.
func uploadFile(ctx context.Context, store storage.Store, prefix, filename string, r io.Reader, contentType string) (string, error) {
	p := NewPath(prefix, filename)
	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := store.Put(ctx, p, r, opts); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return p, nil
}

// FormImages returns the files posted under field, or ErrNoFile.
// The multipart form must already be parsed.
func FormImages(r *http.Request, field string) ([]*multipart.FileHeader, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, ErrNoFile
	}
	return r.MultipartForm.File[field], nil
}

// IsClientError reports whether err came from the upload itself rather
// than from storage.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoFile) || errors.Is(err, ErrTooLarge) || errors.Is(err, ErrNotImage)
}
