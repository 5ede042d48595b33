package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var _ PictureStore = (*FilesystemPictureStore)(nil)

// ErrUnsupportedImage indicates an upload with a non-image file extension.
var ErrUnsupportedImage = errors.New("picture store: unsupported image type")

// PictureStore abstracts storage for post feature images.
type PictureStore interface {
	// Save writes the image under a sanitized unique name and returns the stored name.
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	// Replace stores a new image and removes the previous one when present.
	Replace(ctx context.Context, oldName, originalName string, r io.Reader) (string, error)
	// Delete removes a stored image. Missing files are not an error.
	Delete(ctx context.Context, storedName string) error
	// Exists reports whether the stored image is present.
	Exists(ctx context.Context, storedName string) bool
}

var allowedImageExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
}

// FilesystemPictureStore persists feature images on the local filesystem.
type FilesystemPictureStore struct {
	root string
}

// NewFilesystemPictureStore initialises a filesystem-backed picture store rooted at dir.
func NewFilesystemPictureStore(dir string) (*FilesystemPictureStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("picture store: root directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("picture store: ensure root directory: %w", err)
	}
	return &FilesystemPictureStore{root: dir}, nil
}

// Save writes the uploaded image to disk under a timestamped sanitized name.
func (s *FilesystemPictureStore) Save(_ context.Context, originalName string, r io.Reader) (string, error) {
	if s == nil {
		return "", errors.New("picture store: store not initialised")
	}
	if r == nil {
		return "", errors.New("picture store: reader is required")
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}

	base := sanitizeFileName(strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName)))
	if base == "" {
		base = "image"
	}

	stored := fmt.Sprintf("%s-%s%s", base, time.Now().UTC().Format("20060102T150405.000Z0700"), ext)
	fullPath := filepath.Join(s.root, stored)

	fh, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("picture store: create file: %w", err)
	}

	if _, err := io.Copy(fh, r); err != nil {
		_ = fh.Close()
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("picture store: write file: %w", err)
	}
	if err := fh.Close(); err != nil {
		return "", fmt.Errorf("picture store: close file: %w", err)
	}

	return stored, nil
}

// Replace stores the new image first, then removes the old one best-effort.
func (s *FilesystemPictureStore) Replace(ctx context.Context, oldName, originalName string, r io.Reader) (string, error) {
	stored, err := s.Save(ctx, originalName, r)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(oldName) != "" {
		_ = s.Delete(ctx, oldName)
	}

	return stored, nil
}

// Delete removes a stored image file.
func (s *FilesystemPictureStore) Delete(_ context.Context, storedName string) error {
	storedName = sanitizeFileName(storedName)
	if storedName == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, storedName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("picture store: delete file: %w", err)
	}
	return nil
}

// Exists reports whether a stored image file is present on disk.
func (s *FilesystemPictureStore) Exists(_ context.Context, storedName string) bool {
	storedName = sanitizeFileName(storedName)
	if storedName == "" {
		return false
	}

	_, err := os.Stat(filepath.Join(s.root, storedName))
	return err == nil
}

// sanitizeFileName strips path separators and dubious characters so stored
// names can never escape the root directory.
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-.")
}
