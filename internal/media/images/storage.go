// Package images stores generated post media and derives image BlurHashes.
package images

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// URLPrefix is the public path images are served under.
const URLPrefix = "/media/"

// ErrNotFound is returned for names that are not stored.
var ErrNotFound = errors.New("image not found")

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Storage manages image files in one directory.
// Thread-safe for concurrent operations.
type Storage struct {
	dir string
	mu  sync.RWMutex
}

// NewStorage creates dir if needed.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("media directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *Storage) Dir() string {
	return s.dir
}

// SaveGenerated stores image data under a fresh name and returns its public URL.
func (s *Storage) SaveGenerated(data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}
	ext, ok := extensions[strings.ToLower(strings.TrimSpace(mimeType))]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", mimeType)
	}

	name := uuid.NewString() + ext

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return URLPrefix + name, nil
}

// SaveAs stores data under name, replacing any previous file atomically.
// Used for derived files such as read-aloud audio whose name is a cache key.
func (s *Storage) SaveAs(name string, data []byte) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("media data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".media-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write media file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close media file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod media file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace media file: %w", err)
	}
	return nil
}

// Get reads a stored image.
func (s *Storage) Get(name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}

// Exists reports whether name is stored.
func (s *Storage) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err = os.Stat(path)
	return err == nil
}

// Delete removes name. Missing files are not an error.
func (s *Storage) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Path returns the file path for name. Names must be plain file names.
func (s *Storage) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid image name %q: %w", name, ErrNotFound)
	}
	return filepath.Join(s.dir, name), nil
}

// NameFromURL returns the stored name for a URL served by this storage, or ""
// for any other URL.
func NameFromURL(url string) string {
	name, ok := strings.CutPrefix(url, URLPrefix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return ""
	}
	return name
}
