package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrTooLarge is returned when an attachment exceeds the configured size.
var ErrTooLarge = errors.New("attachment too large")

// AttachmentStore persists uploaded files and hands back the path they are served under.
type AttachmentStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Remove(ctx context.Context, storedPath string) error
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// LocalStore writes attachments to a directory on disk. Stored names are random UUIDs;
// the client filename only contributes its extension, and only when it looks like one.
type LocalStore struct {
	dir      string
	public   string
	maxBytes int64
}

// NewLocalStore creates dir if needed. publicPrefix is the URL prefix the directory is
// served under, e.g. "/uploads".
func NewLocalStore(dir, publicPrefix string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{
		dir:      dir,
		public:   strings.Trim(publicPrefix, "/"),
		maxBytes: maxBytes,
	}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStore) Dir() string { return s.dir }

// Save streams r to a new file and returns its public relative path ("uploads/<uuid>.jpg").
func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + sanitizeExt(originalName)
	full := filepath.Join(s.dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("write attachment: %w", err)
	case closeErr != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("close attachment: %w", closeErr)
	case n > s.maxBytes:
		_ = os.Remove(full)
		return "", ErrTooLarge
	}

	return path.Join(s.public, name), nil
}

// Remove deletes a file previously returned by Save. Missing files are not an error, and
// paths outside the store are refused.
func (s *LocalStore) Remove(_ context.Context, storedPath string) error {
	name := path.Base(storedPath)
	if storedPath != path.Join(s.public, name) || name == "." || name == "/" {
		return fmt.Errorf("refusing to remove %q: not a stored attachment", storedPath)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove attachment: %w", err)
	}
	return nil
}

func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}
