package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/holdings/internal/logging"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// Filesystem keeps objects as files under a root directory.
type Filesystem struct {
	root string
	log  *logrus.Entry
}

// NewFilesystem returns a Filesystem rooted at root. The directory is
// created lazily on the first Put.
func NewFilesystem(root string, log *logrus.Entry) (*Filesystem, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: filesystem root must not be empty", ErrInvalidKey)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	return &Filesystem{root: abs, log: logging.OrDiscard(log).WithField("blob", types.BlobDriverFS)}, nil
}

// Root returns the absolute root directory.
func (f *Filesystem) Root() string { return f.root }

// Location returns the file path for key.
func (f *Filesystem) Location(key string) string {
	p, err := f.path(key)
	if err != nil {
		return filepath.Join(f.root, key)
	}
	return p
}

func (f *Filesystem) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || clean == "." || filepath.IsAbs(clean) ||
		clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(f.root, clean), nil
}

// Put atomically replaces the file for key using the temp-file, fsync,
// rename pattern, so readers never observe a partial file.
func (f *Filesystem) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".blob-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	f.log.WithField(logging.FieldTarget, path).
		WithField(logging.FieldSize, humanize.Bytes(uint64(len(data)))).
		Debug("wrote file")
	return nil
}

// Get reads the file for key.
func (f *Filesystem) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
