package contract

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/huangsam/reposcope/schema"
)

// MaxReadBytes caps the size of a single file read.
const MaxReadBytes = 2 << 20

// LocalFileReader reads files from the local filesystem. Relative paths are
// resolved against Root.
type LocalFileReader struct {
	Root string
}

var _ FileReader = &LocalFileReader{} // Compile-time check

// NewLocalFileReader creates a reader rooted at root.
func NewLocalFileReader(root string) *LocalFileReader {
	return &LocalFileReader{Root: root}
}

// ReadFile returns the content of path, categorizing failures as schema.FileReadError.
func (r *LocalFileReader) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &schema.FileReadError{Kind: schema.FileReadOther, Path: path, Err: err}
	}
	full := path
	if !filepath.IsAbs(full) && r.Root != "" {
		full = filepath.Join(r.Root, path)
	}

	info, err := os.Stat(full)
	if err != nil {
		return "", classifyReadError(path, err)
	}
	if info.IsDir() {
		return "", &schema.FileReadError{Kind: schema.FileReadOther, Path: path, Err: errors.New("is a directory")}
	}
	if info.Size() > MaxReadBytes {
		return "", &schema.FileReadError{Kind: schema.FileReadOther, Path: path, Err: errors.New("file too large")}
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", classifyReadError(path, err)
	}
	return string(data), nil
}

func classifyReadError(path string, err error) error {
	kind := schema.FileReadOther
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = schema.FileNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = schema.FilePermissionDenied
	}
	return &schema.FileReadError{Kind: kind, Path: path, Err: err}
}
