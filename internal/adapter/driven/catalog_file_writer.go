package driven

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// CatalogFileWriter implements the CatalogWriter port on a filesystem.
// Each file is written to a temporary sibling and renamed into place so
// readers never observe a half-written playlist.
type CatalogFileWriter struct {
	fs  afero.Fs
	dir string
}

// NewCatalogFileWriter creates a writer rooted at dir, creating it if needed.
func NewCatalogFileWriter(fs afero.Fs, dir string) (*CatalogFileWriter, error) {
	if fs == nil {
		return nil, errors.New("filesystem cannot be nil")
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &CatalogFileWriter{fs: fs, dir: dir}, nil
}

// Write replaces dir/name with content.
func (w *CatalogFileWriter) Write(ctx context.Context, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("invalid output name %q", name)
	}

	tmp, err := afero.TempFile(w.fs, w.dir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		_ = w.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = w.fs.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := w.fs.Rename(tmpName, filepath.Join(w.dir, name)); err != nil {
		_ = w.fs.Remove(tmpName)
		return fmt.Errorf("failed to publish %s: %w", name, err)
	}
	return nil
}
