package dataset

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/namwkim/dataviz-storytelling/internal/apperrors"
)

// Source opens a named dataset file.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// FileSource reads datasets from a local directory.
type FileSource struct {
	Dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (s *FileSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.Dir, filepath.Base(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NotFound("dataset "+name+" not found", err)
	}
	if err != nil {
		return nil, apperrors.Internal("open dataset "+name, err)
	}
	return f, nil
}
