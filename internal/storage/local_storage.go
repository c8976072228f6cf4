package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore serves images from a single directory.
type LocalStore struct {
	dir string
}

// NewLocalStore returns a store rooted at dir, creating the directory when
// it does not exist yet.
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve image directory %q: %w", dir, err)
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("create image directory %q: %w", abs, err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat image directory %q: %w", abs, err)
	case !info.IsDir():
		return nil, fmt.Errorf("image path %q is not a directory", abs)
	}

	return &LocalStore{dir: abs}, nil
}

// Dir returns the absolute directory of the store.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) List(ctx context.Context) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read image directory: %w", err)
	}

	objects := make([]ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		objects = append(objects, ObjectInfo{
			Name: entry.Name(),
			Path: filepath.Join(s.dir, entry.Name()),
			Size: info.Size(),
		})
	}
	return objects, nil
}

func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}
	if !flatName(name) {
		return nil, ObjectInfo{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
	}
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("%w: %s is not a regular file", ErrObjectNotFound, name)
	}

	return f, ObjectInfo{Name: name, Path: path, Size: info.Size()}, nil
}
