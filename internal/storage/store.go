package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	// ErrObjectNotFound is returned when a named image does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrListingUnsupported is returned by backends that can only fetch.
	ErrListingUnsupported = errors.New("listing not supported by this storage backend")

	// ErrInvalidName is returned for names that would escape the store.
	ErrInvalidName = errors.New("invalid object name")
)

// ObjectInfo describes a stored image object.
type ObjectInfo struct {
	Name        string
	Path        string
	Size        int64
	ContentType string
}

// ImageStore is a flat namespace of image objects.
type ImageStore interface {
	// List returns every object in the store.
	List(ctx context.Context) ([]ObjectInfo, error)

	// Open returns a reader for the named object. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error)
}

// flatName reports whether name addresses an object directly inside the
// store, with no path elements.
func flatName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
