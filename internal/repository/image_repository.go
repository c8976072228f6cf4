package repository

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sort"

	"github.com/anime-shed/pokemon-palette-go/internal/palette"
	"github.com/anime-shed/pokemon-palette-go/internal/storage"
	"github.com/anime-shed/pokemon-palette-go/pkg/models"
	"github.com/anime-shed/pokemon-palette-go/pkg/validation"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// ListImages returns the supported images in the store, sorted by name
	ListImages(ctx context.Context) ([]storage.ObjectInfo, error)

	// LoadImage opens and decodes a single image
	LoadImage(ctx context.Context, name string) (*LoadedImage, error)

	// OpenRaw returns the undecoded bytes of an image
	OpenRaw(ctx context.Context, name string) (io.ReadCloser, storage.ObjectInfo, error)
}

// LoadedImage is a decoded image with the metadata of the object it came from
type LoadedImage struct {
	Image  image.Image
	Format string
	Info   storage.ObjectInfo
}

// Metadata summarises the loaded image without its pixels
func (l *LoadedImage) Metadata() models.ImageMetadata {
	b := l.Image.Bounds()
	return models.ImageMetadata{
		Name:          l.Info.Name,
		Path:          l.Info.Path,
		ContentType:   l.Info.ContentType,
		ContentLength: l.Info.Size,
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        l.Format,
	}
}

// StoreImageRepository implements ImageRepository on top of an ImageStore
type StoreImageRepository struct {
	store storage.ImageStore
}

// NewImageRepository creates a repository over the given store
func NewImageRepository(store storage.ImageStore) ImageRepository {
	return &StoreImageRepository{store: store}
}

func (r *StoreImageRepository) ListImages(ctx context.Context) ([]storage.ObjectInfo, error) {
	objects, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
	}

	images := objects[:0]
	for _, obj := range objects {
		if validation.HasImageExtension(obj.Name) {
			images = append(images, obj)
		}
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	return images, nil
}

// OpenRaw opens an image without decoding it. Every failure also matches
// palette.ErrDecodeFailure, since the image's pixels cannot be obtained.
func (r *StoreImageRepository) OpenRaw(ctx context.Context, name string) (io.ReadCloser, storage.ObjectInfo, error) {
	if !validation.HasImageExtension(name) {
		return nil, storage.ObjectInfo{}, fmt.Errorf("%w: %w: %s", ErrUnsupportedImage, palette.ErrDecodeFailure, name)
	}

	rc, info, err := r.store.Open(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, fmt.Errorf("%w: %w: %s", ErrImageNotFound, palette.ErrDecodeFailure, name)
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("%w: %w: %s: %w", ErrUnreadableImage, palette.ErrDecodeFailure, name, err)
	}
	return rc, info, nil
}

func (r *StoreImageRepository) LoadImage(ctx context.Context, name string) (*LoadedImage, error) {
	rc, info, err := r.OpenRaw(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, format, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", palette.ErrDecodeFailure, name, err)
	}

	return &LoadedImage{Image: img, Format: format, Info: info}, nil
}
