package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"

	"github.com/nfnt/resize"

	"github.com/anime-shed/pokemon-palette-go/internal/catalog"
	apperrors "github.com/anime-shed/pokemon-palette-go/internal/errors"
	"github.com/anime-shed/pokemon-palette-go/internal/matcher"
	"github.com/anime-shed/pokemon-palette-go/internal/palette"
	"github.com/anime-shed/pokemon-palette-go/internal/repository"
	"github.com/anime-shed/pokemon-palette-go/internal/storage"
	"github.com/anime-shed/pokemon-palette-go/pkg/models"
	"github.com/anime-shed/pokemon-palette-go/pkg/validation"
)

const (
	// MinThumbnailSize and MaxThumbnailSize bound the thumbnail edge in pixels
	MinThumbnailSize = 16
	MaxThumbnailSize = 1024

	notOnImageLabel = "N/A (not on image)"
	noOpaqueMessage = "image has no fully opaque pixels"
)

// PaletteService defines the operations behind the viewer
type PaletteService interface {
	// ProcessCatalog runs the gated catalog scan; force resets the gate first
	ProcessCatalog(ctx context.Context, force bool) (*models.ProcessResponse, error)

	ListImages(ctx context.Context) (*models.ImageListResponse, error)
	ImageDetails(ctx context.Context, name string) (*models.ImageDetailsResponse, error)

	// Average returns only the average color; an image without fully opaque
	// pixels is an error here rather than a field of the response
	Average(ctx context.Context, name string) (*models.AverageResponse, error)

	// PixelAt reports the color at (x, y) relative to the image's top-left corner
	PixelAt(ctx context.Context, name string, x, y int) (*models.PixelResponse, error)

	// RawPNG re-encodes the image as PNG
	RawPNG(ctx context.Context, name string) ([]byte, error)

	// Thumbnail returns a PNG fitting in a size x size box
	Thumbnail(ctx context.Context, name string, size int) ([]byte, error)

	// Match returns up to n catalog images closest to target
	Match(ctx context.Context, target color.NRGBA, n int) (*models.MatchResponse, error)
}

type paletteService struct {
	imageRepo     repository.ImageRepository
	averager      palette.Averager
	catalog       *catalog.Catalog
	nameValidator *validation.NameValidator
}

// NewPaletteService creates a new palette service
func NewPaletteService(
	imageRepository repository.ImageRepository,
	averager palette.Averager,
	cat *catalog.Catalog,
) PaletteService {
	return &paletteService{
		imageRepo:     imageRepository,
		averager:      averager,
		catalog:       cat,
		nameValidator: validation.NewNameValidator(),
	}
}

func (s *paletteService) ProcessCatalog(ctx context.Context, force bool) (*models.ProcessResponse, error) {
	ran, err := s.catalog.Process(ctx, force)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("catalog scan timed out", err)
		}
		return nil, apperrors.NewProcessingError("catalog scan failed", err)
	}

	resp := &models.ProcessResponse{
		Ran:        ran,
		ReportPath: s.catalog.ReportPath(),
		Message:    "Catalog has already been processed",
	}
	if ran {
		resp.Message = "Catalog processed"
	}
	if report, err := s.catalog.Report(); err == nil {
		resp.TotalImages = report.TotalImages
	}
	return resp, nil
}

func (s *paletteService) ListImages(ctx context.Context) (*models.ImageListResponse, error) {
	names, err := s.imageNames(ctx)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to list images", err)
	}
	return &models.ImageListResponse{Images: names, Count: len(names)}, nil
}

// imageNames lists the store, falling back to the last report for stores
// that cannot enumerate their objects.
func (s *paletteService) imageNames(ctx context.Context) ([]string, error) {
	objects, err := s.imageRepo.ListImages(ctx)
	if err == nil {
		names := make([]string, len(objects))
		for i, obj := range objects {
			names[i] = obj.Name
		}
		return names, nil
	}
	if !errors.Is(err, storage.ErrListingUnsupported) {
		return nil, err
	}

	report, rerr := s.catalog.Report()
	if rerr != nil {
		return nil, err
	}
	names := make([]string, len(report.Images))
	for i, rec := range report.Images {
		names[i] = rec.FileName
	}
	return names, nil
}

func (s *paletteService) ImageDetails(ctx context.Context, name string) (*models.ImageDetailsResponse, error) {
	loaded, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}

	meta := loaded.Metadata()
	resp := &models.ImageDetailsResponse{
		FileName: meta.Name,
		Format:   meta.Format,
		FileSize: meta.ContentLength,
		Width:    meta.Width,
		Height:   meta.Height,
	}

	avg, err := s.averager.Average(loaded.Image)
	switch {
	case err == nil:
		resp.RGBAverage = avg.String()
	case errors.Is(err, palette.ErrNoOpaquePixels):
		resp.Unavailable = noOpaqueMessage
	default:
		return nil, apperrors.NewInternalError("failed to average image", err)
	}
	return resp, nil
}

func (s *paletteService) Average(ctx context.Context, name string) (*models.AverageResponse, error) {
	loaded, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}

	avg, err := s.averager.Average(loaded.Image)
	if err != nil {
		if errors.Is(err, palette.ErrNoOpaquePixels) {
			return nil, apperrors.NewNoOpaquePixelsError(noOpaqueMessage, err)
		}
		return nil, apperrors.NewInternalError("failed to average image", err)
	}
	return &models.AverageResponse{FileName: loaded.Info.Name, RGBAverage: avg.String()}, nil
}

func (s *paletteService) PixelAt(ctx context.Context, name string, x, y int) (*models.PixelResponse, error) {
	loaded, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}

	resp := &models.PixelResponse{X: x, Y: y, Label: notOnImageLabel}
	b := loaded.Image.Bounds()
	p := image.Pt(b.Min.X+x, b.Min.Y+y)
	if !p.In(b) {
		return resp, nil
	}

	px := palette.Pack(loaded.Image.At(p.X, p.Y))
	resp.OnImage = true
	resp.R, resp.G, resp.B, resp.A = px.Red(), px.Green(), px.Blue(), px.Alpha()
	resp.Label = fmt.Sprintf("R:%d G:%d B:%d A:%d", resp.R, resp.G, resp.B, resp.A)
	return resp, nil
}

func (s *paletteService) RawPNG(ctx context.Context, name string) ([]byte, error) {
	loaded, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	return encodePNG(loaded.Image)
}

func (s *paletteService) Thumbnail(ctx context.Context, name string, size int) ([]byte, error) {
	loaded, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	size = ClampThumbnailSize(size)
	thumb := resize.Thumbnail(uint(size), uint(size), loaded.Image, resize.Lanczos3)
	return encodePNG(thumb)
}

// ClampThumbnailSize bounds size to [MinThumbnailSize, MaxThumbnailSize]
func ClampThumbnailSize(size int) int {
	if size < MinThumbnailSize {
		return MinThumbnailSize
	}
	if size > MaxThumbnailSize {
		return MaxThumbnailSize
	}
	return size
}

func (s *paletteService) Match(ctx context.Context, target color.NRGBA, n int) (*models.MatchResponse, error) {
	report, err := s.catalog.Report()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("no catalog report, process the catalog first", err)
		}
		return nil, apperrors.NewInternalError("failed to read catalog report", err)
	}

	matches, err := matcher.New(report.Images).Rank(target, n)
	if err != nil {
		return nil, apperrors.NewNotFoundError("no image has an average color", err)
	}

	resp := &models.MatchResponse{
		Target:  palette.AverageColor{R: target.R, G: target.G, B: target.B}.String(),
		Matches: make([]models.MatchResult, len(matches)),
	}
	for i, m := range matches {
		resp.Matches[i] = models.MatchResult{
			FileName:   m.Record.FileName,
			RGBAverage: m.Average.String(),
			Distance:   m.Distance,
		}
	}
	return resp, nil
}

func (s *paletteService) load(ctx context.Context, name string) (*repository.LoadedImage, error) {
	if err := s.nameValidator.ValidateImageName(name); err != nil {
		return nil, err
	}

	loaded, err := s.imageRepo.LoadImage(ctx, name)
	if err == nil {
		return loaded, nil
	}

	switch {
	case errors.Is(err, repository.ErrImageNotFound):
		notFound := apperrors.NewNotFoundError(fmt.Sprintf("image %q not found", name), err)
		if names, lerr := s.imageNames(ctx); lerr == nil {
			if suggestion := matcher.SuggestName(name, names); suggestion != "" {
				return nil, notFound.WithDetails(suggestion)
			}
		}
		return nil, notFound
	case errors.Is(err, storage.ErrInvalidName), errors.Is(err, repository.ErrUnsupportedImage):
		return nil, apperrors.NewValidationError("invalid image name", err)
	case errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.NewTimeoutError("image fetch timeout", err)
	case errors.Is(err, repository.ErrUnreadableImage):
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	case errors.Is(err, palette.ErrDecodeFailure):
		return nil, apperrors.NewDecodeFailureError("image could not be decoded", err)
	default:
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperrors.NewInternalError("failed to encode PNG", err)
	}
	return buf.Bytes(), nil
}
