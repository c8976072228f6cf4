package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/anime-shed/pokemon-palette-go/internal/catalog"
	apperrors "github.com/anime-shed/pokemon-palette-go/internal/errors"
	"github.com/anime-shed/pokemon-palette-go/internal/palette"
	"github.com/anime-shed/pokemon-palette-go/internal/repository"
	"github.com/anime-shed/pokemon-palette-go/internal/storage"
)

func writeSprite(t *testing.T, dir, name string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestService(t *testing.T) (PaletteService, string) {
	t.Helper()
	imageDir := t.TempDir()
	outDir := t.TempDir()

	writeSprite(t, imageDir, "metapod.png", 40, 20, color.NRGBA{R: 120, G: 200, B: 80, A: 255})
	writeSprite(t, imageDir, "squirtle.png", 10, 10, color.NRGBA{R: 90, G: 160, B: 210, A: 255})
	writeSprite(t, imageDir, "gastly.png", 8, 8, color.NRGBA{R: 60, G: 0, B: 90, A: 100})
	if err := os.WriteFile(filepath.Join(imageDir, "broken.png"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := storage.NewLocalStore(imageDir)
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewImageRepository(store)
	averager := palette.NewAverager(palette.DefaultOptions().WithParallelThreshold(64))
	t.Cleanup(func() { averager.Close() })

	scanner := catalog.NewScanner(repo, averager, nil, 2)
	cat := catalog.New(scanner, catalog.NewGate(filepath.Join(outDir, "documentPokemon.flag")), filepath.Join(outDir, "image_info.json"))
	return NewPaletteService(repo, averager, cat), outDir
}

func TestProcessCatalog(t *testing.T) {
	svc, outDir := newTestService(t)
	ctx := context.Background()

	resp, err := svc.ProcessCatalog(ctx, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !resp.Ran || resp.TotalImages != 4 {
		t.Errorf("Expected first run over 4 images, got %+v", resp)
	}
	if _, err := os.Stat(filepath.Join(outDir, "image_info.json")); err != nil {
		t.Errorf("Expected report on disk: %v", err)
	}

	resp, err = svc.ProcessCatalog(ctx, false)
	if err != nil || resp.Ran {
		t.Errorf("Expected gated skip, got %+v %v", resp, err)
	}
	if resp.TotalImages != 4 {
		t.Errorf("Expected total from previous report, got %d", resp.TotalImages)
	}

	resp, err = svc.ProcessCatalog(ctx, true)
	if err != nil || !resp.Ran {
		t.Errorf("Expected forced run, got %+v %v", resp, err)
	}
}

func TestListImages(t *testing.T) {
	svc, _ := newTestService(t)
	resp, err := svc.ListImages(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"broken.png", "gastly.png", "metapod.png", "squirtle.png"}
	if resp.Count != len(want) {
		t.Fatalf("Expected %v, got %v", want, resp.Images)
	}
	for i := range want {
		if resp.Images[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], resp.Images[i])
		}
	}
}

func TestImageDetails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	details, err := svc.ImageDetails(ctx, "metapod.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if details.Width != 40 || details.Height != 20 || details.Format != "png" {
		t.Errorf("Unexpected details %+v", details)
	}
	if details.RGBAverage != "R120G200B80" || details.Unavailable != "" {
		t.Errorf("Expected R120G200B80, got %+v", details)
	}

	ghost, err := svc.ImageDetails(ctx, "gastly.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ghost.RGBAverage != "" || ghost.Unavailable == "" {
		t.Errorf("Expected unavailable average, got %+v", ghost)
	}
}

func TestImageDetails_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ImageDetails(ctx, "metapd.png")
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Fatalf("Expected not found, got %v", err)
	}
	if err.(*apperrors.AppError).Details != "metapod.png" {
		t.Errorf("Expected suggestion metapod.png, got %q", err.(*apperrors.AppError).Details)
	}

	if _, err := svc.ImageDetails(ctx, "broken.png"); !apperrors.IsType(err, apperrors.ErrorTypeDecodeFailure) {
		t.Errorf("Expected decode failure, got %v", err)
	}
	if _, err := svc.ImageDetails(ctx, "../etc/passwd.png"); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestPixelAt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	px, err := svc.PixelAt(ctx, "squirtle.png", 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !px.OnImage || px.R != 90 || px.G != 160 || px.B != 210 || px.A != 255 {
		t.Errorf("Unexpected pixel %+v", px)
	}
	if px.Label != "R:90 G:160 B:210 A:255" {
		t.Errorf("Unexpected label %q", px.Label)
	}

	for _, pt := range [][2]int{{10, 0}, {0, 10}, {-1, 0}} {
		px, err := svc.PixelAt(ctx, "squirtle.png", pt[0], pt[1])
		if err != nil {
			t.Fatal(err)
		}
		if px.OnImage || px.Label != "N/A (not on image)" {
			t.Errorf("Expected off-image at %v, got %+v", pt, px)
		}
	}
}

func TestRawAndThumbnail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	raw, err := svc.RawPNG(ctx, "metapod.png")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil || cfg.Width != 40 || cfg.Height != 20 {
		t.Errorf("Expected 40x20 PNG, got %+v %v", cfg, err)
	}

	thumb, err := svc.Thumbnail(ctx, "metapod.png", 1)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err = png.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 16 || cfg.Height != 8 {
		t.Errorf("Expected 16x8 thumbnail, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestClampThumbnailSize(t *testing.T) {
	tests := map[int]int{-5: 16, 0: 16, 16: 16, 256: 256, 1024: 1024, 5000: 1024}
	for in, want := range tests {
		if got := ClampThumbnailSize(in); got != want {
			t.Errorf("ClampThumbnailSize(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestMatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Match(ctx, color.NRGBA{A: 255}, 1); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found before processing, got %v", err)
	}

	if _, err := svc.ProcessCatalog(ctx, false); err != nil {
		t.Fatal(err)
	}

	resp, err := svc.Match(ctx, color.NRGBA{R: 100, G: 150, B: 200, A: 255}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Target != "R100G150B200" {
		t.Errorf("Unexpected target %s", resp.Target)
	}
	if len(resp.Matches) != 2 {
		t.Fatalf("Expected 2 matchable images, got %+v", resp.Matches)
	}
	if resp.Matches[0].FileName != "squirtle.png" || resp.Matches[1].FileName != "metapod.png" {
		t.Errorf("Unexpected order %+v", resp.Matches)
	}
}

func TestAverage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Average(ctx, "squirtle.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.FileName != "squirtle.png" || resp.RGBAverage != "R90G160B210" {
		t.Errorf("Unexpected average %+v", resp)
	}

	_, err = svc.Average(ctx, "gastly.png")
	if !apperrors.IsType(err, apperrors.ErrorTypeNoOpaquePixels) {
		t.Fatalf("Expected no_opaque_pixels error, got %v", err)
	}
	if code := apperrors.GetStatusCode(err); code != 422 {
		t.Errorf("Expected 422, got %d", code)
	}
	if !errors.Is(err, palette.ErrNoOpaquePixels) {
		t.Errorf("Expected the sentinel in the chain, got %v", err)
	}
}
