package transport

import (
	"context"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anime-shed/pokemon-palette-go/internal/config"
	apperrors "github.com/anime-shed/pokemon-palette-go/internal/errors"
	"github.com/anime-shed/pokemon-palette-go/pkg/models"
)

type fakeService struct {
	averageErr error
	force      bool
	size       int
	target     color.NRGBA
	n          int
	x, y       int
	detailErr  error
}

func (f *fakeService) ProcessCatalog(ctx context.Context, force bool) (*models.ProcessResponse, error) {
	f.force = force
	return &models.ProcessResponse{Ran: true, Message: "Catalog processed", TotalImages: 3}, nil
}

func (f *fakeService) ListImages(ctx context.Context) (*models.ImageListResponse, error) {
	return &models.ImageListResponse{Images: []string{"metapod.png"}, Count: 1}, nil
}

func (f *fakeService) ImageDetails(ctx context.Context, name string) (*models.ImageDetailsResponse, error) {
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return &models.ImageDetailsResponse{FileName: name, RGBAverage: "R1G2B3"}, nil
}

func (f *fakeService) Average(ctx context.Context, name string) (*models.AverageResponse, error) {
	if f.averageErr != nil {
		return nil, f.averageErr
	}
	return &models.AverageResponse{FileName: name, RGBAverage: "R1G2B3"}, nil
}

func (f *fakeService) PixelAt(ctx context.Context, name string, x, y int) (*models.PixelResponse, error) {
	f.x, f.y = x, y
	return &models.PixelResponse{OnImage: false, X: x, Y: y, Label: "N/A (not on image)"}, nil
}

func (f *fakeService) RawPNG(ctx context.Context, name string) ([]byte, error) {
	return []byte("png"), nil
}

func (f *fakeService) Thumbnail(ctx context.Context, name string, size int) ([]byte, error) {
	f.size = size
	return []byte("thumb"), nil
}

func (f *fakeService) Match(ctx context.Context, target color.NRGBA, n int) (*models.MatchResponse, error) {
	f.target, f.n = target, n
	return &models.MatchResponse{Target: "R1G2B3"}, nil
}

func newTestHandler(svc *fakeService) http.Handler {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		RequestTimeout:     time.Second,
		ScanTimeout:        time.Second,
		MaxRequestBodySize: 1024,
	}
	return NewHandler(svc, cfg)
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := do(t, newTestHandler(&fakeService{}), http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "available" {
		t.Errorf("Unexpected body %v", body)
	}
}

func TestProcessCatalog(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(svc)

	w := do(t, h, http.MethodPost, "/process?force=true")
	if w.Code != http.StatusOK || !svc.force {
		t.Errorf("Expected forced process, got %d force=%v", w.Code, svc.force)
	}

	w = do(t, h, http.MethodPost, "/process?force=maybe")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad force, got %d", w.Code)
	}
}

func TestImageRoutes(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(svc)

	if w := do(t, h, http.MethodGet, "/images"); w.Code != http.StatusOK {
		t.Errorf("Expected 200 for list, got %d", w.Code)
	}

	w := do(t, h, http.MethodGet, "/images/metapod.png")
	var details models.ImageDetailsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &details); err != nil || details.FileName != "metapod.png" {
		t.Errorf("Unexpected details %s", w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/images/metapod.png/pixel?x=3&y=-2")
	if w.Code != http.StatusOK || svc.x != 3 || svc.y != -2 {
		t.Errorf("Expected coordinates forwarded, got %d (%d,%d)", w.Code, svc.x, svc.y)
	}
	if w := do(t, h, http.MethodGet, "/images/metapod.png/pixel?x=a&y=1"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad coordinates, got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/images/metapod.png/raw")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("Expected PNG response, got %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	do(t, h, http.MethodGet, "/images/metapod.png/thumbnail")
	if svc.size != defaultThumbnailSize {
		t.Errorf("Expected default size, got %d", svc.size)
	}
	do(t, h, http.MethodGet, "/images/metapod.png/thumbnail?size=64")
	if svc.size != 64 {
		t.Errorf("Expected size 64, got %d", svc.size)
	}
	if w := do(t, h, http.MethodGet, "/images/metapod.png/thumbnail?size=big"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad size, got %d", w.Code)
	}
}

func TestNotFoundCarriesSuggestion(t *testing.T) {
	svc := &fakeService{
		detailErr: apperrors.NewNotFoundError(`image "metapd.png" not found`, nil).WithDetails("metapod.png"),
	}
	w := do(t, newTestHandler(svc), http.MethodGet, "/images/metapd.png")

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Suggestion != "metapod.png" || resp.Type != "not_found" {
		t.Errorf("Unexpected error response %+v", resp)
	}
}

func TestDecodeFailureStatus(t *testing.T) {
	svc := &fakeService{detailErr: apperrors.NewDecodeFailureError("image could not be decoded", nil)}
	w := do(t, newTestHandler(svc), http.MethodGet, "/images/broken.png")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", w.Code)
	}
}

func TestMatch(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(svc)

	w := do(t, h, http.MethodGet, "/match?r=10&g=20&b=30")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if svc.target != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) || svc.n != 5 {
		t.Errorf("Unexpected forwarded target %+v n=%d", svc.target, svc.n)
	}

	do(t, h, http.MethodGet, "/match?r=0&g=0&b=0&n=2")
	if svc.n != 2 {
		t.Errorf("Expected n=2, got %d", svc.n)
	}

	for _, target := range []string{"/match?r=256&g=0&b=0", "/match?r=1&g=2", "/match?r=1&g=2&b=3&n=-1"} {
		if w := do(t, h, http.MethodGet, target); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, w.Code)
		}
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.NewTimeoutError("slow", nil), http.StatusGatewayTimeout},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{context.Canceled, http.StatusTooManyRequests},
		{apperrors.NewValidationError("bad", nil), http.StatusBadRequest},
		{http.ErrBodyNotAllowed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusCode(tt.err); got != tt.want {
			t.Errorf("statusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestAverageRoute(t *testing.T) {
	w := do(t, newTestHandler(&fakeService{}), http.MethodGet, "/images/metapod.png/average")
	var avg models.AverageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &avg); err != nil || w.Code != http.StatusOK || avg.RGBAverage != "R1G2B3" {
		t.Errorf("Unexpected average response %d %s", w.Code, w.Body.String())
	}

	svc := &fakeService{averageErr: apperrors.NewNoOpaquePixelsError("image has no fully opaque pixels", nil)}
	w = do(t, newTestHandler(svc), http.MethodGet, "/images/gastly.png/average")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Expected a single JSON error body, got %s", w.Body.String())
	}
	if resp.Type != "no_opaque_pixels" {
		t.Errorf("Expected no_opaque_pixels type, got %+v", resp)
	}
}
