package transport

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/pokemon-palette-go/internal/config"
	apperrors "github.com/anime-shed/pokemon-palette-go/internal/errors"
	"github.com/anime-shed/pokemon-palette-go/internal/logger"
	"github.com/anime-shed/pokemon-palette-go/internal/service"
	"github.com/anime-shed/pokemon-palette-go/pkg/models"
)

const defaultThumbnailSize = 256

func NewHandler(svc service.PaletteService, cfg *config.Config) http.Handler {
	r := gin.New()

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	h := &handler{svc: svc, cfg: cfg}

	// Configure routes
	r.GET("/health", healthCheck)
	r.POST("/process", h.processCatalog)
	r.GET("/images", h.listImages)
	r.GET("/images/:name", h.imageDetails)
	r.GET("/images/:name/average", h.average)
	r.GET("/images/:name/pixel", h.pixel)
	r.GET("/images/:name/raw", h.raw)
	r.GET("/images/:name/thumbnail", h.thumbnail)
	r.GET("/match", h.match)

	return r
}

type handler struct {
	svc service.PaletteService
	cfg *config.Config
}

func (h *handler) processCatalog(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.ScanTimeout)
	defer cancel()

	force, err := optionalBool(c, "force")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid force parameter", err)
		return
	}

	resp, err := h.svc.ProcessCatalog(ctx, force)
	if err != nil {
		respondError(c, statusCode(err), "catalog processing failed", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"ran":          resp.Ran,
		"force":        force,
		"total_images": resp.TotalImages,
	}).Info("Catalog process request handled")

	c.JSON(http.StatusOK, resp)
}

func (h *handler) listImages(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	resp, err := h.svc.ListImages(ctx)
	if err != nil {
		respondError(c, statusCode(err), "failed to list images", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) imageDetails(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	resp, err := h.svc.ImageDetails(ctx, c.Param("name"))
	if err != nil {
		respondError(c, statusCode(err), "failed to load image", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) average(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	resp, err := h.svc.Average(ctx, c.Param("name"))
	if err != nil {
		respondError(c, statusCode(err), "failed to average image", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) pixel(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	x, errX := strconv.Atoi(c.Query("x"))
	y, errY := strconv.Atoi(c.Query("y"))
	if err := errors.Join(errX, errY); err != nil {
		respondError(c, http.StatusBadRequest, "x and y must be integers",
			apperrors.NewValidationError("invalid coordinates", err))
		return
	}

	resp, err := h.svc.PixelAt(ctx, c.Param("name"), x, y)
	if err != nil {
		respondError(c, statusCode(err), "failed to read pixel", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) raw(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	data, err := h.svc.RawPNG(ctx, c.Param("name"))
	if err != nil {
		respondError(c, statusCode(err), "failed to load image", err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (h *handler) thumbnail(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	size := defaultThumbnailSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "size must be an integer",
				apperrors.NewValidationError("invalid size", err))
			return
		}
		size = n
	}

	data, err := h.svc.Thumbnail(ctx, c.Param("name"), size)
	if err != nil {
		respondError(c, statusCode(err), "failed to build thumbnail", err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (h *handler) match(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var target color.NRGBA
	target.A = 0xff
	for _, ch := range []struct {
		key string
		dst *uint8
	}{{"r", &target.R}, {"g", &target.G}, {"b", &target.B}} {
		v, err := strconv.ParseUint(c.Query(ch.key), 10, 8)
		if err != nil {
			respondError(c, http.StatusBadRequest, "r, g and b must be integers in 0..255",
				apperrors.NewValidationError(fmt.Sprintf("invalid %s channel", ch.key), err))
			return
		}
		*ch.dst = uint8(v)
	}

	n := 5
	if raw := c.Query("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			respondError(c, http.StatusBadRequest, "n must be a non-negative integer",
				apperrors.NewValidationError("invalid n", err))
			return
		}
		n = v
	}

	resp, err := h.svc.Match(ctx, target, n)
	if err != nil {
		respondError(c, statusCode(err), "color match failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func optionalBool(c *gin.Context, key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.NewValidationError("expected a boolean", err)
	}
	return v, nil
}

// Middleware and helper functions
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		}).Debug("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func statusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	resp := models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Type = string(appErr.Type)
		resp.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		if appErr.Type == apperrors.ErrorTypeNotFound {
			resp.Suggestion = appErr.Details
		}
	}
	c.AbortWithStatusJSON(code, resp)
}
