package validation

import (
	"path/filepath"
	"strings"

	apperrors "github.com/anime-shed/pokemon-palette-go/internal/errors"
)

// ImageExtensions lists the file extensions the catalog decodes.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".qoi"}

// HasImageExtension reports whether name ends in a supported extension, ignoring case.
func HasImageExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range ImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// NameValidator guards image names taken from request paths
type NameValidator struct {
	maxLength int
}

func NewNameValidator() *NameValidator {
	return &NameValidator{maxLength: 255}
}

// ValidateImageName rejects names that could escape the image directory
// or that do not look like a supported image file.
func (v *NameValidator) ValidateImageName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("Image name cannot be empty", nil)
	}
	if len(name) > v.maxLength {
		return apperrors.NewValidationError("Image name too long", nil)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return apperrors.NewValidationError("Image name must not contain path elements", nil)
	}
	if strings.ContainsRune(name, 0) {
		return apperrors.NewValidationError("Image name contains invalid characters", nil)
	}
	if !HasImageExtension(name) {
		return apperrors.NewValidationError("Unsupported image extension", nil).
			WithDetails(strings.Join(ImageExtensions, ", "))
	}
	return nil
}
