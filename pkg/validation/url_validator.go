package validation

import (
	"net/url"
	"slices"
	"strings"

	apperrors "github.com/anime-shed/pokemon-palette-go/internal/errors"
)

// URLValidator checks the base URL remote image names are resolved against
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator creates a URL validator accepting any http(s) host
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateBaseURL validates a directory-like URL that image names are appended to
func (v *URLValidator) ValidateBaseURL(baseURL string) error {
	if strings.TrimSpace(baseURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return apperrors.NewValidationError("Base URL must not carry a query or fragment", nil)
	}

	return nil
}

func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	return slices.Contains(v.allowedSchemes, strings.ToLower(scheme))
}

// isHostAllowed returns true if no host restrictions are set
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	return slices.Contains(v.allowedHosts, host)
}
