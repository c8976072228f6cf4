package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxFetchAttempts = 3

// HTTPStore fetches images by name relative to a base URL.
type HTTPStore struct {
	baseURL    *url.URL
	client     *http.Client
	retryDelay time.Duration
}

// NewHTTPStore creates an HTTP-backed store. timeout bounds a single request.
func NewHTTPStore(baseURL string, timeout time.Duration) (*HTTPStore, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		// Connection pooling sized for sequential sprite downloads
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPStore{
		baseURL: parsed,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		retryDelay: time.Second,
	}, nil
}

// List is not available over plain HTTP.
func (h *HTTPStore) List(ctx context.Context) ([]ObjectInfo, error) {
	return nil, ErrListingUnsupported
}

// Open downloads the named image. Transport errors and 5xx responses are
// retried up to three attempts; 4xx responses are not.
func (h *HTTPStore) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	if !flatName(name) {
		return nil, ObjectInfo{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	objectURL := h.baseURL.ResolveReference(&url.URL{Path: name}).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, objectURL, nil)
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/png, image/gif, image/jpeg, image/bmp, image/webp, */*")
	req.Header.Set("User-Agent", "Pokemon-Palette/1.0")

	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
		} else {
			switch {
			case resp.StatusCode == http.StatusOK:
				return resp.Body, ObjectInfo{
					Name:        name,
					Path:        objectURL,
					Size:        max(resp.ContentLength, 0),
					ContentType: resp.Header.Get("Content-Type"),
				}, nil
			case resp.StatusCode == http.StatusNotFound:
				resp.Body.Close()
				return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
			case resp.StatusCode >= 400 && resp.StatusCode < 500:
				resp.Body.Close()
				return nil, ObjectInfo{}, fmt.Errorf("client error: status code %d", resp.StatusCode)
			default:
				resp.Body.Close()
				lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
			}
		}

		if attempt < maxFetchAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ObjectInfo{}, fmt.Errorf("failed to fetch image: %w", ctx.Err())
			case <-time.After(time.Duration(attempt+1) * h.retryDelay):
			}
		}
	}

	return nil, ObjectInfo{}, fmt.Errorf("failed to fetch image after %d attempts: %w", maxFetchAttempts, lastErr)
}
