package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxPhotoBytes bounds the size of a downloaded veil photo
const MaxPhotoBytes = 8 << 20

// HTTPPhotoFetcher downloads attachment photos from Discord's CDN
type HTTPPhotoFetcher struct {
	client *http.Client
}

// NewHTTPPhotoFetcher creates a fetcher with a request timeout
func NewHTTPPhotoFetcher(timeout time.Duration) *HTTPPhotoFetcher {
	return &HTTPPhotoFetcher{client: &http.Client{Timeout: timeout}}
}

// FetchPhoto downloads the photo at url
func (f *HTTPPhotoFetcher) FetchPhoto(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build photo request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if len(data) > MaxPhotoBytes {
		return nil, fmt.Errorf("photo exceeds %d bytes", MaxPhotoBytes)
	}
	return data, nil
}
