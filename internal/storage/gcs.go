package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"presto/internal/gcp"
)

const DefaultGCSEndpoint = "https://storage.googleapis.com"

// GCS downloads objects through the Cloud Storage JSON API.
type GCS struct {
	endpoint string
	creds    *gcp.Credentials
}

func NewGCS(creds *gcp.Credentials, endpoint string) *GCS {
	if endpoint == "" {
		endpoint = DefaultGCSEndpoint
	}
	return &GCS{endpoint: strings.TrimRight(endpoint, "/"), creds: creds}
}

func (g *GCS) ReadObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: gcs bucket is required", ErrInvalidRef)
	}
	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media",
		g.endpoint, url.PathEscape(bucket), url.PathEscape(key))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	g.creds.Authorize(req)

	resp, err := g.creds.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gcs download failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return readAll(resp.Body)
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: gs://%s/%s", ErrNotFound, bucket, key)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gcs returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
