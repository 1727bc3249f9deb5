package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/cirozov-cmyk/device-logs-tile/internal/domain/devicelog"
)

const (
	userAgent   = "device-logs-tile/0.1"
	maxFeedSize = 1 << 20
)

// HTTPSource polls a JSON endpoint such as a Node-RED flow.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource builds a source; timeouts come from the caller's context.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPSource{url: url, client: client}
}

// Name implements Source.
func (s *HTTPSource) Name() string {
	return "http"
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) ([]devicelog.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxFeedSize))
		return nil, &StatusError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxFeedSize {
		return nil, &DecodeError{Err: fmt.Errorf("feed exceeds %d bytes", maxFeedSize)}
	}
	return decodeFeed(body)
}
