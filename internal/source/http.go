package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type httpConfig struct {
	TimeoutSeconds int   `json:"timeout_seconds"`
	MaxBytes       int64 `json:"max_bytes"`
}

// httpFetcher retrieves a single page or raw file by URL.
type httpFetcher struct {
	client   *http.Client
	maxBytes int64
}

func init() {
	Register("http", createHTTPFetcher)
}

func createHTTPFetcher(args interface{}) (Fetcher, error) {
	cfg := &httpConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 8 << 20
	}
	return &httpFetcher{
		client:   &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		maxBytes: cfg.MaxBytes,
	}, nil
}

func (f *httpFetcher) Fetch(ctx context.Context, ref string) ([]Document, error) {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid source url: %s", ref)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch %s failed: %s", parsed.String(), resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, err
	}
	return []Document{{
		Path:    parsed.String(),
		Content: string(body),
	}}, nil
}
