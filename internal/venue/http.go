package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Option configures an HTTP-backed source.
type Option func(*httpSource)

// WithBaseURL overrides the venue's REST endpoint.
func WithBaseURL(url string) Option {
	return func(s *httpSource) {
		s.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *httpSource) {
		s.client = hc
	}
}

// httpSource holds the plumbing shared by the REST venues.
type httpSource struct {
	name    string
	baseURL string
	client  *http.Client
}

func newHTTPSource(name, baseURL string, opts []Option) httpSource {
	s := httpSource{
		name:    name,
		baseURL: baseURL,
		// The per-fetch context carries the real deadline; this is a backstop.
		client: &http.Client{Timeout: 2 * DefaultTimeout},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s *httpSource) Name() string { return s.name }

// getJSON issues a GET and decodes the body into out.
func (s *httpSource) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fetchErr(s.name, KindTransport, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fetchErr(s.name, KindTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fetchErr(s.name, KindTransport, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fetchErr(s.name, KindStatus, fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fetchErr(s.name, KindDecode, err)
	}
	return nil
}
