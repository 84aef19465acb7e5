package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPProvider calls a JSON geocoding endpoint:
//
//	GET {base}/v1/search?q={query}
//	-> {"results": [{"formatted": "...", "lat": 48.85, "lng": 2.35, "place_id": "..."}]}
//
// Any transport failure or upstream 5xx maps to ErrUnavailable; a 404 or an
// empty result list maps to ErrNotFound.
type HTTPProvider struct {
	baseURL   string
	client    *http.Client
	apiKey    string
	keyHeader string
}

// HTTPOption configures the provider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithTimeout sets the request timeout on the provider's client.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(p *HTTPProvider) {
		if timeout > 0 {
			clone := *p.client
			clone.Timeout = timeout
			p.client = &clone
		}
	}
}

// WithAPIKey attaches an API key header to every request.
func WithAPIKey(header, key string) HTTPOption {
	return func(p *HTTPProvider) {
		p.keyHeader = header
		p.apiKey = key
	}
}

// NewHTTPProvider builds a provider for the endpoint rooted at baseURL.
func NewHTTPProvider(baseURL string, options ...HTTPOption) (*HTTPProvider, error) {
	if baseURL == "" {
		return nil, errors.New("geocode: base URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("geocode: invalid base URL %q: %w", baseURL, err)
	}

	p := &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Geocode implements Provider.
func (p *HTTPProvider) Geocode(ctx context.Context, query string) ([]Location, error) {
	reqURL, err := url.Parse(p.baseURL + "/v1/search")
	if err != nil {
		return nil, fmt.Errorf("geocode: build url: %w", err)
	}
	q := reqURL.Query()
	q.Set("q", query)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" && p.keyHeader != "" {
		req.Header.Set(p.keyHeader, p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %q", ErrNotFound, query)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			Formatted string  `json:"formatted"`
			Lat       float64 `json:"lat"`
			Lng       float64 `json:"lng"`
			PlaceID   string  `json:"place_id"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	out := make([]Location, 0, len(payload.Results))
	for _, result := range payload.Results {
		out = append(out, Location{
			Formatted: result.Formatted,
			Latitude:  result.Lat,
			Longitude: result.Lng,
			PlaceID:   result.PlaceID,
		})
	}
	return out, nil
}
