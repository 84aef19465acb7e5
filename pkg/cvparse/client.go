package cvparse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultPollInterval   = 500 * time.Millisecond
	defaultWaitTimeout    = 15 * time.Second
)

// Client calls the document parsing backend over HTTP.
type Client struct {
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	waitTimeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout bounds each individual backend request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		client := *c.client
		client.Timeout = d
		c.client = &client
	}
}

// WithPollInterval sets how often ParseAndWait re-checks a pending record.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithWaitTimeout bounds ParseOrDemo when the caller's context carries no
// deadline of its own.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.waitTimeout = d
		}
	}
}

// NewClient builds a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("cvparse: missing base URL")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("cvparse: invalid base URL %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL:      trimmed,
		client:       &http.Client{Timeout: defaultRequestTimeout},
		pollInterval: defaultPollInterval,
		waitTimeout:  defaultWaitTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Parse uploads a document and returns the receipt used to poll for the
// parsed record.
func (c *Client) Parse(ctx context.Context, filename string, r io.Reader) (Receipt, error) {
	if r == nil {
		return Receipt{}, fmt.Errorf("cvparse: missing document reader")
	}
	if filename == "" {
		filename = "document"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return Receipt{}, fmt.Errorf("cvparse: build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return Receipt{}, fmt.Errorf("cvparse: read document: %w", err)
	}
	if err := form.Close(); err != nil {
		return Receipt{}, fmt.Errorf("cvparse: build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", &body)
	if err != nil {
		return Receipt{}, fmt.Errorf("cvparse: build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Receipt{}, fmt.Errorf("%w: parse returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return Receipt{}, fmt.Errorf("cvparse: decode receipt: %w", err)
	}
	if receipt.ID == "" {
		return Receipt{}, fmt.Errorf("cvparse: backend returned no record id")
	}
	return receipt, nil
}

// Result fetches a parsed record by id. It returns ErrPending while the
// backend is still working on the upload.
func (c *Client) Result(ctx context.Context, id string) (Candidate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Candidate{}, fmt.Errorf("cvparse: missing record id")
	}

	endpoint := c.baseURL + "/parsed_data/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Candidate{}, fmt.Errorf("cvparse: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Candidate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusAccepted:
		return Candidate{}, ErrPending
	case resp.StatusCode == http.StatusNotFound:
		return Candidate{}, fmt.Errorf("%w: id %q", ErrNotFound, id)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Candidate{}, fmt.Errorf("%w: parsed_data returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var candidate Candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidate); err != nil {
		return Candidate{}, fmt.Errorf("cvparse: decode record: %w", err)
	}
	return candidate, nil
}

// ParseAndWait uploads a document and polls until the parsed record is ready
// or the context expires.
func (c *Client) ParseAndWait(ctx context.Context, filename string, r io.Reader) (Candidate, error) {
	receipt, err := c.Parse(ctx, filename, r)
	if err != nil {
		return Candidate{}, err
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		candidate, err := c.Result(ctx, receipt.ID)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, ErrPending) {
			return Candidate{}, err
		}

		select {
		case <-ctx.Done():
			return Candidate{}, fmt.Errorf("cvparse: waiting for record %q: %w", receipt.ID, ctx.Err())
		case <-ticker.C:
		}
	}
}
