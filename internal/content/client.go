package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// DefaultRootURL is where the demo content server listens.
const DefaultRootURL = "http://localhost:8000"

// maxBodySize bounds every response body read.
const maxBodySize = 1 << 20

var (
	// ErrInvalidRootURL is returned when the root URL cannot be used.
	ErrInvalidRootURL = errors.New("invalid root url")
	// ErrBadStatus is returned for non-200 responses.
	ErrBadStatus = errors.New("unexpected http status")
	// ErrMalformedResponse is returned when a body is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed response")
)

// ResponseCode is the document the next path points at.
type ResponseCode struct {
	// Path is the path the server reported for the document.
	Path string
	// Code is the response code.
	Code uuid.UUID
}

// Client talks to the content server.
type Client struct {
	rootURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient creates a client for rootURL; empty means DefaultRootURL.
func NewClient(rootURL string, opts ...Option) *Client {
	if rootURL == "" {
		rootURL = DefaultRootURL
	}

	c := &Client{
		rootURL:    rootURL,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchResponseCode resolves the next path from the root URL and fetches the
// response code it points at.
func (c *Client) FetchResponseCode(ctx context.Context) (*ResponseCode, error) {
	root, err := url.ParseRequestURI(c.rootURL)
	if err != nil || root.Host == "" {
		return nil, fmt.Errorf("%q: %w", c.rootURL, ErrInvalidRootURL)
	}

	body, err := c.get(ctx, root.String())
	if err != nil {
		return nil, fmt.Errorf("fetch root: %w", err)
	}

	nextPath := gjson.GetBytes(body, "next_path")
	if nextPath.Type != gjson.String || nextPath.String() == "" {
		return nil, fmt.Errorf("next_path missing: %w", ErrMalformedResponse)
	}

	next, err := root.Parse(nextPath.String())
	if err != nil {
		return nil, fmt.Errorf("next_path %q: %w", nextPath.String(), ErrMalformedResponse)
	}

	body, err = c.get(ctx, next.String())
	if err != nil {
		return nil, fmt.Errorf("fetch response code: %w", err)
	}

	fields := gjson.GetManyBytes(body, "path", "response_code")

	code, err := uuid.Parse(fields[1].String())
	if err != nil {
		return nil, fmt.Errorf("response_code %q: %w", fields[1].String(), ErrMalformedResponse)
	}

	return &ResponseCode{
		Path: fields[0].String(),
		Code: code,
	}, nil
}

// get performs a GET and returns a validated JSON body.
func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", target, resp.Status, ErrBadStatus)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: %w", target, ErrMalformedResponse)
	}

	return body, nil
}
