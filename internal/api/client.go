// Package api is an HTTP client for the cover letter service.
//
// Every transport failure is returned as *UnavailableError and every
// non-success response as *RejectedError. The client never retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/cover-letter-studio/internal/types"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 60 * time.Second

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "cover-letter-studio/1.0"

// tokenRefreshMargin renews a bearer token shortly before it expires.
const tokenRefreshMargin = 30 * time.Second

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	APIKey     string // exchanged for a bearer token when set
	HTTPClient *http.Client
	Verbose    bool
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client talks to the cover letter service.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	apiKey     string
	verbose    bool

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q", baseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:    parsed,
		httpClient: httpClient,
		userAgent:  userAgent,
		apiKey:     opts.APIKey,
		verbose:    opts.Verbose,
	}, nil
}

// BaseURL returns the service URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(ctx, req, true, out)
}

// doMultipart uploads one file plus form fields.
func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]string, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(ctx, req, true, out)
}

func (c *Client) send(ctx context.Context, req *http.Request, authorize bool, out any) error {
	path := req.URL.Path
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	if authorize && c.apiKey != "" {
		token, err := c.bearerToken(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnavailableError{Method: req.Method, Path: path, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UnavailableError{Method: req.Method, Path: path, Cause: err}
	}

	if c.verbose {
		log.Printf("[api] %s %s -> %d in %v", req.Method, path, resp.StatusCode, time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RejectedError{
			Method:     req.Method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &UnavailableError{
			Method: req.Method,
			Path:   path,
			Cause:  fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

const maxErrorRunes = 200

// errorMessage extracts the server message from {"error": ...} or FastAPI's
// {"detail": ...} bodies, falling back to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, m := range []string{payload.Error, payload.Detail, payload.Message} {
			if m != "" {
				return m
			}
		}
	}
	text := []rune(strings.TrimSpace(string(body)))
	if len(text) > maxErrorRunes {
		return string(text[:maxErrorRunes]) + "..."
	}
	return string(text)
}

// bearerToken returns a cached token, exchanging the API key when needed.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Add(tokenRefreshMargin).Before(c.tokenExpiry) {
		return c.token, nil
	}

	data, err := json.Marshal(types.TokenRequest{APIKey: c.apiKey})
	if err != nil {
		return "", fmt.Errorf("failed to encode token request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/auth/token"), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp types.TokenResponse
	if err := c.send(ctx, req, false, &resp); err != nil {
		return "", err
	}
	c.token = resp.Token
	c.tokenExpiry = resp.ExpiresAt
	return c.token, nil
}

// Health checks that the service is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
