// Package cloud is the HTTP transport shared by the cloudctl SDK resource
// clients. It owns authentication and scope headers, request pacing, status
// code mapping, and opening event streams.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/papercomputeco/cloudctl/pkg/logger"
	"github.com/papercomputeco/cloudctl/pkg/utils"
)

const (
	// OrganizationHeader scopes a request to an organization.
	OrganizationHeader = "X-Cloud-Organization-Id"

	// ProjectHeader scopes a request to a project.
	ProjectHeader = "X-Cloud-Project-Id"

	// RequestIDHeader carries the client generated id of every request.
	RequestIDHeader = "X-Request-Id"
)

// Client sends authenticated requests to the cloud API.
// A Client is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
	orgID      string
	projectID  string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		userAgent:  "cloudctl/" + utils.Version,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// OrganizationID returns the default organization scope, if any.
func (c *Client) OrganizationID() string {
	return c.orgID
}

// ProjectID returns the default project scope, if any.
func (c *Client) ProjectID() string {
	return c.projectID
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Path joins segments into an API path, escaping each one.
func Path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

// NewRequest builds a request for path relative to the base URL. path must
// already be escaped, see Path.
func (c *Client) NewRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return req, nil
}

// Do sends req with the client's headers. Non-2xx responses are closed and
// returned as an *APIError.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.orgID != "" {
		req.Header.Set(OrganizationHeader, c.orgID)
	}
	if c.projectID != "" {
		req.Header.Set(ProjectHeader, c.projectID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending %s %s: %w", req.Method, req.URL.Path, err)
	}

	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, newAPIError(resp, requestID)
	}

	return resp, nil
}

// GetJSON sends a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.SendJSON(ctx, http.MethodGet, path, query, nil, out)
}

// SendJSON sends in as a JSON body, when non-nil, and decodes the response
// into out, when non-nil.
func (c *Client) SendJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.NewRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyResponse
		}
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Delete sends a DELETE request and discards the response body.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.SendJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Head sends a HEAD request and returns the response status code.
func (c *Client) Head(ctx context.Context, path string) (int, error) {
	req, err := c.NewRequest(ctx, http.MethodHead, path, nil, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	return resp.StatusCode, nil
}

// Raw sends a GET request and returns the response body and content type
// without interpreting them.
func (c *Client) Raw(ctx context.Context, path string) ([]byte, string, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
