package cloud

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

// Option configures a Client created with New.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithScope sets the organization and project headers sent with every
// request. Empty values are not sent.
func WithScope(orgID, projectID string) Option {
	return func(c *Client) {
		c.orgID = orgID
		c.projectID = projectID
	}
}

// WithHTTPClient replaces the underlying *http.Client. The default has no
// timeout so that event streams can stay open; use contexts to bound calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRateLimit paces requests to rps per second with the given burst.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}
