package cloud

import (
	"context"
	"net/http"
	"net/url"

	"github.com/papercomputeco/cloudctl/pkg/sse"
)

// OpenStream requests path as an event stream and returns a Stream decoding
// its data frames into T. The caller must Close the stream.
func OpenStream[T any](ctx context.Context, c *Client, path string, query url.Values, opts ...sse.StreamOption) (*sse.Stream[T], error) {
	req, err := c.NewRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}

	opts = append([]sse.StreamOption{sse.WithLogger(c.logger)}, opts...)
	return sse.NewStream[T](resp.Body, opts...), nil
}
