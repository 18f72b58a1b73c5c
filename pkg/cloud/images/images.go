// Package images is the client for container image builds: listing,
// inspecting, canceling, following logs and waiting for completion.
package images

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/papercomputeco/cloudctl/pkg/cloud"
	"github.com/papercomputeco/cloudctl/pkg/sse"
)

var (
	// ErrBuildFailed is returned by WaitForBuild when the build failed.
	ErrBuildFailed = errors.New("image build failed")

	// ErrBuildCanceled is returned by WaitForBuild when the build was
	// canceled.
	ErrBuildCanceled = errors.New("image build canceled")

	// ErrWaitTimeout is returned by WaitForBuild when the build is still
	// running after WaitOptions.MaxElapsed.
	ErrWaitTimeout = errors.New("timed out waiting for image build")

	errBuildPending = errors.New("build not finished")
)

const (
	defaultPollInterval    = 500 * time.Millisecond
	defaultMaxPollInterval = 10 * time.Second
	defaultMaxWait         = 30 * time.Minute
)

// Client calls the image builds API.
type Client struct {
	api *cloud.Client
}

// NewClient returns a Client sending requests through api.
func NewClient(api *cloud.Client) *Client {
	return &Client{api: api}
}

func buildsPath(rest ...string) string {
	return cloud.Path(append([]string{"images", "v2", "builds"}, rest...)...)
}

// ListBuilds returns one page of builds matching opts.
func (c *Client) ListBuilds(ctx context.Context, opts ListBuildsOptions) (*Page[BuildListItem], error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.ApplicationName != "" {
		q.Set("graph_name", opts.ApplicationName)
	}
	if opts.ImageName != "" {
		q.Set("image_name", opts.ImageName)
	}
	if opts.FunctionName != "" {
		q.Set("graph_function_name", opts.FunctionName)
	}

	out := &Page[BuildListItem]{}
	if err := c.api.GetJSON(ctx, buildsPath(), q, out); err != nil {
		return nil, fmt.Errorf("listing builds: %w", err)
	}
	return out, nil
}

// GetBuild returns the current state of a build.
func (c *Client) GetBuild(ctx context.Context, buildID string) (*BuildInfo, error) {
	out := &BuildInfo{}
	if err := c.api.GetJSON(ctx, buildsPath(buildID), nil, out); err != nil {
		return nil, fmt.Errorf("getting build %s: %w", buildID, err)
	}
	return out, nil
}

// CancelBuild asks the build service to stop a build. Cancellation is
// asynchronous; the build moves through canceling to canceled.
func (c *Client) CancelBuild(ctx context.Context, buildID string) error {
	if err := c.api.SendJSON(ctx, http.MethodPost, buildsPath(buildID, "cancel"), nil, nil, nil); err != nil {
		return fmt.Errorf("canceling build %s: %w", buildID, err)
	}
	return nil
}

// StreamLogs opens the live log feed of a build.
func (c *Client) StreamLogs(ctx context.Context, buildID string, opts ...sse.StreamOption) (*sse.Stream[LogEntry], error) {
	stream, err := cloud.OpenStream[LogEntry](ctx, c.api, buildsPath(buildID, "logs"), nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("streaming logs of build %s: %w", buildID, err)
	}
	return stream, nil
}

// WaitOptions tunes WaitForBuild. Zero values use the defaults.
type WaitOptions struct {
	// Interval is the first delay between polls. It grows exponentially up
	// to MaxInterval.
	Interval    time.Duration
	MaxInterval time.Duration

	// MaxElapsed bounds the total wait.
	MaxElapsed time.Duration

	// OnPoll, when set, is called with every observed build state.
	OnPoll func(*BuildInfo)
}

// WaitForBuild polls a build until it reaches a terminal status. Server
// errors are retried; any other API error stops the wait.
func (c *Client) WaitForBuild(ctx context.Context, buildID string, opts WaitOptions) (*BuildInfo, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = defaultPollInterval
	b.MaxInterval = defaultMaxPollInterval
	b.MaxElapsedTime = defaultMaxWait
	if opts.Interval > 0 {
		b.InitialInterval = opts.Interval
	}
	if opts.MaxInterval > 0 {
		b.MaxInterval = opts.MaxInterval
	}
	if opts.MaxElapsed > 0 {
		b.MaxElapsedTime = opts.MaxElapsed
	}

	var info *BuildInfo
	poll := func() error {
		got, err := c.GetBuild(ctx, buildID)
		if err != nil {
			if errors.Is(err, cloud.ErrServer) {
				c.api.Logger().Debug("retrying build poll", "build_id", buildID, "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		if opts.OnPoll != nil {
			opts.OnPoll(got)
		}
		if !got.Status.Terminal() {
			return errBuildPending
		}
		info = got
		return nil
	}

	if err := backoff.Retry(poll, backoff.WithContext(b, ctx)); err != nil {
		if errors.Is(err, errBuildPending) {
			return nil, fmt.Errorf("%w %s", ErrWaitTimeout, buildID)
		}
		return nil, err
	}

	switch {
	case info.Status.Succeeded():
		return info, nil
	case info.Status == StatusCanceled:
		return info, fmt.Errorf("%w: %s", ErrBuildCanceled, buildID)
	default:
		msg := info.ErrorMessage
		if msg == "" {
			msg = "no error message reported"
		}
		return info, fmt.Errorf("%w: %s: %s", ErrBuildFailed, buildID, msg)
	}
}
