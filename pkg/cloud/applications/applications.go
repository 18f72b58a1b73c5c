// Package applications is the client for deployed applications, their
// requests, outputs and progress feeds.
package applications

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
	"strconv"

	"github.com/papercomputeco/cloudctl/pkg/cloud"
	"github.com/papercomputeco/cloudctl/pkg/sse"
)

// Client calls the applications API.
type Client struct {
	api *cloud.Client
}

// NewClient returns a Client sending requests through api.
func NewClient(api *cloud.Client) *Client {
	return &Client{api: api}
}

func appsPath(namespace string, rest ...string) string {
	return cloud.Path(append([]string{"v1", "namespaces", namespace, "applications"}, rest...)...)
}

func requestPath(namespace, application, requestID string, rest ...string) string {
	return appsPath(namespace, append([]string{application, "requests", requestID}, rest...)...)
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Cursor != "" {
		q.Set("cursor", o.Cursor)
	}
	if o.Direction != "" {
		q.Set("direction", string(o.Direction))
	}
	return q
}

// List returns one page of the applications in namespace.
func (c *Client) List(ctx context.Context, namespace string, opts ListOptions) (*ApplicationsList, error) {
	out := &ApplicationsList{}
	if err := c.api.GetJSON(ctx, appsPath(namespace), opts.query(), out); err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	for i := range out.Applications {
		out.Applications[i].Namespace = namespace
	}
	return out, nil
}

// Get returns a single application.
func (c *Client) Get(ctx context.Context, namespace, application string) (*Application, error) {
	out := &Application{}
	if err := c.api.GetJSON(ctx, appsPath(namespace, application), nil, out); err != nil {
		return nil, fmt.Errorf("getting application %s: %w", application, err)
	}
	out.Namespace = namespace
	return out, nil
}

// Upsert creates or replaces an application from its manifest and zipped
// code.
func (c *Client) Upsert(ctx context.Context, namespace string, app *Application, code io.Reader) error {
	manifest, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("marshaling application manifest: %w", err)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("application", string(manifest)); err != nil {
		return fmt.Errorf("writing manifest part: %w", err)
	}
	part, err := form.CreateFormFile("code", "code.zip")
	if err != nil {
		return fmt.Errorf("creating code part: %w", err)
	}
	if _, err := io.Copy(part, code); err != nil {
		return fmt.Errorf("writing code part: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("closing multipart form: %w", err)
	}

	req, err := c.api.NewRequest(ctx, http.MethodPost, appsPath(namespace), nil, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.api.Do(req)
	if err != nil {
		return fmt.Errorf("upserting application %s: %w", app.Name, err)
	}
	resp.Body.Close()
	return nil
}

// Delete removes an application.
func (c *Client) Delete(ctx context.Context, namespace, application string) error {
	if err := c.api.Delete(ctx, appsPath(namespace, application)); err != nil {
		return fmt.Errorf("deleting application %s: %w", application, err)
	}
	return nil
}

// Invoke starts a request against an application with input as its JSON
// body. The returned request id is empty when the server does not report
// one.
func (c *Client) Invoke(ctx context.Context, namespace, application string, input any) (string, error) {
	out := &InvokeResponse{}
	err := c.api.SendJSON(ctx, http.MethodPost, appsPath(namespace, application), nil, input, out)
	if err != nil && !errors.Is(err, cloud.ErrEmptyResponse) {
		return "", fmt.Errorf("invoking application %s: %w", application, err)
	}
	return out.RequestID, nil
}

// ListRequests returns one page of an application's requests.
func (c *Client) ListRequests(ctx context.Context, namespace, application string, opts ListOptions) (*ApplicationRequests, error) {
	out := &ApplicationRequests{}
	if err := c.api.GetJSON(ctx, appsPath(namespace, application, "requests"), opts.query(), out); err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	return out, nil
}

// GetRequest returns the full state of a request.
func (c *Client) GetRequest(ctx context.Context, namespace, application, requestID string) (*Request, error) {
	out := &Request{}
	if err := c.api.GetJSON(ctx, requestPath(namespace, application, requestID), nil, out); err != nil {
		return nil, fmt.Errorf("getting request %s: %w", requestID, err)
	}
	return out, nil
}

// DeleteRequest removes a request and its outputs.
func (c *Client) DeleteRequest(ctx context.Context, namespace, application, requestID string) error {
	if err := c.api.Delete(ctx, requestPath(namespace, application, requestID)); err != nil {
		return fmt.Errorf("deleting request %s: %w", requestID, err)
	}
	return nil
}

// DownloadRequestOutput returns the final output of a request.
func (c *Client) DownloadRequestOutput(ctx context.Context, namespace, application, requestID string) (*Output, error) {
	return c.download(ctx, requestPath(namespace, application, requestID, "output"))
}

// DownloadFunctionOutput returns the output of one function call of a
// request.
func (c *Client) DownloadFunctionOutput(ctx context.Context, namespace, application, requestID, functionCallID string) (*Output, error) {
	return c.download(ctx, requestPath(namespace, application, requestID, "output", functionCallID))
}

func (c *Client) download(ctx context.Context, path string) (*Output, error) {
	body, contentType, err := c.api.Raw(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("downloading output: %w", err)
	}
	return &Output{Content: body, ContentType: contentType}, nil
}

// CheckRequestOutput reports whether a request's output is available
// without downloading it.
func (c *Client) CheckRequestOutput(ctx context.Context, namespace, application, requestID string) (bool, error) {
	status, err := c.api.Head(ctx, requestPath(namespace, application, requestID, "output"))
	if err != nil {
		return false, fmt.Errorf("checking output of request %s: %w", requestID, err)
	}
	return status != http.StatusNoContent, nil
}

// ProgressUpdates returns the page of progress events after nextToken. An
// empty nextToken starts from the beginning.
func (c *Client) ProgressUpdates(ctx context.Context, namespace, application, requestID, nextToken string) (*ProgressUpdates, error) {
	q := url.Values{}
	if nextToken != "" {
		q.Set("next_token", nextToken)
	}

	out := &ProgressUpdates{}
	if err := c.api.GetJSON(ctx, requestPath(namespace, application, requestID, "progress"), q, out); err != nil {
		return nil, fmt.Errorf("getting progress of request %s: %w", requestID, err)
	}
	return out, nil
}

// StreamProgress opens the live progress feed of a request. The stream
// yields events until RequestFinished, after which the server closes it.
func (c *Client) StreamProgress(ctx context.Context, namespace, application, requestID string, opts ...sse.StreamOption) (*sse.Stream[RequestStateChangeEvent], error) {
	stream, err := cloud.OpenStream[RequestStateChangeEvent](ctx, c.api, requestPath(namespace, application, requestID, "progress"), nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("streaming progress of request %s: %w", requestID, err)
	}
	return stream, nil
}
