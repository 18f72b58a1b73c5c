// Package secrets is the client for project scoped secrets.
package secrets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/papercomputeco/cloudctl/pkg/cloud"
)

// ErrNoSecrets is returned by Upsert when called without secrets.
var ErrNoSecrets = errors.New("no secrets to upsert")

// Client calls the secrets API.
type Client struct {
	api *cloud.Client
}

// NewClient returns a Client sending requests through api.
func NewClient(api *cloud.Client) *Client {
	return &Client{api: api}
}

func secretsPath(org, project string, rest ...string) string {
	return cloud.Path(append([]string{"platform", "v1", "organizations", org, "projects", project, "secrets"}, rest...)...)
}

// List returns one page of the secrets in a project.
func (c *Client) List(ctx context.Context, org, project string, opts ListOptions) (*SecretsList, error) {
	q := url.Values{}
	if opts.Next != "" {
		q.Set("next", opts.Next)
	}
	if opts.Prev != "" {
		q.Set("prev", opts.Prev)
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}

	out := &SecretsList{}
	if err := c.api.GetJSON(ctx, secretsPath(org, project), q, out); err != nil {
		return nil, fmt.Errorf("listing secrets: %w", err)
	}
	return out, nil
}

// Upsert creates or replaces secrets by name. A single secret is sent as
// an object, several as an array.
func (c *Client) Upsert(ctx context.Context, org, project string, items ...UpsertSecret) ([]Secret, error) {
	var in any
	switch len(items) {
	case 0:
		return nil, ErrNoSecrets
	case 1:
		in = items[0]
	default:
		in = items
	}

	var raw json.RawMessage
	if err := c.api.SendJSON(ctx, http.MethodPut, secretsPath(org, project), nil, in, &raw); err != nil {
		return nil, fmt.Errorf("upserting secrets: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var out []Secret
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decoding upserted secrets: %w", err)
		}
		return out, nil
	}

	var one Secret
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("decoding upserted secret: %w", err)
	}
	return []Secret{one}, nil
}

// Get returns a secret's metadata by id.
func (c *Client) Get(ctx context.Context, org, project, secretID string) (*Secret, error) {
	out := &Secret{}
	if err := c.api.GetJSON(ctx, secretsPath(org, project, secretID), nil, out); err != nil {
		return nil, fmt.Errorf("getting secret %s: %w", secretID, err)
	}
	return out, nil
}

// Delete removes a secret by id.
func (c *Client) Delete(ctx context.Context, org, project, secretID string) error {
	if err := c.api.Delete(ctx, secretsPath(org, project, secretID)); err != nil {
		return fmt.Errorf("deleting secret %s: %w", secretID, err)
	}
	return nil
}

// FindByName pages through the project's secrets and returns the one named
// name, or an error matching cloud.ErrNotFound.
func (c *Client) FindByName(ctx context.Context, org, project, name string) (*Secret, error) {
	opts := ListOptions{PageSize: 100}
	for {
		page, err := c.List(ctx, org, project, opts)
		if err != nil {
			return nil, err
		}
		for i := range page.Items {
			if page.Items[i].Name == name {
				return &page.Items[i], nil
			}
		}
		if page.Pagination.Next == "" || page.Pagination.Next == opts.Next {
			return nil, fmt.Errorf("secret %q: %w", name, cloud.ErrNotFound)
		}
		opts.Next = page.Pagination.Next
	}
}
