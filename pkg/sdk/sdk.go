// Package sdk bundles the cloud resource clients behind one entry point.
package sdk

import (
	"github.com/papercomputeco/cloudctl/pkg/cloud"
	"github.com/papercomputeco/cloudctl/pkg/cloud/applications"
	"github.com/papercomputeco/cloudctl/pkg/cloud/images"
	"github.com/papercomputeco/cloudctl/pkg/cloud/secrets"
)

// SDK holds a client per resource, all sharing one transport.
type SDK struct {
	API          *cloud.Client
	Applications *applications.Client
	Images       *images.Client
	Secrets      *secrets.Client
}

// New creates an SDK for the API rooted at baseURL.
func New(baseURL string, opts ...cloud.Option) (*SDK, error) {
	api, err := cloud.New(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &SDK{
		API:          api,
		Applications: applications.NewClient(api),
		Images:       images.NewClient(api),
		Secrets:      secrets.NewClient(api),
	}, nil
}
