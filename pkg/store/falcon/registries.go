package falcon

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/de-tools/registry-sync/pkg/models/api"
)

const (
	registryQueryPath    = "/container-security/queries/registries/v1"
	registryEntitiesPath = "/container-security/entities/registries/v1"
)

// QueryRegistryIDs returns one page of registration ids from the Container
// Security registry directory.
func (c *Client) QueryRegistryIDs(ctx context.Context, offset, limit int) (*api.QueryResponse, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var resp api.QueryResponse
	if err := c.get(ctx, registryQueryPath, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRegistries resolves registration ids into full records.
func (c *Client) GetRegistries(ctx context.Context, ids []string) (*api.RegistriesResponse, error) {
	q := url.Values{"ids": ids}

	var resp api.RegistriesResponse
	if err := c.get(ctx, registryEntitiesPath, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateRegistration registers a registry with Container Security.
func (c *Client) CreateRegistration(ctx context.Context, req api.CreateRegistryRequest) (*api.RegistryEntity, error) {
	var resp api.RegistriesResponse
	if err := c.post(ctx, registryEntitiesPath, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Resources) == 0 {
		return nil, fmt.Errorf("registration of %s returned no resource", req.URL)
	}
	return &resp.Resources[0], nil
}

// DeleteRegistration removes a registration by id.
func (c *Client) DeleteRegistration(ctx context.Context, id string) error {
	q := url.Values{"ids": []string{id}}
	return c.del(ctx, registryEntitiesPath, q)
}
