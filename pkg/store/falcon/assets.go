package falcon

import (
	"context"
	"net/url"
	"strconv"

	"github.com/de-tools/registry-sync/pkg/models/api"
)

const (
	assetQueryPath    = "/cloud-security-assets/queries/resources/v1"
	assetEntitiesPath = "/cloud-security-assets/entities/resources/v1"
)

// QueryResourceIDs returns one page of asset ids matching an FQL filter.
func (c *Client) QueryResourceIDs(ctx context.Context, filter string, offset, limit int) (*api.QueryResponse, error) {
	q := url.Values{}
	q.Set("filter", filter)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var resp api.QueryResponse
	if err := c.get(ctx, assetQueryPath, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetResources resolves asset ids into full resource records.
func (c *Client) GetResources(ctx context.Context, ids []string) (*api.AssetsResponse, error) {
	q := url.Values{"ids": ids}

	var resp api.AssetsResponse
	if err := c.get(ctx, assetEntitiesPath, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
