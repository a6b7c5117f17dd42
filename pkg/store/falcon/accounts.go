package falcon

import (
	"context"
	"net/url"
	"strconv"

	"github.com/de-tools/registry-sync/pkg/models/api"
)

const accountsPath = "/cloud-security-registration-aws/entities/account/v1"

// ListCloudAccounts returns one page of the CSPM account inventory.
func (c *Client) ListCloudAccounts(ctx context.Context, offset, limit int) (*api.CloudAccountsResponse, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var resp api.CloudAccountsResponse
	if err := c.get(ctx, accountsPath, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
