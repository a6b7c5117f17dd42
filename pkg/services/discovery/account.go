// Package discovery enumerates what actually exists: the cloud accounts
// known to CSPM and the ECR registries inside each of them.
package discovery

import (
	"context"
	"time"

	"github.com/de-tools/registry-sync/pkg/adapters"
	"github.com/de-tools/registry-sync/pkg/models/api"
	"github.com/de-tools/registry-sync/pkg/models/domain"
	"github.com/rs/zerolog"
)

const defaultPageSize = 500

type accountsAPI interface {
	ListCloudAccounts(ctx context.Context, offset, limit int) (*api.CloudAccountsResponse, error)
}

type AccountExplorer interface {
	// ListAccounts returns the complete CSPM account inventory or an error;
	// a partial list would make the decision engine misclassify
	// registrations as manual, so partial pages are never returned.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

type accountExplorer struct {
	client   accountsAPI
	pageSize int
	now      func() time.Time
}

func NewAccountExplorer(client accountsAPI, pageSize int) AccountExplorer {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &accountExplorer{client: client, pageSize: pageSize, now: time.Now}
}

func (e *accountExplorer) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	logger := zerolog.Ctx(ctx)
	discoveredAt := e.now()

	var accounts []domain.Account
	for offset := 0; ; {
		resp, err := e.client.ListCloudAccounts(ctx, offset, e.pageSize)
		if err != nil {
			return nil, &domain.DiscoveryError{Scope: "accounts", Err: err}
		}

		for _, record := range resp.Resources {
			account, ok := adapters.MapCloudAccountApiToDomain(record, discoveredAt)
			if !ok {
				logger.Warn().
					Str("account_id", record.AccountID).
					Msg("account missing role ARN or external id in CSPM registration, skipping")
				continue
			}
			accounts = append(accounts, account)
		}

		offset += len(resp.Resources)
		if len(resp.Resources) == 0 || exhausted(resp.Meta, offset) {
			break
		}
	}

	logger.Info().Int("accounts", len(accounts)).Msg("CSPM account inventory listed")
	return accounts, nil
}

func exhausted(meta api.Meta, seen int) bool {
	return meta.Pagination == nil || seen >= meta.Pagination.Total
}
