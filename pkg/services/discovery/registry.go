package discovery

import (
	"context"
	"fmt"
	"sort"

	"github.com/de-tools/registry-sync/pkg/models/api"
	"github.com/de-tools/registry-sync/pkg/models/domain"
	"github.com/rs/zerolog"
)

const (
	defaultBatchSize   = 100
	ecrResourceType    = "AWS::ECR::Repository"
	assetFilterPattern = `resource_type:"%s"+cloud_provider:"aws"+account_id:"%s"`
)

type assetsAPI interface {
	QueryResourceIDs(ctx context.Context, filter string, offset, limit int) (*api.QueryResponse, error)
	GetResources(ctx context.Context, ids []string) (*api.AssetsResponse, error)
}

type RegistryExplorer interface {
	// ListRegistries returns the registries present in one account. An error
	// means discovery failed for this account and must suppress cleanup for
	// it; an empty slice means the account genuinely has no registries.
	ListRegistries(ctx context.Context, account domain.Account) ([]domain.DiscoveredRegistry, error)
}

type registryExplorer struct {
	client    assetsAPI
	pageSize  int
	batchSize int
}

func NewRegistryExplorer(client assetsAPI, pageSize, batchSize int) RegistryExplorer {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &registryExplorer{client: client, pageSize: pageSize, batchSize: batchSize}
}

func (e *registryExplorer) ListRegistries(ctx context.Context, account domain.Account) ([]domain.DiscoveredRegistry, error) {
	logger := zerolog.Ctx(ctx).With().Str("account_id", account.ID).Logger()

	ids, err := e.queryRepositoryIDs(ctx, account)
	if err != nil {
		return nil, &domain.DiscoveryError{Scope: "registries/" + account.ID, Err: err}
	}
	if len(ids) == 0 {
		logger.Info().Msg("no ECR repositories in asset inventory")
		return nil, nil
	}

	resources, err := e.resolveResources(ctx, ids)
	if err != nil {
		return nil, &domain.DiscoveryError{Scope: "registries/" + account.ID, Err: err}
	}

	registries := groupRegistries(account.ID, resources)
	logger.Info().
		Int("repositories", len(resources)).
		Int("registries", len(registries)).
		Msg("ECR repositories grouped into registries")
	return registries, nil
}

func (e *registryExplorer) queryRepositoryIDs(ctx context.Context, account domain.Account) ([]string, error) {
	filter := fmt.Sprintf(assetFilterPattern, ecrResourceType, account.ID)

	var ids []string
	for offset := 0; ; {
		resp, err := e.client.QueryResourceIDs(ctx, filter, offset, e.pageSize)
		if err != nil {
			return nil, err
		}
		ids = append(ids, resp.Resources...)
		offset += len(resp.Resources)
		if len(resp.Resources) == 0 || exhausted(resp.Meta, offset) {
			break
		}
	}
	return ids, nil
}

func (e *registryExplorer) resolveResources(ctx context.Context, ids []string) ([]api.AssetResource, error) {
	var resources []api.AssetResource
	for start := 0; start < len(ids); start += e.batchSize {
		end := min(start+e.batchSize, len(ids))
		resp, err := e.client.GetResources(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		resources = append(resources, resp.Resources...)
	}
	return resources, nil
}

// groupRegistries collapses repository records into one DiscoveredRegistry
// per registry host. Repositories reported under other accounts are dropped:
// credentials must never cross account boundaries.
func groupRegistries(accountID string, resources []api.AssetResource) []domain.DiscoveredRegistry {
	byURL := map[string]*domain.DiscoveredRegistry{}
	for _, res := range resources {
		if res.AccountID != accountID || res.Region == "" {
			continue
		}
		url := domain.ECRRegistryURL(res.AccountID, res.Region)
		reg, ok := byURL[url]
		if !ok {
			reg = &domain.DiscoveredRegistry{
				URL:       url,
				AccountID: res.AccountID,
				Region:    res.Region,
			}
			byURL[url] = reg
		}
		if res.ResourceID != "" {
			reg.Repositories = append(reg.Repositories, res.ResourceID)
		}
	}

	registries := make([]domain.DiscoveredRegistry, 0, len(byURL))
	for _, reg := range byURL {
		sort.Strings(reg.Repositories)
		registries = append(registries, *reg)
	}
	sort.Slice(registries, func(i, j int) bool { return registries[i].URL < registries[j].URL })
	return registries
}
