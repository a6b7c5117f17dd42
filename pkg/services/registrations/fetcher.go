// Package registrations lists what Container Security already knows about.
package registrations

import (
	"context"

	"github.com/de-tools/registry-sync/pkg/adapters"
	"github.com/de-tools/registry-sync/pkg/models/api"
	"github.com/de-tools/registry-sync/pkg/models/domain"
	"github.com/rs/zerolog"
)

const (
	defaultPageSize  = 500
	defaultBatchSize = 100
	ecrRegistryType  = "ecr"
)

type registriesAPI interface {
	QueryRegistryIDs(ctx context.Context, offset, limit int) (*api.QueryResponse, error)
	GetRegistries(ctx context.Context, ids []string) (*api.RegistriesResponse, error)
}

type Fetcher interface {
	// ListRegistrations returns every ECR registration in the registry
	// directory with state and last-activity captured verbatim.
	ListRegistrations(ctx context.Context) ([]domain.Registration, error)
}

type fetcher struct {
	client    registriesAPI
	pageSize  int
	batchSize int
}

func NewFetcher(client registriesAPI, pageSize, batchSize int) Fetcher {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &fetcher{client: client, pageSize: pageSize, batchSize: batchSize}
}

func (f *fetcher) ListRegistrations(ctx context.Context) ([]domain.Registration, error) {
	logger := zerolog.Ctx(ctx)

	var ids []string
	for offset := 0; ; {
		resp, err := f.client.QueryRegistryIDs(ctx, offset, f.pageSize)
		if err != nil {
			return nil, &domain.DiscoveryError{Scope: "registrations", Err: err}
		}
		ids = append(ids, resp.Resources...)
		offset += len(resp.Resources)
		if len(resp.Resources) == 0 || done(resp.Meta, offset) {
			break
		}
	}
	if len(ids) == 0 {
		logger.Info().Msg("no existing registrations")
		return nil, nil
	}

	var registrations []domain.Registration
	for start := 0; start < len(ids); start += f.batchSize {
		end := min(start+f.batchSize, len(ids))
		resp, err := f.client.GetRegistries(ctx, ids[start:end])
		if err != nil {
			return nil, &domain.DiscoveryError{Scope: "registrations", Err: err}
		}
		for _, entity := range resp.Resources {
			if entity.Type != ecrRegistryType || entity.URL == "" {
				continue
			}
			registrations = append(registrations, adapters.MapRegistryEntityApiToDomain(entity))
		}
	}

	logger.Info().Int("registrations", len(registrations)).Msg("existing ECR registrations listed")
	return registrations, nil
}

func done(meta api.Meta, seen int) bool {
	return meta.Pagination == nil || seen >= meta.Pagination.Total
}
