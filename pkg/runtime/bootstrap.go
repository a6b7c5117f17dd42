// Package runtime wires settings into a ready-to-run orchestrator. Both the
// CLI and the web trigger build their engine here.
package runtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/de-tools/registry-sync/pkg/services/auth"
	"github.com/de-tools/registry-sync/pkg/services/config"
	"github.com/de-tools/registry-sync/pkg/services/discovery"
	"github.com/de-tools/registry-sync/pkg/services/reconcile"
	"github.com/de-tools/registry-sync/pkg/services/registrations"
	"github.com/de-tools/registry-sync/pkg/services/secrets"
	"github.com/de-tools/registry-sync/pkg/services/verify"
	"github.com/de-tools/registry-sync/pkg/store/falcon"
)

// BuildOrchestrator assembles the full component chain: credential source →
// token provider → vendor client → explorers/fetcher → executor →
// orchestrator.
func BuildOrchestrator(ctx context.Context, settings *config.Settings) (*reconcile.Orchestrator, error) {
	source, err := credentialSource(ctx, settings)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewProvider(settings.BaseURL, source,
		auth.WithHTTPClient(&http.Client{Timeout: settings.HTTPTimeout()}))

	client, err := falcon.NewClient(falcon.Config{
		BaseURL:           settings.BaseURL,
		RequestTimeout:    settings.HTTPTimeout(),
		MaxRetries:        settings.HTTP.MaxRetries,
		RequestsPerSecond: settings.HTTP.RequestsPerSecond,
		Burst:             settings.HTTP.Burst,
	}, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to create vendor api client: %w", err)
	}

	var executorOpts []reconcile.ExecutorOption
	if settings.Policy.VerifyBeforeOnboard {
		verifier, err := verify.NewECRVerifier(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create registry verifier: %w", err)
		}
		executorOpts = append(executorOpts, reconcile.WithVerifier(verifier))
	}

	return reconcile.NewOrchestrator(reconcile.Dependencies{
		Accounts:      discovery.NewAccountExplorer(client, settings.Discovery.PageSize),
		Registries:    discovery.NewRegistryExplorer(client, settings.Discovery.PageSize, settings.Discovery.BatchSize),
		Registrations: registrations.NewFetcher(client, settings.Discovery.PageSize, settings.Discovery.BatchSize),
		Executor:      reconcile.NewExecutor(client, executorOpts...),
	}, reconcile.WithWorkers(settings.Discovery.Workers)), nil
}

func credentialSource(ctx context.Context, settings *config.Settings) (auth.CredentialSource, error) {
	if settings.Auth.SecretARN != "" {
		source, err := secrets.NewManagerSource(ctx, settings.Auth.SecretARN)
		if err != nil {
			return nil, fmt.Errorf("failed to create secrets manager source: %w", err)
		}
		return source, nil
	}
	return secrets.StaticSource{
		ClientID:     settings.Auth.ClientID,
		ClientSecret: settings.Auth.ClientSecret,
	}, nil
}
