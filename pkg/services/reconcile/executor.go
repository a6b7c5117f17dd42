package reconcile

import (
	"context"
	"fmt"

	"github.com/de-tools/registry-sync/pkg/models/api"
	"github.com/de-tools/registry-sync/pkg/models/domain"
	"github.com/de-tools/registry-sync/pkg/store/falcon"
	"github.com/rs/zerolog"
)

// Registrar is the mutating slice of the registry directory.
type Registrar interface {
	CreateRegistration(ctx context.Context, req api.CreateRegistryRequest) (*api.RegistryEntity, error)
	DeleteRegistration(ctx context.Context, id string) error
}

// Verifier checks a registry is reachable with the account's role before an
// ONBOARD is attempted.
type Verifier interface {
	VerifyRegistry(ctx context.Context, registry domain.DiscoveredRegistry, account domain.Account) error
}

type Executor struct {
	registrar Registrar
	verifier  Verifier // nil disables the preflight
}

type ExecutorOption func(*Executor)

func WithVerifier(v Verifier) ExecutorOption {
	return func(e *Executor) { e.verifier = v }
}

func NewExecutor(registrar Registrar, opts ...ExecutorOption) *Executor {
	e := &Executor{registrar: registrar}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply executes actions independently: one failure lands in report.Failed
// and the batch continues. Dry-run classifies every action identically but
// makes zero mutating calls.
func (e *Executor) Apply(ctx context.Context, actions []domain.Action, dryRun bool, report *domain.RunReport) {
	logger := zerolog.Ctx(ctx)

	for _, action := range actions {
		switch action.Kind {
		case domain.ActionKeep:
			report.Kept++
			if action.Registration != nil {
				report.AlreadyRegistered++
			}
			logger.Debug().
				Str("target", action.Target()).
				Str("reason", action.Reason).
				Msg("keeping registration")

		case domain.ActionOnboard:
			if err := e.onboard(ctx, action, dryRun); err != nil {
				logger.Warn().Err(err).Str("target", action.Target()).Msg("onboarding failed")
				report.RecordFailure(action.Target(), err)
				continue
			}
			report.Onboarded++
			logger.Info().
				Bool("dry_run", dryRun).
				Str("registry", action.Target()).
				Str("account_id", action.Registry.AccountID).
				Int("repositories", len(action.Registry.Repositories)).
				Msg("registry onboarded")

		case domain.ActionDelete:
			if err := e.delete(ctx, action, dryRun); err != nil {
				logger.Warn().Err(err).Str("target", action.Target()).Msg("deletion failed")
				report.RecordFailure(action.Target(), err)
				continue
			}
			report.Deleted++
			logger.Info().
				Bool("dry_run", dryRun).
				Str("registry", action.Target()).
				Str("reason", action.Reason).
				Msg("stale registration deleted")
		}
	}
}

func (e *Executor) onboard(ctx context.Context, action domain.Action, dryRun bool) error {
	registry := action.Registry
	account := action.Account
	if registry == nil || account == nil {
		return &domain.ApplyError{Target: action.Target(), Err: fmt.Errorf("onboard action missing registry or account")}
	}

	if dryRun {
		return nil
	}

	if e.verifier != nil {
		if err := e.verifier.VerifyRegistry(ctx, *registry, *account); err != nil {
			return &domain.ApplyError{Target: registry.URL, Err: fmt.Errorf("registry verification failed: %w", err)}
		}
	}

	req := api.CreateRegistryRequest{
		Type:             "ecr",
		URL:              registry.RegistrationURL(),
		UserDefinedAlias: registrationAlias(*account, registry.Region),
		Credential: api.RegistryCredential{
			Details: api.RegistryCredentialDetails{
				AWSIAMRole:    account.IAMRoleARN,
				AWSExternalID: account.ExternalID,
			},
		},
	}

	_, err := e.registrar.CreateRegistration(ctx, req)
	if err != nil {
		// The vendor rejecting a duplicate means the goal state already
		// holds; re-onboarding is success.
		if falcon.IsAlreadyExists(err) {
			return nil
		}
		return &domain.ApplyError{Target: registry.URL, Err: err}
	}
	return nil
}

func (e *Executor) delete(ctx context.Context, action domain.Action, dryRun bool) error {
	registration := action.Registration
	if registration == nil {
		return &domain.ApplyError{Target: action.Target(), Err: fmt.Errorf("delete action missing registration")}
	}

	if dryRun {
		return nil
	}

	if err := e.registrar.DeleteRegistration(ctx, registration.ID); err != nil {
		// Already gone is the state we wanted.
		if falcon.IsNotFound(err) {
			return nil
		}
		return &domain.ApplyError{Target: registration.URL, Err: err}
	}
	return nil
}

func registrationAlias(account domain.Account, region string) string {
	name := account.Name
	if name == "" {
		name = account.ID
	}
	return fmt.Sprintf("Auto-%s-%s", name, region)
}
