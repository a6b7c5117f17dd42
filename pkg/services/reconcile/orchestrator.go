package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/registry-sync/pkg/models/domain"
	"github.com/de-tools/registry-sync/pkg/services/discovery"
	"github.com/de-tools/registry-sync/pkg/services/registrations"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Stage string

const (
	StageInit               Stage = "INIT"
	StageDiscoverAccounts   Stage = "DISCOVER_ACCOUNTS"
	StageDiscoverRegistries Stage = "DISCOVER_REGISTRIES"
	StageFetchExisting      Stage = "FETCH_EXISTING"
	StageDecide             Stage = "DECIDE"
	StageExecute            Stage = "EXECUTE"
	StageDone               Stage = "DONE"
	StageFailed             Stage = "FAILED"
)

const defaultWorkers = 4

// Applier is what the orchestrator needs from the executor.
type Applier interface {
	Apply(ctx context.Context, actions []domain.Action, dryRun bool, report *domain.RunReport)
}

type Dependencies struct {
	Accounts      discovery.AccountExplorer
	Registries    discovery.RegistryExplorer
	Registrations registrations.Fetcher
	Executor      Applier
}

// Orchestrator sequences one reconciliation run. Stages run in order and are
// never re-entered; only a total failure to list accounts is fatal, every
// other failure is scoped into the report.
type Orchestrator struct {
	deps    Dependencies
	workers int
	now     func() time.Time
}

type OrchestratorOption func(*Orchestrator)

// WithWorkers bounds the per-account discovery fan-out.
func WithWorkers(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(deps Dependencies, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{deps: deps, workers: defaultWorkers, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one reconciliation and always returns a report unless
// authentication or account listing failed. The caller bounds the run with
// the context deadline; accounts still in flight when it fires are reported
// as discovery failures, which suppresses cleanup for them.
func (o *Orchestrator) Run(ctx context.Context, policy domain.Policy, dryRun bool) (*domain.RunReport, error) {
	report := &domain.RunReport{
		SessionID:         uuid.NewString(),
		StartedAt:         o.now(),
		DryRun:            dryRun,
		DiscoveryFailures: map[string]string{},
	}

	logger := zerolog.Ctx(ctx).With().
		Str("session_id", report.SessionID).
		Bool("dry_run", dryRun).
		Logger()
	ctx = logger.WithContext(ctx)

	logger.Info().
		Bool("cleanup_enabled", policy.CleanupEnabled).
		Dur("offline_threshold", policy.OfflineThreshold).
		Msg("reconciliation run started")

	accounts, err := o.discoverAccounts(ctx)
	if err != nil {
		logger.Error().Err(err).Str("stage", string(StageFailed)).Msg("account discovery failed, run aborted")
		return nil, err
	}

	discovered, failedAccounts := o.discoverRegistries(ctx, accounts)
	report.Discovered = len(discovered)
	for id, reason := range failedAccounts {
		report.DiscoveryFailures[id] = reason
		report.RecordFailure(id, fmt.Errorf("registry discovery failed: %s", reason))
	}

	existing := o.fetchExisting(ctx, report)

	stageStart := o.now()
	snapshot := Snapshot{
		Now:            o.now(),
		Accounts:       domain.NewAccountSet(accounts),
		Discovered:     discovered,
		Existing:       existing,
		FailedAccounts: failedAccounts,
	}
	actions := Decide(snapshot, policy)
	logger.Info().
		Str("stage", string(StageDecide)).
		Int("actions", len(actions)).
		Dur("took", o.now().Sub(stageStart)).
		Msg("actions decided")

	stageStart = o.now()
	o.deps.Executor.Apply(ctx, actions, dryRun, report)
	logger.Info().
		Str("stage", string(StageExecute)).
		Int("onboarded", report.Onboarded).
		Int("deleted", report.Deleted).
		Int("kept", report.Kept).
		Int("failed", len(report.Failed)).
		Dur("took", o.now().Sub(stageStart)).
		Msg("actions applied")

	report.FinishedAt = o.now()
	logger.Info().
		Str("stage", string(StageDone)).
		Dur("duration", report.Duration()).
		Msg("reconciliation run finished")
	return report, nil
}

func (o *Orchestrator) discoverAccounts(ctx context.Context) ([]domain.Account, error) {
	logger := zerolog.Ctx(ctx)
	start := o.now()

	accounts, err := o.deps.Accounts.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("stage", string(StageDiscoverAccounts)).
		Int("accounts", len(accounts)).
		Dur("took", o.now().Sub(start)).
		Msg("accounts discovered")
	return accounts, nil
}

// discoverRegistries fans registry discovery out over the accounts with a
// bounded worker pool. Accounts share no state; only the per-account result
// association matters. Failures are isolated per account.
func (o *Orchestrator) discoverRegistries(ctx context.Context, accounts []domain.Account) ([]domain.DiscoveredRegistry, map[string]string) {
	logger := zerolog.Ctx(ctx)
	start := o.now()

	var (
		mu       sync.Mutex
		combined []domain.DiscoveredRegistry
		failed   = map[string]string{}
	)

	var g errgroup.Group
	g.SetLimit(o.workers)
	for _, account := range accounts {
		g.Go(func() error {
			registries, err := o.deps.Registries.ListRegistries(ctx, account)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[account.ID] = err.Error()
				return nil
			}
			combined = append(combined, registries...)
			return nil
		})
	}
	_ = g.Wait()

	logger.Info().
		Str("stage", string(StageDiscoverRegistries)).
		Int("registries", len(combined)).
		Int("failed_accounts", len(failed)).
		Dur("took", o.now().Sub(start)).
		Msg("registries discovered")
	return combined, failed
}

// fetchExisting is scoped, not fatal: without the directory listing no
// DELETE can be decided anyway, and onboarding stays safe because the
// executor treats "already exists" as success.
func (o *Orchestrator) fetchExisting(ctx context.Context, report *domain.RunReport) []domain.Registration {
	logger := zerolog.Ctx(ctx)
	start := o.now()

	existing, err := o.deps.Registrations.ListRegistrations(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("stage", string(StageFetchExisting)).Msg("failed to list existing registrations")
		report.RecordFailure("registrations", err)
		return nil
	}

	logger.Info().
		Str("stage", string(StageFetchExisting)).
		Int("registrations", len(existing)).
		Dur("took", o.now().Sub(start)).
		Msg("existing registrations fetched")
	return existing
}
