// Package reconcile turns inventory snapshots into onboard/delete/keep
// actions and applies them. Decide is a pure function over typed inputs; all
// I/O lives in the executor and orchestrator around it.
package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/de-tools/registry-sync/pkg/models/domain"
)

// Snapshot is everything Decide looks at. It is assembled once per run from
// live API responses and never persisted.
type Snapshot struct {
	Now        time.Time
	Accounts   domain.AccountSet
	Discovered []domain.DiscoveredRegistry
	Existing   []domain.Registration
	// FailedAccounts holds the accounts whose registry discovery failed this
	// run. A failed discovery must never read as "registry removed", so
	// DELETE is suppressed for them.
	FailedAccounts map[string]string
}

// Decide evaluates the reconciliation decision table per registry URL.
// Deterministic and free of side effects: identical snapshots yield
// identical action lists. Actions come out ONBOARD first, then DELETE, then
// KEEP, so partial onboarding progress survives a cleanup failure.
func Decide(snap Snapshot, policy domain.Policy) []domain.Action {
	existingByURL := indexExisting(snap.Existing)

	var onboards, deletes, keeps []domain.Action

	discoveredURLs := map[string]bool{}
	for i := range snap.Discovered {
		reg := snap.Discovered[i]
		discoveredURLs[reg.URL] = true

		account, known := snap.Accounts[reg.AccountID]
		if !known {
			keeps = append(keeps, domain.Action{
				Kind:     domain.ActionKeep,
				Registry: &reg,
				Reason:   "account not in CSPM inventory",
			})
			continue
		}
		if _, registered := existingByURL[reg.URL]; registered {
			continue // counted below when the existing side is walked
		}
		onboards = append(onboards, domain.Action{
			Kind:     domain.ActionOnboard,
			Registry: &reg,
			Account:  &account,
			Reason:   "registry present in account but not registered",
		})
	}

	for i := range snap.Existing {
		reg := snap.Existing[i]

		if primary := existingByURL[reg.URL]; primary.ID != reg.ID {
			keeps = append(keeps, domain.Action{
				Kind:         domain.ActionKeep,
				Registration: &reg,
				Reason:       "duplicate registration for URL, superseded by " + primary.ID,
			})
			continue
		}

		account, known := snap.Accounts[reg.AccountID]
		if !known {
			keeps = append(keeps, domain.Action{
				Kind:         domain.ActionKeep,
				Registration: &reg,
				Reason:       "manual registration, no CSPM linkage",
			})
			continue
		}

		if reason, failed := snap.FailedAccounts[reg.AccountID]; failed {
			keeps = append(keeps, domain.Action{
				Kind:         domain.ActionKeep,
				Registration: &reg,
				Account:      &account,
				Reason:       "registry discovery failed for account, cleanup suppressed: " + reason,
			})
			continue
		}

		if stale, age := staleOffline(reg, snap.Now, policy); stale {
			deletes = append(deletes, domain.Action{
				Kind:         domain.ActionDelete,
				Registration: &reg,
				Account:      &account,
				Reason:       fmt.Sprintf("offline for %s, over threshold %s", age, policy.OfflineThreshold),
			})
			continue
		}

		keeps = append(keeps, domain.Action{
			Kind:         domain.ActionKeep,
			Registration: &reg,
			Account:      &account,
			Reason:       keepReason(reg, discoveredURLs[reg.URL]),
		})
	}

	sortActions(onboards)
	sortActions(deletes)
	sortActions(keeps)

	actions := make([]domain.Action, 0, len(onboards)+len(deletes)+len(keeps))
	actions = append(actions, onboards...)
	actions = append(actions, deletes...)
	actions = append(actions, keeps...)
	return actions
}

// indexExisting picks one authoritative registration per canonical URL: the
// most recently updated, with id as a stable tie-break.
func indexExisting(existing []domain.Registration) map[string]domain.Registration {
	byURL := make(map[string]domain.Registration, len(existing))
	for _, reg := range existing {
		current, ok := byURL[reg.URL]
		if !ok || reg.UpdatedAt.After(current.UpdatedAt) ||
			(reg.UpdatedAt.Equal(current.UpdatedAt) && reg.ID < current.ID) {
			byURL[reg.URL] = reg
		}
	}
	return byURL
}

// staleOffline is the only path to DELETE: cleanup enabled, state offline,
// and a parseable last activity older than the threshold. Everything
// ambiguous defaults to keep.
func staleOffline(reg domain.Registration, now time.Time, policy domain.Policy) (bool, time.Duration) {
	if !policy.CleanupEnabled || reg.State != domain.RegistrationStateOffline || reg.LastActivity == nil {
		return false, 0
	}
	age := now.Sub(*reg.LastActivity)
	return age >= policy.OfflineThreshold, age.Round(time.Hour)
}

func keepReason(reg domain.Registration, discovered bool) string {
	switch {
	case reg.State == domain.RegistrationStateOffline && reg.LastActivity == nil:
		return "offline but last activity unknown, defaulting to keep"
	case reg.State == domain.RegistrationStateOffline:
		return "offline but under threshold"
	case discovered:
		return "registration healthy"
	default:
		return "registration active"
	}
}

func sortActions(actions []domain.Action) {
	sort.Slice(actions, func(i, j int) bool { return actions[i].Target() < actions[j].Target() })
}
