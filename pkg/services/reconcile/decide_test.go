package reconcile

import (
	"testing"
	"time"

	"github.com/de-tools/registry-sync/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decideNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func knownAccount(id string) domain.Account {
	return domain.Account{
		ID:         id,
		Name:       "acct-" + id,
		IAMRoleARN: "arn:aws:iam::" + id + ":role/ContainerSecurity",
		ExternalID: "ext-" + id,
	}
}

func discoveredIn(id, region string) domain.DiscoveredRegistry {
	return domain.DiscoveredRegistry{
		URL:          domain.ECRRegistryURL(id, region),
		AccountID:    id,
		Region:       region,
		Repositories: []string{"app"},
	}
}

func offlineFor(days int) *time.Time {
	t := decideNow.Add(-time.Duration(days) * 24 * time.Hour)
	return &t
}

func kinds(actions []domain.Action) []domain.ActionKind {
	out := make([]domain.ActionKind, len(actions))
	for i, a := range actions {
		out[i] = a.Kind
	}
	return out
}

// Scenario: a known account has a discovered registry with no registration.
func TestDecide_OnboardsUnregisteredRegistry(t *testing.T) {
	account := knownAccount("111111111111")
	snap := Snapshot{
		Now:        decideNow,
		Accounts:   domain.NewAccountSet([]domain.Account{account}),
		Discovered: []domain.DiscoveredRegistry{discoveredIn("111111111111", "us-west-2")},
	}

	actions := Decide(snap, domain.DefaultPolicy())

	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionOnboard, actions[0].Kind)
	assert.Equal(t, "111111111111.dkr.ecr.us-west-2.amazonaws.com", actions[0].Registry.URL)
	require.NotNil(t, actions[0].Account)
	assert.Equal(t, account.IAMRoleARN, actions[0].Account.IAMRoleARN)
	assert.Equal(t, account.ExternalID, actions[0].Account.ExternalID)
}

// Scenario: a registration whose account has no CSPM linkage is manual and
// must never be touched, no matter how stale it looks.
func TestDecide_ManualRegistrationNeverDeleted(t *testing.T) {
	snap := Snapshot{
		Now:      decideNow,
		Accounts: domain.NewAccountSet([]domain.Account{knownAccount("111111111111")}),
		Existing: []domain.Registration{{
			ID:           "reg-1",
			URL:          "999999999999.dkr.ecr.us-east-1.amazonaws.com",
			AccountID:    "999999999999",
			State:        domain.RegistrationStateOffline,
			LastActivity: offlineFor(365),
		}},
	}

	actions := Decide(snap, domain.DefaultPolicy())

	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionKeep, actions[0].Kind)
	assert.Contains(t, actions[0].Reason, "manual")
}

// Scenario: offline 10 days with a 7-day threshold and cleanup enabled.
func TestDecide_DeletesStaleOfflineRegistration(t *testing.T) {
	snap := Snapshot{
		Now:      decideNow,
		Accounts: domain.NewAccountSet([]domain.Account{knownAccount("111111111111")}),
		Existing: []domain.Registration{{
			ID:           "reg-1",
			URL:          "111111111111.dkr.ecr.us-west-2.amazonaws.com",
			AccountID:    "111111111111",
			State:        domain.RegistrationStateOffline,
			LastActivity: offlineFor(10),
		}},
	}

	actions := Decide(snap, domain.DefaultPolicy())

	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionDelete, actions[0].Kind)
	assert.Equal(t, "reg-1", actions[0].Registration.ID)
}

func TestDecide_OfflineUnderThresholdIsKept(t *testing.T) {
	snap := Snapshot{
		Now:      decideNow,
		Accounts: domain.NewAccountSet([]domain.Account{knownAccount("111111111111")}),
		Existing: []domain.Registration{{
			ID:           "reg-1",
			URL:          "111111111111.dkr.ecr.us-west-2.amazonaws.com",
			AccountID:    "111111111111",
			State:        domain.RegistrationStateOffline,
			LastActivity: offlineFor(3),
		}},
	}

	actions := Decide(snap, domain.DefaultPolicy())

	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionKeep, actions[0].Kind)
}

func TestDecide_CleanupDisabledSuppressesDelete(t *testing.T) {
	policy := domain.DefaultPolicy()
	policy.CleanupEnabled = false

	snap := Snapshot{
		Now:      decideNow,
		Accounts: domain.NewAccountSet([]domain.Account{knownAccount("111111111111")}),
		Existing: []domain.Registration{{
			ID:           "reg-1",
			URL:          "111111111111.dkr.ecr.us-west-2.amazonaws.com",
			AccountID:    "111111111111",
			State:        domain.RegistrationStateOffline,
			LastActivity: offlineFor(30),
		}},
	}

	actions := Decide(snap, policy)

	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionKeep, actions[0].Kind)
}

// Offline with no parseable last activity defaults to keep.
func TestDecide_OfflineWithoutLastActivityIsKept(t *testing.T) {
	snap := Snapshot{
		Now:      decideNow,
		Accounts: domain.NewAccountSet([]domain.Account{knownAccount("111111111111")}),
		Existing: []domain.Registration{{
			ID:        "reg-1",
			URL:       "111111111111.dkr.ecr.us-west-2.amazonaws.com",
			AccountID: "111111111111",
			State:     domain.RegistrationStateOffline,
		}},
	}

	actions := Decide(snap, domain.DefaultPolicy())

	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionKeep, actions[0].Kind)
	assert.Contains(t, actions[0].Reason, "last activity unknown")
}

// A failed registry discovery for an account must suppress DELETE for that
// account: absence of evidence is not evidence of removal.
func TestDecide_DiscoveryFailureSuppressesDelete(t *testing.T) {
	snap := Snapshot{
		Now:      decideNow,
		Accounts: domain.NewAccountSet([]domain.Account{knownAccount("222222222222")}),
		Existing: []domain.Registration{{
			ID:           "reg-1",
			URL:          "222222222222.dkr.ecr.us-west-2.amazonaws.com",
			AccountID:    "222222222222",
			State:        domain.RegistrationStateOffline,
			LastActivity: offlineFor(30),
		}},
		FailedAccounts: map[string]string{"222222222222": "asset index unavailable"},
	}

	actions := Decide(snap, domain.DefaultPolicy())

	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionKeep, actions[0].Kind)
	assert.Contains(t, actions[0].Reason, "cleanup suppressed")
}

func TestDecide_DiscoveredAndRegisteredIsKept(t *testing.T) {
	snap := Snapshot{
		Now:        decideNow,
		Accounts:   domain.NewAccountSet([]domain.Account{knownAccount("111111111111")}),
		Discovered: []domain.DiscoveredRegistry{discoveredIn("111111111111", "us-west-2")},
		Existing: []domain.Registration{{
			ID:        "reg-1",
			URL:       "111111111111.dkr.ecr.us-west-2.amazonaws.com",
			AccountID: "111111111111",
			State:     domain.RegistrationStateActive,
		}},
	}

	actions := Decide(snap, domain.DefaultPolicy())

	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionKeep, actions[0].Kind)
	assert.NotNil(t, actions[0].Registration)
}

func TestDecide_ActionOrderingOnboardThenDeleteThenKeep(t *testing.T) {
	accounts := domain.NewAccountSet([]domain.Account{
		knownAccount("111111111111"),
		knownAccount("222222222222"),
		knownAccount("333333333333"),
	})
	snap := Snapshot{
		Now:        decideNow,
		Accounts:   accounts,
		Discovered: []domain.DiscoveredRegistry{discoveredIn("333333333333", "us-west-2")},
		Existing: []domain.Registration{
			{
				ID:           "reg-stale",
				URL:          "222222222222.dkr.ecr.us-west-2.amazonaws.com",
				AccountID:    "222222222222",
				State:        domain.RegistrationStateOffline,
				LastActivity: offlineFor(14),
			},
			{
				ID:        "reg-healthy",
				URL:       "111111111111.dkr.ecr.us-west-2.amazonaws.com",
				AccountID: "111111111111",
				State:     domain.RegistrationStateActive,
			},
		},
	}

	actions := Decide(snap, domain.DefaultPolicy())

	assert.Equal(t,
		[]domain.ActionKind{domain.ActionOnboard, domain.ActionDelete, domain.ActionKeep},
		kinds(actions))
}

// Decide is pure: identical snapshots give identical action lists.
func TestDecide_Deterministic(t *testing.T) {
	snap := Snapshot{
		Now: decideNow,
		Accounts: domain.NewAccountSet([]domain.Account{
			knownAccount("111111111111"),
			knownAccount("222222222222"),
		}),
		Discovered: []domain.DiscoveredRegistry{
			discoveredIn("222222222222", "eu-west-1"),
			discoveredIn("111111111111", "us-west-2"),
			discoveredIn("111111111111", "us-east-1"),
		},
		Existing: []domain.Registration{
			{
				ID:           "reg-b",
				URL:          "222222222222.dkr.ecr.us-east-2.amazonaws.com",
				AccountID:    "222222222222",
				State:        domain.RegistrationStateOffline,
				LastActivity: offlineFor(20),
			},
			{ID: "reg-a", URL: "registry.example.com", State: domain.RegistrationStateActive},
		},
	}

	first := Decide(snap, domain.DefaultPolicy())
	second := Decide(snap, domain.DefaultPolicy())
	assert.Equal(t, first, second)
}

// Two directory entries for the same URL: only the most recently updated one
// is eligible for deletion, the other is kept as superseded.
func TestDecide_DuplicateRegistrationsResolveToOnePrimary(t *testing.T) {
	older := decideNow.Add(-48 * time.Hour)
	newer := decideNow.Add(-1 * time.Hour)

	snap := Snapshot{
		Now:      decideNow,
		Accounts: domain.NewAccountSet([]domain.Account{knownAccount("111111111111")}),
		Existing: []domain.Registration{
			{
				ID:        "reg-old",
				URL:       "111111111111.dkr.ecr.us-west-2.amazonaws.com",
				AccountID: "111111111111",
				State:     domain.RegistrationStateActive,
				UpdatedAt: older,
			},
			{
				ID:           "reg-new",
				URL:          "111111111111.dkr.ecr.us-west-2.amazonaws.com",
				AccountID:    "111111111111",
				State:        domain.RegistrationStateOffline,
				LastActivity: offlineFor(10),
				UpdatedAt:    newer,
			},
		},
	}

	actions := Decide(snap, domain.DefaultPolicy())

	require.Len(t, actions, 2)
	assert.Equal(t, domain.ActionDelete, actions[0].Kind)
	assert.Equal(t, "reg-new", actions[0].Registration.ID)
	assert.Equal(t, domain.ActionKeep, actions[1].Kind)
	assert.Equal(t, "reg-old", actions[1].Registration.ID)
}
