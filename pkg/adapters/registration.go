package adapters

import (
	"time"

	"github.com/de-tools/registry-sync/pkg/models/api"
	"github.com/de-tools/registry-sync/pkg/models/domain"
)

func MapRegistryEntityApiToDomain(e api.RegistryEntity) domain.Registration {
	reg := domain.Registration{
		ID:        e.ID,
		URL:       domain.CanonicalRegistryURL(e.URL),
		State:     mapRegistrationState(e.State),
		AccountID: domain.AccountIDFromRegistryURL(e.URL),
	}
	if t, ok := parseVendorTime(e.LastActivity); ok {
		reg.LastActivity = &t
	}
	if t, ok := parseVendorTime(e.UpdatedAt); ok {
		reg.UpdatedAt = t
	}
	return reg
}

func mapRegistrationState(s string) domain.RegistrationState {
	switch s {
	case "active", "online":
		return domain.RegistrationStateActive
	case "offline":
		return domain.RegistrationStateOffline
	default:
		return domain.RegistrationStateUnknown
	}
}

func parseVendorTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
