package domain

import "time"

type RegistrationState string

const (
	RegistrationStateActive  RegistrationState = "active"
	RegistrationStateOffline RegistrationState = "offline"
	RegistrationStateUnknown RegistrationState = "unknown"
)

// Registration is a registry record already present in Container Security.
type Registration struct {
	ID  string
	URL string // canonical, see CanonicalRegistryURL
	// AccountID is derived from the registry URL; "" when the URL does not
	// follow the ECR host pattern. Whether the registration is
	// engine-managed is decided against the CSPM account set, not here.
	AccountID    string
	State        RegistrationState
	LastActivity *time.Time
	UpdatedAt    time.Time
}
