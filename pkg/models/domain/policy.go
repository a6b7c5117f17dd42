package domain

import "time"

// Policy controls the cleanup half of reconciliation.
type Policy struct {
	CleanupEnabled bool
	// OfflineThreshold is how long a registration may stay offline before it
	// becomes a cleanup candidate.
	OfflineThreshold time.Duration
	// VerifyBeforeOnboard gates the pre-registration ECR reachability check.
	VerifyBeforeOnboard bool
}

func DefaultPolicy() Policy {
	return Policy{
		CleanupEnabled:   true,
		OfflineThreshold: 7 * 24 * time.Hour,
	}
}
