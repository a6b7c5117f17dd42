package domain

import "time"

// ActionFailure records one scoped failure without aborting the run.
type ActionFailure struct {
	Target string
	Error  string
}

// RunReport is the sole externally visible artifact of a run.
type RunReport struct {
	SessionID  string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool

	Discovered        int
	Onboarded         int
	AlreadyRegistered int
	Deleted           int
	Kept              int

	Failed []ActionFailure
	// DiscoveryFailures maps account id to the reason registry discovery
	// failed for it. DELETE is suppressed for these accounts.
	DiscoveryFailures map[string]string
}

func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *RunReport) RecordFailure(target string, err error) {
	r.Failed = append(r.Failed, ActionFailure{Target: target, Error: err.Error()})
}
