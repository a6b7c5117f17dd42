package api

import "time"

type ActionFailure struct {
	Target string `json:"target"`
	Error  string `json:"error"`
}

type RunReport struct {
	SessionID         string            `json:"session_id"`
	StartedAt         time.Time         `json:"started_at"`
	FinishedAt        time.Time         `json:"finished_at"`
	DurationSeconds   float64           `json:"duration_seconds"`
	DryRun            bool              `json:"dry_run"`
	Discovered        int               `json:"discovered"`
	Onboarded         int               `json:"onboarded"`
	AlreadyRegistered int               `json:"already_registered"`
	Deleted           int               `json:"deleted"`
	Kept              int               `json:"kept"`
	Failed            []ActionFailure   `json:"failed,omitempty"`
	DiscoveryFailures map[string]string `json:"discovery_failures,omitempty"`
}
