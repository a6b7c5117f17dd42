package adapters

import (
	"github.com/de-tools/registry-sync/pkg/models/api"
	"github.com/de-tools/registry-sync/pkg/models/domain"
)

func MapRunReportDomainToApi(r *domain.RunReport) api.RunReport {
	res := api.RunReport{
		SessionID:         r.SessionID,
		StartedAt:         r.StartedAt,
		FinishedAt:        r.FinishedAt,
		DurationSeconds:   r.Duration().Seconds(),
		DryRun:            r.DryRun,
		Discovered:        r.Discovered,
		Onboarded:         r.Onboarded,
		AlreadyRegistered: r.AlreadyRegistered,
		Deleted:           r.Deleted,
		Kept:              r.Kept,
	}
	for _, f := range r.Failed {
		res.Failed = append(res.Failed, api.ActionFailure{Target: f.Target, Error: f.Error})
	}
	if len(r.DiscoveryFailures) > 0 {
		res.DiscoveryFailures = map[string]string{}
		for k, v := range r.DiscoveryFailures {
			res.DiscoveryFailures[k] = v
		}
	}
	return res
}
