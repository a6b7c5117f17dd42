package run

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/de-tools/registry-sync/pkg/adapters"
	"github.com/de-tools/registry-sync/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Runner is the engine surface the handler triggers.
type Runner interface {
	Run(ctx context.Context, policy domain.Policy, dryRun bool) (*domain.RunReport, error)
}

type Handler struct {
	runner Runner
	policy domain.Policy
}

func NewHandler(runner Runner, policy domain.Policy) *Handler {
	return &Handler{runner: runner, policy: policy}
}

// TriggerRun executes one reconciliation and returns the report. A fatal
// failure (auth, account listing) yields 500 with the error; everything else
// lands inside the report.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	dryRun := r.URL.Query().Get("dry_run") == "true"

	report, err := h.runner.Run(ctx, h.policy, dryRun)
	if err != nil {
		logger.Error().Err(err).Msg("reconciliation run failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(adapters.MapRunReportDomainToApi(report)); err != nil {
		logger.Error().Err(err).Msg("failed to encode run report")
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
