package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/registry-sync/pkg/models/domain"
)

type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (r *Reporter) Handle(report *domain.RunReport) error {
	tmpl := `
Reconciliation Run {{.SessionID}}{{if .DryRun}} (DRY RUN){{end}}

Started:  {{.StartedAt.Format "2006-01-02 15:04:05 MST"}}
Finished: {{.FinishedAt.Format "2006-01-02 15:04:05 MST"}} ({{.Duration.Round 1000000}})

Discovered registries:  {{.Discovered}}
Onboarded:              {{.Onboarded}}
Already registered:     {{.AlreadyRegistered}}
Deleted:                {{.Deleted}}
Kept:                   {{.Kept}}
{{if .DiscoveryFailures}}
Accounts with failed discovery (cleanup suppressed):
{{range $id, $reason := .DiscoveryFailures}}  {{$id}}: {{$reason}}
{{end}}{{end}}{{if .Failed}}
Failures:
{{range .Failed}}  {{.Target}}: {{.Error}}
{{end}}{{end}}`

	t, err := template.New("report").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}
	return t.Execute(r.writer, report)
}
