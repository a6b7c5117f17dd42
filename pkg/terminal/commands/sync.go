package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/de-tools/registry-sync/pkg/runtime"
	"github.com/de-tools/registry-sync/pkg/services/config"
	"github.com/de-tools/registry-sync/pkg/terminal/export"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type SyncCmd struct {
	configPath string
	dryRun     bool
	verbose    bool
	timeout    time.Duration
	reporter   *export.Reporter
}

func NewSyncCmd(reporter *export.Reporter) *cobra.Command {
	sc := &SyncCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile Container Security registrations with discovered ECR registries",
		RunE:  sc.run,
	}

	cmd.Flags().StringVarP(&sc.configPath, "config", "c", "", "Path to the settings file")
	cmd.Flags().BoolVar(&sc.dryRun, "dry-run", false, "Decide and report actions without applying them")
	cmd.Flags().BoolVarP(&sc.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().DurationVar(&sc.timeout, "timeout", 0, "Run deadline, overrides the configured run_timeout_seconds")

	return cmd
}

func (sc *SyncCmd) run(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(sc.configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	level := zerolog.InfoLevel
	if sc.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	timeout := settings.RunTimeout()
	if sc.timeout > 0 {
		timeout = sc.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	orchestrator, err := runtime.BuildOrchestrator(ctx, settings)
	if err != nil {
		return err
	}

	report, err := orchestrator.Run(ctx, settings.RunPolicy(), sc.dryRun)
	if err != nil {
		return fmt.Errorf("reconciliation run failed: %w", err)
	}
	return sc.reporter.Handle(report)
}
