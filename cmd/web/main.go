package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/registry-sync/pkg/runtime"
	"github.com/de-tools/registry-sync/pkg/server"
	"github.com/de-tools/registry-sync/pkg/services/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the registry-sync web trigger",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the settings file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	settings, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	orchestrator, err := runtime.BuildOrchestrator(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to build orchestrator: %w", err)
	}

	addr := net.JoinHostPort(settings.Server.Host, settings.Server.Port)
	api := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		ShutdownTimeout: settings.ShutdownTimeout(),
		RunTimeout:      settings.RunTimeout(),
		Policy:          settings.RunPolicy(),
		Dependencies: server.Dependencies{
			Runner: orchestrator,
		},
	})

	return api.Start()
}
