// Package terminal is the cobra CLI around the reconciliation engine.
package terminal

import (
	"io"
	"os"

	"github.com/de-tools/registry-sync/pkg/terminal/commands"
	"github.com/de-tools/registry-sync/pkg/terminal/export"
	"github.com/spf13/cobra"
)

type CLI struct {
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry-sync",
		Short: "Keep Container Security registry registrations in sync with the cloud estate",
	}

	cmd.AddCommand(commands.NewSyncCmd(cli.reporter))

	return cmd
}
