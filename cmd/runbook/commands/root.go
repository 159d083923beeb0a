// Package commands implements the CLI commands for runbook.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/runbook/internal/app"
	"go.trai.ch/runbook/internal/build"
	"go.trai.ch/runbook/internal/core/domain"
)

// CLI represents the command line interface for runbook.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	configPath string
	jsonLogs   bool
	setJSON    func(bool)
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, targetNames []string, opts app.RunOptions) error
	Plan(targetNames []string, opts app.RunOptions) ([][]domain.Target, error)
	List(opts app.RunOptions) ([]domain.Target, error)
	Status(opts app.RunOptions) ([]app.TargetStatus, error)
	Output(target string, opts app.RunOptions) ([]byte, error)
}

// Option configures the CLI.
type Option func(*CLI)

// WithJSONSwitch registers the callback invoked when --json is given.
func WithJSONSwitch(fn func(bool)) Option {
	return func(c *CLI) {
		c.setJSON = fn
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "runbook",
		Short:         "Run named sequences of commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "",
		"Path to the target table (default: "+domain.ConfigFileName+", or the built-in targets)")
	rootCmd.PersistentFlags().BoolVar(&c.jsonLogs, "json", false, "Emit logs as JSON")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if c.jsonLogs && c.setJSON != nil {
			c.setJSON(true)
		}
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newLogsCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func (c *CLI) runOptions() app.RunOptions {
	return app.RunOptions{ConfigPath: c.configPath}
}
