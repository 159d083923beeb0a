// Package app implements the application layer for runbook.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/runbook/internal/core/ports"
	"go.trai.ch/runbook/internal/engine/runner"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader  ports.ConfigLoader
	executor      ports.Executor
	logger        ports.Logger
	store         ports.RunStore
	fingerprinter ports.Fingerprinter
	telemetry     ports.Telemetry
	outputs       ports.OutputLog
	stdout        io.Writer
	stderr        io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	log ports.Logger,
	store ports.RunStore,
	fingerprinter ports.Fingerprinter,
	telemetry ports.Telemetry,
	outputs ports.OutputLog,
) *App {
	return &App{
		configLoader:  loader,
		executor:      executor,
		logger:        log,
		store:         store,
		fingerprinter: fingerprinter,
		telemetry:     telemetry,
		outputs:       outputs,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
	}
}

// WithOutput redirects the output of executed steps.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// ConfigPath selects the target table. Empty means runbook.yaml or the built-in table.
	ConfigPath string
}

// TargetStatus pairs a target with its last recorded run.
type TargetStatus struct {
	Target domain.Target
	// Record is nil when the target has never run.
	Record *domain.RunRecord
	// Changed reports whether the definition differs from the one that produced Record.
	Changed bool
}

// Run executes the given targets one after another, stopping at the first failure.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	table, err := a.load(opts.ConfigPath, targetNames)
	if err != nil {
		return err
	}

	defer func() {
		if err := a.telemetry.Close(); err != nil {
			a.logger.Warn(fmt.Sprintf("could not close telemetry: %v", err))
		}
	}()

	r := runner.NewRunner(a.executor, a.store, a.fingerprinter, a.telemetry, a.logger).
		WithOutput(a.stdout, a.stderr)

	for _, name := range targetNames {
		if err := r.Run(ctx, table, name); err != nil {
			return errors.Join(domain.ErrRunExecutionFailed, err)
		}
		a.logger.Info(fmt.Sprintf("%s succeeded", name))
	}

	return nil
}

// Plan returns, for each requested target, the chain that Run would execute.
// Nothing is spawned.
func (a *App) Plan(targetNames []string, opts RunOptions) ([][]domain.Target, error) {
	if len(targetNames) == 0 {
		return nil, domain.ErrNoTargetsSpecified
	}

	table, err := a.load(opts.ConfigPath, targetNames)
	if err != nil {
		return nil, err
	}

	plans := make([][]domain.Target, 0, len(targetNames))
	for _, name := range targetNames {
		chain, err := table.Chain(name)
		if err != nil {
			return nil, err
		}
		plans = append(plans, chain)
	}
	return plans, nil
}

// List returns every target in declaration order.
func (a *App) List(opts RunOptions) ([]domain.Target, error) {
	table, err := a.load(opts.ConfigPath, nil)
	if err != nil {
		return nil, err
	}

	targets := make([]domain.Target, 0, table.Len())
	for t := range table.Targets() {
		targets = append(targets, t)
	}
	return targets, nil
}

// Status returns the last recorded outcome of every target in declaration order.
func (a *App) Status(opts RunOptions) ([]TargetStatus, error) {
	targets, err := a.List(opts)
	if err != nil {
		return nil, err
	}

	statuses := make([]TargetStatus, 0, len(targets))
	for i := range targets {
		rec, err := a.store.Get(targets[i].Name)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to read run history")
		}

		status := TargetStatus{Target: targets[i], Record: rec}
		if rec != nil {
			status.Changed = rec.Fingerprint != a.fingerprinter.Fingerprint(&targets[i])
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// Output returns the output captured during the last invocation of target.
func (a *App) Output(target string, opts RunOptions) ([]byte, error) {
	if _, err := a.load(opts.ConfigPath, []string{target}); err != nil {
		return nil, err
	}
	return a.outputs.Last(target)
}

// load reads the table and checks that every requested name exists,
// so that an unknown name fails before any process is spawned.
func (a *App) load(configPath string, targetNames []string) (*domain.Table, error) {
	table, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	for _, name := range targetNames {
		if _, ok := table.Lookup(name); !ok {
			return nil, errors.Join(
				domain.ErrUnknownTarget,
				zerr.With(zerr.New(fmt.Sprintf("no target named %q", name)), "target", name),
			)
		}
	}

	return table, nil
}
