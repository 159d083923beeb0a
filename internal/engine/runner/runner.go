// Package runner implements the sequential target execution engine.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/runbook/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner resolves a target to its prerequisite chain and executes the steps in order.
type Runner struct {
	executor      ports.Executor
	store         ports.RunStore
	fingerprinter ports.Fingerprinter
	telemetry     ports.Telemetry
	logger        ports.Logger

	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	mu     sync.RWMutex
	states map[string]domain.TargetState
}

// NewRunner creates a new Runner writing step output to the process's stdout and stderr.
func NewRunner(
	executor ports.Executor,
	store ports.RunStore,
	fingerprinter ports.Fingerprinter,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Runner {
	return &Runner{
		executor:      executor,
		store:         store,
		fingerprinter: fingerprinter,
		telemetry:     telemetry,
		logger:        logger,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		now:           time.Now,
		states:        make(map[string]domain.TargetState),
	}
}

// WithOutput redirects the output of spawned steps.
func (r *Runner) WithOutput(stdout, stderr io.Writer) *Runner {
	r.stdout = stdout
	r.stderr = stderr
	return r
}

// outcome captures why a target invocation ended.
type outcome struct {
	status     domain.ExitStatus
	failedStep int
}

// Catalog resolves target names to definitions. *domain.Table implements it.
type Catalog interface {
	Lookup(name string) (domain.Target, bool)
	Len() int
}

// Run executes the named target after its prerequisite chain.
// It returns nil only if every step of the chain exited successfully.
func (r *Runner) Run(ctx context.Context, table Catalog, name string) error {
	r.resetStates()
	return r.runTarget(ctx, table, name, 0)
}

func (r *Runner) runTarget(ctx context.Context, table Catalog, name string, depth int) error {
	target, ok := table.Lookup(name)
	if !ok {
		return errors.Join(
			domain.ErrUnknownTarget,
			zerr.With(zerr.New(fmt.Sprintf("no target named %q", name)), "target", name),
		)
	}

	// NewTable rejects cycles; the walk still refuses to revisit a target.
	if r.inProgress(name) || depth > table.Len() {
		return errors.Join(
			domain.ErrCycleDetected,
			zerr.With(zerr.New(fmt.Sprintf("target %q is already being resolved", name)), "target", name),
		)
	}
	r.setState(name, domain.TargetStatePending)

	ctx, vertex := r.telemetry.Record(ctx, name)
	started := r.now()

	var out outcome
	err := r.execute(ctx, table, &target, depth, vertex, &out)
	if err != nil {
		r.setState(name, domain.TargetStateFailed)
	} else {
		r.setState(name, domain.TargetStateSucceeded)
	}

	vertex.Complete(err)
	r.record(&target, started, out)
	return err
}

func (r *Runner) execute(
	ctx context.Context,
	table Catalog,
	target *domain.Target,
	depth int,
	vertex ports.Vertex,
	out *outcome,
) error {
	if target.HasPrerequisite() {
		r.setState(target.Name, domain.TargetStateResolvingPrerequisite)
		if err := r.runTarget(ctx, table, target.Prerequisite, depth+1); err != nil {
			return errors.Join(
				domain.ErrPrerequisiteFailed,
				zerr.With(
					zerr.With(
						zerr.Wrap(err, fmt.Sprintf("target %q not started", target.Name)),
						"target", target.Name,
					),
					"prerequisite", target.Prerequisite,
				),
			)
		}
	}

	r.setState(target.Name, domain.TargetStateRunningSteps)
	total := len(target.Steps)
	for i := range target.Steps {
		step := &target.Steps[i]
		r.logger.Step(target.Name, i+1, total, step.CommandLine())
		vertex.Log(domain.LogLevelInfo, step.CommandLine())

		status, err := r.executor.Execute(ctx, step, r.stdout, r.stderr)
		if err == nil && !status.Success() {
			err = zerr.New("command did not exit cleanly")
		}
		if err != nil {
			out.status = status
			out.failedStep = i + 1
			return stepError(target.Name, i+1, total, step, status, err)
		}
	}

	return nil
}

func stepError(target string, index, total int, step *domain.Step, status domain.ExitStatus, cause error) error {
	how := fmt.Sprintf("exited with code %d", status.Code)
	switch {
	case status.NotStarted:
		how = "could not be started"
	case status.Signal != "":
		how = "was terminated by signal " + status.Signal
	}
	msg := fmt.Sprintf("target %q step %d/%d (%s) %s", target, index, total, step.CommandLine(), how)

	err := zerr.With(zerr.Wrap(cause, msg), "target", target)
	err = zerr.With(err, "step", index)
	err = zerr.With(err, "command", step.CommandLine())
	if !status.NotStarted {
		err = zerr.With(err, "exit_code", status.Code)
	}
	if status.Signal != "" {
		err = zerr.With(err, "signal", status.Signal)
	}
	return errors.Join(domain.ErrStepFailed, err)
}

// record persists the terminal outcome. Store failures never change the run result.
func (r *Runner) record(target *domain.Target, started time.Time, out outcome) {
	rec := domain.RunRecord{
		Target:      target.Name,
		Fingerprint: r.fingerprinter.Fingerprint(target),
		State:       r.getState(target.Name),
		ExitCode:    out.status.Code,
		Signal:      out.status.Signal,
		NotStarted:  out.status.NotStarted,
		FailedStep:  out.failedStep,
		StartedAt:   started,
		Duration:    r.now().Sub(started),
	}
	if err := r.store.Put(rec); err != nil {
		r.logger.Warn(fmt.Sprintf("could not record run of %q: %v", target.Name, err))
	}
}

func (r *Runner) resetStates() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = make(map[string]domain.TargetState)
}

func (r *Runner) setState(name string, state domain.TargetState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[name] = state
}

func (r *Runner) getState(name string) domain.TargetState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[name]
}

// inProgress reports whether name has entered the current invocation and not yet finished.
func (r *Runner) inProgress(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, seen := r.states[name]
	return seen && !state.IsTerminal()
}
