// Package shell provides the shell executor adapter.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/runbook/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	environ func() []string
}

// NewExecutor creates a new Executor inheriting the environment of the current process.
func NewExecutor() *Executor {
	return &Executor{
		environ: os.Environ,
	}
}

// Execute runs the step's command and waits for it to exit.
// The child environment is the parent environment overlaid with step.Environment;
// the parent process environment itself is left untouched.
func (e *Executor) Execute(
	ctx context.Context,
	step *domain.Step,
	stdout, stderr io.Writer,
) (domain.ExitStatus, error) {
	if len(step.Command) == 0 {
		return domain.ExitStatus{Code: -1, NotStarted: true}, domain.ErrEmptyCommand
	}

	name := step.Command[0]
	args := step.Command[1:]

	cmdEnv := resolveEnvironment(e.environ(), step.Environment)

	// Resolve against the child's PATH, which may differ from ours.
	executable := name
	if !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // user provided command

	// exec.CommandContext sets Args[0] to the resolved path.
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}

	if step.WorkingDir != "" {
		cmd.Dir = step.WorkingDir
	}

	cmd.Env = cmdEnv
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if vertex, ok := ports.VertexFromContext(ctx); ok {
		cmd.Stdout = io.MultiWriter(stdout, vertex.Stdout())
		cmd.Stderr = io.MultiWriter(stderr, vertex.Stderr())
	}

	if err := cmd.Run(); err != nil {
		status := exitStatus(err)
		if status.NotStarted {
			return status, zerr.With(zerr.Wrap(err, "command could not be started"), "command", name)
		}
		wrapped := zerr.With(zerr.Wrap(err, "command failed"), "exit_code", status.Code)
		if status.Signal != "" {
			wrapped = zerr.With(wrapped, "signal", status.Signal)
		}
		return status, wrapped
	}

	return domain.ExitStatus{}, nil
}

// exitStatus extracts the exit code and terminating signal from a failed run.
func exitStatus(err error) domain.ExitStatus {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return domain.ExitStatus{Code: -1, NotStarted: true}
	}

	status := domain.ExitStatus{Code: exitErr.ExitCode()}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		status.Signal = ws.Signal().String()
	}
	return status
}

// resolveEnvironment overlays the step overrides on the inherited environment.
// Overrides win. The result is sorted for reproducible child environments.
func resolveEnvironment(sysEnv []string, stepEnv map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(stepEnv))
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			envMap[k] = v
		}
	}

	for k, v := range stepEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "PATH="); ok {
			path = after
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
