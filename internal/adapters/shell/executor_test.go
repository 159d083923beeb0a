package shell_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/runbook/internal/adapters/shell"
	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/runbook/internal/core/ports"
	"go.trai.ch/runbook/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestExecutor_Execute_StreamsOutput(t *testing.T) {
	executor := shell.NewExecutor()

	step := &domain.Step{
		Command:    []string{"sh", "-c", "echo line1; echo line2 >&2"},
		WorkingDir: t.TempDir(),
	}

	var stdout, stderr bytes.Buffer
	status, err := executor.Execute(context.Background(), step, &stdout, &stderr)
	require.NoError(t, err)
	assert.True(t, status.Success())
	assert.Equal(t, "line1\n", stdout.String())
	assert.Equal(t, "line2\n", stderr.String())
}

func TestExecutor_Execute_EnvironmentOverride(t *testing.T) {
	executor := shell.NewExecutor()

	step := &domain.Step{
		Command:     []string{"sh", "-c", "echo $RUST_BACKTRACE"},
		Environment: map[string]string{"RUST_BACKTRACE": "1"},
	}

	var stdout bytes.Buffer
	_, err := executor.Execute(context.Background(), step, &stdout, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "1\n", stdout.String())
}

func TestExecutor_Execute_OverrideWinsOverInherited(t *testing.T) {
	t.Setenv("RUNBOOK_TEST_VAR", "parent")
	executor := shell.NewExecutor()

	step := &domain.Step{
		Command:     []string{"sh", "-c", "echo $RUNBOOK_TEST_VAR"},
		Environment: map[string]string{"RUNBOOK_TEST_VAR": "child"},
	}

	var stdout bytes.Buffer
	_, err := executor.Execute(context.Background(), step, &stdout, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "child\n", stdout.String())
	assert.Equal(t, "parent", os.Getenv("RUNBOOK_TEST_VAR"))
}

func TestExecutor_Execute_OverrideDoesNotLeak(t *testing.T) {
	require.NoError(t, os.Unsetenv("RUNBOOK_SCOPED_VAR"))
	executor := shell.NewExecutor()

	scoped := &domain.Step{
		Command:     []string{"sh", "-c", "echo ${RUNBOOK_SCOPED_VAR:-unset}"},
		Environment: map[string]string{"RUNBOOK_SCOPED_VAR": "1"},
	}
	plain := &domain.Step{
		Command: []string{"sh", "-c", "echo ${RUNBOOK_SCOPED_VAR:-unset}"},
	}

	var first, second bytes.Buffer
	_, err := executor.Execute(context.Background(), scoped, &first, io.Discard)
	require.NoError(t, err)
	_, err = executor.Execute(context.Background(), plain, &second, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "1\n", first.String())
	assert.Equal(t, "unset\n", second.String())
	_, present := os.LookupEnv("RUNBOOK_SCOPED_VAR")
	assert.False(t, present)
}

func TestExecutor_Execute_InheritsParentEnvironment(t *testing.T) {
	t.Setenv("RUNBOOK_INHERITED", "from-parent")
	executor := shell.NewExecutor()

	step := &domain.Step{Command: []string{"sh", "-c", "echo $RUNBOOK_INHERITED"}}

	var stdout bytes.Buffer
	_, err := executor.Execute(context.Background(), step, &stdout, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "from-parent\n", stdout.String())
}

func TestExecutor_Execute_ExitCode(t *testing.T) {
	executor := shell.NewExecutor()

	step := &domain.Step{Command: []string{"sh", "-c", "exit 42"}}

	status, err := executor.Execute(context.Background(), step, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command failed")
	assert.Equal(t, 42, status.Code)
	assert.Empty(t, status.Signal)
	assert.False(t, status.Success())
}

func TestExecutor_Execute_Signal(t *testing.T) {
	executor := shell.NewExecutor()

	step := &domain.Step{Command: []string{"sh", "-c", "kill -TERM $$"}}

	status, err := executor.Execute(context.Background(), step, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Equal(t, -1, status.Code)
	assert.Equal(t, "terminated", status.Signal)
	assert.False(t, status.NotStarted)
}

func TestExecutor_Execute_ContextCancelKillsStep(t *testing.T) {
	executor := shell.NewExecutor()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	step := &domain.Step{Command: []string{"sleep", "10"}}

	started := time.Now()
	status, err := executor.Execute(ctx, step, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Less(t, time.Since(started), 5*time.Second)
	assert.Equal(t, "killed", status.Signal)
}

func TestExecutor_Execute_InvalidCommand(t *testing.T) {
	executor := shell.NewExecutor()

	step := &domain.Step{Command: []string{"nonexistent-command-xyz123"}}

	status, err := executor.Execute(context.Background(), step, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be started")
	assert.Equal(t, -1, status.Code)
	assert.True(t, status.NotStarted)
	assert.False(t, status.Success())
}

func TestExecutor_Execute_EmptyCommand(t *testing.T) {
	executor := shell.NewExecutor()

	_, err := executor.Execute(context.Background(), &domain.Step{}, io.Discard, io.Discard)
	require.ErrorIs(t, err, domain.ErrEmptyCommand)
}

func TestExecutor_Execute_WorkingDir(t *testing.T) {
	executor := shell.NewExecutor()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), []byte("ok"), 0o600))

	step := &domain.Step{
		Command:    []string{"cat", "marker"},
		WorkingDir: dir,
	}

	var stdout bytes.Buffer
	_, err := executor.Execute(context.Background(), step, &stdout, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "ok", stdout.String())
}

func TestExecutor_Execute_RelativeExecutable(t *testing.T) {
	executor := shell.NewExecutor()
	dir := t.TempDir()
	bin := filepath.Join(dir, "target", "release")
	require.NoError(t, os.MkdirAll(bin, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "detector"), []byte("#!/bin/sh\necho detected\n"), 0o700)) //nolint:gosec // test script

	step := &domain.Step{
		Command:    []string{"./target/release/detector"},
		WorkingDir: dir,
	}

	var stdout bytes.Buffer
	_, err := executor.Execute(context.Background(), step, &stdout, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "detected\n", stdout.String())
}

func TestExecutor_Execute_TeesIntoVertex(t *testing.T) {
	ctrl := gomock.NewController(t)

	var vertexOut, vertexErr bytes.Buffer
	vertex := mocks.NewMockVertex(ctrl)
	vertex.EXPECT().Stdout().Return(&vertexOut)
	vertex.EXPECT().Stderr().Return(&vertexErr)

	executor := shell.NewExecutor()
	ctx := ports.ContextWithVertex(context.Background(), vertex)

	step := &domain.Step{Command: []string{"sh", "-c", "echo out; echo err >&2"}}

	var stdout, stderr bytes.Buffer
	_, err := executor.Execute(ctx, step, &stdout, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "out\n", vertexOut.String())
	assert.True(t, strings.Contains(vertexErr.String(), "err"))
}
