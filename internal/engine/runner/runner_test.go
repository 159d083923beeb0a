package runner_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/runbook/internal/core/ports"
	"go.trai.ch/runbook/internal/core/ports/mocks"
	"go.trai.ch/runbook/internal/engine/runner"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type harness struct {
	exec    *mocks.MockExecutor
	store   *mocks.MockRunStore
	logger  *mocks.MockLogger
	records []domain.RunRecord
	runner  *runner.Runner
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		exec:   mocks.NewMockExecutor(ctrl),
		store:  mocks.NewMockRunStore(ctrl),
		logger: mocks.NewMockLogger(ctrl),
	}

	fingerprinter := mocks.NewMockFingerprinter(ctrl)
	fingerprinter.EXPECT().Fingerprint(gomock.Any()).DoAndReturn(func(target *domain.Target) string {
		return "fp-" + target.Name
	}).AnyTimes()

	vertex := mocks.NewMockVertex(ctrl)
	vertex.EXPECT().Log(gomock.Any(), gomock.Any()).AnyTimes()
	vertex.EXPECT().Complete(gomock.Any()).AnyTimes()

	telemetry := mocks.NewMockTelemetry(ctrl)
	telemetry.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ctx, vertex
		}).AnyTimes()

	h.store.EXPECT().Put(gomock.Any()).DoAndReturn(func(rec domain.RunRecord) error {
		h.records = append(h.records, rec)
		return nil
	}).AnyTimes()
	h.logger.EXPECT().Step(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h.runner = runner.NewRunner(h.exec, h.store, fingerprinter, telemetry, h.logger).
		WithOutput(&bytes.Buffer{}, &bytes.Buffer{}).
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		})
	return h
}

func step(env map[string]string, args ...string) domain.Step {
	return domain.Step{Command: args, Environment: env}
}

func detectorTable(t *testing.T) *domain.Table {
	t.Helper()
	table, err := domain.NewTable(
		domain.Target{
			Name: "build",
			Steps: []domain.Step{
				step(nil, "cargo", "build", "--release"),
			},
		},
		domain.Target{
			Name:         "release",
			Prerequisite: "build",
			Steps: []domain.Step{
				step(nil, "./target/release/detector"),
			},
		},
		domain.Target{
			Name: "btrace",
			Steps: []domain.Step{
				step(nil, "cargo", "build", "--release"),
				step(map[string]string{"RUST_BACKTRACE": "1"}, "./target/release/detector"),
			},
		},
		domain.Target{
			Name: "writeup",
			Steps: []domain.Step{
				step(nil, "pandoc", "writeup.md", "-o", "writeup.pdf"),
			},
		},
	)
	require.NoError(t, err)
	return table
}

func commandIs(line string) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		s, ok := x.(*domain.Step)
		return ok && s.CommandLine() == line
	})
}

func TestRunner_Run_UnknownTarget(t *testing.T) {
	h := newHarness(t)
	// No Execute expectation: any spawned process fails the test.

	err := h.runner.Run(context.Background(), detectorTable(t), "deploy")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownTarget)
	assert.Contains(t, err.Error(), "deploy")
	assert.Empty(t, h.records)
}

func TestRunner_Run_StepsInOrder(t *testing.T) {
	h := newHarness(t)

	gomock.InOrder(
		h.exec.EXPECT().Execute(gomock.Any(), commandIs("cargo build --release"), gomock.Any(), gomock.Any()).
			Return(domain.ExitStatus{}, nil),
		h.exec.EXPECT().Execute(gomock.Any(), commandIs("./target/release/detector"), gomock.Any(), gomock.Any()).
			Return(domain.ExitStatus{}, nil),
	)

	err := h.runner.Run(context.Background(), detectorTable(t), "btrace")

	require.NoError(t, err)
	assert.Equal(t, map[string]domain.TargetState{
		"btrace": domain.TargetStateSucceeded,
	}, h.runner.GetTargetStates())
}

func TestRunner_Run_PrerequisiteRunsFirst(t *testing.T) {
	h := newHarness(t)

	gomock.InOrder(
		h.exec.EXPECT().Execute(gomock.Any(), commandIs("cargo build --release"), gomock.Any(), gomock.Any()).
			Return(domain.ExitStatus{}, nil),
		h.exec.EXPECT().Execute(gomock.Any(), commandIs("./target/release/detector"), gomock.Any(), gomock.Any()).
			Return(domain.ExitStatus{}, nil),
	)

	err := h.runner.Run(context.Background(), detectorTable(t), "release")

	require.NoError(t, err)
	states := h.runner.GetTargetStates()
	assert.Equal(t, domain.TargetStateSucceeded, states["build"])
	assert.Equal(t, domain.TargetStateSucceeded, states["release"])

	require.Len(t, h.records, 2)
	assert.Equal(t, "build", h.records[0].Target)
	assert.Equal(t, "release", h.records[1].Target)
	assert.Equal(t, "fp-release", h.records[1].Fingerprint)
	assert.Equal(t, time.Second, h.records[0].Duration)
	assert.Equal(t, 3*time.Second, h.records[1].Duration, "includes the prerequisite")
}

func TestRunner_Run_StepFailureStopsTarget(t *testing.T) {
	h := newHarness(t)

	h.exec.EXPECT().Execute(gomock.Any(), commandIs("cargo build --release"), gomock.Any(), gomock.Any()).
		Return(domain.ExitStatus{Code: 101}, zerr.New("exit status 101"))
	// The run step must not be spawned after the build step fails.

	err := h.runner.Run(context.Background(), detectorTable(t), "btrace")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStepFailed)
	assert.NotErrorIs(t, err, domain.ErrPrerequisiteFailed)
	assert.Contains(t, err.Error(), `target "btrace" step 1/2 (cargo build --release) exited with code 101`)

	assert.Equal(t, domain.TargetStateFailed, h.runner.GetTargetStates()["btrace"])
	require.Len(t, h.records, 1)
	assert.Equal(t, domain.TargetStateFailed, h.records[0].State)
	assert.Equal(t, 101, h.records[0].ExitCode)
	assert.Equal(t, 1, h.records[0].FailedStep)
}

func TestRunner_Run_NonZeroStatusWithoutError(t *testing.T) {
	h := newHarness(t)

	h.exec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ExitStatus{Code: 3}, nil)

	err := h.runner.Run(context.Background(), detectorTable(t), "writeup")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStepFailed)
	assert.Contains(t, err.Error(), "exited with code 3")
}

func TestRunner_Run_SignalReported(t *testing.T) {
	h := newHarness(t)

	h.exec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ExitStatus{Code: -1, Signal: "killed"}, zerr.New("signal: killed"))

	err := h.runner.Run(context.Background(), detectorTable(t), "writeup")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStepFailed)
	assert.Contains(t, err.Error(), "terminated by signal killed")
	require.Len(t, h.records, 1)
	assert.Equal(t, "killed", h.records[0].Signal)
}

func TestRunner_Run_StepNotStarted(t *testing.T) {
	h := newHarness(t)

	h.exec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ExitStatus{Code: -1, NotStarted: true}, zerr.New("executable file not found in $PATH"))

	err := h.runner.Run(context.Background(), detectorTable(t), "writeup")

	require.ErrorIs(t, err, domain.ErrStepFailed)
	assert.Contains(t, err.Error(), `step 1/1 (pandoc writeup.md -o writeup.pdf) could not be started`)
	assert.NotContains(t, err.Error(), "exited with code")
	require.Len(t, h.records, 1)
	assert.True(t, h.records[0].NotStarted)
	assert.Equal(t, 1, h.records[0].FailedStep)
}

// loopCatalog resolves names from a plain map, so it can hold chains NewTable would reject.
type loopCatalog map[string]domain.Target

func (c loopCatalog) Lookup(name string) (domain.Target, bool) {
	target, ok := c[name]
	return target, ok
}

func (c loopCatalog) Len() int { return len(c) }

func TestRunner_Run_CircularChainFails(t *testing.T) {
	h := newHarness(t)
	// No Execute expectation: nothing may be spawned.

	catalog := loopCatalog{
		"a": {Name: "a", Prerequisite: "b", Steps: []domain.Step{step(nil, "echo", "a")}},
		"b": {Name: "b", Prerequisite: "a", Steps: []domain.Step{step(nil, "echo", "b")}},
	}

	err := h.runner.Run(context.Background(), catalog, "a")

	require.ErrorIs(t, err, domain.ErrCycleDetected)
	assert.ErrorIs(t, err, domain.ErrPrerequisiteFailed)
	assert.Contains(t, err.Error(), `target "a" is already being resolved`)

	states := h.runner.GetTargetStates()
	assert.Equal(t, domain.TargetStateFailed, states["a"])
	assert.Equal(t, domain.TargetStateFailed, states["b"])
}

func TestRunner_Run_PrerequisiteFailure(t *testing.T) {
	h := newHarness(t)

	h.exec.EXPECT().Execute(gomock.Any(), commandIs("cargo build --release"), gomock.Any(), gomock.Any()).
		Return(domain.ExitStatus{Code: 101}, zerr.New("exit status 101"))
	// release's own step must never run.

	err := h.runner.Run(context.Background(), detectorTable(t), "release")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPrerequisiteFailed)
	assert.ErrorIs(t, err, domain.ErrStepFailed, "the prerequisite's cause stays reachable")

	states := h.runner.GetTargetStates()
	assert.Equal(t, domain.TargetStateFailed, states["build"])
	assert.Equal(t, domain.TargetStateFailed, states["release"])

	require.Len(t, h.records, 2)
	assert.Equal(t, "build", h.records[0].Target)
	assert.Equal(t, "release", h.records[1].Target)
	assert.Equal(t, 0, h.records[1].FailedStep)
}

func TestRunner_Run_StepReceivesOwnEnvironment(t *testing.T) {
	h := newHarness(t)

	var seen []map[string]string
	h.exec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *domain.Step, _, _ any) (domain.ExitStatus, error) {
			seen = append(seen, s.Environment)
			return domain.ExitStatus{}, nil
		}).Times(2)

	require.NoError(t, h.runner.Run(context.Background(), detectorTable(t), "btrace"))

	require.Len(t, seen, 2)
	assert.Empty(t, seen[0])
	assert.Equal(t, map[string]string{"RUST_BACKTRACE": "1"}, seen[1])
}

func TestRunner_Run_StoreFailureIsOnlyWarned(t *testing.T) {
	ctrl := gomock.NewController(t)

	exec := mocks.NewMockExecutor(ctrl)
	store := mocks.NewMockRunStore(ctrl)
	fingerprinter := mocks.NewMockFingerprinter(ctrl)
	telemetry := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	telemetry.EXPECT().Record(gomock.Any(), "writeup").
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ctx, vertex
		})
	vertex.EXPECT().Log(domain.LogLevelInfo, "pandoc writeup.md -o writeup.pdf")
	vertex.EXPECT().Complete(nil)
	logger.EXPECT().Step("writeup", 1, 1, "pandoc writeup.md -o writeup.pdf")
	exec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ExitStatus{}, nil)
	fingerprinter.EXPECT().Fingerprint(gomock.Any()).Return("abc")
	store.EXPECT().Put(gomock.Any()).Return(errors.New("disk full"))
	logger.EXPECT().Warn(gomock.Any())

	r := runner.NewRunner(exec, store, fingerprinter, telemetry, logger).
		WithOutput(&bytes.Buffer{}, &bytes.Buffer{})

	require.NoError(t, r.Run(context.Background(), detectorTable(t), "writeup"))
}

func TestRunner_Run_VertexCompletedWithFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	exec := mocks.NewMockExecutor(ctrl)
	store := mocks.NewMockRunStore(ctrl)
	fingerprinter := mocks.NewMockFingerprinter(ctrl)
	telemetry := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	telemetry.EXPECT().Record(gomock.Any(), "writeup").
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ctx, vertex
		})
	vertex.EXPECT().Log(gomock.Any(), gomock.Any())
	vertex.EXPECT().Complete(gomock.Not(gomock.Nil()))
	logger.EXPECT().Step("writeup", 1, 1, "pandoc writeup.md -o writeup.pdf")
	exec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ExitStatus{Code: 1}, zerr.New("exit status 1"))
	fingerprinter.EXPECT().Fingerprint(gomock.Any()).Return("abc")
	store.EXPECT().Put(gomock.Any()).Return(nil)

	r := runner.NewRunner(exec, store, fingerprinter, telemetry, logger).
		WithOutput(&bytes.Buffer{}, &bytes.Buffer{})

	require.ErrorIs(t, r.Run(context.Background(), detectorTable(t), "writeup"), domain.ErrStepFailed)
}

func TestRunner_Run_StateIsResetPerInvocation(t *testing.T) {
	h := newHarness(t)

	h.exec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ExitStatus{}, nil).Times(2)

	table := detectorTable(t)
	require.NoError(t, h.runner.Run(context.Background(), table, "writeup"))
	require.NoError(t, h.runner.Run(context.Background(), table, "build"))

	assert.Equal(t, map[string]domain.TargetState{
		"build": domain.TargetStateSucceeded,
	}, h.runner.GetTargetStates())
}
