package progrock_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vprogrock "github.com/vito/progrock"
	"go.trai.ch/runbook/internal/adapters/telemetry/progrock"
	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/runbook/internal/core/ports"
)

// captureWriter keeps the latest state of every vertex it sees.
type captureWriter struct {
	mu       sync.Mutex
	vertexes map[string]*vprogrock.Vertex
	closed   bool
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{vertexes: make(map[string]*vprogrock.Vertex)}
}

func (w *captureWriter) WriteStatus(update *vprogrock.StatusUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, v := range update.Vertexes {
		w.vertexes[v.Id] = v
	}
	return nil
}

func (w *captureWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *captureWriter) byName(name string) []*vprogrock.Vertex {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []*vprogrock.Vertex
	for _, v := range w.vertexes {
		if v.Name == name {
			out = append(out, v)
		}
	}
	return out
}

func TestRecorder_Integration(t *testing.T) {
	dir := t.TempDir()
	recorder := progrock.New(dir)

	ctx, vertex := recorder.Record(context.Background(), "release")

	fromCtx, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, vertex, fromCtx)

	_, err := vertex.Stdout().Write([]byte("Standard Output\n"))
	require.NoError(t, err)
	vertex.Log(domain.LogLevelInfo, "cargo build --release")
	vertex.Complete(nil)

	require.NoError(t, recorder.Close())

	out, err := progrock.NewJournal(dir).Last("release")
	require.NoError(t, err)
	assert.Equal(t, "Standard Output\n[INFO] cargo build --release\n", string(out))
}

func TestRecorder_RecordsOutcome(t *testing.T) {
	w := newCaptureWriter()
	recorder := progrock.NewRecorder(w)

	_, ok := recorder.Record(context.Background(), "writeup")
	ok.Complete(nil)

	_, failed := recorder.Record(context.Background(), "release")
	failed.Complete(errors.New("step failed"))

	writeups := w.byName("writeup")
	require.Len(t, writeups, 1)
	assert.Nil(t, writeups[0].Error)

	releases := w.byName("release")
	require.Len(t, releases, 1)
	require.NotNil(t, releases[0].Error)
	assert.Contains(t, *releases[0].Error, "step failed")

	require.NoError(t, recorder.Close())
	assert.True(t, w.closed)
}

func TestRecorder_RepeatedTargetsGetDistinctVertices(t *testing.T) {
	w := newCaptureWriter()
	recorder := progrock.NewRecorder(w)

	for range 2 {
		_, v := recorder.Record(context.Background(), "build")
		v.Complete(nil)
	}

	assert.Len(t, w.byName("build"), 2)
}
