package progrock

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vito/progrock"
	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/zerr"
)

// Journal is a progrock.Writer that keeps the output of the last invocation
// of every target on disk, one file per target.
// Output is buffered per vertex and written out when the vertex completes.
type Journal struct {
	dir string

	mu      sync.Mutex
	names   map[string]string
	buffers map[string]*bytes.Buffer
	err     error
}

// NewJournal creates a Journal storing files under dir.
func NewJournal(dir string) *Journal {
	return &Journal{
		dir:     dir,
		names:   make(map[string]string),
		buffers: make(map[string]*bytes.Buffer),
	}
}

// WriteStatus folds a progrock update into the per-vertex buffers.
func (j *Journal) WriteStatus(update *progrock.StatusUpdate) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, v := range update.Vertexes {
		if _, known := j.names[v.Id]; !known {
			j.names[v.Id] = v.Name
			j.buffers[v.Id] = new(bytes.Buffer)
		}
	}

	for _, l := range update.Logs {
		if buf, ok := j.buffers[l.Vertex]; ok {
			buf.Write(l.Data)
		}
	}

	for _, v := range update.Vertexes {
		if v.Completed != nil {
			j.flush(v.Id)
		}
	}

	return j.err
}

// Close writes out vertices that never completed and reports the first write failure.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for id := range j.buffers {
		j.flush(id)
	}
	return j.err
}

// Last returns the output captured during the most recent invocation of target.
func (j *Journal) Last(target string) ([]byte, error) {
	path := j.path(target)
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from a validated target name
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(domain.ErrNoRecordedOutput, zerr.With(
				zerr.New(fmt.Sprintf("target %q has no recorded output", target)),
				"target", target,
			))
		}
		return nil, zerr.With(zerr.Wrap(err, "could not read recorded output"), "path", path)
	}
	return data, nil
}

// flush must be called with mu held.
func (j *Journal) flush(id string) {
	buf, ok := j.buffers[id]
	if !ok {
		return
	}
	name := j.names[id]
	delete(j.buffers, id)
	delete(j.names, id)

	if err := j.save(name, buf.Bytes()); err != nil && j.err == nil {
		j.err = err
	}
}

func (j *Journal) save(target string, data []byte) error {
	if err := os.MkdirAll(j.dir, domain.DirPerm); err != nil {
		return errors.Join(domain.ErrOutputWriteFailed, zerr.With(err, "path", j.dir))
	}
	path := j.path(target)
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return errors.Join(domain.ErrOutputWriteFailed, zerr.With(err, "path", path))
	}
	return nil
}

func (j *Journal) path(target string) string {
	safe := strings.NewReplacer("/", "_", `\`, "_").Replace(target)
	return filepath.Join(j.dir, safe+domain.OutputFileExt)
}
