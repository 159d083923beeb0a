// Package config provides the configuration loader for runbook.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"

	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	defaultPath string
}

// NewLoader creates a new Loader resolving the default file against the working directory.
func NewLoader() *Loader {
	return &Loader{defaultPath: domain.ConfigFileName}
}

// Load reads the target table from path.
// With an empty path the default file is tried, and the built-in table is used if it is absent.
// An explicitly given path must exist.
func (l *Loader) Load(path string) (*domain.Table, error) {
	explicit := path != ""
	if !explicit {
		path = l.defaultPath
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Builtin()
		}
		return nil, errors.Join(
			domain.ErrConfigReadFailed,
			zerr.With(zerr.Wrap(err, "could not open target table"), "path", path),
		)
	}

	return Parse(data, path)
}

// Parse builds a table from YAML. source names the document in diagnostics.
func Parse(data []byte, source string) (*domain.Table, error) {
	var file Runbookfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, parseError(err, source)
	}

	version := file.Version
	if version == "" {
		version = domain.ConfigVersion
	}
	if version != domain.ConfigVersion {
		return nil, errors.Join(
			domain.ErrUnsupportedVersion,
			zerr.With(
				zerr.New(fmt.Sprintf("%s declares version %q, expected %q", source, version, domain.ConfigVersion)),
				"version", version,
			),
		)
	}

	names, err := declarationOrder(data)
	if err != nil {
		return nil, parseError(err, source)
	}

	targets := make([]domain.Target, 0, len(names))
	for _, name := range names {
		targets = append(targets, toTarget(name, file.Targets[name]))
	}

	table, err := domain.NewTable(targets...)
	if err != nil {
		return nil, parseError(err, source)
	}
	return table, nil
}

// declarationOrder returns the target names in the order they appear in the document.
func declarationOrder(data []byte) ([]string, error) {
	var raw targetOrder
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	node := raw.Targets
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, zerr.With(zerr.New("targets must be a mapping"), "line", node.Line)
	}

	names := make([]string, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		names = append(names, node.Content[i].Value)
	}
	return names, nil
}

func toTarget(name string, dto TargetDTO) domain.Target {
	steps := make([]domain.Step, len(dto.Steps))
	for i, s := range dto.Steps {
		steps[i] = domain.Step{
			Command:     s.Cmd,
			Environment: mergeEnvironment(dto.Environment, s.Environment),
			WorkingDir:  s.Dir,
		}
	}

	return domain.Target{
		Name:         name,
		Description:  dto.Description,
		Prerequisite: dto.Requires,
		Steps:        steps,
	}
}

// mergeEnvironment overlays step overrides on target-wide overrides.
func mergeEnvironment(target, step map[string]string) map[string]string {
	if len(target) == 0 && len(step) == 0 {
		return nil
	}
	env := maps.Clone(target)
	if env == nil {
		env = make(map[string]string, len(step))
	}
	maps.Copy(env, step)
	return env
}

func parseError(err error, source string) error {
	return errors.Join(
		domain.ErrConfigParseFailed,
		zerr.With(zerr.Wrap(err, "invalid target table"), "source", source),
	)
}
