// Package domain contains the core domain models for targets, steps and their execution.
package domain

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"unicode"

	"go.trai.ch/zerr"
)

// Table is an immutable, ordered mapping from target name to target definition.
// It is built once with NewTable and never modified afterwards.
type Table struct {
	targets map[string]Target
	order   []string
}

// NewTable builds a Table from targets in declaration order.
// It rejects duplicate names, empty commands, unresolved prerequisites and prerequisite cycles.
func NewTable(targets ...Target) (*Table, error) {
	t := &Table{
		targets: make(map[string]Target, len(targets)),
		order:   make([]string, 0, len(targets)),
	}
	for i := range targets {
		if err := t.add(&targets[i]); err != nil {
			return nil, err
		}
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) add(target *Target) error {
	if target.Name == "" || strings.ContainsFunc(target.Name, unicode.IsSpace) {
		return errors.Join(ErrInvalidTargetName, zerr.With(
			zerr.New(fmt.Sprintf("target name %q must be non-empty and free of whitespace", target.Name)),
			"target", target.Name,
		))
	}
	if _, exists := t.targets[target.Name]; exists {
		return errors.Join(ErrTargetAlreadyExists, zerr.With(
			zerr.New(fmt.Sprintf("target %q is declared more than once", target.Name)),
			"target", target.Name,
		))
	}
	for i, step := range target.Steps {
		if len(step.Command) == 0 || step.Command[0] == "" {
			return errors.Join(ErrEmptyCommand, zerr.With(zerr.With(
				zerr.New(fmt.Sprintf("target %q step %d has no command", target.Name, i+1)),
				"target", target.Name),
				"step", i+1,
			))
		}
	}
	t.targets[target.Name] = target.Clone()
	t.order = append(t.order, target.Name)
	return nil
}

// validate walks every prerequisite chain once.
// States: 0 unvisited, 1 on the current path, 2 known to terminate.
func (t *Table) validate() error {
	state := make(map[string]int, len(t.targets))

	for _, name := range t.order {
		var path []string
		current := name
		for state[current] != 2 {
			if state[current] == 1 {
				return buildCycleError(path, current)
			}
			state[current] = 1
			path = append(path, current)

			target := t.targets[current]
			if !target.HasPrerequisite() {
				break
			}
			if _, ok := t.targets[target.Prerequisite]; !ok {
				return missingPrerequisite(current, target.Prerequisite)
			}
			current = target.Prerequisite
		}
		for _, visited := range path {
			state[visited] = 2
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []string, repeated string) error {
	start := slices.Index(path, repeated)
	if start < 0 {
		start = 0
	}
	cycle := strings.Join(append(slices.Clone(path[start:]), repeated), " -> ")
	return errors.Join(ErrCycleDetected, zerr.With(
		zerr.New("prerequisite cycle: "+cycle),
		"cycle", cycle,
	))
}

func missingPrerequisite(target, prerequisite string) error {
	return errors.Join(ErrMissingPrerequisite, zerr.With(zerr.With(
		zerr.New(fmt.Sprintf("target %q requires %q, which is not defined", target, prerequisite)),
		"target", target),
		"prerequisite", prerequisite,
	))
}

// Len returns the number of targets in the table.
func (t *Table) Len() int {
	return len(t.order)
}

// Lookup returns a copy of the named target.
func (t *Table) Lookup(name string) (Target, bool) {
	target, ok := t.targets[name]
	if !ok {
		return Target{}, false
	}
	return target.Clone(), true
}

// Names returns target names in declaration order.
func (t *Table) Names() []string {
	return slices.Clone(t.order)
}

// Targets returns an iterator over copies of the targets in declaration order.
func (t *Table) Targets() iter.Seq[Target] {
	return func(yield func(Target) bool) {
		for _, name := range t.order {
			if !yield(t.targets[name].Clone()) {
				return
			}
		}
	}
}

// Chain resolves name to its prerequisite chain, prerequisites first and name last.
func (t *Table) Chain(name string) ([]Target, error) {
	var chain []Target
	seen := make(map[string]bool, len(t.order))

	previous, current := "", name
	for {
		target, ok := t.targets[current]
		if !ok {
			if current == name {
				return nil, errors.Join(ErrUnknownTarget, zerr.With(
					zerr.New(fmt.Sprintf("no target named %q", name)),
					"target", name,
				))
			}
			return nil, missingPrerequisite(previous, current)
		}
		if seen[current] {
			return nil, errors.Join(ErrCycleDetected, zerr.With(
				zerr.New(fmt.Sprintf("target %q is already in the chain of %q", current, name)),
				"target", current,
			))
		}
		seen[current] = true
		chain = append(chain, target.Clone())
		if !target.HasPrerequisite() {
			break
		}
		previous, current = current, target.Prerequisite
	}

	slices.Reverse(chain)
	return chain, nil
}
