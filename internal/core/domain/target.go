package domain

import (
	"maps"
	"strings"
)

// Step is a single external command invocation.
// Environment holds overrides that are visible only to the process spawned for this step.
type Step struct {
	Command     []string
	Environment map[string]string
	WorkingDir  string
}

// CommandLine returns the command joined by spaces, for diagnostics.
func (s Step) CommandLine() string {
	return strings.Join(s.Command, " ")
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	return Step{
		Command:     append([]string(nil), s.Command...),
		Environment: maps.Clone(s.Environment),
		WorkingDir:  s.WorkingDir,
	}
}

// Target is a named, independently invocable unit of work.
type Target struct {
	Name        string
	Description string
	// Prerequisite names a target that must fully succeed before Steps run. Empty means none.
	Prerequisite string
	Steps        []Step
}

// HasPrerequisite reports whether the target declares a prerequisite.
func (t Target) HasPrerequisite() bool {
	return t.Prerequisite != ""
}

// Clone returns a deep copy of the target.
func (t Target) Clone() Target {
	steps := make([]Step, len(t.Steps))
	for i, s := range t.Steps {
		steps[i] = s.Clone()
	}
	t.Steps = steps
	return t
}
