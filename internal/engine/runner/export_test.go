package runner

import (
	"time"

	"go.trai.ch/runbook/internal/core/domain"
)

// GetTargetStates returns a copy of the state map of the last invocation.
// This is exported for testing purposes only.
func (r *Runner) GetTargetStates() map[string]domain.TargetState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make(map[string]domain.TargetState, len(r.states))
	for k, v := range r.states {
		states[k] = v
	}
	return states
}

// WithClock replaces the time source.
// This is exported for testing purposes only.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}
