package domain

import "time"

// ExitStatus describes how an external command terminated.
// Code is -1 when the process never started or was killed by a signal.
type ExitStatus struct {
	Code   int
	Signal string
	// NotStarted is set when the process could not be spawned at all.
	NotStarted bool
}

// Success reports whether the command exited normally with status zero.
func (s ExitStatus) Success() bool {
	return s.Code == 0 && s.Signal == "" && !s.NotStarted
}

// RunRecord is the last terminal outcome recorded for a target.
type RunRecord struct {
	Target      string        `json:"target,omitzero"`
	Fingerprint string        `json:"fingerprint,omitzero"`
	State       TargetState   `json:"state,omitzero"`
	ExitCode    int           `json:"exit_code,omitzero"`
	Signal      string        `json:"signal,omitzero"`
	NotStarted  bool          `json:"not_started,omitzero"`
	FailedStep  int           `json:"failed_step,omitzero"`
	StartedAt   time.Time     `json:"started_at,omitzero"`
	Duration    time.Duration `json:"duration,omitzero"`
}
