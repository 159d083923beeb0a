package domain

import "strings"

// TargetState is the lifecycle state of a single target invocation.
type TargetState string

const (
	// TargetStatePending indicates the target has been requested but not started.
	TargetStatePending TargetState = "pending"
	// TargetStateResolvingPrerequisite indicates the target is waiting on its prerequisite.
	TargetStateResolvingPrerequisite TargetState = "resolving_prerequisite"
	// TargetStateRunningSteps indicates the target's own steps are executing.
	TargetStateRunningSteps TargetState = "running_steps"
	// TargetStateSucceeded indicates every step of the target and its chain succeeded.
	TargetStateSucceeded TargetState = "succeeded"
	// TargetStateFailed indicates the target or its prerequisite failed.
	TargetStateFailed TargetState = "failed"
)

// IsTerminal reports whether no further transition can happen from s.
func (s TargetState) IsTerminal() bool {
	return s == TargetStateSucceeded || s == TargetStateFailed
}

// NormalizeTargetState converts a string to a TargetState, defaulting to pending if unknown.
func NormalizeTargetState(s string) TargetState {
	switch TargetState(strings.ToLower(s)) {
	case TargetStateResolvingPrerequisite:
		return TargetStateResolvingPrerequisite
	case TargetStateRunningSteps:
		return TargetStateRunningSteps
	case TargetStateSucceeded:
		return TargetStateSucceeded
	case TargetStateFailed:
		return TargetStateFailed
	default:
		return TargetStatePending
	}
}

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
