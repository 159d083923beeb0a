package domain

import "go.trai.ch/zerr"

var (
	// ErrTargetAlreadyExists is returned when two targets share the same name.
	ErrTargetAlreadyExists = zerr.New("target already exists")

	// ErrInvalidTargetName is returned when a target name is empty or contains whitespace.
	ErrInvalidTargetName = zerr.New("invalid target name")

	// ErrMissingPrerequisite is returned when a target references a prerequisite that is not in the table.
	ErrMissingPrerequisite = zerr.New("missing prerequisite")

	// ErrCycleDetected is returned when a prerequisite chain loops back onto itself.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrEmptyCommand is returned when a step has no program to run.
	ErrEmptyCommand = zerr.New("step has an empty command")

	// ErrUnknownTarget is returned when the requested target is not in the table.
	ErrUnknownTarget = zerr.New("unknown target")

	// ErrStepFailed is returned when an external command exits non-zero, is killed, or cannot be spawned.
	ErrStepFailed = zerr.New("step failed")

	// ErrPrerequisiteFailed is returned when a target's prerequisite did not succeed.
	ErrPrerequisiteFailed = zerr.New("prerequisite failed")

	// ErrNoTargetsSpecified is returned when no targets are given to run.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrUnsupportedVersion is returned when the config file declares an unknown schema version.
	ErrUnsupportedVersion = zerr.New("unsupported config version")

	// ErrRunExecutionFailed is returned by the application when a requested target failed.
	ErrRunExecutionFailed = zerr.New("run execution failed")

	// ErrStoreCreateFailed is returned when the history directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create history store directory")

	// ErrStoreReadFailed is returned when the history file cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read run history")

	// ErrStoreUnmarshalFailed is returned when the history file cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal run history")

	// ErrStoreMarshalFailed is returned when the history cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal run history")

	// ErrStoreWriteFailed is returned when the history file cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write run history")

	// ErrOutputWriteFailed is returned when captured step output cannot be saved.
	ErrOutputWriteFailed = zerr.New("failed to save captured output")

	// ErrNoRecordedOutput is returned when a target has no captured output on disk.
	ErrNoRecordedOutput = zerr.New("no recorded output")
)
