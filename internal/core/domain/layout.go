package domain

import "path/filepath"

const (
	// ConfigFileName is the target table file looked up in the working directory.
	ConfigFileName = "runbook.yaml"

	// ConfigVersion is the only schema version understood by the loader.
	ConfigVersion = "1"

	// StateDirName is the directory holding runbook's local state.
	StateDirName = ".runbook"

	// HistoryFileName is the run history file inside StateDirName.
	HistoryFileName = "history.json"

	// OutputDirName is the directory inside StateDirName holding captured step output.
	OutputDirName = "logs"

	// OutputFileExt is appended to the target name to form its output file.
	OutputFileExt = ".log"

	// DirPerm is the permission used for directories runbook creates.
	DirPerm = 0o750

	// FilePerm is the permission used for files runbook writes.
	FilePerm = 0o600
)

// DefaultHistoryPath returns the history file location relative to the working directory.
func DefaultHistoryPath() string {
	return filepath.Join(StateDirName, HistoryFileName)
}

// DefaultOutputDir returns the captured output directory relative to the working directory.
func DefaultOutputDir() string {
	return filepath.Join(StateDirName, OutputDirName)
}
