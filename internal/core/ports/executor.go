// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/runbook/internal/core/domain"
)

// Executor defines the interface for running a single step as an external process.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute spawns the step's command and waits for it to exit.
	//
	// The process environment is the caller's environment overlaid with step.Environment.
	// The caller's own environment is never modified.
	//
	// It returns the exit status and a non-nil error when the command did not exit with status zero.
	Execute(ctx context.Context, step *domain.Step, stdout, stderr io.Writer) (domain.ExitStatus, error)
}
