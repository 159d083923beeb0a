package ports

import "go.trai.ch/runbook/internal/core/domain"

// RunStore defines the interface for storing and retrieving run history.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type RunStore interface {
	// Get retrieves the last run record for a target.
	// Returns nil, nil if the target has never run.
	Get(target string) (*domain.RunRecord, error)

	// Put stores the run record, replacing any previous record for the same target.
	Put(record domain.RunRecord) error
}
