package ports

import "go.trai.ch/runbook/internal/core/domain"

// Fingerprinter computes a stable digest of a target definition.
//
//go:generate go run go.uber.org/mock/mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint returns the same value for equal definitions regardless of map ordering.
	Fingerprint(target *domain.Target) string
}
