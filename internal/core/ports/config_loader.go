package ports

import "go.trai.ch/runbook/internal/core/domain"

// ConfigLoader defines the interface for loading the target table.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the target table from path.
	// An empty path means the default file in the working directory, falling back to the
	// built-in table when that file does not exist.
	Load(path string) (*domain.Table, error)
}
