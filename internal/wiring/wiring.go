// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/runbook/internal/adapters/cas"
	_ "go.trai.ch/runbook/internal/adapters/config"
	_ "go.trai.ch/runbook/internal/adapters/fingerprint"
	_ "go.trai.ch/runbook/internal/adapters/logger"
	_ "go.trai.ch/runbook/internal/adapters/shell"
	_ "go.trai.ch/runbook/internal/adapters/telemetry/progrock"
	// Register app nodes.
	_ "go.trai.ch/runbook/internal/app"
)
