package progrock

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/runbook/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the telemetry adapter node.
	NodeID graft.ID = "adapter.telemetry"
	// OutputLogNodeID is the unique identifier for the captured output reader node.
	OutputLogNodeID graft.ID = "adapter.output_log"
)

func init() {
	graft.Register(graft.Node[ports.Telemetry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Telemetry, error) {
			return New(domain.DefaultOutputDir()), nil
		},
	})

	graft.Register(graft.Node[ports.OutputLog]{
		ID:        OutputLogNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.OutputLog, error) {
			return NewJournal(domain.DefaultOutputDir()), nil
		},
	})
}
