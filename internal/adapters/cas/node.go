package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/runbook/internal/core/ports"
)

// NodeID is the unique identifier for the run history store Graft node.
const NodeID graft.ID = "adapter.run_store"

func init() {
	graft.Register(graft.Node[ports.RunStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RunStore, error) {
			return NewStore(domain.DefaultHistoryPath()), nil
		},
	})
}
