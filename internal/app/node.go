package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/runbook/internal/adapters/cas"                //nolint:depguard // Wired in app layer
	"go.trai.ch/runbook/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/runbook/internal/adapters/fingerprint"        //nolint:depguard // Wired in app layer
	"go.trai.ch/runbook/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/runbook/internal/adapters/shell"              //nolint:depguard // Wired in app layer
	"go.trai.ch/runbook/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/runbook/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			shell.NodeID,
			logger.NodeID,
			cas.NodeID,
			fingerprint.NodeID,
			progrock.NodeID,
			progrock.OutputLogNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.RunStore](ctx)
	if err != nil {
		return nil, err
	}

	fingerprinter, err := graft.Dep[ports.Fingerprinter](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	outputs, err := graft.Dep[ports.OutputLog](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, executor, log, store, fingerprinter, telemetry, outputs), nil
}
