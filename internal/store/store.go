package store

import (
	"context"

	"github.com/me/gosched/pkg/model"
)

// Store defines the persistence layer for recorded policy runs.
type Store interface {
	// Run history
	CreateRun(ctx context.Context, rec *model.RunRecord) error
	GetRun(ctx context.Context, id string) (*model.RunRecord, error)
	ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.RunRecord, int, error)
	ListRunsBySimulation(ctx context.Context, simulationID string) ([]*model.RunRecord, error)
	DeleteRun(ctx context.Context, id string) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
