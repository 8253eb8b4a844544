package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// StatsPort is the interface other modules use to read counters.
type StatsPort interface {
	GetStats(ctx context.Context) (Snapshot, error)
}

type statsAdapter struct {
	container mono.ServiceContainer
}

// NewStatsAdapter creates an adapter for the stats services.
func NewStatsAdapter(container mono.ServiceContainer) StatsPort {
	if container == nil {
		panic("stats adapter requires non-nil ServiceContainer")
	}
	return &statsAdapter{container: container}
}

func (a *statsAdapter) GetStats(ctx context.Context) (Snapshot, error) {
	var req struct{}
	var snap Snapshot
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetStats,
		json.Marshal,
		json.Unmarshal,
		&req,
		&snap,
	); err != nil {
		return Snapshot{}, fmt.Errorf("%s service call failed: %w", ServiceGetStats, err)
	}
	return snap, nil
}
