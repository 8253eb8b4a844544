package presence

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/room-coordinator/modules/broadcast"
	"github.com/example/room-coordinator/modules/registry"
	"github.com/example/room-coordinator/modules/room"
)

const (
	defaultInterval         = 10 * time.Second
	defaultHeartbeatTimeout = 30 * time.Second
)

// Module runs the periodic presence sweep: players whose heartbeat has
// lapsed are pushed onto the involuntary-disconnect path, and slots
// whose grace window has expired are reclaimed. It is the only
// component that declares a connection dead from elapsed time alone.
type Module struct {
	rooms    room.RoomPort
	registry *registry.Registry
	hub      *broadcast.Hub
	logger   types.Logger

	interval         time.Duration
	heartbeatTimeout time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new presence module. Interval and timeout come
// from PRESENCE_INTERVAL and HEARTBEAT_TIMEOUT (Go duration strings).
func NewModule(logger types.Logger) *Module {
	return &Module{
		logger:           logger,
		interval:         envDuration("PRESENCE_INTERVAL", defaultInterval),
		heartbeatTimeout: envDuration("HEARTBEAT_TIMEOUT", defaultHeartbeatTimeout),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "presence"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"room"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "room" {
		m.rooms = room.NewRoomAdapter(container)
	}
}

// SetRegistry sets the connection registry (called from main.go).
func (m *Module) SetRegistry(reg *registry.Registry) {
	m.registry = reg
}

// SetHub sets the broadcast hub (called from main.go).
func (m *Module) SetHub(hub *broadcast.Hub) {
	m.hub = hub
}

// Start launches the sweep loop.
func (m *Module) Start(_ context.Context) error {
	if m.rooms == nil {
		return fmt.Errorf("room adapter dependency not set")
	}
	if m.registry == nil {
		return fmt.Errorf("connection registry dependency not set")
	}
	if m.hub == nil {
		return fmt.Errorf("broadcast hub dependency not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	go m.run(ctx)

	m.logger.Info("Presence monitor started",
		"interval", m.interval.String(),
		"heartbeatTimeout", m.heartbeatTimeout.String())
	return nil
}

// Stop cancels the sweep loop and waits for it to finish.
func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
		m.wg.Wait()
	}
	m.logger.Info("Presence monitor stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"interval_sec": int(m.interval.Seconds()),
			"bindings":     m.registry.Count(),
		},
	}
}

func (m *Module) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

// sweep is one presence pass: first push heartbeat-lapsed players onto
// the disconnect path, then reclaim slots whose grace window expired.
func (m *Module) sweep(ctx context.Context) {
	now := time.Now()

	for _, playerID := range m.registry.AllStale(now, m.heartbeatTimeout) {
		if _, err := m.rooms.DisconnectPlayer(ctx, playerID); err != nil {
			m.logger.Error("Disconnect path failed for stale player",
				"playerID", playerID, "error", err)
			continue
		}
		// The transport missed its heartbeats; it is dead to us.
		m.registry.Unregister(playerID)
		m.hub.Unregister(playerID)
		m.logger.Warn("Player heartbeat lapsed", "playerID", playerID)
	}

	removed, err := m.rooms.ReapDisconnected(ctx)
	if err != nil {
		m.logger.Error("Grace-window reap failed", "error", err)
		return
	}
	for _, playerID := range removed {
		// Usually already unbound; reconnections that never came.
		m.registry.Unregister(playerID)
		m.hub.Forget(playerID)
	}
	if len(removed) > 0 {
		m.logger.Info("Reclaimed expired player slots", "count", len(removed))
	}
}

// envDuration reads a Go duration string from the environment,
// falling back to def when unset or invalid.
func envDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
