package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/room-coordinator/events"
)

// ServiceGetStats returns the current Snapshot.
const ServiceGetStats = "get-stats"

// Module consumes room telemetry events and serves aggregate counters.
type Module struct {
	store  *StatsStore
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new stats module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		store:  NewStatsStore(),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "stats"
}

// Start initializes the stats module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Stats module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	snap := m.store.GetSnapshot()
	m.logger.Info("Stats module stopped",
		"roomsCreated", snap.RoomsCreated,
		"messagesSent", snap.MessagesSent)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	snap := m.store.GetSnapshot()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms_created": snap.RoomsCreated,
			"uptime_sec":    snap.UptimeSeconds,
		},
	}
}

// RegisterEventConsumers subscribes to the room module's telemetry.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomCreatedV1, m.handleRoomCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomCreated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomClosedV1, m.handleRoomClosed, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomClosed consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.PlayerJoinedV1, m.handlePlayerJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register PlayerJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.PlayerLeftV1, m.handlePlayerLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register PlayerLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.HostChangedV1, m.handleHostChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register HostChanged consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageSentV1, m.handleMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{
			"RoomCreated.v1", "RoomClosed.v1", "PlayerJoined.v1",
			"PlayerLeft.v1", "HostChanged.v1", "MessageSent.v1",
		})
	return nil
}

// RegisterServices registers this module's services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := container.RegisterRequestReplyService(ServiceGetStats, m.handleGetStats); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetStats, err)
	}
	m.logger.Info("Registered stats services", "services", []string{ServiceGetStats})
	return nil
}

// Event handlers

func (m *Module) handleRoomCreated(_ context.Context, event events.RoomCreatedEvent, _ *mono.Msg) error {
	m.store.RecordRoomCreated()
	m.logger.Debug("Recorded room creation", "roomID", event.RoomID)
	return nil
}

func (m *Module) handleRoomClosed(_ context.Context, event events.RoomClosedEvent, _ *mono.Msg) error {
	m.store.RecordRoomClosed()
	m.logger.Debug("Recorded room closure", "roomID", event.RoomID)
	return nil
}

func (m *Module) handlePlayerJoined(_ context.Context, event events.PlayerJoinedEvent, _ *mono.Msg) error {
	m.store.RecordPlayerJoined()
	m.logger.Debug("Recorded player join", "playerID", event.PlayerID, "roomID", event.RoomID)
	return nil
}

func (m *Module) handlePlayerLeft(_ context.Context, event events.PlayerLeftEvent, _ *mono.Msg) error {
	m.store.RecordPlayerLeft(event.Voluntary)
	m.logger.Debug("Recorded player departure",
		"playerID", event.PlayerID, "voluntary", event.Voluntary)
	return nil
}

func (m *Module) handleHostChanged(_ context.Context, event events.HostChangedEvent, _ *mono.Msg) error {
	m.store.RecordHostChanged()
	m.logger.Debug("Recorded host change", "roomID", event.RoomID, "newHostID", event.NewHostID)
	return nil
}

func (m *Module) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	m.store.RecordMessageSent()
	m.logger.Debug("Recorded message", "roomID", event.RoomID, "messageID", event.MessageID)
	return nil
}

// Service handlers

func (m *Module) handleGetStats(_ context.Context, _ *mono.Msg) ([]byte, error) {
	return json.Marshal(m.store.GetSnapshot())
}

// Store returns the stats store.
func (m *Module) Store() *StatsStore {
	return m.store
}
