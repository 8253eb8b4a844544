package room

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/room-coordinator/events"
)

// Module owns the room store and exposes it to the rest of the
// application as request-reply services. It is the only writer of
// room state.
type Module struct {
	store    *Store
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the room module. Broadcasts produced by store
// mutations are fanned out through b.
func NewModule(cfg Config, b Broadcaster, logger types.Logger) *Module {
	return &Module{
		store:  NewStore(cfg, b),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "room"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the telemetry events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomCreatedV1.ToBase(),
		events.RoomClosedV1.ToBase(),
		events.PlayerJoinedV1.ToBase(),
		events.PlayerLeftV1.ToBase(),
		events.HostChangedV1.ToBase(),
		events.MessageSentV1.ToBase(),
	}
}

// RegisterServices registers the request-reply services in the
// service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	register := []struct {
		name string
		fn   func(mono.ServiceContainer) error
	}{
		{ServiceCreateRoom, func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, ServiceCreateRoom, json.Unmarshal, json.Marshal, m.createRoom)
		}},
		{ServiceJoinRoom, func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, ServiceJoinRoom, json.Unmarshal, json.Marshal, m.joinRoom)
		}},
		{ServiceLeaveRoom, func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, ServiceLeaveRoom, json.Unmarshal, json.Marshal, m.leaveRoom)
		}},
		{ServiceDisconnectPlayer, func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, ServiceDisconnectPlayer, json.Unmarshal, json.Marshal, m.disconnectPlayer)
		}},
		{ServiceReapDisconnected, func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, ServiceReapDisconnected, json.Unmarshal, json.Marshal, m.reapDisconnected)
		}},
		{ServiceSendMessage, func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, ServiceSendMessage, json.Unmarshal, json.Marshal, m.sendMessage)
		}},
		{ServiceSetReady, func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, ServiceSetReady, json.Unmarshal, json.Marshal, m.setReady)
		}},
		{ServiceUpdatePreset, func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, ServiceUpdatePreset, json.Unmarshal, json.Marshal, m.updatePreset)
		}},
		{ServiceListRooms, func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, ServiceListRooms, json.Unmarshal, json.Marshal, m.listRooms)
		}},
		{ServiceJoinableCount, func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, ServiceJoinableCount, json.Unmarshal, json.Marshal, m.joinableCount)
		}},
	}

	for _, svc := range register {
		if err := svc.fn(container); err != nil {
			return fmt.Errorf("failed to register %s service: %w", svc.name, err)
		}
	}

	m.logger.Info("Registered room services", "count", len(register))
	return nil
}

// Start initializes the room module.
func (m *Module) Start(_ context.Context) error {
	if m.eventBus == nil {
		m.logger.Warn("EventBus not set, telemetry events will not be published")
	}
	m.logger.Info("Room module started",
		"graceWindow", m.store.cfg.GraceWindow,
		"maxChatHistory", m.store.cfg.MaxChatHistory)
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Room module stopped", "activeRooms", m.store.RoomCount())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"active_rooms": m.store.RoomCount(),
		},
	}
}
