package registry

import (
	"context"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Module wraps the Registry for framework lifecycle and health
// reporting. The registry itself is handed to the gateway and presence
// modules by direct reference from main.go.
type Module struct {
	registry *Registry
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new registry module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		registry: New(),
		logger:   logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "registry"
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Connection registry started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Connection registry stopped", "bindings", m.registry.Count())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"bindings": m.registry.Count(),
		},
	}
}

// Registry returns the underlying registry for direct wiring.
func (m *Module) Registry() *Registry {
	return m.registry
}
