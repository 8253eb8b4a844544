package gateway

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/room-coordinator/modules/broadcast"
	"github.com/example/room-coordinator/modules/registry"
	"github.com/example/room-coordinator/modules/room"
	"github.com/example/room-coordinator/modules/stats"
)

// GatewayModule terminates client connections: the WebSocket endpoint
// that carries the room protocol, plus a small read-only REST surface.
type GatewayModule struct {
	app            *fiber.App
	rooms          room.RoomPort
	stats          stats.StatsPort
	hub            *broadcast.Hub
	registry       *registry.Registry
	port           string
	allowedOrigins string
}

// Compile-time interface checks.
var _ mono.Module = (*GatewayModule)(nil)
var _ mono.DependentModule = (*GatewayModule)(nil)
var _ mono.HealthCheckableModule = (*GatewayModule)(nil)

// NewModule creates a new GatewayModule.
func NewModule() *GatewayModule {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if origins == "" {
		origins = "*"
	}
	return &GatewayModule{
		port:           port,
		allowedOrigins: origins,
	}
}

// Name returns the module name.
func (m *GatewayModule) Name() string {
	return "gateway"
}

// Dependencies returns the list of module dependencies.
func (m *GatewayModule) Dependencies() []string {
	return []string{"room", "stats"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *GatewayModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "room":
		m.rooms = room.NewRoomAdapter(container)
	case "stats":
		m.stats = stats.NewStatsAdapter(container)
	}
}

// SetHub sets the broadcast hub (called from main.go).
func (m *GatewayModule) SetHub(hub *broadcast.Hub) {
	m.hub = hub
}

// SetRegistry sets the connection registry (called from main.go).
func (m *GatewayModule) SetRegistry(reg *registry.Registry) {
	m.registry = reg
}

// Start initializes the Fiber HTTP server.
func (m *GatewayModule) Start(_ context.Context) error {
	if m.rooms == nil {
		return fmt.Errorf("room adapter dependency not set")
	}
	if m.stats == nil {
		return fmt.Errorf("stats adapter dependency not set")
	}
	if m.hub == nil {
		return fmt.Errorf("broadcast hub dependency not set")
	}
	if m.registry == nil {
		return fmt.Errorf("connection registry dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: m.allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
	}))
	m.app.Use(loggerMiddleware())

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			log.Printf("[gateway] HTTP server error: %v", err)
		}
	}()

	log.Printf("[gateway] HTTP server started on :%s", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *GatewayModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[gateway] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status.
func (m *GatewayModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":              m.port,
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

// loggerMiddleware returns a Fiber middleware for request logging.
func loggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip logging for WebSocket upgrade requests
		if c.Get("Upgrade") == "websocket" {
			return c.Next()
		}
		err := c.Next()
		log.Printf("[gateway] %s %s %d", c.Method(), c.Path(), c.Response().StatusCode())
		return err
	}
}
