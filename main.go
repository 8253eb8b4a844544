package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/room-coordinator/modules/broadcast"
	"github.com/example/room-coordinator/modules/gateway"
	"github.com/example/room-coordinator/modules/presence"
	"github.com/example/room-coordinator/modules/registry"
	"github.com/example/room-coordinator/modules/room"
	"github.com/example/room-coordinator/modules/stats"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Room Coordinator - Fiber + WebSocket ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Create modules
	broadcastModule := broadcast.NewModule()
	registryModule := registry.NewModule(logger)
	roomModule := room.NewModule(roomConfigFromEnv(), broadcastModule.GetHub(), logger)
	statsModule := stats.NewModule(logger)
	presenceModule := presence.NewModule(logger)
	gatewayModule := gateway.NewModule()

	// The hub and the registry are shared state, not container
	// services; inject them directly.
	gatewayModule.SetHub(broadcastModule.GetHub())
	gatewayModule.SetRegistry(registryModule.Registry())
	presenceModule.SetHub(broadcastModule.GetHub())
	presenceModule.SetRegistry(registryModule.Registry())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - broadcast: WebSocket delivery hub
	// - registry: connection/liveness bindings
	// - room: core domain (ServiceProviderModule + EventEmitterModule)
	// - stats: telemetry consumer (EventConsumerModule)
	// - presence: heartbeat sweep (depends on room)
	// - gateway: driving adapter (Fiber HTTP/WebSocket, depends on room + stats)
	app.Register(broadcastModule)
	app.Register(registryModule)
	app.Register(roomModule)
	app.Register(statsModule)
	app.Register(presenceModule)
	app.Register(gatewayModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// roomConfigFromEnv builds the room store configuration from the
// environment, falling back to defaults.
func roomConfigFromEnv() room.Config {
	cfg := room.DefaultConfig()

	if raw := os.Getenv("MAX_CHAT_HISTORY"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.MaxChatHistory = n
		}
	}
	if raw := os.Getenv("GRACE_WINDOW"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.GraceWindow = d
		}
	}
	if raw := os.Getenv("ROOM_PRESETS"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Presets = append(cfg.Presets, p)
			}
		}
	}

	return cfg
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Event Bus: NATS JetStream (telemetry pubsub)")
	log.Printf("  - NATS URL: %s", natsURL)
	log.Println("")
	log.Println("Room Coordination:")
	log.Println("  - Room broadcasts go through the delivery hub (ordered per room)")
	log.Println("  - RoomCreated/PlayerJoined/PlayerLeft/HostChanged events -> stats module")
	log.Println("  - Presence sweep reclaims lapsed players after the grace window")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /api/health  - Health check")
	log.Println("  GET    /api/rooms   - List joinable rooms")
	log.Println("  GET    /api/stats   - Aggregate counters")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", port)
	log.Println("  Event types: CREATE_ROOM, JOIN_ROOM, LEAVE_ROOM, SEND_MESSAGE,")
	log.Println("               UPDATE_PRESET, SET_READY, HEARTBEAT")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
