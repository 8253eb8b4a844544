package gateway

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/example/room-coordinator/modules/broadcast"
	"github.com/example/room-coordinator/protocol"
)

// session is the per-connection state. playerID and roomID are empty
// until a CREATE_ROOM or JOIN_ROOM succeeds, and cleared again on a
// voluntary leave.
type session struct {
	playerID string
	roomID   string
}

// setupRoutes configures all HTTP routes.
func (m *GatewayModule) setupRoutes() {
	// WebSocket endpoint
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	// Read-only REST surface
	api := m.app.Group("/api")
	api.Get("/health", m.healthHandler)
	api.Get("/rooms", m.listRooms)
	api.Get("/stats", m.getStats)
}

// healthHandler handles GET /api/health.
func (m *GatewayModule) healthHandler(c *fiber.Ctx) error {
	rooms, err := m.rooms.JoinableCount(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "health_failed",
			Message: "Failed to query room count",
		})
	}
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UnixMilli(),
		Rooms:     rooms,
		Clients:   m.hub.ClientCount(),
	})
}

// listRooms handles GET /api/rooms. Only rooms accepting new joins are
// listed.
func (m *GatewayModule) listRooms(c *fiber.Ctx) error {
	rooms, err := m.rooms.ListRooms(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list rooms",
		})
	}

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, rm := range rooms {
		summaries = append(summaries, RoomSummary{
			ID:             rm.ID,
			Name:           rm.Name,
			CurrentPlayers: len(rm.Players),
			MaxPlayers:     rm.MaxPlayers,
			Status:         string(rm.Status),
		})
	}

	return c.JSON(summaries)
}

// getStats handles GET /api/stats.
func (m *GatewayModule) getStats(c *fiber.Ctx) error {
	snap, err := m.stats.GetStats(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to query stats",
		})
	}
	return c.JSON(snap)
}

// handleWebSocket handles WebSocket connections at /ws. The raw
// connection is wrapped in a write-serializing wsConn before any other
// component sees it; the wrapper is the identity used by the registry
// and the hub, so the read loop and the hub never write the transport
// concurrently.
func (m *GatewayModule) handleWebSocket(c *websocket.Conn) {
	conn := newWSConn(c)
	sess := &session{}
	defer m.cleanupConnection(conn)

	log.Printf("[gateway] WebSocket client connected: %s", c.RemoteAddr())

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[gateway] Client closed connection (player=%s)", sess.playerID)
			} else {
				log.Printf("[gateway] Read error (player=%s): %v", sess.playerID, err)
			}
			break
		}

		m.handleFrame(conn, sess, raw)
	}
}

// handleFrame decodes and dispatches one inbound frame. Malformed
// input gets an ERROR reply; the connection stays open and keeps
// serving subsequent frames.
func (m *GatewayModule) handleFrame(conn broadcast.Conn, sess *session, raw []byte) {
	env, err := protocol.DecodeClientEnvelope(raw)
	if err != nil {
		m.sendError(conn, err.Error())
		return
	}

	// Any inbound frame counts as liveness.
	if sess.playerID != "" {
		m.registry.Touch(sess.playerID)
	}

	m.dispatch(conn, sess, env)
}

// dispatch routes one decoded frame. A panic in a handler is confined
// to this message: the sender gets an ERROR reply and the loop keeps
// serving other frames and other connections.
func (m *GatewayModule) dispatch(conn broadcast.Conn, sess *session, env protocol.ClientEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[gateway] Panic handling %s (player=%s): %v", env.Type, sess.playerID, r)
			m.sendError(conn, "Internal error")
		}
	}()

	switch env.Type {
	case protocol.ClientCreateRoom:
		m.handleCreateRoom(conn, sess, env.Data)
	case protocol.ClientJoinRoom:
		m.handleJoinRoom(conn, sess, env.Data)
	case protocol.ClientLeaveRoom:
		m.handleLeaveRoom(conn, sess)
	case protocol.ClientSendMessage:
		m.handleSendMessage(conn, sess, env.Data)
	case protocol.ClientUpdatePreset:
		m.handleUpdatePreset(conn, sess, env.Data)
	case protocol.ClientSetReady:
		m.handleSetReady(conn, sess, env.Data)
	case protocol.ClientHeartbeat:
		m.handleHeartbeat(conn, sess)
	}
}

// cleanupConnection runs the involuntary-disconnect path when a read
// loop exits. A connection superseded by a reconnect resolves to no
// player and is left alone; the registry binding of a genuinely dead
// connection stays in place so the player's grace window can run, and
// the presence sweep reclaims it.
func (m *GatewayModule) cleanupConnection(conn *wsConn) {
	playerID := m.registry.Resolve(conn)
	if playerID == "" {
		return
	}

	if _, err := m.rooms.DisconnectPlayer(context.Background(), playerID); err != nil {
		log.Printf("[gateway] Disconnect handling failed for player %s: %v", playerID, err)
		return
	}
	log.Printf("[gateway] Player %s connection lost, grace window started", playerID)
}

func (m *GatewayModule) handleCreateRoom(conn broadcast.Conn, sess *session, data json.RawMessage) {
	var d protocol.CreateRoomData
	if err := json.Unmarshal(data, &d); err != nil {
		m.sendError(conn, "Invalid CREATE_ROOM payload")
		return
	}
	if sess.playerID != "" {
		m.sendError(conn, "Already in a room")
		return
	}

	rm, player, err := m.rooms.CreateRoom(context.Background(), d.RoomName, d.PlayerName, d.MaxPlayers)
	if err != nil {
		m.sendError(conn, "Failed to create room: "+err.Error())
		return
	}

	m.bind(conn, sess, player.ID, rm.ID)
	m.sendEvent(conn, protocol.ServerRoomCreated, protocol.RoomCreatedData{
		Room:     rm,
		PlayerID: player.ID,
	})
	log.Printf("[gateway] Player %s created room %s", player.ID, rm.ID)
}

func (m *GatewayModule) handleJoinRoom(conn broadcast.Conn, sess *session, data json.RawMessage) {
	var d protocol.JoinRoomData
	if err := json.Unmarshal(data, &d); err != nil {
		m.sendError(conn, "Invalid JOIN_ROOM payload")
		return
	}
	if sess.playerID != "" {
		m.sendError(conn, "Already in a room")
		return
	}

	rm, player, reconnected, err := m.rooms.JoinRoom(context.Background(), d.RoomID, d.PlayerName, d.ExistingPlayerID)
	if err != nil {
		m.sendError(conn, "Failed to join room: "+err.Error())
		return
	}

	m.bind(conn, sess, player.ID, rm.ID)
	m.sendEvent(conn, protocol.ServerRoomJoined, protocol.RoomJoinedData{
		Room:     rm,
		PlayerID: player.ID,
	})
	if reconnected {
		log.Printf("[gateway] Player %s reconnected to room %s", player.ID, rm.ID)
	} else {
		log.Printf("[gateway] Player %s joined room %s", player.ID, rm.ID)
	}
}

func (m *GatewayModule) handleLeaveRoom(conn broadcast.Conn, sess *session) {
	if sess.playerID == "" {
		m.sendError(conn, "Not in a room")
		return
	}

	playerID := sess.playerID
	if _, err := m.rooms.LeaveRoom(context.Background(), playerID); err != nil {
		m.sendError(conn, "Failed to leave room: "+err.Error())
		return
	}

	// The slot is gone; unbind, but keep the transport open so the
	// client can create or join another room.
	m.registry.Unregister(playerID)
	m.hub.Forget(playerID)
	sess.playerID = ""
	sess.roomID = ""
	log.Printf("[gateway] Player %s left voluntarily", playerID)
}

func (m *GatewayModule) handleSendMessage(conn broadcast.Conn, sess *session, data json.RawMessage) {
	var d protocol.SendMessageData
	if err := json.Unmarshal(data, &d); err != nil {
		m.sendError(conn, "Invalid SEND_MESSAGE payload")
		return
	}
	if sess.playerID == "" {
		m.sendError(conn, "Join a room first")
		return
	}

	if _, err := m.rooms.SendMessage(context.Background(), sess.roomID, sess.playerID, d.Content); err != nil {
		m.sendError(conn, "Failed to send message: "+err.Error())
		return
	}
	// Delivery happens via the room broadcast (NEW_MESSAGE), which
	// includes the sender.
}

func (m *GatewayModule) handleUpdatePreset(conn broadcast.Conn, sess *session, data json.RawMessage) {
	var d protocol.UpdatePresetData
	if err := json.Unmarshal(data, &d); err != nil {
		m.sendError(conn, "Invalid UPDATE_PRESET payload")
		return
	}
	if sess.playerID == "" {
		m.sendError(conn, "Join a room first")
		return
	}

	updated, err := m.rooms.UpdatePreset(context.Background(), sess.playerID, d.CharacterPresetID)
	if err != nil {
		m.sendError(conn, "Failed to update preset: "+err.Error())
		return
	}
	if !updated {
		m.sendError(conn, "Player is no longer in a room")
	}
}

func (m *GatewayModule) handleSetReady(conn broadcast.Conn, sess *session, data json.RawMessage) {
	var d protocol.SetReadyData
	if err := json.Unmarshal(data, &d); err != nil {
		m.sendError(conn, "Invalid SET_READY payload")
		return
	}
	if sess.playerID == "" {
		m.sendError(conn, "Join a room first")
		return
	}

	updated, err := m.rooms.SetReady(context.Background(), sess.playerID, d.IsReady)
	if err != nil {
		m.sendError(conn, "Failed to update ready state: "+err.Error())
		return
	}
	if !updated {
		m.sendError(conn, "Player is no longer in a room")
	}
}

func (m *GatewayModule) handleHeartbeat(conn broadcast.Conn, sess *session) {
	if sess.playerID == "" {
		m.sendError(conn, "Not in a room")
		return
	}
	m.sendEvent(conn, protocol.ServerHeartbeatAck, protocol.HeartbeatAckData{
		Timestamp: time.Now().UnixMilli(),
	})
}

// bind wires a freshly joined player to its transport: registry
// binding, hub membership, session state. A superseded connection from
// a reconnect is closed here.
func (m *GatewayModule) bind(conn broadcast.Conn, sess *session, playerID, roomID string) {
	if old := m.registry.Register(playerID, conn); old != nil {
		_ = old.Close()
	}
	m.hub.Register(&broadcast.Client{PlayerID: playerID, Conn: conn})
	m.hub.JoinRoom(playerID, roomID)
	sess.playerID = playerID
	sess.roomID = roomID
}

func (m *GatewayModule) sendEvent(conn broadcast.Conn, eventType protocol.ServerEventType, data any) {
	env := protocol.NewServerEnvelope(eventType, data)
	payload, err := json.Marshal(env)
	if err != nil {
		log.Printf("[gateway] Failed to marshal %s: %v", eventType, err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Printf("[gateway] Failed to send %s: %v", eventType, err)
	}
}

func (m *GatewayModule) sendError(conn broadcast.Conn, message string) {
	m.sendEvent(conn, protocol.ServerError, protocol.ErrorData{Message: message})
}
