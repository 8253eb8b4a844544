package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/example/room-coordinator/protocol"
)

// Conn is the writable side of a client connection. *websocket.Conn
// satisfies it; tests substitute an in-memory fake.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is a connected player.
type Client struct {
	PlayerID string
	Conn     Conn
}

// Hub fans server events out to room members. Membership changes take
// effect synchronously; deliveries drain through a single FIFO queue,
// so all members of a room observe events in the order they were
// enqueued — which the room store guarantees is the order mutations
// were accepted.
type Hub struct {
	clients  map[string]*Client         // playerID -> Client
	rooms    map[string]map[string]bool // roomID -> set of playerIDs
	outbound chan *queuedEvent
	done     chan struct{}
	mu       sync.RWMutex
}

type queuedEvent struct {
	roomID   string
	except   string // playerID to skip, "" for none
	sendTo   string // direct recipient, "" for room broadcast
	envelope protocol.ServerEnvelope
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		rooms:    make(map[string]map[string]bool),
		outbound: make(chan *queuedEvent, 256),
		done:     make(chan struct{}),
	}
}

// Run starts the hub's delivery loop. It accepts a context for
// graceful shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[hub] Shutting down...")
			h.closeAllClients()
			close(h.done)
			return
		case ev := <-h.outbound:
			h.deliver(ev)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// Register binds a connection to a player id. A previous connection
// for the same id is superseded and closed (reconnection).
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[client.PlayerID]; ok && old.Conn != client.Conn {
		// Superseded by a reconnection; the old transport is usually
		// already dead, but close it in case it is not.
		_ = old.Conn.Close()
	}
	h.clients[client.PlayerID] = client
}

// Unregister drops a player's connection and room membership, closing
// the transport.
func (h *Hub) Unregister(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[playerID]
	if !ok {
		return
	}
	delete(h.clients, playerID)
	for roomID := range h.rooms {
		h.removeFromRoomLocked(playerID, roomID)
	}
	_ = client.Conn.Close()
}

// Forget drops a player's binding and room membership without closing
// the transport. Used on voluntary leave, where the connection stays
// open for a later CREATE_ROOM or JOIN_ROOM.
func (h *Hub) Forget(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, playerID)
	for roomID := range h.rooms {
		h.removeFromRoomLocked(playerID, roomID)
	}
}

// Broadcast enqueues an event for every member of a room.
// The envelope id and timestamp are assigned here, at acceptance time.
func (h *Hub) Broadcast(roomID string, eventType protocol.ServerEventType, data any) {
	h.outbound <- &queuedEvent{
		roomID:   roomID,
		envelope: protocol.NewServerEnvelope(eventType, data),
	}
}

// BroadcastExcept enqueues an event for every member of a room except
// one player.
func (h *Hub) BroadcastExcept(roomID, exceptPlayerID string, eventType protocol.ServerEventType, data any) {
	h.outbound <- &queuedEvent{
		roomID:   roomID,
		except:   exceptPlayerID,
		envelope: protocol.NewServerEnvelope(eventType, data),
	}
}

// SendTo enqueues an event for a single player.
func (h *Hub) SendTo(playerID string, eventType protocol.ServerEventType, data any) {
	h.outbound <- &queuedEvent{
		sendTo:   playerID,
		envelope: protocol.NewServerEnvelope(eventType, data),
	}
}

// JoinRoom adds a player to a room's delivery set.
func (h *Hub) JoinRoom(playerID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]bool)
	}
	h.rooms[roomID][playerID] = true
}

// LeaveRoom removes a player from a room's delivery set without
// dropping the connection binding.
func (h *Hub) LeaveRoom(playerID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoomLocked(playerID, roomID)
}

// ClientCount returns the number of connected players.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomClientCount returns the number of players in a room's delivery
// set.
func (h *Hub) RoomClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) removeFromRoomLocked(playerID, roomID string) {
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, playerID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) deliver(ev *queuedEvent) {
	data, err := json.Marshal(ev.envelope)
	if err != nil {
		log.Printf("[hub] Failed to marshal %s event: %v", ev.envelope.Type, err)
		return
	}

	// Writes happen outside the lock so a failed client can be
	// unregistered on the spot.
	for _, client := range h.recipients(ev) {
		if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[hub] Dropping player %s after write failure: %v", client.PlayerID, err)
			h.Unregister(client.PlayerID)
		}
	}
}

func (h *Hub) recipients(ev *queuedEvent) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if ev.sendTo != "" {
		if client, ok := h.clients[ev.sendTo]; ok {
			return []*Client{client}
		}
		return nil
	}

	members, ok := h.rooms[ev.roomID]
	if !ok {
		return nil
	}
	targets := make([]*Client, 0, len(members))
	for playerID := range members {
		if playerID == ev.except {
			continue
		}
		if client, ok := h.clients[playerID]; ok {
			targets = append(targets, client)
		}
	}
	return targets
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		_ = client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
	h.rooms = make(map[string]map[string]bool)
}
