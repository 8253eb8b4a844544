package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// RoomCreatedEvent is emitted when a room is created.
type RoomCreatedEvent struct {
	RoomID     string    `json:"room_id"`
	RoomName   string    `json:"room_name"`
	HostID     string    `json:"host_id"`
	MaxPlayers int       `json:"max_players"`
	Timestamp  time.Time `json:"timestamp"`
}

// RoomClosedEvent is emitted when the last player leaves and the room
// is deleted.
type RoomClosedEvent struct {
	RoomID    string    `json:"room_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PlayerJoinedEvent is emitted when a new player joins a room.
// Reconnections do not emit it.
type PlayerJoinedEvent struct {
	RoomID     string    `json:"room_id"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// PlayerLeftEvent is emitted when a player's slot is removed.
// Voluntary is false for heartbeat timeouts and transport failures.
type PlayerLeftEvent struct {
	RoomID     string    `json:"room_id"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Voluntary  bool      `json:"voluntary"`
	Timestamp  time.Time `json:"timestamp"`
}

// HostChangedEvent is emitted when host authority transfers.
type HostChangedEvent struct {
	RoomID      string    `json:"room_id"`
	NewHostID   string    `json:"new_host_id"`
	NewHostName string    `json:"new_host_name"`
	Timestamp   time.Time `json:"timestamp"`
}

// MessageSentEvent is emitted when a chat message is accepted.
type MessageSentEvent struct {
	RoomID    string    `json:"room_id"`
	MessageID string    `json:"message_id"`
	SenderID  string    `json:"sender_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the room domain.
var (
	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"room",
		"RoomCreated",
		"v1",
	)

	RoomClosedV1 = helper.EventDefinition[RoomClosedEvent](
		"room",
		"RoomClosed",
		"v1",
	)

	PlayerJoinedV1 = helper.EventDefinition[PlayerJoinedEvent](
		"room",
		"PlayerJoined",
		"v1",
	)

	PlayerLeftV1 = helper.EventDefinition[PlayerLeftEvent](
		"room",
		"PlayerLeft",
		"v1",
	)

	HostChangedV1 = helper.EventDefinition[HostChangedEvent](
		"room",
		"HostChanged",
		"v1",
	)

	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"room",
		"MessageSent",
		"v1",
	)
)
