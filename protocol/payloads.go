package protocol

import (
	domain "github.com/example/room-coordinator/domain/room"
)

// DefaultMaxPlayers applies when CREATE_ROOM omits maxPlayers.
const DefaultMaxPlayers = 6

// Inbound payloads.

type CreateRoomData struct {
	RoomName   string `json:"roomName"`
	PlayerName string `json:"playerName"`
	MaxPlayers int    `json:"maxPlayers,omitempty"`
}

type JoinRoomData struct {
	RoomID           string `json:"roomId"`
	PlayerName       string `json:"playerName"`
	ExistingPlayerID string `json:"existingPlayerId,omitempty"`
}

type SendMessageData struct {
	Content string `json:"content"`
}

type UpdatePresetData struct {
	CharacterPresetID string `json:"characterPresetId"`
}

type SetReadyData struct {
	IsReady bool `json:"isReady"`
}

// Outbound payloads.

type RoomCreatedData struct {
	Room     *domain.Room `json:"room"`
	PlayerID string       `json:"playerId"`
}

type RoomJoinedData struct {
	Room     *domain.Room `json:"room"`
	PlayerID string       `json:"playerId"`
}

type RoomStateData struct {
	Room *domain.Room `json:"room"`
}

type PlayerJoinedData struct {
	Player *domain.Player `json:"player"`
}

type PlayerLeftData struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type HostChangedData struct {
	NewHostID   string `json:"newHostId"`
	NewHostName string `json:"newHostName"`
}

type NewMessageData struct {
	Message domain.Message `json:"message"`
}

type PresetUpdatedData struct {
	PlayerID          string `json:"playerId"`
	CharacterPresetID string `json:"characterPresetId"`
}

type PlayerReadyChangedData struct {
	PlayerID string `json:"playerId"`
	IsReady  bool   `json:"isReady"`
}

type HeartbeatAckData struct {
	Timestamp int64 `json:"timestamp"`
}

type ErrorData struct {
	Message string `json:"message"`
}
