package room

import (
	"errors"
	"unicode/utf8"

	domain "github.com/example/room-coordinator/domain/room"
)

// Service names registered in the service container.
const (
	ServiceCreateRoom       = "create-room"
	ServiceJoinRoom         = "join-room"
	ServiceLeaveRoom        = "leave-room"
	ServiceDisconnectPlayer = "disconnect-player"
	ServiceReapDisconnected = "reap-disconnected"
	ServiceSendMessage      = "send-message"
	ServiceSetReady         = "set-ready"
	ServiceUpdatePreset     = "update-preset"
	ServiceListRooms        = "list-rooms"
	ServiceJoinableCount    = "joinable-count"
)

// Validation constants.
const (
	MaxPlayerNameLength = 50
	MaxRoomNameLength   = 100
	MaxMessageLength    = 5000
	MaxRoomCapacity     = 16
)

// Validation errors.
var (
	ErrPlayerNameEmpty   = errors.New("player name cannot be empty")
	ErrPlayerNameTooLong = errors.New("player name exceeds maximum length")
	ErrPlayerNameInvalid = errors.New("player name contains invalid characters")
	ErrRoomNameEmpty     = errors.New("room name cannot be empty")
	ErrRoomNameTooLong   = errors.New("room name exceeds maximum length")
	ErrRoomNameInvalid   = errors.New("room name contains invalid characters")
	ErrMessageEmpty      = errors.New("message content cannot be empty")
	ErrMessageTooLong    = errors.New("message exceeds maximum length")
	ErrMessageInvalid    = errors.New("message contains invalid characters")
	ErrCapacityInvalid   = errors.New("max players out of range")
)

// ValidatePlayerName validates a display name.
func ValidatePlayerName(name string) error {
	if name == "" {
		return ErrPlayerNameEmpty
	}
	if len(name) > MaxPlayerNameLength {
		return ErrPlayerNameTooLong
	}
	if !utf8.ValidString(name) {
		return ErrPlayerNameInvalid
	}
	return nil
}

// ValidateRoomName validates a room label.
func ValidateRoomName(name string) error {
	if name == "" {
		return ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLength {
		return ErrRoomNameTooLong
	}
	if !utf8.ValidString(name) {
		return ErrRoomNameInvalid
	}
	return nil
}

// ValidateMessage validates chat message content.
func ValidateMessage(content string) error {
	if content == "" {
		return ErrMessageEmpty
	}
	if len(content) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if !utf8.ValidString(content) {
		return ErrMessageInvalid
	}
	return nil
}

// ValidateCapacity validates a requested room size. Zero means "use
// the default" and is allowed.
func ValidateCapacity(maxPlayers int) error {
	if maxPlayers < 0 || maxPlayers > MaxRoomCapacity {
		return ErrCapacityInvalid
	}
	return nil
}

// Request/response types for the container services.

type CreateRoomRequest struct {
	RoomName   string `json:"room_name"`
	PlayerName string `json:"player_name"`
	MaxPlayers int    `json:"max_players"`
}

type CreateRoomResponse struct {
	Room   *domain.Room   `json:"room"`
	Player *domain.Player `json:"player"`
}

type JoinRoomRequest struct {
	RoomID           string `json:"room_id"`
	PlayerName       string `json:"player_name"`
	ExistingPlayerID string `json:"existing_player_id,omitempty"`
}

type JoinRoomResponse struct {
	Room        *domain.Room   `json:"room"`
	Player      *domain.Player `json:"player"`
	Reconnected bool           `json:"reconnected"`
}

type LeaveRoomRequest struct {
	PlayerID string `json:"player_id"`
}

type LeaveRoomResponse struct {
	Left        bool   `json:"left"`
	RoomClosed  bool   `json:"room_closed"`
	NewHostID   string `json:"new_host_id,omitempty"`
	NewHostName string `json:"new_host_name,omitempty"`
}

type DisconnectPlayerRequest struct {
	PlayerID string `json:"player_id"`
}

type DisconnectPlayerResponse struct {
	Disconnected bool   `json:"disconnected"`
	WasHost      bool   `json:"was_host"`
	NewHostID    string `json:"new_host_id,omitempty"`
}

type ReapDisconnectedRequest struct{}

type ReapDisconnectedResponse struct {
	RemovedPlayerIDs []string `json:"removed_player_ids"`
}

type SendMessageRequest struct {
	RoomID   string `json:"room_id"`
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
}

type SendMessageResponse struct {
	Message domain.Message `json:"message"`
}

type SetReadyRequest struct {
	PlayerID string `json:"player_id"`
	IsReady  bool   `json:"is_ready"`
}

type SetReadyResponse struct {
	Updated bool `json:"updated"`
}

type UpdatePresetRequest struct {
	PlayerID string `json:"player_id"`
	PresetID string `json:"preset_id"`
}

type UpdatePresetResponse struct {
	Updated bool `json:"updated"`
}

type ListRoomsRequest struct{}

type ListRoomsResponse struct {
	Rooms []*domain.Room `json:"rooms"`
}

type JoinableCountRequest struct{}

type JoinableCountResponse struct {
	Count int `json:"count"`
}
