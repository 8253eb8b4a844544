// Package protocol defines the JSON wire format shared by the gateway
// and the broadcast hub. Client and server events use the same envelope
// shape; the server assigns id and timestamp on the way out.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ClientEventType enumerates every inbound event. The set is closed:
// the gateway matches exhaustively and rejects anything else with an
// ERROR reply instead of falling through silently.
type ClientEventType string

const (
	ClientCreateRoom   ClientEventType = "CREATE_ROOM"
	ClientJoinRoom     ClientEventType = "JOIN_ROOM"
	ClientLeaveRoom    ClientEventType = "LEAVE_ROOM"
	ClientSendMessage  ClientEventType = "SEND_MESSAGE"
	ClientUpdatePreset ClientEventType = "UPDATE_PRESET"
	ClientSetReady     ClientEventType = "SET_READY"
	ClientHeartbeat    ClientEventType = "HEARTBEAT"
)

// ServerEventType enumerates every outbound event.
type ServerEventType string

const (
	ServerRoomCreated        ServerEventType = "ROOM_CREATED"
	ServerRoomJoined         ServerEventType = "ROOM_JOINED"
	ServerRoomState          ServerEventType = "ROOM_STATE"
	ServerPlayerJoined       ServerEventType = "PLAYER_JOINED"
	ServerPlayerLeft         ServerEventType = "PLAYER_LEFT"
	ServerHostChanged        ServerEventType = "HOST_CHANGED"
	ServerNewMessage         ServerEventType = "NEW_MESSAGE"
	ServerPresetUpdated      ServerEventType = "PRESET_UPDATED"
	ServerPlayerReadyChanged ServerEventType = "PLAYER_READY_CHANGED"
	ServerHeartbeatAck       ServerEventType = "HEARTBEAT_ACK"
	ServerError              ServerEventType = "ERROR"
)

// ClientEnvelope is an inbound frame. Clients omit id and timestamp.
type ClientEnvelope struct {
	Type ClientEventType `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerEnvelope is an outbound frame.
type ServerEnvelope struct {
	ID        string          `json:"id"`
	Type      ServerEventType `json:"type"`
	Data      any             `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// NewServerEnvelope stamps an outbound event with a fresh id and the
// current epoch-millisecond timestamp.
func NewServerEnvelope(eventType ServerEventType, data any) ServerEnvelope {
	return ServerEnvelope{
		ID:        uuid.New().String(),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// DecodeClientEnvelope parses an inbound frame. A nil error guarantees
// a recognized type; Data may still fail payload-level decoding.
func DecodeClientEnvelope(raw []byte) (ClientEnvelope, error) {
	var env ClientEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ClientEnvelope{}, err
	}
	switch env.Type {
	case ClientCreateRoom, ClientJoinRoom, ClientLeaveRoom,
		ClientSendMessage, ClientUpdatePreset, ClientSetReady, ClientHeartbeat:
		return env, nil
	}
	return ClientEnvelope{}, &UnknownEventError{Type: string(env.Type)}
}

// UnknownEventError reports an unrecognized inbound event type.
type UnknownEventError struct {
	Type string
}

func (e *UnknownEventError) Error() string {
	if e.Type == "" {
		return "missing event type"
	}
	return "unknown event type: " + e.Type
}
