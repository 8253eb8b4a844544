package protocol

import (
	"encoding/json"
	"testing"
)

func TestDecodeClientEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantType    ClientEventType
		expectError bool
	}{
		{
			name:     "create room",
			raw:      `{"type":"CREATE_ROOM","data":{"roomName":"Lobby","playerName":"alice"}}`,
			wantType: ClientCreateRoom,
		},
		{
			name:     "join room",
			raw:      `{"type":"JOIN_ROOM","data":{"roomId":"r1","playerName":"bob"}}`,
			wantType: ClientJoinRoom,
		},
		{
			name:     "heartbeat without data",
			raw:      `{"type":"HEARTBEAT"}`,
			wantType: ClientHeartbeat,
		},
		{
			name:        "unknown type",
			raw:         `{"type":"DANCE","data":{}}`,
			expectError: true,
		},
		{
			name:        "missing type",
			raw:         `{"data":{}}`,
			expectError: true,
		},
		{
			name:        "not json",
			raw:         `this is not json`,
			expectError: true,
		},
		{
			name:        "wrong-case type",
			raw:         `{"type":"create_room"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeClientEnvelope([]byte(tt.raw))

			if tt.expectError {
				if err == nil {
					t.Error("DecodeClientEnvelope() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("DecodeClientEnvelope() unexpected error: %v", err)
			}
			if env.Type != tt.wantType {
				t.Errorf("DecodeClientEnvelope() type = %q, want %q", env.Type, tt.wantType)
			}
		})
	}
}

func TestDecodeClientEnvelope_PayloadPassthrough(t *testing.T) {
	raw := `{"type":"SEND_MESSAGE","data":{"content":"hello"}}`
	env, err := DecodeClientEnvelope([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeClientEnvelope() unexpected error: %v", err)
	}

	var d SendMessageData
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("payload decode failed: %v", err)
	}
	if d.Content != "hello" {
		t.Errorf("Content = %q, want %q", d.Content, "hello")
	}
}

func TestNewServerEnvelope(t *testing.T) {
	env := NewServerEnvelope(ServerRoomState, RoomStateData{})

	if env.ID == "" {
		t.Error("NewServerEnvelope() ID should not be empty")
	}
	if env.Type != ServerRoomState {
		t.Errorf("NewServerEnvelope() type = %q, want ROOM_STATE", env.Type)
	}
	if env.Timestamp == 0 {
		t.Error("NewServerEnvelope() Timestamp should be set")
	}

	other := NewServerEnvelope(ServerRoomState, RoomStateData{})
	if other.ID == env.ID {
		t.Error("NewServerEnvelope() ids should be unique per event")
	}
}

func TestServerEnvelope_WireFormat(t *testing.T) {
	env := NewServerEnvelope(ServerError, ErrorData{Message: "nope"})
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"id", "type", "data", "timestamp"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("wire envelope missing %q field", key)
		}
	}
}

func TestUnknownEventError(t *testing.T) {
	if got := (&UnknownEventError{Type: "DANCE"}).Error(); got != "unknown event type: DANCE" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&UnknownEventError{}).Error(); got != "missing event type" {
		t.Errorf("Error() = %q", got)
	}
}
