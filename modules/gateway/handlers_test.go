package gateway

import (
	"context"
	"encoding/json"
	"testing"

	domain "github.com/example/room-coordinator/domain/room"
	"github.com/example/room-coordinator/modules/broadcast"
	"github.com/example/room-coordinator/modules/registry"
	"github.com/example/room-coordinator/protocol"
)

// fakeRoomPort serves the frame-handling tests with canned room state.
type fakeRoomPort struct {
	createCalls int
	panicNext   bool
}

func (f *fakeRoomPort) CreateRoom(_ context.Context, roomName, playerName string, maxPlayers int) (*domain.Room, *domain.Player, error) {
	f.createCalls++
	if f.panicNext {
		f.panicNext = false
		panic("store exploded")
	}
	player := &domain.Player{ID: "p1", Name: playerName, Connected: true}
	return &domain.Room{
		ID:         "r1",
		Name:       roomName,
		HostID:     player.ID,
		Players:    []*domain.Player{player},
		Status:     domain.StatusWaiting,
		MaxPlayers: maxPlayers,
	}, player, nil
}

func (f *fakeRoomPort) JoinRoom(context.Context, string, string, string) (*domain.Room, *domain.Player, bool, error) {
	return nil, nil, false, domain.ErrRoomNotFound
}
func (f *fakeRoomPort) LeaveRoom(context.Context, string) (bool, error)        { return true, nil }
func (f *fakeRoomPort) DisconnectPlayer(context.Context, string) (bool, error) { return true, nil }
func (f *fakeRoomPort) ReapDisconnected(context.Context) ([]string, error)     { return nil, nil }
func (f *fakeRoomPort) SendMessage(context.Context, string, string, string) (domain.Message, error) {
	return domain.Message{}, nil
}
func (f *fakeRoomPort) SetReady(context.Context, string, bool) (bool, error) { return true, nil }
func (f *fakeRoomPort) UpdatePreset(context.Context, string, string) (bool, error) {
	return true, nil
}
func (f *fakeRoomPort) ListRooms(context.Context) ([]*domain.Room, error) { return nil, nil }
func (f *fakeRoomPort) JoinableCount(context.Context) (int, error)        { return 0, nil }

// fakeConn captures frames written back to the client.
type fakeConn struct {
	frames [][]byte
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) Close() error { return nil }

func (f *fakeConn) lastEnvelope(t *testing.T) protocol.ServerEnvelope {
	t.Helper()
	if len(f.frames) == 0 {
		t.Fatal("no frames written")
	}
	var env protocol.ServerEnvelope
	if err := json.Unmarshal(f.frames[len(f.frames)-1], &env); err != nil {
		t.Fatalf("last frame is not a server envelope: %v", err)
	}
	return env
}

func newTestGateway() (*GatewayModule, *fakeRoomPort) {
	rooms := &fakeRoomPort{}
	return &GatewayModule{
		rooms:    rooms,
		hub:      broadcast.NewHub(),
		registry: registry.New(),
	}, rooms
}

func createFrame(t *testing.T) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"type": "CREATE_ROOM",
		"data": protocol.CreateRoomData{RoomName: "Lobby", PlayerName: "alice", MaxPlayers: 4},
	})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return raw
}

func TestHandleFrame_MalformedInputKeepsServing(t *testing.T) {
	m, rooms := newTestGateway()
	conn := &fakeConn{}
	sess := &session{}

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `{not json`},
		{name: "unknown type", raw: `{"type":"LAUNCH_MISSILES","data":{}}`},
		{name: "missing type", raw: `{"data":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.handleFrame(conn, sess, []byte(tt.raw))
			if got := conn.lastEnvelope(t); got.Type != protocol.ServerError {
				t.Errorf("reply = %s, want ERROR", got.Type)
			}
		})
	}

	// The connection stayed bound to nothing and still serves a valid
	// frame afterwards.
	m.handleFrame(conn, sess, createFrame(t))
	if got := conn.lastEnvelope(t); got.Type != protocol.ServerRoomCreated {
		t.Errorf("reply after malformed frames = %s, want ROOM_CREATED", got.Type)
	}
	if rooms.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", rooms.createCalls)
	}
	if sess.playerID != "p1" {
		t.Errorf("session playerID = %q, want p1", sess.playerID)
	}
}

func TestHandleFrame_CreateWhileBoundIsRejected(t *testing.T) {
	m, rooms := newTestGateway()
	conn := &fakeConn{}
	sess := &session{}

	m.handleFrame(conn, sess, createFrame(t))
	m.handleFrame(conn, sess, createFrame(t))

	got := conn.lastEnvelope(t)
	if got.Type != protocol.ServerError {
		t.Fatalf("reply = %s, want ERROR", got.Type)
	}
	var decoded struct {
		Data protocol.ErrorData `json:"data"`
	}
	if err := json.Unmarshal(conn.frames[len(conn.frames)-1], &decoded); err != nil {
		t.Fatalf("decode ERROR frame: %v", err)
	}
	if decoded.Data.Message != "Already in a room" {
		t.Errorf("ERROR message = %q, want %q", decoded.Data.Message, "Already in a room")
	}
	if rooms.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1 (second attempt must not reach the store)", rooms.createCalls)
	}
}

func TestHandleFrame_PanicIsConfinedToTheFrame(t *testing.T) {
	m, rooms := newTestGateway()
	conn := &fakeConn{}
	sess := &session{}

	rooms.panicNext = true
	m.handleFrame(conn, sess, createFrame(t))
	if got := conn.lastEnvelope(t); got.Type != protocol.ServerError {
		t.Fatalf("reply after panic = %s, want ERROR", got.Type)
	}
	if sess.playerID != "" {
		t.Errorf("session playerID = %q after failed create, want empty", sess.playerID)
	}

	// The next frame on the same connection is handled normally.
	m.handleFrame(conn, sess, createFrame(t))
	if got := conn.lastEnvelope(t); got.Type != protocol.ServerRoomCreated {
		t.Errorf("reply after recovery = %s, want ROOM_CREATED", got.Type)
	}
}

func TestHandleHeartbeat(t *testing.T) {
	m, _ := newTestGateway()
	heartbeat := []byte(`{"type":"HEARTBEAT","data":{}}`)

	t.Run("unbound connection gets an error", func(t *testing.T) {
		conn := &fakeConn{}
		m.handleFrame(conn, &session{}, heartbeat)
		if got := conn.lastEnvelope(t); got.Type != protocol.ServerError {
			t.Errorf("reply = %s, want ERROR", got.Type)
		}
	})

	t.Run("bound player gets an ack", func(t *testing.T) {
		conn := &fakeConn{}
		sess := &session{}
		m.handleFrame(conn, sess, createFrame(t))
		m.handleFrame(conn, sess, heartbeat)
		if got := conn.lastEnvelope(t); got.Type != protocol.ServerHeartbeatAck {
			t.Errorf("reply = %s, want HEARTBEAT_ACK", got.Type)
		}
	})
}
