package room

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/room-coordinator/domain/room"
)

// RoomPort is the interface other modules use to drive room state.
type RoomPort interface {
	CreateRoom(ctx context.Context, roomName, playerName string, maxPlayers int) (*domain.Room, *domain.Player, error)
	JoinRoom(ctx context.Context, roomID, playerName, existingPlayerID string) (*domain.Room, *domain.Player, bool, error)
	LeaveRoom(ctx context.Context, playerID string) (bool, error)
	DisconnectPlayer(ctx context.Context, playerID string) (bool, error)
	ReapDisconnected(ctx context.Context) ([]string, error)
	SendMessage(ctx context.Context, roomID, senderID, content string) (domain.Message, error)
	SetReady(ctx context.Context, playerID string, isReady bool) (bool, error)
	UpdatePreset(ctx context.Context, playerID, presetID string) (bool, error)
	ListRooms(ctx context.Context) ([]*domain.Room, error)
	JoinableCount(ctx context.Context) (int, error)
}

// roomAdapter wraps the ServiceContainer for type-safe cross-module
// calls into the room module.
type roomAdapter struct {
	container mono.ServiceContainer
}

// NewRoomAdapter creates an adapter for the room services. container
// is received via SetDependencyServiceContainer.
func NewRoomAdapter(container mono.ServiceContainer) RoomPort {
	if container == nil {
		panic("room adapter requires non-nil ServiceContainer")
	}
	return &roomAdapter{container: container}
}

func call[TReq any, TResp any](a *roomAdapter, ctx context.Context, service string, req *TReq, resp *TResp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

func (a *roomAdapter) CreateRoom(ctx context.Context, roomName, playerName string, maxPlayers int) (*domain.Room, *domain.Player, error) {
	req := CreateRoomRequest{RoomName: roomName, PlayerName: playerName, MaxPlayers: maxPlayers}
	var resp CreateRoomResponse
	if err := call(a, ctx, ServiceCreateRoom, &req, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Room, resp.Player, nil
}

func (a *roomAdapter) JoinRoom(ctx context.Context, roomID, playerName, existingPlayerID string) (*domain.Room, *domain.Player, bool, error) {
	req := JoinRoomRequest{RoomID: roomID, PlayerName: playerName, ExistingPlayerID: existingPlayerID}
	var resp JoinRoomResponse
	if err := call(a, ctx, ServiceJoinRoom, &req, &resp); err != nil {
		return nil, nil, false, err
	}
	return resp.Room, resp.Player, resp.Reconnected, nil
}

func (a *roomAdapter) LeaveRoom(ctx context.Context, playerID string) (bool, error) {
	req := LeaveRoomRequest{PlayerID: playerID}
	var resp LeaveRoomResponse
	if err := call(a, ctx, ServiceLeaveRoom, &req, &resp); err != nil {
		return false, err
	}
	return resp.Left, nil
}

func (a *roomAdapter) DisconnectPlayer(ctx context.Context, playerID string) (bool, error) {
	req := DisconnectPlayerRequest{PlayerID: playerID}
	var resp DisconnectPlayerResponse
	if err := call(a, ctx, ServiceDisconnectPlayer, &req, &resp); err != nil {
		return false, err
	}
	return resp.Disconnected, nil
}

func (a *roomAdapter) ReapDisconnected(ctx context.Context) ([]string, error) {
	req := ReapDisconnectedRequest{}
	var resp ReapDisconnectedResponse
	if err := call(a, ctx, ServiceReapDisconnected, &req, &resp); err != nil {
		return nil, err
	}
	return resp.RemovedPlayerIDs, nil
}

func (a *roomAdapter) SendMessage(ctx context.Context, roomID, senderID, content string) (domain.Message, error) {
	req := SendMessageRequest{RoomID: roomID, SenderID: senderID, Content: content}
	var resp SendMessageResponse
	if err := call(a, ctx, ServiceSendMessage, &req, &resp); err != nil {
		return domain.Message{}, err
	}
	return resp.Message, nil
}

func (a *roomAdapter) SetReady(ctx context.Context, playerID string, isReady bool) (bool, error) {
	req := SetReadyRequest{PlayerID: playerID, IsReady: isReady}
	var resp SetReadyResponse
	if err := call(a, ctx, ServiceSetReady, &req, &resp); err != nil {
		return false, err
	}
	return resp.Updated, nil
}

func (a *roomAdapter) UpdatePreset(ctx context.Context, playerID, presetID string) (bool, error) {
	req := UpdatePresetRequest{PlayerID: playerID, PresetID: presetID}
	var resp UpdatePresetResponse
	if err := call(a, ctx, ServiceUpdatePreset, &req, &resp); err != nil {
		return false, err
	}
	return resp.Updated, nil
}

func (a *roomAdapter) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := call(a, ctx, ServiceListRooms, &req, &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

func (a *roomAdapter) JoinableCount(ctx context.Context) (int, error) {
	req := JoinableCountRequest{}
	var resp JoinableCountResponse
	if err := call(a, ctx, ServiceJoinableCount, &req, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
