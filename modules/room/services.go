package room

import (
	"context"
	"time"

	"github.com/go-monolith/mono"

	"github.com/example/room-coordinator/events"
)

// createRoom handles the create-room service request.
func (m *Module) createRoom(_ context.Context, req CreateRoomRequest, _ *mono.Msg) (CreateRoomResponse, error) {
	if err := ValidateRoomName(req.RoomName); err != nil {
		return CreateRoomResponse{}, err
	}
	if err := ValidatePlayerName(req.PlayerName); err != nil {
		return CreateRoomResponse{}, err
	}
	if err := ValidateCapacity(req.MaxPlayers); err != nil {
		return CreateRoomResponse{}, err
	}

	room, host := m.store.CreateRoom(req.RoomName, req.PlayerName, req.MaxPlayers)

	if m.eventBus != nil {
		event := events.RoomCreatedEvent{
			RoomID:     room.ID,
			RoomName:   room.Name,
			HostID:     host.ID,
			MaxPlayers: room.MaxPlayers,
			Timestamp:  time.Now(),
		}
		if err := events.RoomCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish RoomCreated event", "error", err)
		}
	}

	m.logger.Info("Room created",
		"roomID", room.ID, "hostID", host.ID, "maxPlayers", room.MaxPlayers)
	return CreateRoomResponse{Room: room, Player: host}, nil
}

// joinRoom handles the join-room service request. A valid
// existingPlayerID makes it an idempotent reconnection.
func (m *Module) joinRoom(_ context.Context, req JoinRoomRequest, _ *mono.Msg) (JoinRoomResponse, error) {
	if err := ValidatePlayerName(req.PlayerName); err != nil {
		return JoinRoomResponse{}, err
	}

	room, player, reconnected, err := m.store.JoinRoom(req.RoomID, req.PlayerName, req.ExistingPlayerID)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	if reconnected {
		m.logger.Info("Player reconnected", "roomID", room.ID, "playerID", player.ID)
	} else {
		if m.eventBus != nil {
			event := events.PlayerJoinedEvent{
				RoomID:     room.ID,
				PlayerID:   player.ID,
				PlayerName: player.Name,
				Timestamp:  time.Now(),
			}
			if err := events.PlayerJoinedV1.Publish(m.eventBus, event, nil); err != nil {
				m.logger.Warn("Failed to publish PlayerJoined event", "error", err)
			}
		}
		m.logger.Info("Player joined", "roomID", room.ID, "playerID", player.ID)
	}
	return JoinRoomResponse{Room: room, Player: player, Reconnected: reconnected}, nil
}

// leaveRoom handles the leave-room service request (voluntary leave).
func (m *Module) leaveRoom(_ context.Context, req LeaveRoomRequest, _ *mono.Msg) (LeaveRoomResponse, error) {
	res, ok := m.store.LeaveRoom(req.PlayerID)
	if !ok {
		return LeaveRoomResponse{Left: false}, nil
	}

	m.publishDeparture(res, true)
	m.logger.Info("Player left",
		"roomID", res.RoomID, "playerID", res.PlayerID, "voluntary", true)
	return LeaveRoomResponse{
		Left:        true,
		RoomClosed:  res.RoomClosed,
		NewHostID:   res.NewHostID,
		NewHostName: res.NewHostName,
	}, nil
}

// disconnectPlayer handles the disconnect-player service request
// (involuntary: transport failure or heartbeat timeout).
func (m *Module) disconnectPlayer(_ context.Context, req DisconnectPlayerRequest, _ *mono.Msg) (DisconnectPlayerResponse, error) {
	res, ok := m.store.Disconnect(req.PlayerID)
	if !ok {
		return DisconnectPlayerResponse{Disconnected: false}, nil
	}

	if res.NewHostID != "" && m.eventBus != nil {
		event := events.HostChangedEvent{
			RoomID:      res.RoomID,
			NewHostID:   res.NewHostID,
			NewHostName: res.NewHostName,
			Timestamp:   time.Now(),
		}
		if err := events.HostChangedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish HostChanged event", "error", err)
		}
	}

	m.logger.Info("Player disconnected",
		"roomID", res.RoomID, "playerID", req.PlayerID,
		"voluntary", false, "wasHost", res.WasHost)
	return DisconnectPlayerResponse{
		Disconnected: true,
		WasHost:      res.WasHost,
		NewHostID:    res.NewHostID,
	}, nil
}

// reapDisconnected handles the reap-disconnected service request,
// removing slots whose grace window expired.
func (m *Module) reapDisconnected(_ context.Context, _ ReapDisconnectedRequest, _ *mono.Msg) (ReapDisconnectedResponse, error) {
	results := m.store.ReapDisconnected()

	removed := make([]string, 0, len(results))
	for _, res := range results {
		removed = append(removed, res.PlayerID)
		m.publishDeparture(res, false)
		m.logger.Info("Reaped disconnected player",
			"roomID", res.RoomID, "playerID", res.PlayerID)
	}
	return ReapDisconnectedResponse{RemovedPlayerIDs: removed}, nil
}

// sendMessage handles the send-message service request.
func (m *Module) sendMessage(_ context.Context, req SendMessageRequest, _ *mono.Msg) (SendMessageResponse, error) {
	if err := ValidateMessage(req.Content); err != nil {
		return SendMessageResponse{}, err
	}

	msg, err := m.store.AddMessage(req.RoomID, req.SenderID, req.Content)
	if err != nil {
		return SendMessageResponse{}, err
	}

	if m.eventBus != nil {
		event := events.MessageSentEvent{
			RoomID:    req.RoomID,
			MessageID: msg.ID,
			SenderID:  msg.SenderID,
			Timestamp: time.Now(),
		}
		if err := events.MessageSentV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish MessageSent event", "error", err)
		}
	}
	return SendMessageResponse{Message: msg}, nil
}

// setReady handles the set-ready service request.
func (m *Module) setReady(_ context.Context, req SetReadyRequest, _ *mono.Msg) (SetReadyResponse, error) {
	return SetReadyResponse{Updated: m.store.UpdateReady(req.PlayerID, req.IsReady)}, nil
}

// updatePreset handles the update-preset service request.
func (m *Module) updatePreset(_ context.Context, req UpdatePresetRequest, _ *mono.Msg) (UpdatePresetResponse, error) {
	return UpdatePresetResponse{Updated: m.store.UpdatePreset(req.PlayerID, req.PresetID)}, nil
}

// listRooms handles the list-rooms service request (joinable only).
func (m *Module) listRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	return ListRoomsResponse{Rooms: m.store.ListJoinable()}, nil
}

// joinableCount handles the joinable-count service request.
func (m *Module) joinableCount(_ context.Context, _ JoinableCountRequest, _ *mono.Msg) (JoinableCountResponse, error) {
	return JoinableCountResponse{Count: len(m.store.ListJoinable())}, nil
}

// publishDeparture emits the PlayerLeft (and HostChanged / RoomClosed)
// telemetry for a removed slot. Publishing is best-effort.
func (m *Module) publishDeparture(res LeaveResult, voluntary bool) {
	if m.eventBus == nil {
		return
	}

	left := events.PlayerLeftEvent{
		RoomID:     res.RoomID,
		PlayerID:   res.PlayerID,
		PlayerName: res.PlayerName,
		Voluntary:  voluntary,
		Timestamp:  time.Now(),
	}
	if err := events.PlayerLeftV1.Publish(m.eventBus, left, nil); err != nil {
		m.logger.Warn("Failed to publish PlayerLeft event", "error", err)
	}

	if res.NewHostID != "" {
		changed := events.HostChangedEvent{
			RoomID:      res.RoomID,
			NewHostID:   res.NewHostID,
			NewHostName: res.NewHostName,
			Timestamp:   time.Now(),
		}
		if err := events.HostChangedV1.Publish(m.eventBus, changed, nil); err != nil {
			m.logger.Warn("Failed to publish HostChanged event", "error", err)
		}
	}

	if res.RoomClosed {
		closed := events.RoomClosedEvent{
			RoomID:    res.RoomID,
			Timestamp: time.Now(),
		}
		if err := events.RoomClosedV1.Publish(m.eventBus, closed, nil); err != nil {
			m.logger.Warn("Failed to publish RoomClosed event", "error", err)
		}
	}
}
