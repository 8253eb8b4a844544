package room

import (
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/example/room-coordinator/domain/room"
	"github.com/example/room-coordinator/protocol"
)

// Broadcaster delivers room-scoped events to connected members. The
// store enqueues while holding its lock, so the per-room delivery
// order always matches the mutation order.
type Broadcaster interface {
	Broadcast(roomID string, eventType protocol.ServerEventType, data any)
	BroadcastExcept(roomID, exceptPlayerID string, eventType protocol.ServerEventType, data any)
}

// Config controls store behavior.
type Config struct {
	// MaxChatHistory caps per-room chat history; oldest entries are
	// dropped first.
	MaxChatHistory int
	// GraceWindow is how long an involuntarily disconnected player
	// keeps their slot before removal.
	GraceWindow time.Duration
	// Presets is the room-level catalog of character preset ids
	// offered to every new room.
	Presets []string
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		MaxChatHistory: 100,
		GraceWindow:    45 * time.Second,
	}
}

// Store is the sole authority over rooms and their members. A single
// mutex spans every multi-step mutation (remove player, reassign host,
// maybe delete room, enqueue broadcasts) so the invariants hold as a
// unit.
type Store struct {
	mu          sync.Mutex
	rooms       map[string]*domain.Room
	playerRooms map[string]string // playerID -> roomID
	joinSeq     int64
	cfg         Config
	broadcaster Broadcaster
	now         func() time.Time
}

// NewStore creates a store that fans room events out through b.
func NewStore(cfg Config, b Broadcaster) *Store {
	if cfg.MaxChatHistory <= 0 {
		cfg.MaxChatHistory = 100
	}
	if cfg.GraceWindow <= 0 {
		cfg.GraceWindow = 45 * time.Second
	}
	return &Store{
		rooms:       make(map[string]*domain.Room),
		playerRooms: make(map[string]string),
		cfg:         cfg,
		broadcaster: b,
		now:         time.Now,
	}
}

// CreateRoom allocates a room with its creator as sole member and
// host. It always succeeds.
func (s *Store) CreateRoom(roomName, hostName string, maxPlayers int) (*domain.Room, *domain.Player) {
	if maxPlayers <= 0 {
		maxPlayers = protocol.DefaultMaxPlayers
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nowMs := s.now().UnixMilli()
	s.joinSeq++
	host := &domain.Player{
		ID:        uuid.New().String(),
		Name:      hostName,
		JoinedAt:  nowMs,
		JoinSeq:   s.joinSeq,
		Connected: true,
	}
	room := &domain.Room{
		ID:         uuid.New().String(),
		Name:       roomName,
		HostID:     host.ID,
		Players:    []*domain.Player{host},
		Chat:       make([]domain.Message, 0),
		Presets:    append([]string(nil), s.cfg.Presets...),
		Status:     domain.StatusWaiting,
		MaxPlayers: maxPlayers,
		CreatedAt:  nowMs,
	}
	s.rooms[room.ID] = room
	s.playerRooms[host.ID] = room.ID

	hostCopy := *host
	return snapshotRoom(room), &hostCopy
}

// JoinRoom adds a new player, or restores an existing slot when
// existingPlayerID names a current member of the room (reconnection).
// Reconnection is idempotent and bypasses the capacity check.
func (s *Store) JoinRoom(roomID, playerName, existingPlayerID string) (*domain.Room, *domain.Player, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, nil, false, domain.ErrRoomNotFound
	}

	if existingPlayerID != "" {
		if p := room.FindPlayer(existingPlayerID); p != nil {
			p.Connected = true
			p.DisconnectedAt = 0
			s.broadcaster.Broadcast(roomID, protocol.ServerRoomState,
				protocol.RoomStateData{Room: snapshotRoom(room)})
			pCopy := *p
			return snapshotRoom(room), &pCopy, true, nil
		}
		// Stale id: fall through to a normal join with a fresh identity.
	}

	if room.IsFull() {
		return nil, nil, false, domain.ErrRoomFull
	}

	s.joinSeq++
	player := &domain.Player{
		ID:        uuid.New().String(),
		Name:      playerName,
		JoinedAt:  s.now().UnixMilli(),
		JoinSeq:   s.joinSeq,
		Connected: true,
	}
	room.Players = append(room.Players, player)
	s.playerRooms[player.ID] = roomID

	pCopy := *player
	s.broadcaster.BroadcastExcept(roomID, player.ID, protocol.ServerPlayerJoined,
		protocol.PlayerJoinedData{Player: &pCopy})
	s.broadcaster.Broadcast(roomID, protocol.ServerRoomState,
		protocol.RoomStateData{Room: snapshotRoom(room)})

	joined := *player
	return snapshotRoom(room), &joined, false, nil
}

// LeaveResult describes the outcome of a slot removal.
type LeaveResult struct {
	RoomID      string
	PlayerID    string
	PlayerName  string
	RoomClosed  bool
	NewHostID   string
	NewHostName string
}

// LeaveRoom removes the player's slot immediately (voluntary leave).
// The second return is false when the player is in no room.
func (s *Store) LeaveRoom(playerID string) (LeaveResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(playerID)
}

// removeLocked removes a player, reassigns the host if needed, deletes
// the room when it empties, and enqueues the broadcasts. Caller holds mu.
func (s *Store) removeLocked(playerID string) (LeaveResult, bool) {
	roomID, ok := s.playerRooms[playerID]
	if !ok {
		return LeaveResult{}, false
	}
	room := s.rooms[roomID]
	player := room.FindPlayer(playerID)
	if player == nil {
		delete(s.playerRooms, playerID)
		return LeaveResult{}, false
	}

	for i, p := range room.Players {
		if p.ID == playerID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}
	delete(s.playerRooms, playerID)

	res := LeaveResult{
		RoomID:     roomID,
		PlayerID:   playerID,
		PlayerName: player.Name,
	}

	if len(room.Players) == 0 {
		// Zero-player rooms are never observable.
		delete(s.rooms, roomID)
		res.RoomClosed = true
		return res, true
	}

	s.broadcaster.Broadcast(roomID, protocol.ServerPlayerLeft,
		protocol.PlayerLeftData{PlayerID: playerID, PlayerName: player.Name})

	if room.HostID == playerID {
		newHost := electHost(room)
		room.HostID = newHost.ID
		res.NewHostID = newHost.ID
		res.NewHostName = newHost.Name
		s.broadcaster.Broadcast(roomID, protocol.ServerHostChanged,
			protocol.HostChangedData{NewHostID: newHost.ID, NewHostName: newHost.Name})
	}
	return res, true
}

// DisconnectResult describes an involuntary disconnect.
type DisconnectResult struct {
	RoomID      string
	PlayerName  string
	WasHost     bool
	NewHostID   string
	NewHostName string
}

// Disconnect marks the player's slot as disconnected instead of
// removing it, starting the grace window. Host authority transfers
// immediately so the room is never left without a reachable host.
func (s *Store) Disconnect(playerID string) (DisconnectResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID, ok := s.playerRooms[playerID]
	if !ok {
		return DisconnectResult{}, false
	}
	room := s.rooms[roomID]
	player := room.FindPlayer(playerID)
	if player == nil {
		return DisconnectResult{}, false
	}
	if !player.Connected {
		// Grace window already running; a second transport-loss signal
		// (read-loop exit followed by the presence sweep) must not
		// restart it or re-broadcast state.
		return DisconnectResult{RoomID: roomID, PlayerName: player.Name}, true
	}

	player.Connected = false
	player.DisconnectedAt = s.now().UnixMilli()

	res := DisconnectResult{RoomID: roomID, PlayerName: player.Name}
	if room.HostID == playerID {
		res.WasHost = true
		if newHost := electConnectedHost(room); newHost != nil {
			room.HostID = newHost.ID
			res.NewHostID = newHost.ID
			res.NewHostName = newHost.Name
			s.broadcaster.Broadcast(roomID, protocol.ServerHostChanged,
				protocol.HostChangedData{NewHostID: newHost.ID, NewHostName: newHost.Name})
		}
		// No connected member: the host keeps the role until a
		// reconnect or the grace sweep empties the room.
	}

	s.broadcaster.Broadcast(roomID, protocol.ServerRoomState,
		protocol.RoomStateData{Room: snapshotRoom(room)})
	return res, true
}

// ReapDisconnected removes every slot whose grace window has expired.
// Called periodically by the presence monitor.
func (s *Store) ReapDisconnected() []LeaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.cfg.GraceWindow).UnixMilli()
	var expired []string
	for playerID, roomID := range s.playerRooms {
		room := s.rooms[roomID]
		p := room.FindPlayer(playerID)
		if p != nil && p.DisconnectedAt != 0 && p.DisconnectedAt <= cutoff {
			expired = append(expired, playerID)
		}
	}

	var results []LeaveResult
	for _, playerID := range expired {
		if res, ok := s.removeLocked(playerID); ok {
			results = append(results, res)
		}
	}
	return results
}

// UpdateReady sets the player's readiness flag. Unknown players are a
// silent no-op (false return, no broadcast).
func (s *Store) UpdateReady(playerID string, isReady bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, player := s.findLocked(playerID)
	if player == nil {
		return false
	}
	player.IsReady = isReady
	s.broadcaster.Broadcast(room.ID, protocol.ServerPlayerReadyChanged,
		protocol.PlayerReadyChangedData{PlayerID: playerID, IsReady: isReady})
	return true
}

// UpdatePreset sets the player's chosen character preset. Unknown
// players are a silent no-op.
func (s *Store) UpdatePreset(playerID, presetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, player := s.findLocked(playerID)
	if player == nil {
		return false
	}
	player.CharacterPreset = presetID
	s.broadcaster.Broadcast(room.ID, protocol.ServerPresetUpdated,
		protocol.PresetUpdatedData{PlayerID: playerID, CharacterPresetID: presetID})
	return true
}

// AddMessage appends a chat message and broadcasts it. It fails when
// the room does not exist or the sender is not a member.
func (s *Store) AddMessage(roomID, senderID, content string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return domain.Message{}, domain.ErrRoomNotFound
	}
	sender := room.FindPlayer(senderID)
	if sender == nil {
		return domain.Message{}, domain.ErrPlayerNotFound
	}

	msg := domain.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		SenderName: sender.Name,
		Content:    content,
		Timestamp:  s.now().UnixMilli(),
	}
	room.Chat = append(room.Chat, msg)
	if len(room.Chat) > s.cfg.MaxChatHistory {
		room.Chat = room.Chat[len(room.Chat)-s.cfg.MaxChatHistory:]
	}

	s.broadcaster.Broadcast(roomID, protocol.ServerNewMessage,
		protocol.NewMessageData{Message: msg})
	return msg, nil
}

// FindRoomOf returns a snapshot of the room the player is in, or nil.
func (s *Store) FindRoomOf(playerID string) *domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID, ok := s.playerRooms[playerID]
	if !ok {
		return nil
	}
	return snapshotRoom(s.rooms[roomID])
}

// GetRoom returns a snapshot of the room, or nil.
func (s *Store) GetRoom(roomID string) *domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	return snapshotRoom(room)
}

// ListJoinable returns snapshots of all rooms accepting new joins
// (status waiting, not full).
func (s *Store) ListJoinable() []*domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		if room.Joinable() {
			result = append(result, snapshotRoom(room))
		}
	}
	return result
}

// RoomCount returns the number of active rooms.
func (s *Store) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

func (s *Store) findLocked(playerID string) (*domain.Room, *domain.Player) {
	roomID, ok := s.playerRooms[playerID]
	if !ok {
		return nil, nil
	}
	room := s.rooms[roomID]
	return room, room.FindPlayer(playerID)
}

// electHost picks the new host: the earliest-joined connected member,
// falling back to the earliest member when nobody is connected.
// JoinSeq gives a total order, so the choice is deterministic.
func electHost(room *domain.Room) *domain.Player {
	if p := electConnectedHost(room); p != nil {
		return p
	}
	var best *domain.Player
	for _, p := range room.Players {
		if best == nil || p.JoinSeq < best.JoinSeq {
			best = p
		}
	}
	return best
}

func electConnectedHost(room *domain.Room) *domain.Player {
	var best *domain.Player
	for _, p := range room.Players {
		if !p.Connected {
			continue
		}
		if best == nil || p.JoinSeq < best.JoinSeq {
			best = p
		}
	}
	return best
}

// snapshotRoom deep-copies a room so broadcast payloads and query
// results stay stable while the store keeps mutating.
func snapshotRoom(room *domain.Room) *domain.Room {
	cp := *room
	cp.Players = make([]*domain.Player, len(room.Players))
	for i, p := range room.Players {
		pc := *p
		cp.Players[i] = &pc
	}
	cp.Chat = append([]domain.Message(nil), room.Chat...)
	cp.Presets = append([]string(nil), room.Presets...)
	return &cp
}
