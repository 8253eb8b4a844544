package room

// Status is the lifecycle phase of a room.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Player is a member of a room. Wire timestamps are epoch milliseconds.
type Player struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	JoinedAt        int64  `json:"joinedAt"`
	IsReady         bool   `json:"isReady"`
	CharacterPreset string `json:"characterPreset,omitempty"`
	Connected       bool   `json:"connected"`

	// JoinSeq is a monotonically increasing per-store sequence number.
	// Host reassignment orders by it rather than JoinedAt, which can
	// collide at millisecond resolution.
	JoinSeq int64 `json:"-"`

	// DisconnectedAt is set (epoch ms) while the player is within the
	// involuntary-disconnect grace window, zero otherwise.
	DisconnectedAt int64 `json:"-"`
}

// Room groups players before and during a session. Players preserves
// join order; a room with zero players is deleted, never observable.
type Room struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	HostID     string    `json:"hostId"`
	Players    []*Player `json:"players"`
	Chat       []Message `json:"chat"`
	Presets    []string  `json:"presets"`
	Status     Status    `json:"status"`
	MaxPlayers int       `json:"maxPlayers"`
	CreatedAt  int64     `json:"createdAt"`
}

// Message is a chat entry, immutable once appended. SenderName is
// denormalized at send time for display.
type Message struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"timestamp"`
}

// FindPlayer returns the member with the given id, or nil.
func (r *Room) FindPlayer(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// IsFull reports whether the room has no free slot. Disconnected
// players inside their grace window still occupy a slot.
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// Joinable reports whether the room accepts new (non-reconnecting) joins.
func (r *Room) Joinable() bool {
	return r.Status == StatusWaiting && !r.IsFull()
}
