package stats

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of the coordinator's counters.
type Snapshot struct {
	RoomsCreated    int64 `json:"roomsCreated"`
	RoomsClosed     int64 `json:"roomsClosed"`
	PlayersJoined   int64 `json:"playersJoined"`
	VoluntaryLeaves int64 `json:"voluntaryLeaves"`
	TimedOutLeaves  int64 `json:"timedOutLeaves"`
	HostChanges     int64 `json:"hostChanges"`
	MessagesSent    int64 `json:"messagesSent"`
	StartedAt       int64 `json:"startedAt"`
	UptimeSeconds   int64 `json:"uptimeSeconds"`
}

// StatsStore accumulates counters from room telemetry events.
type StatsStore struct {
	mu        sync.Mutex
	snapshot  Snapshot
	startedAt time.Time
}

// NewStatsStore creates an empty store.
func NewStatsStore() *StatsStore {
	now := time.Now()
	return &StatsStore{
		snapshot:  Snapshot{StartedAt: now.UnixMilli()},
		startedAt: now,
	}
}

func (s *StatsStore) RecordRoomCreated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.RoomsCreated++
}

func (s *StatsStore) RecordRoomClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.RoomsClosed++
}

func (s *StatsStore) RecordPlayerJoined() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.PlayersJoined++
}

// RecordPlayerLeft tracks a departure. voluntary is false when the
// slot was reclaimed after a heartbeat timeout.
func (s *StatsStore) RecordPlayerLeft(voluntary bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if voluntary {
		s.snapshot.VoluntaryLeaves++
	} else {
		s.snapshot.TimedOutLeaves++
	}
}

func (s *StatsStore) RecordHostChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.HostChanges++
}

func (s *StatsStore) RecordMessageSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.MessagesSent++
}

// GetSnapshot returns a copy of the current counters.
func (s *StatsStore) GetSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot
	snap.UptimeSeconds = int64(time.Since(s.startedAt).Seconds())
	return snap
}
