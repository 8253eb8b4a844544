package room

import "testing"

func TestRoom_FindPlayer(t *testing.T) {
	r := &Room{
		Players: []*Player{
			{ID: "p1", Name: "alice"},
			{ID: "p2", Name: "bob"},
		},
	}

	if p := r.FindPlayer("p2"); p == nil || p.Name != "bob" {
		t.Errorf("FindPlayer(p2) = %v, want bob", p)
	}
	if p := r.FindPlayer("p3"); p != nil {
		t.Errorf("FindPlayer(p3) = %v, want nil", p)
	}
}

func TestRoom_Joinable(t *testing.T) {
	tests := []struct {
		name     string
		room     Room
		joinable bool
	}{
		{
			name:     "waiting with free slot",
			room:     Room{Status: StatusWaiting, MaxPlayers: 2, Players: []*Player{{ID: "p1"}}},
			joinable: true,
		},
		{
			name:     "waiting but full",
			room:     Room{Status: StatusWaiting, MaxPlayers: 1, Players: []*Player{{ID: "p1"}}},
			joinable: false,
		},
		{
			name:     "playing",
			room:     Room{Status: StatusPlaying, MaxPlayers: 4, Players: []*Player{{ID: "p1"}}},
			joinable: false,
		},
		{
			name: "disconnected player still holds a slot",
			room: Room{Status: StatusWaiting, MaxPlayers: 2, Players: []*Player{
				{ID: "p1", Connected: true},
				{ID: "p2", Connected: false, DisconnectedAt: 12345},
			}},
			joinable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.room.Joinable(); got != tt.joinable {
				t.Errorf("Joinable() = %v, want %v", got, tt.joinable)
			}
		})
	}
}
