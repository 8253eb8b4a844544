package gateway

// HealthResponse is the GET /api/health body.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Rooms     int    `json:"rooms"`
	Clients   int    `json:"clients"`
}

// RoomSummary is one entry of the GET /api/rooms body.
type RoomSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CurrentPlayers int    `json:"currentPlayers"`
	MaxPlayers     int    `json:"maxPlayers"`
	Status         string `json:"status"`
}

// ErrorResponse is the shared REST error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
