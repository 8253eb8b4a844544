package room

import "errors"

// Domain errors. All are non-fatal conditions reported to the
// requesting connection only.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrPlayerNotFound = errors.New("player not found")
)
