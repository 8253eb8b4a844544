// Package registry maintains the bidirectional mapping between live
// transport connections and player identities, plus per-player
// liveness timestamps.
package registry

import (
	"sync"
	"time"
)

// Conn is the transport-level handle bound to a player. The registry
// never writes to it; it only keys the reverse lookup.
type Conn interface {
	Close() error
}

// Registry tracks connection bindings. At most one live binding exists
// per player id; a new Register for the same id supersedes the old one.
type Registry struct {
	mu       sync.RWMutex
	byPlayer map[string]Conn
	byConn   map[Conn]string
	lastSeen map[string]time.Time
	now      func() time.Time
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byPlayer: make(map[string]Conn),
		byConn:   make(map[Conn]string),
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Register binds conn to playerID, superseding any previous binding
// for that player. The superseded connection is returned so the caller
// can decide whether to close it; nil if there was none.
func (r *Registry) Register(playerID string, conn Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.byPlayer[playerID]
	if old != nil {
		delete(r.byConn, old)
	}
	r.byPlayer[playerID] = conn
	r.byConn[conn] = playerID
	r.lastSeen[playerID] = r.now()
	if old == conn {
		return nil
	}
	return old
}

// Touch updates the player's last-seen timestamp. Called on every
// inbound message and explicit heartbeat.
func (r *Registry) Touch(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPlayer[playerID]; ok {
		r.lastSeen[playerID] = r.now()
	}
}

// Resolve returns the player id bound to conn, or "" if none.
func (r *Registry) Resolve(conn Conn) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byConn[conn]
}

// Unregister removes both directions of the player's binding.
func (r *Registry) Unregister(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn, ok := r.byPlayer[playerID]; ok {
		delete(r.byConn, conn)
	}
	delete(r.byPlayer, playerID)
	delete(r.lastSeen, playerID)
}

// AllStale returns the ids of all players whose last-seen timestamp is
// older than timeout relative to now.
func (r *Registry) AllStale(now time.Time, timeout time.Duration) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []string
	for playerID, seen := range r.lastSeen {
		if now.Sub(seen) > timeout {
			stale = append(stale, playerID)
		}
	}
	return stale
}

// Count returns the number of live bindings.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPlayer)
}
