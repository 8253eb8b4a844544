package gateway

import (
	"sync"
	"time"
)

// writeTimeout bounds a single frame write so a stalled client cannot
// wedge a writer goroutine behind TCP backpressure.
const writeTimeout = 10 * time.Second

// rawConn is the transport handle wsConn wraps. *websocket.Conn
// satisfies it; tests substitute an in-memory fake.
type rawConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// wsConn serializes writes to one WebSocket connection. The transport
// supports a single concurrent writer, but two goroutines write to it:
// the connection's read loop (replies, ACKs, error frames) and the
// hub's delivery loop (room broadcasts). Every write path goes through
// this wrapper, and it is the handle registered with both the hub and
// the registry, so the mutex covers all writers.
type wsConn struct {
	mu sync.Mutex
	c  rawConn
}

func newWSConn(c rawConn) *wsConn {
	return &wsConn{c: c}
}

// WriteMessage writes one frame under the connection's write lock,
// with a deadline so a dead peer surfaces as an error instead of a
// hang.
func (w *wsConn) WriteMessage(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.c.WriteMessage(messageType, data)
}

func (w *wsConn) Close() error {
	return w.c.Close()
}
