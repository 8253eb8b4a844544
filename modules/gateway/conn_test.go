package gateway

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// racyConn errors out the way a real WebSocket transport does when two
// goroutines write it at once.
type racyConn struct {
	inWrite   atomic.Int32
	overlaps  atomic.Int32
	frames    atomic.Int32
	deadlines atomic.Int32
}

func (r *racyConn) WriteMessage(int, []byte) error {
	if r.inWrite.Add(1) > 1 {
		r.overlaps.Add(1)
	}
	time.Sleep(time.Microsecond)
	r.frames.Add(1)
	r.inWrite.Add(-1)
	return nil
}

func (r *racyConn) SetWriteDeadline(time.Time) error {
	r.deadlines.Add(1)
	return nil
}

func (r *racyConn) Close() error { return nil }

// The read loop and the hub's delivery loop both write the same
// connection; the wrapper must never let their writes interleave.
func TestWSConn_SerializesConcurrentWriters(t *testing.T) {
	raw := &racyConn{}
	conn := newWSConn(raw)

	const writers = 4
	const perWriter = 500
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := conn.WriteMessage(1, []byte(`{}`)); err != nil {
					t.Errorf("WriteMessage() unexpected error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := raw.overlaps.Load(); got != 0 {
		t.Fatalf("observed %d overlapping writes, want 0", got)
	}
	if got := raw.frames.Load(); got != writers*perWriter {
		t.Errorf("frames written = %d, want %d", got, writers*perWriter)
	}
}

func TestWSConn_SetsWriteDeadline(t *testing.T) {
	raw := &racyConn{}
	conn := newWSConn(raw)

	_ = conn.WriteMessage(1, []byte(`{}`))
	_ = conn.WriteMessage(1, []byte(`{}`))

	if got := raw.deadlines.Load(); got != 2 {
		t.Errorf("deadline set %d times, want once per write (2)", got)
	}
}
