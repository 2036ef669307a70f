package api

import (
	"sync"
	"time"
)

// Broadcaster fans emission events out to every connected WebSocket
// client, adapted from the teacher's api.Broadcaster (which fanned
// execution-trace events out to debugger clients instead).
type Broadcaster struct {
	mu      sync.Mutex
	clients map[*WebSocketClient]struct{}
	seq     uint64
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*WebSocketClient]struct{})}
}

// Emit implements Sink: it stamps the event with the next sequence
// number and fans it out to every connected client's send channel,
// dropping the event for any client whose channel is full rather than
// blocking the emitter.
func (b *Broadcaster) Emit(ev Event) {
	b.mu.Lock()
	b.seq++
	ev.Seq = b.seq
	for c := range b.clients {
		select {
		case c.send <- ev:
		default:
		}
	}
	b.mu.Unlock()
}

// EmitEvent satisfies emit.EventSink without emit importing this
// package: it wraps a single emitted word as an Event and forwards it
// to Emit.
func (b *Broadcaster) EmitEvent(addr int, word uint32, op string) {
	b.Emit(Event{Addr: addr, Word: word, Op: op, Timestamp: time.Now()})
}

func (b *Broadcaster) register(c *WebSocketClient) {
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
}

func (b *Broadcaster) unregister(c *WebSocketClient) {
	b.mu.Lock()
	delete(b.clients, c)
	close(c.send)
	b.mu.Unlock()
}

// ClientCount reports how many observers are currently connected, used
// by the health endpoint.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}
