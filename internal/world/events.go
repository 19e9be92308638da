package world

import (
	"sync"

	"voxelworld/internal/entity"
	"voxelworld/internal/voxel"

	"github.com/google/uuid"
)

// EventKind names a chunk lifecycle notification.
type EventKind uint8

const (
	ChunkWillSpawn EventKind = iota
	ChunkWillDespawn
	ChunkWillRemesh
	ChunkWillUpdate
)

var eventNames = [...]string{"spawn", "despawn", "remesh", "update"}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event carries the chunk coordinate and scene-graph identity of a
// lifecycle change.
type Event struct {
	Kind   EventKind
	World  uuid.UUID
	Chunk  voxel.Pos
	Entity entity.ID
}

// maxBufferedEvents bounds the undrained backlog; the oldest events go first.
const maxBufferedEvents = 1 << 16

// eventQueue buffers events until drained and fans them out to subscribers
// as they are emitted.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	subs   []func(Event)
}

func (q *eventQueue) subscribe(fn func(Event)) {
	q.mu.Lock()
	q.subs = append(q.subs, fn)
	q.mu.Unlock()
}

func (q *eventQueue) emit(e Event) {
	q.mu.Lock()
	if len(q.events) >= maxBufferedEvents {
		q.events = append(q.events[:0], q.events[len(q.events)/2:]...)
	}
	q.events = append(q.events, e)
	subs := q.subs
	q.mu.Unlock()
	for _, fn := range subs {
		fn(e)
	}
}

func (q *eventQueue) drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}
