// ABOUTME: FIFO command queue carrying state from simulation to audio thread
// ABOUTME: The only channel through which instance and listener state changes
package engine

import (
	"log"
	"sync"

	"github.com/earshot-audio/earshot-go/pkg/spatial"
)

type updateKind int

const (
	updateNewInstance updateKind = iota
	updateListener
	updatePosition
	updateGain
	updatePitch
	updateStop
	updateSeek
	updateChannelFilter
)

// listenerFrame is one simulation frame's listener state.
type listenerFrame struct {
	position   spatial.Vec3
	forward    spatial.Vec3
	up         spatial.Vec3
	teleported bool
	deltaTime  float64
}

// syncUpdate is one queued command. Which fields are meaningful depends
// on kind; inst is nil for listener updates.
type syncUpdate struct {
	kind     updateKind
	inst     *Instance
	listener listenerFrame
	position spatial.Vec3
	velocity spatial.Vec3
	value    float64
	frame    int
	name     string
	lowHz    int
	highHz   int
}

// syncQueue is the bounded FIFO between the simulation thread and the
// audio thread. Enqueues never block; when the queue is full the
// command is dropped and counted.
type syncQueue struct {
	mu      sync.Mutex
	updates []syncUpdate
	limit   int
	dropped int64
}

func newSyncQueue(limit int) *syncQueue {
	return &syncQueue{
		updates: make([]syncUpdate, 0, limit),
		limit:   limit,
	}
}

// enqueue appends u, reporting false when the queue is full.
func (q *syncQueue) enqueue(u syncUpdate) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.updates) >= q.limit {
		q.dropped++
		if q.dropped == 1 || q.dropped%1000 == 0 {
			log.Printf("sync queue full, dropped %d commands", q.dropped)
		}
		return false
	}
	q.updates = append(q.updates, u)
	return true
}

// drain moves all pending updates into dst (reusing its capacity) and
// empties the queue, preserving enqueue order.
func (q *syncQueue) drain(dst []syncUpdate) []syncUpdate {
	q.mu.Lock()
	defer q.mu.Unlock()

	dst = append(dst[:0], q.updates...)
	q.updates = q.updates[:0]
	return dst
}

// droppedCount returns how many commands were rejected for overflow.
func (q *syncQueue) droppedCount() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
