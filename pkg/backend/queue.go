// ABOUTME: Thread-safe pending-buffer queue feeding pull-based devices
// ABOUTME: Zero-fills on underrun so playback never starves the device
package backend

import "sync"

// chunkQueue holds interleaved PCM chunks submitted by the engine until
// the device pulls them. Reads past the queued data produce silence,
// keeping the device fed when the mixer falls behind.
type chunkQueue struct {
	mu     sync.Mutex
	chunks [][]byte
	offset int // read position within chunks[0]
}

func newChunkQueue() *chunkQueue {
	return &chunkQueue{}
}

// enqueue copies b into the queue.
func (q *chunkQueue) enqueue(b []byte) {
	c := make([]byte, len(b))
	copy(c, b)

	q.mu.Lock()
	q.chunks = append(q.chunks, c)
	q.mu.Unlock()
}

// pending returns the number of queued chunks (the partially-read head
// still counts as one).
func (q *chunkQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chunks)
}

// Read implements io.Reader for oto. It always fills p completely,
// padding with silence when the queue runs dry.
func (q *chunkQueue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for n < len(p) && len(q.chunks) > 0 {
		head := q.chunks[0]
		copied := copy(p[n:], head[q.offset:])
		n += copied
		q.offset += copied
		if q.offset >= len(head) {
			q.chunks = q.chunks[1:]
			q.offset = 0
		}
	}
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
