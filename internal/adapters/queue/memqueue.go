package queue

import (
	"sync"

	"github.com/parttimehacker/diystatus/internal/ports"
)

// MemQueue is a bounded in-memory FIFO of control messages. Enqueue never
// blocks, so it is safe to call from a bus callback; consumers wait on Ready.
type MemQueue struct {
	mu    sync.Mutex
	data  []ports.Message
	cap   int
	ready chan struct{}
}

func NewMemQueue(capacity int) *MemQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemQueue{
		data:  make([]ports.Message, 0, capacity),
		cap:   capacity,
		ready: make(chan struct{}, 1),
	}
}

func (q *MemQueue) Enqueue(m ports.Message) bool {
	q.mu.Lock()
	if len(q.data) >= q.cap {
		q.mu.Unlock()
		return false
	}
	q.data = append(q.data, m)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// DequeueBatch removes up to max messages; max <= 0 drains everything.
func (q *MemQueue) DequeueBatch(max int) []ports.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) == 0 {
		return nil
	}
	if max <= 0 || max > len(q.data) {
		max = len(q.data)
	}
	out := make([]ports.Message, max)
	copy(out, q.data[:max])
	q.data = append(q.data[:0], q.data[max:]...)
	return out
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

// Ready is signalled after an Enqueue. A single signal may cover several
// messages, so consumers drain until DequeueBatch returns nothing.
func (q *MemQueue) Ready() <-chan struct{} {
	return q.ready
}

var _ ports.ControlQueue = (*MemQueue)(nil)
