package queue

import (
	"sync"

	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// MemQueue is a bounded in-memory frame queue that preserves FIFO
// ordering. It never blocks: Enqueue reports false when full and
// EvictOldest lets the caller implement a freshness-first policy.
type MemQueue struct {
	mu   sync.Mutex
	data []domain.Frame
	cap  int
}

func NewMemQueue(capacity int) *MemQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemQueue{
		data: make([]domain.Frame, 0, capacity),
		cap:  capacity,
	}
}

func (q *MemQueue) Enqueue(f domain.Frame) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) >= q.cap {
		return false
	}
	q.data = append(q.data, f)
	return true
}

func (q *MemQueue) EvictOldest() (domain.Frame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) == 0 {
		return domain.Frame{}, false
	}
	f := q.data[0]
	q.data = append(q.data[:0], q.data[1:]...)
	return f, true
}

func (q *MemQueue) Dequeue() (domain.Frame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) == 0 {
		return domain.Frame{}, false
	}
	f := q.data[0]
	q.data = append(q.data[:0], q.data[1:]...)
	return f, true
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

func (q *MemQueue) Cap() int { return q.cap }

var _ ports.FrameQueue = (*MemQueue)(nil)
