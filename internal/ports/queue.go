package ports

import "github.com/kyberfog/kyberfog/internal/domain"

// FrameQueue is the bounded buffer between the reader and the workflow
// loop. Enqueue reports false when full; the overflow policy (drop
// newest, drop oldest via EvictOldest, or block) is applied by the
// caller, not the queue.
type FrameQueue interface {
	Enqueue(f domain.Frame) bool
	EvictOldest() (domain.Frame, bool)
	Dequeue() (domain.Frame, bool)
	Len() int
	Cap() int
}
