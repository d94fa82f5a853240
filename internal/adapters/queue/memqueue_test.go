package queue

import (
	"fmt"
	"testing"

	"github.com/kyberfog/kyberfog/internal/domain"
)

func encFrame(seq uint64) domain.Frame {
	return domain.Frame{
		Seq:     seq,
		Kind:    domain.FrameEncrypted,
		Payload: fmt.Sprintf("payload-%d", seq),
	}
}

func TestMemQueueFIFOOrder(t *testing.T) {
	q := NewMemQueue(4)

	for seq := uint64(1); seq <= 3; seq++ {
		if !q.Enqueue(encFrame(seq)) {
			t.Fatalf("enqueue %d rejected below capacity", seq)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}

	for seq := uint64(1); seq <= 3; seq++ {
		f, ok := q.Dequeue()
		if !ok {
			t.Fatalf("dequeue %d returned empty", seq)
		}
		if f.Seq != seq {
			t.Fatalf("dequeued seq %d, want %d", f.Seq, seq)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("dequeue on empty queue reported a frame")
	}
}

func TestMemQueueRejectsWhenFull(t *testing.T) {
	q := NewMemQueue(2)

	if !q.Enqueue(encFrame(1)) || !q.Enqueue(encFrame(2)) {
		t.Fatal("enqueue rejected below capacity")
	}
	if q.Enqueue(encFrame(3)) {
		t.Fatal("enqueue accepted past capacity")
	}
	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}
	if q.Cap() != 2 {
		t.Fatalf("Cap = %d, want 2", q.Cap())
	}
}

func TestMemQueueEvictOldest(t *testing.T) {
	q := NewMemQueue(2)
	q.Enqueue(encFrame(1))
	q.Enqueue(encFrame(2))

	evicted, ok := q.EvictOldest()
	if !ok {
		t.Fatal("EvictOldest on full queue returned empty")
	}
	if evicted.Seq != 1 {
		t.Fatalf("evicted seq %d, want 1", evicted.Seq)
	}

	if !q.Enqueue(encFrame(3)) {
		t.Fatal("enqueue after eviction rejected")
	}

	f, _ := q.Dequeue()
	if f.Seq != 2 {
		t.Fatalf("head seq %d, want 2", f.Seq)
	}
}

func TestMemQueueEvictOldestEmpty(t *testing.T) {
	q := NewMemQueue(2)
	if _, ok := q.EvictOldest(); ok {
		t.Fatal("EvictOldest on empty queue reported a frame")
	}
}
