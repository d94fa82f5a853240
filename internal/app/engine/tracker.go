package engine

import (
	"sync/atomic"

	"github.com/kyberfog/kyberfog/internal/adapters/observability"
	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// Tracker holds the process-wide pipeline counters and the most recent
// workflow run snapshot. Each counter has exactly one writer; the run
// register is only ever replaced whole, never mutated in place, so
// concurrent readers can never observe a torn run.
type Tracker struct {
	received   atomic.Uint64
	decoded    atomic.Uint64
	processed  atomic.Uint64
	dropped    atomic.Uint64
	queueDepth atomic.Uint64

	run atomic.Pointer[domain.WorkflowRun]

	obs ports.Observability
}

func NewTracker(obs ports.Observability) *Tracker {
	return &Tracker{obs: obs}
}

func (t *Tracker) FrameReceived() {
	t.received.Add(1)
	t.obs.IncCounter(observability.MetricFramesReceived, 1)
}

func (t *Tracker) Decoded() {
	t.decoded.Add(1)
	t.obs.IncCounter(observability.MetricRecordsDecoded, 1)
}

func (t *Tracker) Processed() {
	t.processed.Add(1)
	t.obs.IncCounter(observability.MetricRunsProcessed, 1)
}

func (t *Tracker) Dropped(n uint64) {
	if n == 0 {
		return
	}
	t.dropped.Add(n)
	t.obs.IncCounter(observability.MetricFramesDropped, float64(n))
}

func (t *Tracker) SetQueueDepth(n int) {
	if n < 0 {
		n = 0
	}
	t.queueDepth.Store(uint64(n))
	t.obs.SetGauge(observability.MetricQueueDepth, float64(n))
}

// RunUpdated publishes a fresh snapshot of the run in one atomic step.
func (t *Tracker) RunUpdated(run domain.WorkflowRun) {
	snap := run
	t.run.Store(&snap)
}

// Snapshot returns a consistent view for the observer. The run pointer
// refers to an immutable copy and may be nil before the first run.
func (t *Tracker) Snapshot() (domain.Counters, *domain.WorkflowRun) {
	c := domain.Counters{
		Received:   t.received.Load(),
		Decoded:    t.decoded.Load(),
		Processed:  t.processed.Load(),
		Dropped:    t.dropped.Load(),
		QueueDepth: t.queueDepth.Load(),
	}
	return c, t.run.Load()
}
