package kyberfog

import (
	"sync"

	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// Snapshot is one observer rendering of pipeline state.
type Snapshot struct {
	Counters Counters
	LastRun  *WorkflowRun
}

// SnapshotFunc receives pipeline snapshots on the observer cadence.
type SnapshotFunc func(Snapshot)

// NewLogObserver renders snapshots through the observability backend's
// structured log.
func NewLogObserver(obs Observability) Observer {
	return &logObserver{obs: obs}
}

// NewCallbackObserver adapts a SnapshotFunc into a full Observer so callers
// can plug arbitrary functions without defining structs.
func NewCallbackObserver(fn SnapshotFunc) Observer {
	return &callbackObserver{fn: fn}
}

// NewChannelObserver exposes snapshots via a channel; it returns the
// observer, the read-only channel, and a close function that the caller
// should invoke during shutdown. Renders are dropped, never blocked, when
// the channel is full.
func NewChannelObserver(buffer int) (Observer, <-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)
	o := &channelObserver{
		ch:     ch,
		closed: make(chan struct{}),
	}
	return o, ch, func() { o.close() }
}

type logObserver struct {
	obs ports.Observability
}

func (o *logObserver) Render(c domain.Counters, last *domain.WorkflowRun) {
	fields := []ports.Field{
		{Key: "received", Value: c.Received},
		{Key: "decoded", Value: c.Decoded},
		{Key: "processed", Value: c.Processed},
		{Key: "dropped", Value: c.Dropped},
		{Key: "queue_depth", Value: c.QueueDepth},
	}
	if last != nil {
		fields = append(fields,
			ports.Field{Key: "run_id", Value: last.ID},
			ports.Field{Key: "run_status", Value: last.Status.String()},
		)
	}
	o.obs.LogInfo("pipeline_state", fields...)
}

type callbackObserver struct {
	fn SnapshotFunc
}

func (o *callbackObserver) Render(c domain.Counters, last *domain.WorkflowRun) {
	if o.fn == nil {
		return
	}
	o.fn(Snapshot{Counters: c, LastRun: last})
}

type channelObserver struct {
	ch     chan Snapshot
	closed chan struct{}
	once   sync.Once
}

func (o *channelObserver) Render(c domain.Counters, last *domain.WorkflowRun) {
	select {
	case <-o.closed:
		return
	default:
	}

	select {
	case <-o.closed:
	case o.ch <- Snapshot{Counters: c, LastRun: last}:
	default:
	}
}

func (o *channelObserver) close() {
	o.once.Do(func() {
		close(o.closed)
		close(o.ch)
	})
}
