package kyberfog

import (
	"testing"

	"github.com/kyberfog/kyberfog/internal/domain"
)

func TestCallbackObserver(t *testing.T) {
	var got Snapshot
	obs := NewCallbackObserver(func(s Snapshot) { got = s })

	run := &domain.WorkflowRun{ID: "run-1", Status: domain.StatusReady}
	obs.Render(domain.Counters{Received: 5, Processed: 2}, run)

	if got.Counters.Received != 5 || got.Counters.Processed != 2 {
		t.Fatalf("snapshot counters = %+v", got.Counters)
	}
	if got.LastRun == nil || got.LastRun.ID != "run-1" {
		t.Fatalf("snapshot run = %+v", got.LastRun)
	}
}

func TestCallbackObserverNilFunc(t *testing.T) {
	obs := NewCallbackObserver(nil)
	// Must not panic.
	obs.Render(domain.Counters{}, nil)
}

func TestChannelObserverDeliversSnapshots(t *testing.T) {
	obs, ch, closeFn := NewChannelObserver(2)
	defer closeFn()

	obs.Render(domain.Counters{Received: 1}, nil)

	snap := <-ch
	if snap.Counters.Received != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestChannelObserverDropsWhenFull(t *testing.T) {
	obs, ch, closeFn := NewChannelObserver(1)
	defer closeFn()

	obs.Render(domain.Counters{Received: 1}, nil)
	// Channel is full; this render must drop rather than block.
	obs.Render(domain.Counters{Received: 2}, nil)

	snap := <-ch
	if snap.Counters.Received != 1 {
		t.Fatalf("first snapshot = %+v", snap)
	}
	select {
	case extra, ok := <-ch:
		if ok {
			t.Fatalf("unexpected second snapshot %+v", extra)
		}
	default:
	}
}

func TestChannelObserverAfterClose(t *testing.T) {
	obs, ch, closeFn := NewChannelObserver(1)
	closeFn()
	closeFn() // idempotent

	// Render after close must not panic or deliver.
	obs.Render(domain.Counters{Received: 9}, nil)

	if _, ok := <-ch; ok {
		t.Fatal("closed channel delivered a snapshot")
	}
}

func TestLogObserverRenders(t *testing.T) {
	rec := &recordingObs{}
	obs := NewLogObserver(rec)

	obs.Render(domain.Counters{Received: 3}, &domain.WorkflowRun{ID: "run-1", Status: domain.StatusVerifying})
	if len(rec.infos) != 1 || rec.infos[0] != "pipeline_state" {
		t.Fatalf("logged messages = %v", rec.infos)
	}

	// Nil run renders counters only.
	obs.Render(domain.Counters{}, nil)
	if len(rec.infos) != 2 {
		t.Fatalf("logged messages = %v", rec.infos)
	}
}

type recordingObs struct {
	stubObservability
	infos []string
}

func (r *recordingObs) LogInfo(msg string, _ ...Field) {
	r.infos = append(r.infos, msg)
}
