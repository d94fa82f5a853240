package pipeline

import (
	"context"
	"time"

	"github.com/kyberfog/kyberfog/internal/app/engine"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// RunObserverLoop renders tracker snapshots on a fixed cadence,
// independent of ingestion speed. A final render happens on shutdown so
// the last state is never lost. A mid-flight run snapshot is a valid
// render; the tracker guarantees it is internally consistent.
func RunObserverLoop(ctx context.Context, tr *engine.Tracker, view ports.Observer, interval time.Duration) {
	if view == nil {
		return
	}
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c, run := tr.Snapshot()
			view.Render(c, run)
			return
		case <-ticker.C:
			c, run := tr.Snapshot()
			view.Render(c, run)
		}
	}
}
