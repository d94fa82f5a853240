package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kyberfog/kyberfog/internal/app/engine"
	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// RunWorkflowPipeline drains the frame queue one frame at a time:
// decode, then the serialized crypto workflow, then persistence of the
// verified result. Runs never overlap; the next frame is picked up only
// after the current run reaches a terminal state.
func RunWorkflowPipeline(ctx context.Context, q ports.FrameQueue, dec ports.RecordDecoder, eng *engine.Engine, store ports.RunStore, pol ports.Policy, tr *engine.Tracker, obs ports.Observability) {
	idle := pol.IdleSleep
	if idle <= 0 {
		idle = 5 * time.Millisecond
	}

	// The device counter is untrusted; regressions are logged, not fatal.
	lastSeq := make(map[string]uint64)

	for {
		select {
		case <-ctx.Done():
			// Drain without processing so shutdown is prompt.
			for {
				if _, ok := q.Dequeue(); !ok {
					return
				}
			}
		default:
		}

		f, ok := q.Dequeue()
		if !ok {
			if !sleepCtx(ctx, idle) {
				return
			}
			continue
		}
		tr.SetQueueDepth(q.Len())

		run := domain.WorkflowRun{
			ID:        uuid.NewString(),
			StartedAt: time.Now(),
			Status:    domain.StatusDecrypting,
		}
		tr.RunUpdated(run)

		rec, err := dec.Decode(f.Payload)
		if err != nil {
			run.Status = domain.StatusFailed
			run.Reason = domain.FailDecode
			tr.RunUpdated(run)
			tr.Dropped(1)
			obs.LogError("decode_failed", err,
				ports.Field{Key: "run_id", Value: run.ID},
				ports.Field{Key: "frame_seq", Value: f.Seq})
			continue
		}
		tr.Decoded()

		if last, seen := lastSeq[rec.DeviceID]; seen && rec.Seq < last {
			obs.LogInfo("sequence_regressed",
				ports.Field{Key: "device", Value: rec.DeviceID},
				ports.Field{Key: "seq", Value: rec.Seq},
				ports.Field{Key: "last", Value: last})
		}
		lastSeq[rec.DeviceID] = rec.Seq

		final := eng.Process(ctx, run, rec)
		if final.Status != domain.StatusReady {
			continue
		}

		if store != nil {
			verified := &domain.VerifiedRun{
				RunID:       final.ID,
				CompletedAt: time.Now(),
				Record:      *rec,
				Timings:     final.Timings,
			}
			if err := store.AppendRun(verified); err != nil {
				obs.LogError("store_append_failed", err,
					ports.Field{Key: "store", Value: store.Name()},
					ports.Field{Key: "run_id", Value: final.ID})
			}
		}
	}
}
