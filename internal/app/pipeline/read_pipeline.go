package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/kyberfog/kyberfog/internal/app/engine"
	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// RunReadPipeline pulls frames off the link, counts every arrival, and
// feeds encrypted payloads into the bounded queue under the configured
// overflow policy. Ingestion never blocks on the crypto workflow: the
// upstream producer has no flow control, so when the queue is full a
// frame is dropped according to policy instead.
func RunReadPipeline(ctx context.Context, src ports.FrameSource, q ports.FrameQueue, pol ports.Policy, tr *engine.Tracker, obs ports.Observability) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		f, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			handleLinkLoss(ctx, src, q, pol, tr, obs, err)
			continue
		}

		tr.FrameReceived()

		switch f.Kind {
		case domain.FrameEncrypted:
			enqueueWithPolicy(q, f, pol, tr, obs)

		case domain.FrameInit:
			obs.LogInfo("device_init", ports.Field{Key: "device", Value: f.Payload})

		case domain.FrameTrigger:
			obs.LogInfo("device_trigger")

		case domain.FramePong:
			obs.LogInfo("device_pong", ports.Field{Key: "device", Value: f.Payload})

		case domain.FrameStatus:
			if f.Status != nil {
				obs.LogInfo("device_status",
					ports.Field{Key: "device", Value: f.Status.DeviceID},
					ports.Field{Key: "msgs", Value: f.Status.Messages},
					ports.Field{Key: "uptime_ms", Value: f.Status.UptimeMS})
			}

		case domain.FrameDebug:
			obs.LogInfo("device_comment", ports.Field{Key: "line", Value: f.Raw})

		case domain.FrameUnrecognized:
			if f.Note != "" {
				// Rejected payload frame: counts as a drop, like any
				// other payload that never reaches the crypto stages.
				tr.Dropped(1)
			}
			obs.LogInfo("frame_unrecognized",
				ports.Field{Key: "line", Value: f.Raw},
				ports.Field{Key: "note", Value: f.Note})
		}

		tr.SetQueueDepth(q.Len())
	}
}

// enqueueWithPolicy applies the overflow policy and reports whether the
// frame made it into the queue. Drops are counted here.
func enqueueWithPolicy(q ports.FrameQueue, f domain.Frame, pol ports.Policy, tr *engine.Tracker, obs ports.Observability) bool {
	if q.Enqueue(f) {
		return true
	}

	switch pol.OnQueueFull {
	case ports.OnQueueFullDropOldest:
		// Freshness first: shed the oldest buffered frame to make room.
		if _, ok := q.EvictOldest(); ok {
			tr.Dropped(1)
		}
		if q.Enqueue(f) {
			return true
		}
		tr.Dropped(1)
		return false

	case ports.OnQueueFullBlock:
		sleep := pol.IdleSleep
		if sleep <= 0 {
			sleep = 5 * time.Millisecond
		}
		for {
			if q.Enqueue(f) {
				return true
			}
			time.Sleep(sleep)
		}

	default:
		// drop_newest: the arriving frame loses; oldest work is kept.
		tr.Dropped(1)
		obs.LogError("queue_full_drop", fmt.Errorf("queue at capacity %d", q.Cap()),
			ports.Field{Key: "frame_seq", Value: f.Seq})
		return false
	}
}

// handleLinkLoss discards the in-flight queue contents and runs one
// bounded reconnect sequence. If every attempt fails the pipeline idles
// on an extended backoff and the caller loop retries discovery; it
// never blocks indefinitely inside a single attempt.
func handleLinkLoss(ctx context.Context, src ports.FrameSource, q ports.FrameQueue, pol ports.Policy, tr *engine.Tracker, obs ports.Observability, cause error) {
	var discarded uint64
	for {
		if _, ok := q.Dequeue(); !ok {
			break
		}
		discarded++
	}
	tr.Dropped(discarded)
	tr.SetQueueDepth(0)
	obs.LogError("link_lost", cause, ports.Field{Key: "discarded", Value: discarded})

	attempts := pol.ReconnectAttempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := pol.ReconnectBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	for i := 1; i <= attempts; i++ {
		err := src.Reconnect()
		if err == nil {
			obs.LogInfo("link_reacquired", ports.Field{Key: "attempt", Value: i})
			return
		}
		obs.LogError("reconnect_failed", err, ports.Field{Key: "attempt", Value: i})
		if !sleepCtx(ctx, backoff) {
			return
		}
	}

	obs.LogError("link_unavailable", cause,
		ports.Field{Key: "attempts", Value: attempts})
	sleepCtx(ctx, backoff*4)
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
