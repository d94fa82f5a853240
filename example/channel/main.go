package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kyberfog/kyberfog/pkg/kyberfog"
)

func main() {
	cfg := kyberfog.DefaultConfig()
	cfg.Link.Simulate = true

	flow, err := kyberfog.ConfFromConfig(cfg)
	if err != nil {
		log.Fatalf("build flow: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	observer, snapshots, closeObserver := kyberfog.NewChannelObserver(8)
	defer closeObserver()

	go func() {
		for snap := range snapshots {
			line := fmt.Sprintf("received=%d decoded=%d processed=%d dropped=%d queue=%d",
				snap.Counters.Received,
				snap.Counters.Decoded,
				snap.Counters.Processed,
				snap.Counters.Dropped,
				snap.Counters.QueueDepth,
			)
			if snap.LastRun != nil {
				line += fmt.Sprintf(" last_run=%s status=%s", snap.LastRun.ID, snap.LastRun.Status)
			}
			fmt.Println(line)
		}
	}()

	if err := flow.Run(ctx, kyberfog.StreamOutObserver(observer)); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}
