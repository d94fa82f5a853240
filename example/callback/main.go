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

	callback := func(snap kyberfog.Snapshot) {
		if snap.LastRun == nil || snap.LastRun.Result == nil {
			return
		}
		rec := snap.LastRun.Result
		fmt.Printf("%s device=%s seq=%d temp=%.1f hum=%.1f light=%d\n",
			time.Now().Format(time.RFC3339),
			rec.DeviceID,
			rec.Seq,
			rec.Temperature,
			rec.Humidity,
			rec.Light,
		)
	}

	if err := flow.Run(ctx, kyberfog.StreamOutCallback(callback)); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}
