package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/kyberfog/kyberfog"
)

func main() {
	cfg := kyberfog.DefaultConfig()
	cfg.Link.Simulate = true

	flow, err := kyberfog.ConfFromConfig(cfg)
	if err != nil {
		log.Fatalf("build flow: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := flow.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("gateway runtime exited: %v", err)
	}
}
