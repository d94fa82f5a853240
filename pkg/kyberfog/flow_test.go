package kyberfog

import (
	"context"
	"testing"
)

func TestConfFromConfigAndStreamBuilder(t *testing.T) {
	cfg := testConfig(t)

	flow, err := ConfFromConfig(cfg)
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}
	if flow.Config() != cfg {
		t.Fatalf("expected Config to be returned verbatim")
	}

	link := &stubLink{}
	store := &stubStore{}

	rt, err := flow.
		StreamIN(
			StreamInLink(link),
			StreamInQueue(&stubQueue{}),
			StreamInObservability(&stubObservability{}),
		).
		StreamOUT(
			StreamOutStore(store),
			StreamOutObserver(&stubObserver{}),
			StreamOutObservability(&stubObservability{}),
		)
	if err != nil {
		t.Fatalf("StreamOUT returned error: %v", err)
	}
	if rt.link != link {
		t.Fatalf("expected custom link to be wired")
	}
	if rt.store != store {
		t.Fatalf("expected custom store to be wired")
	}
}

func TestFlowRunUsesStreamOutOptions(t *testing.T) {
	cfg := testConfig(t)

	flow, err := ConfFromConfig(cfg)
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rendered bool
	// Stop immediately; the runtime still wires and tears down cleanly.
	cancel()
	if err := flow.StreamIN(
		StreamInLink(&stubLink{}),
		StreamInObservability(&stubObservability{}),
	).Run(ctx,
		StreamOutStore(&stubStore{}),
		StreamOutCallback(func(Snapshot) { rendered = true }),
	); err != nil && err != context.Canceled {
		t.Fatalf("Run returned unexpected error: %v", err)
	}
	// The observer loop performs a final render on shutdown.
	if !rendered {
		t.Fatal("expected callback observer to render at least once")
	}
}

func TestConfMissingFile(t *testing.T) {
	if _, err := Conf("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
