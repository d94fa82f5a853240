package kyberfog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kyberfog/kyberfog/internal/adapters/codec"
	"github.com/kyberfog/kyberfog/internal/adapters/frame"
	"github.com/kyberfog/kyberfog/internal/adapters/kem"
	"github.com/kyberfog/kyberfog/internal/adapters/observability"
	"github.com/kyberfog/kyberfog/internal/adapters/queue"
	"github.com/kyberfog/kyberfog/internal/adapters/serial"
	"github.com/kyberfog/kyberfog/internal/adapters/store"
	"github.com/kyberfog/kyberfog/internal/app/engine"
	"github.com/kyberfog/kyberfog/internal/app/pipeline"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// GatewayRuntimeOption customizes the dependencies used by GatewayRuntime.
type GatewayRuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	link          Link
	queue         FrameQueue
	store         RunStore
	observer      Observer
	observability Observability
	decoder       RecordDecoder
}

// WithLink injects a custom link implementation (TCP bridges, replay files,
// simulators, etc.).
func WithLink(l Link) GatewayRuntimeOption {
	return func(o *runtimeOverrides) {
		o.link = l
	}
}

// WithFrameQueue injects a custom queue implementation.
func WithFrameQueue(q FrameQueue) GatewayRuntimeOption {
	return func(o *runtimeOverrides) {
		o.queue = q
	}
}

// WithRunStore injects a custom store so verified runs can land in any
// database or API.
func WithRunStore(s RunStore) GatewayRuntimeOption {
	return func(o *runtimeOverrides) {
		o.store = s
	}
}

// WithObserver attaches a state observer that renders pipeline snapshots on
// its own cadence.
func WithObserver(v Observer) GatewayRuntimeOption {
	return func(o *runtimeOverrides) {
		o.observer = v
	}
}

// WithObservability plugs in a custom observability backend (OpenTelemetry,
// structured logs, etc.).
func WithObservability(obs Observability) GatewayRuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithRecordDecoder overrides the default PSK decoder.
func WithRecordDecoder(d RecordDecoder) GatewayRuntimeOption {
	return func(o *runtimeOverrides) {
		o.decoder = d
	}
}

// GatewayRuntime wires up the link → frame reader → queue → crypto workflow
// pipeline and exposes simple lifecycle hooks for embedding the gateway
// inside any Go service.
type GatewayRuntime struct {
	cfg      *Config
	policy   ports.Policy
	obs      ports.Observability
	tracker  *engine.Tracker
	link     ports.Link
	source   ports.FrameSource
	queue    ports.FrameQueue
	decoder  ports.RecordDecoder
	engine   *engine.Engine
	store    ports.RunStore
	observer ports.Observer
	db       *sql.DB

	metricsSrv *http.Server
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	startOnce  sync.Once
}

// NewGatewayRuntime bootstraps the default adapters (serial link, PSK
// decoder, in-memory queue, Kyber crypto engine, file store, Prometheus
// observability). Callers can use GatewayRuntimeOption values to override
// any dependency.
func NewGatewayRuntime(cfg *Config, opts ...GatewayRuntimeOption) (*GatewayRuntime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		log := zerolog.New(os.Stderr).With().Timestamp().Logger()
		obs = observability.NewPromObs(log)
	}

	tracker := engine.NewTracker(obs)

	link := overrides.link
	if link == nil {
		var err error
		link, err = openLink(cfg, obs)
		if err != nil {
			return nil, err
		}
	}

	q := overrides.queue
	if q == nil {
		q = queue.NewMemQueue(cfg.Policy.MaxQueueLen)
	}

	dec := overrides.decoder
	if dec == nil {
		var err error
		dec, err = codec.NewDecoder(cfg.PSKBytes())
		if err != nil {
			return nil, err
		}
	}

	suite, err := kem.NewSuite(cfg.KEM.Level)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(suite, tracker, obs)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	st := overrides.store
	if st == nil {
		st, db, err = openStore(cfg)
		if err != nil {
			return nil, err
		}
	}

	return &GatewayRuntime{
		cfg:      cfg,
		policy:   cfg.Policy,
		obs:      obs,
		tracker:  tracker,
		link:     link,
		source:   frame.NewReader(link),
		queue:    q,
		decoder:  dec,
		engine:   eng,
		store:    st,
		observer: overrides.observer,
		db:       db,
	}, nil
}

func openLink(cfg *Config, obs ports.Observability) (ports.Link, error) {
	if cfg.Link.Simulate {
		return serial.NewSimLink(serial.SimConfig{
			PSK:      cfg.PSKBytes(),
			Interval: cfg.Link.SimInterval,
		}), nil
	}
	link, err := serial.Open(cfg.Link)
	if err == nil {
		return link, nil
	}
	if cfg.Link.FallbackSim && errors.Is(err, ports.ErrNoDevice) {
		obs.LogError("no_device_falling_back_to_simulator", err)
		return serial.NewSimLink(serial.SimConfig{
			PSK:      cfg.PSKBytes(),
			Interval: cfg.Link.SimInterval,
		}), nil
	}
	return nil, err
}

func openStore(cfg *Config) (ports.RunStore, *sql.DB, error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.Store.ConnString)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresStore(db, cfg.Store.Table), db, nil
	default:
		st, err := store.NewFileStore(cfg.Store.Dir)
		if err != nil {
			return nil, nil, err
		}
		return st, nil, nil
	}
}

// Start launches the read, workflow, and observer loops plus the metrics
// server. It returns immediately; call Run to block on a context instead.
func (g *GatewayRuntime) Start(ctx context.Context) error {
	if g == nil {
		return fmt.Errorf("gateway runtime is nil")
	}

	g.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)
		g.cancel = cancel

		g.wg.Add(2)
		go func() {
			defer g.wg.Done()
			pipeline.RunReadPipeline(runCtx, g.source, g.queue, g.policy, g.tracker, g.obs)
		}()
		go func() {
			defer g.wg.Done()
			pipeline.RunWorkflowPipeline(runCtx, g.queue, g.decoder, g.engine, g.store, g.policy, g.tracker, g.obs)
		}()

		if g.observer != nil {
			g.wg.Add(1)
			go func() {
				defer g.wg.Done()
				pipeline.RunObserverLoop(runCtx, g.tracker, g.observer, g.policy.ObserverInterval)
			}()
		}

		if g.cfg.Metrics.SnapshotPath != "" {
			g.wg.Add(1)
			go func() {
				defer g.wg.Done()
				g.snapshotLoop(runCtx)
			}()
		}

		g.startMetrics()
	})
	return nil
}

// Run starts the runtime and blocks until the provided context is cancelled.
// Upon cancellation it attempts a graceful shutdown.
func (g *GatewayRuntime) Run(ctx context.Context) error {
	if err := g.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(shutdownCtx)
}

// Shutdown stops the pipelines, metrics server, link, and store.
func (g *GatewayRuntime) Shutdown(ctx context.Context) error {
	var errs []error

	if g.cancel != nil {
		g.cancel()
	}

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("pipeline drain: %w", ctx.Err()))
	}

	if g.metricsSrv != nil {
		if err := g.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if g.cfg.Metrics.SnapshotPath != "" {
		if err := g.writeSnapshot(); err != nil {
			errs = append(errs, err)
		}
	}

	if g.link != nil {
		if err := g.link.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if closer, ok := g.store.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if g.db != nil {
		if err := g.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Snapshot returns the current counters and latest workflow run.
func (g *GatewayRuntime) Snapshot() (Counters, *WorkflowRun) {
	return g.tracker.Snapshot()
}

func (g *GatewayRuntime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	g.metricsSrv = &http.Server{
		Addr:    g.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := g.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.obs.LogError("metrics_server_exited", err)
		}
	}()
}

func (g *GatewayRuntime) snapshotLoop(ctx context.Context) {
	interval := g.cfg.Metrics.SnapshotInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := g.writeSnapshot(); err != nil {
				g.obs.LogError("metrics_snapshot_failed", err)
			}
		}
	}
}

type metricsSnapshot struct {
	TakenAt  time.Time    `json:"taken_at"`
	Counters Counters     `json:"counters"`
	LastRun  *WorkflowRun `json:"last_run,omitempty"`
}

func (g *GatewayRuntime) writeSnapshot() error {
	counters, last := g.tracker.Snapshot()
	snap := metricsSnapshot{
		TakenAt:  time.Now().UTC(),
		Counters: counters,
		LastRun:  last,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp := g.cfg.Metrics.SnapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, g.cfg.Metrics.SnapshotPath)
}
