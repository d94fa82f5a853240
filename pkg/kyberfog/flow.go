package kyberfog

import (
	"context"
	"fmt"
)

// Flow is a convenience builder that lets callers say Conf → StreamIN → StreamOUT
// without touching the underlying hexagonal wiring.
type Flow struct {
	cfg  *Config
	opts []GatewayRuntimeOption
}

// FlowOption mutates the Flow after configuration is loaded.
type FlowOption func(*Flow)

// StreamInOption configures the link/reader/queue side of the pipeline.
type StreamInOption func(*Flow)

// StreamOutOption configures the store/observer side of the pipeline.
type StreamOutOption func(*Flow)

// Conf loads YAML from disk, applies FlowOption values, and returns a Flow builder.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig bootstraps a Flow from an in-memory Config.
func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config returns the underlying configuration so callers can tweak it before building a runtime.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

// Options appends raw GatewayRuntimeOption values to the builder for advanced scenarios.
func (f *Flow) Options(opts ...GatewayRuntimeOption) *Flow {
	if f == nil {
		return nil
	}
	f.appendOptions(opts...)
	return f
}

// StreamIN records link-side overrides (link, queue, decoder, observability).
func (f *Flow) StreamIN(opts ...StreamInOption) *Flow {
	if f == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// StreamOUT records store-side overrides and builds a GatewayRuntime ready to run.
func (f *Flow) StreamOUT(opts ...StreamOutOption) (*GatewayRuntime, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return NewGatewayRuntime(f.cfg, f.opts...)
}

// Run is a shortcut for StreamOUT + runtime.Run.
func (f *Flow) Run(ctx context.Context, opts ...StreamOutOption) error {
	rt, err := f.StreamOUT(opts...)
	if err != nil {
		return err
	}
	return rt.Run(ctx)
}

// WithFlowOptions appends GatewayRuntimeOption values during Conf.
func WithFlowOptions(opts ...GatewayRuntimeOption) FlowOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(opts...)
		}
	}
}

// StreamInLink injects a custom link (TCP bridges, replay files, simulators, etc.).
func StreamInLink(l Link) StreamInOption {
	return func(f *Flow) {
		if f != nil && l != nil {
			f.appendOptions(WithLink(l))
		}
	}
}

// StreamInQueue swaps the in-memory queue for a caller-provided implementation.
func StreamInQueue(q FrameQueue) StreamInOption {
	return func(f *Flow) {
		if f != nil && q != nil {
			f.appendOptions(WithFrameQueue(q))
		}
	}
}

// StreamInDecoder lets callers bring their own record decoder.
func StreamInDecoder(d RecordDecoder) StreamInOption {
	return func(f *Flow) {
		if f != nil && d != nil {
			f.appendOptions(WithRecordDecoder(d))
		}
	}
}

// StreamInObservability overrides the default Prometheus-based observability stack.
func StreamInObservability(obs Observability) StreamInOption {
	return func(f *Flow) {
		if f != nil && obs != nil {
			f.appendOptions(WithObservability(obs))
		}
	}
}

// StreamOutStore injects a custom ports.RunStore implementation.
func StreamOutStore(s RunStore) StreamOutOption {
	return func(f *Flow) {
		if f != nil && s != nil {
			f.appendOptions(WithRunStore(s))
		}
	}
}

// StreamOutObserver attaches a pipeline state observer.
func StreamOutObserver(v Observer) StreamOutOption {
	return func(f *Flow) {
		if f != nil && v != nil {
			f.appendOptions(WithObserver(v))
		}
	}
}

// StreamOutObservability replaces the default observability backend.
func StreamOutObservability(obs Observability) StreamOutOption {
	return func(f *Flow) {
		if f != nil && obs != nil {
			f.appendOptions(WithObservability(obs))
		}
	}
}

// StreamOutCallback installs an observer built from a simple callback function.
func StreamOutCallback(fn SnapshotFunc) StreamOutOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(WithObserver(NewCallbackObserver(fn)))
		}
	}
}

func (f *Flow) appendOptions(opts ...GatewayRuntimeOption) {
	for _, opt := range opts {
		if opt != nil {
			f.opts = append(f.opts, opt)
		}
	}
}
