package kyberfog

import (
	base "github.com/kyberfog/kyberfog/pkg/kyberfog"
)

// Re-exported errors for convenience.
var (
	ErrNoDevice   = base.ErrNoDevice
	ErrLinkClosed = base.ErrLinkClosed
)

// Type aliases so consumers can import github.com/kyberfog/kyberfog directly.
type (
	Config               = base.Config
	KEMConfig            = base.KEMConfig
	StoreConfig          = base.StoreConfig
	MetricsConfig        = base.MetricsConfig
	Policy               = base.Policy
	Flow                 = base.Flow
	FlowOption           = base.FlowOption
	StreamInOption       = base.StreamInOption
	StreamOutOption      = base.StreamOutOption
	GatewayRuntime       = base.GatewayRuntime
	GatewayRuntimeOption = base.GatewayRuntimeOption
	Frame                = base.Frame
	FrameKind            = base.FrameKind
	SensorRecord         = base.SensorRecord
	WorkflowRun          = base.WorkflowRun
	RunStatus            = base.RunStatus
	StageTimings         = base.StageTimings
	VerifiedRun          = base.VerifiedRun
	Counters             = base.Counters
	Snapshot             = base.Snapshot
	SnapshotFunc         = base.SnapshotFunc
	Link                 = base.Link
	FrameSource          = base.FrameSource
	FrameQueue           = base.FrameQueue
	RecordDecoder        = base.RecordDecoder
	RunStore             = base.RunStore
	Observer             = base.Observer
	Observability        = base.Observability
	Field                = base.Field
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...GatewayRuntimeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInLink(l Link) StreamInOption {
	return base.StreamInLink(l)
}

func StreamInQueue(q FrameQueue) StreamInOption {
	return base.StreamInQueue(q)
}

func StreamInDecoder(d RecordDecoder) StreamInOption {
	return base.StreamInDecoder(d)
}

func StreamInObservability(obs Observability) StreamInOption {
	return base.StreamInObservability(obs)
}

func StreamOutStore(s RunStore) StreamOutOption {
	return base.StreamOutStore(s)
}

func StreamOutObserver(v Observer) StreamOutOption {
	return base.StreamOutObserver(v)
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return base.StreamOutObservability(obs)
}

func StreamOutCallback(fn SnapshotFunc) StreamOutOption {
	return base.StreamOutCallback(fn)
}

// Gateway runtime and options.
func NewGatewayRuntime(cfg *Config, opts ...GatewayRuntimeOption) (*GatewayRuntime, error) {
	return base.NewGatewayRuntime(cfg, opts...)
}

func WithLink(l Link) GatewayRuntimeOption {
	return base.WithLink(l)
}

func WithFrameQueue(q FrameQueue) GatewayRuntimeOption {
	return base.WithFrameQueue(q)
}

func WithRunStore(s RunStore) GatewayRuntimeOption {
	return base.WithRunStore(s)
}

func WithObserver(v Observer) GatewayRuntimeOption {
	return base.WithObserver(v)
}

func WithObservability(obs Observability) GatewayRuntimeOption {
	return base.WithObservability(obs)
}

func WithRecordDecoder(d RecordDecoder) GatewayRuntimeOption {
	return base.WithRecordDecoder(d)
}

// Observer adapters.
func NewLogObserver(obs Observability) Observer {
	return base.NewLogObserver(obs)
}

func NewCallbackObserver(fn SnapshotFunc) Observer {
	return base.NewCallbackObserver(fn)
}

func NewChannelObserver(buffer int) (Observer, <-chan Snapshot, func()) {
	return base.NewChannelObserver(buffer)
}
