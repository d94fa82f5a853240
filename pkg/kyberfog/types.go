package kyberfog

import (
	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// Frame is one classified line off the device link.
type Frame = domain.Frame

// FrameKind enumerates the closed set of frame types.
type FrameKind = domain.FrameKind

const (
	FrameUnrecognized = domain.FrameUnrecognized
	FrameInit         = domain.FrameInit
	FrameTrigger      = domain.FrameTrigger
	FrameEncrypted    = domain.FrameEncrypted
	FramePong         = domain.FramePong
	FrameStatus       = domain.FrameStatus
	FrameDebug        = domain.FrameDebug
)

// SensorRecord is the recovered sensor reading.
type SensorRecord = domain.SensorRecord

// WorkflowRun tracks one record through the re-encryption workflow.
type WorkflowRun = domain.WorkflowRun

// RunStatus is the workflow state; Ready and Failed are terminal.
type RunStatus = domain.RunStatus

const (
	StatusIdle          = domain.StatusIdle
	StatusDecrypting    = domain.StatusDecrypting
	StatusDeviceEncrypt = domain.StatusDeviceEncrypt
	StatusGatewayPRE    = domain.StatusGatewayPRE
	StatusCloudDecrypt  = domain.StatusCloudDecrypt
	StatusVerifying     = domain.StatusVerifying
	StatusReady         = domain.StatusReady
	StatusFailed        = domain.StatusFailed
)

// StageTimings holds per-stage wall-clock durations.
type StageTimings = domain.StageTimings

// VerifiedRun is the persisted artifact per verified run.
type VerifiedRun = domain.VerifiedRun

// Counters is a snapshot of the pipeline counters.
type Counters = domain.Counters

// Link is the byte stream to the upstream producer.
type Link = ports.Link

// FrameSource yields classified frames.
type FrameSource = ports.FrameSource

// FrameQueue is the bounded buffer between reader and workflow.
type FrameQueue = ports.FrameQueue

// RecordDecoder reverses the device's lightweight obfuscation.
type RecordDecoder = ports.RecordDecoder

// RunStore persists verified runs.
type RunStore = ports.RunStore

// Observer renders pipeline state on its own cadence.
type Observer = ports.Observer

// Observability is the logging/metrics backend.
type Observability = ports.Observability

// Field is a structured log field.
type Field = ports.Field

// Policy controls queue overflow, reconnect, and cadence knobs.
type Policy = ports.Policy

// Queue overflow modes.
const (
	OnQueueFullDropNewest = ports.OnQueueFullDropNewest
	OnQueueFullDropOldest = ports.OnQueueFullDropOldest
	OnQueueFullBlock      = ports.OnQueueFullBlock
)

// Sentinel errors re-exported for callers.
var (
	ErrNoDevice   = ports.ErrNoDevice
	ErrLinkClosed = ports.ErrLinkClosed
)
