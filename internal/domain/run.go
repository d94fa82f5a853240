package domain

import "time"

// RunStatus is the state of a workflow run. Ready and Failed are the
// only terminal states.
type RunStatus uint8

const (
	StatusIdle RunStatus = iota
	StatusDecrypting
	StatusDeviceEncrypt
	StatusGatewayPRE
	StatusCloudDecrypt
	StatusVerifying
	StatusReady
	StatusFailed
)

func (s RunStatus) String() string {
	switch s {
	case StatusDecrypting:
		return "decrypting"
	case StatusDeviceEncrypt:
		return "device_encrypt"
	case StatusGatewayPRE:
		return "gateway_pre"
	case StatusCloudDecrypt:
		return "cloud_decrypt"
	case StatusVerifying:
		return "verifying"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Terminal reports whether the run has finished, successfully or not.
func (s RunStatus) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// FailReason identifies why a run ended in StatusFailed.
type FailReason string

const (
	FailNone               FailReason = ""
	FailDecode             FailReason = "decode"
	FailDeviceEncrypt      FailReason = "device_encrypt"
	FailGatewayPRE         FailReason = "gateway_pre"
	FailIntegrityViolation FailReason = "integrity_violation"
	FailRoundTripMismatch  FailReason = "round_trip_mismatch"
	FailAborted            FailReason = "aborted"
)

// StageTimings holds the wall-clock duration of each crypto stage,
// measured independently. Total is their sum rather than a separate
// end-to-end measurement, so inter-stage scheduling overhead never
// leaks into the per-stage numbers.
type StageTimings struct {
	DeviceEncrypt time.Duration `json:"device_encrypt"`
	GatewayPRE    time.Duration `json:"gateway_pre"`
	CloudDecrypt  time.Duration `json:"cloud_decrypt"`
	Verify        time.Duration `json:"verify"`
}

func (t StageTimings) Total() time.Duration {
	return t.DeviceEncrypt + t.GatewayPRE + t.CloudDecrypt + t.Verify
}

// WorkflowRun tracks one record's trip through the re-encryption
// workflow. The engine publishes a fresh copy to the tracker on every
// transition; a run value is never mutated after it has been published.
type WorkflowRun struct {
	ID        string
	StartedAt time.Time
	Status    RunStatus
	Reason    FailReason
	Timings   StageTimings
	Result    *SensorRecord
}

// VerifiedRun is the persisted artifact written to the terminal store
// once a run reaches StatusReady.
type VerifiedRun struct {
	RunID       string       `json:"run_id"`
	CompletedAt time.Time    `json:"completed_at"`
	Record      SensorRecord `json:"record"`
	Timings     StageTimings `json:"timings"`
}
