package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/kyberfog/kyberfog/internal/adapters/kem"
	"github.com/kyberfog/kyberfog/internal/adapters/observability"
	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// Engine executes the three-stage re-encryption workflow. One run
// occupies the machine at a time: the mutex enforces the serialized
// discipline even if a caller wires two workflow loops by mistake.
//
// Key roles: the device keypair is the encapsulation target of the
// first stage, and its private share is what the gateway is authorized
// to use for the re-encryption transform. The cloud keypair is the
// terminal party; only CloudDecrypt touches its private key.
type Engine struct {
	mu      sync.Mutex
	suite   kem.Suite
	device  kem.KeyPair
	cloud   kem.KeyPair
	tracker *Tracker
	obs     ports.Observability
}

// New generates fresh device and cloud keypairs for the session.
func New(suite kem.Suite, tracker *Tracker, obs ports.Observability) (*Engine, error) {
	device, err := suite.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	cloud, err := suite.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return NewWithKeys(suite, device, cloud, tracker, obs), nil
}

// NewWithKeys wires provisioned key material instead of generating it.
func NewWithKeys(suite kem.Suite, device, cloud kem.KeyPair, tracker *Tracker, obs ports.Observability) *Engine {
	return &Engine{
		suite:   suite,
		device:  device,
		cloud:   cloud,
		tracker: tracker,
		obs:     obs,
	}
}

// Process drives one accepted record through DeviceEncrypt → GatewayPRE
// → CloudDecrypt → Verifying and returns the terminal run. The caller
// owns run up to this call; every transition is published to the
// tracker as a whole-run snapshot.
func (e *Engine) Process(ctx context.Context, run domain.WorkflowRun, rec *domain.SensorRecord) domain.WorkflowRun {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return e.fail(run, domain.FailAborted, err)
	}

	plain, err := json.Marshal(rec)
	if err != nil {
		return e.fail(run, domain.FailDeviceEncrypt, fmt.Errorf("serialize record: %w", err))
	}

	// DeviceEncrypt: encapsulate to the device key, seal the record.
	run = e.advance(run, domain.StatusDeviceEncrypt)
	start := time.Now()
	deviceEnv, err := e.suite.Seal(e.device.Public, "device", plain)
	run.Timings.DeviceEncrypt = time.Since(start)
	e.obs.ObserveLatency(observability.MetricStageDeviceEncrypt, run.Timings.DeviceEncrypt.Seconds())
	if err != nil {
		return e.fail(run, domain.FailDeviceEncrypt, err)
	}

	// GatewayPRE: transform the device envelope into a cloud envelope.
	run = e.advance(run, domain.StatusGatewayPRE)
	start = time.Now()
	cloudEnv, err := e.reencrypt(deviceEnv)
	run.Timings.GatewayPRE = time.Since(start)
	e.obs.ObserveLatency(observability.MetricStageGatewayPRE, run.Timings.GatewayPRE.Seconds())
	if err != nil {
		return e.fail(run, domain.FailGatewayPRE, err)
	}

	// CloudDecrypt: the terminal party recovers the record bytes.
	run = e.advance(run, domain.StatusCloudDecrypt)
	start = time.Now()
	recovered, err := e.suite.Open(e.cloud.Private, cloudEnv)
	run.Timings.CloudDecrypt = time.Since(start)
	e.obs.ObserveLatency(observability.MetricStageCloudDecrypt, run.Timings.CloudDecrypt.Seconds())
	if err != nil {
		// Tag mismatch means corruption or tampering; never retried.
		return e.fail(run, domain.FailIntegrityViolation, err)
	}

	// Verifying: the round trip must reproduce the original record.
	run = e.advance(run, domain.StatusVerifying)
	start = time.Now()
	var round domain.SensorRecord
	err = json.Unmarshal(recovered, &round)
	run.Timings.Verify = time.Since(start)
	e.obs.ObserveLatency(observability.MetricStageVerify, run.Timings.Verify.Seconds())
	if err != nil {
		return e.fail(run, domain.FailRoundTripMismatch, fmt.Errorf("parse recovered record: %w", err))
	}
	if round != *rec {
		return e.fail(run, domain.FailRoundTripMismatch,
			fmt.Errorf("recovered record differs from original (device %s seq %d)", rec.DeviceID, rec.Seq))
	}

	run.Status = domain.StatusReady
	run.Result = rec
	e.tracker.RunUpdated(run)
	e.tracker.Processed()
	e.obs.ObserveLatency(observability.MetricRunTotal, run.Timings.Total().Seconds())
	return run
}

// reencrypt is the proxy re-encryption transform. The gateway opens the
// device envelope with the share it is authorized to hold and re-seals
// the same bytes under a fresh encapsulation to the cloud key. The
// plaintext exists only inside this function and is wiped on exit;
// it is never logged or persisted here.
func (e *Engine) reencrypt(deviceEnv *domain.Envelope) (*domain.Envelope, error) {
	plain, err := e.suite.Open(e.device.Private, deviceEnv)
	if err != nil {
		return nil, fmt.Errorf("open device envelope: %w", err)
	}
	defer wipe(plain)

	cloudEnv, err := e.suite.Seal(e.cloud.Public, "cloud", plain)
	if err != nil {
		return nil, fmt.Errorf("reseal for cloud: %w", err)
	}
	return cloudEnv, nil
}

func (e *Engine) advance(run domain.WorkflowRun, status domain.RunStatus) domain.WorkflowRun {
	run.Status = status
	e.tracker.RunUpdated(run)
	return run
}

func (e *Engine) fail(run domain.WorkflowRun, reason domain.FailReason, err error) domain.WorkflowRun {
	run.Status = domain.StatusFailed
	run.Reason = reason
	e.tracker.RunUpdated(run)
	e.obs.LogError("workflow_failed", err,
		ports.Field{Key: "run_id", Value: run.ID},
		ports.Field{Key: "reason", Value: string(reason)})
	return run
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
