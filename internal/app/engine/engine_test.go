package engine

import (
	"context"
	"testing"
	"time"

	"github.com/kyberfog/kyberfog/internal/adapters/kem"
	"github.com/kyberfog/kyberfog/internal/domain"
)

func testRecord() *domain.SensorRecord {
	return &domain.SensorRecord{
		DeviceID:    "DEV_1",
		Seq:         7,
		Temperature: 23.5,
		Humidity:    58.0,
		Light:       512,
		DeviceTS:    120000,
	}
}

func newRun() domain.WorkflowRun {
	return domain.WorkflowRun{
		ID:        "run-test",
		StartedAt: time.Now(),
		Status:    domain.StatusDecrypting,
	}
}

func TestProcessCompletesRun(t *testing.T) {
	suite, err := kem.NewSuite(kem.Level512)
	if err != nil {
		t.Fatalf("NewSuite: %v", err)
	}
	obs := newStubObs()
	tr := NewTracker(obs)
	eng, err := New(suite, tr, obs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := testRecord()
	run := eng.Process(context.Background(), newRun(), rec)

	if run.Status != domain.StatusReady {
		t.Fatalf("status = %v (reason %q), want Ready", run.Status, run.Reason)
	}
	if run.Result == nil || *run.Result != *rec {
		t.Fatalf("result = %+v, want original record", run.Result)
	}

	tm := run.Timings
	if tm.DeviceEncrypt <= 0 || tm.GatewayPRE <= 0 || tm.CloudDecrypt <= 0 || tm.Verify <= 0 {
		t.Fatalf("expected all stage timings measured, got %+v", tm)
	}
	if tm.Total() != tm.DeviceEncrypt+tm.GatewayPRE+tm.CloudDecrypt+tm.Verify {
		t.Fatalf("total is not the stage sum: %+v", tm)
	}

	c, last := tr.Snapshot()
	if c.Processed != 1 {
		t.Fatalf("processed counter = %d, want 1", c.Processed)
	}
	if last == nil || last.Status != domain.StatusReady {
		t.Fatalf("tracker last run = %+v", last)
	}
}

func TestProcessMismatchedCloudKeyIsIntegrityViolation(t *testing.T) {
	suite, err := kem.NewSuite(kem.Level512)
	if err != nil {
		t.Fatalf("NewSuite: %v", err)
	}
	device, err := suite.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	sealTo, err := suite.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	openWith, err := suite.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	// Cloud keypair whose private share does not match the public share
	// the gateway reseals to.
	cloud := kem.KeyPair{Public: sealTo.Public, Private: openWith.Private}

	obs := newStubObs()
	tr := NewTracker(obs)
	eng := NewWithKeys(suite, device, cloud, tr, obs)

	run := eng.Process(context.Background(), newRun(), testRecord())
	if run.Status != domain.StatusFailed {
		t.Fatalf("status = %v, want Failed", run.Status)
	}
	if run.Reason != domain.FailIntegrityViolation {
		t.Fatalf("reason = %q, want %q", run.Reason, domain.FailIntegrityViolation)
	}
	if run.Result != nil {
		t.Fatal("failed run must not carry a result")
	}
	if len(obs.errors) == 0 {
		t.Fatal("expected failure to be logged")
	}
}

func TestProcessCancelledContextAborts(t *testing.T) {
	suite, err := kem.NewSuite(kem.Level512)
	if err != nil {
		t.Fatalf("NewSuite: %v", err)
	}
	obs := newStubObs()
	tr := NewTracker(obs)
	eng, err := New(suite, tr, obs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := eng.Process(ctx, newRun(), testRecord())
	if run.Status != domain.StatusFailed || run.Reason != domain.FailAborted {
		t.Fatalf("run = status %v reason %q, want Failed/aborted", run.Status, run.Reason)
	}
}
