package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kyberfog/kyberfog/internal/domain"
)

func verifiedRun(id string, seq uint64) *domain.VerifiedRun {
	return &domain.VerifiedRun{
		RunID:       id,
		CompletedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Record: domain.SensorRecord{
			DeviceID:    "DEV_1",
			Seq:         seq,
			Temperature: 22.5,
			Humidity:    51.0,
			Light:       420,
			DeviceTS:    seq * 1000,
		},
		Timings: domain.StageTimings{
			DeviceEncrypt: time.Millisecond,
			GatewayPRE:    2 * time.Millisecond,
			CloudDecrypt:  time.Millisecond,
			Verify:        time.Microsecond,
		},
	}
}

func TestFileStoreAppendAndIterate(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()

	for i := uint64(1); i <= 3; i++ {
		if err := s.AppendRun(verifiedRun("run-1", i)); err != nil {
			t.Fatalf("AppendRun %d: %v", i, err)
		}
	}

	var got []uint64
	err = s.Iterate(func(id uint64, r *domain.VerifiedRun) error {
		got = append(got, r.Record.Seq)
		if r.RunID != "run-1" {
			t.Fatalf("run id = %q", r.RunID)
		}
		if r.Timings.GatewayPRE != 2*time.Millisecond {
			t.Fatalf("timings did not survive: %+v", r.Timings)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("iterated seqs = %v", got)
	}

	stats := s.Stats()
	if stats.Count != 3 || stats.LastID != 3 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestFileStoreReopenContinuesIDs(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := s.AppendRun(verifiedRun("run-1", 1)); err != nil {
		t.Fatalf("AppendRun: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	if got := s.Stats(); got.Count != 1 || got.LastID != 1 {
		t.Fatalf("stats after reopen = %+v", got)
	}
	if err := s.AppendRun(verifiedRun("run-2", 2)); err != nil {
		t.Fatalf("AppendRun after reopen: %v", err)
	}
	if got := s.Stats(); got.Count != 2 || got.LastID != 2 {
		t.Fatalf("stats after second append = %+v", got)
	}
}

func TestFileStoreTruncatesPartialTail(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := s.AppendRun(verifiedRun("run-1", 1)); err != nil {
		t.Fatalf("AppendRun: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Simulate a crash mid-write by appending a torn entry.
	path := filepath.Join(dir, "runs.log")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open for tear: %v", err)
	}
	if _, err := f.Write([]byte{0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 1, 0, 'x'}); err != nil {
		t.Fatalf("write torn entry: %v", err)
	}
	_ = f.Close()

	s, err = NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen after tear: %v", err)
	}
	defer s.Close()

	stats := s.Stats()
	if stats.Count != 1 || stats.LastID != 1 {
		t.Fatalf("stats after tail truncation = %+v", stats)
	}

	var count int
	if err := s.Iterate(func(uint64, *domain.VerifiedRun) error {
		count++
		return nil
	}); err != nil {
		t.Fatalf("Iterate after truncation: %v", err)
	}
	if count != 1 {
		t.Fatalf("iterated %d entries, want 1", count)
	}
}
