package serial

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kyberfog/kyberfog/internal/ports"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if len(cfg.Patterns) != 2 || cfg.Patterns[0] != "/dev/ttyACM*" || cfg.Patterns[1] != "/dev/ttyUSB*" {
		t.Fatalf("default patterns = %v", cfg.Patterns)
	}
	if cfg.Baud != 9600 {
		t.Fatalf("default baud = %d, want 9600", cfg.Baud)
	}
	if cfg.ReadTimeout != time.Second {
		t.Fatalf("default read timeout = %v", cfg.ReadTimeout)
	}
	if cfg.SimInterval != 2*time.Second {
		t.Fatalf("default sim interval = %v", cfg.SimInterval)
	}
}

func TestConfigApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Patterns:    []string{"/dev/custom*"},
		Baud:        115200,
		ReadTimeout: 250 * time.Millisecond,
	}
	cfg.ApplyDefaults()

	if len(cfg.Patterns) != 1 || cfg.Patterns[0] != "/dev/custom*" {
		t.Fatalf("patterns overwritten: %v", cfg.Patterns)
	}
	if cfg.Baud != 115200 {
		t.Fatalf("baud overwritten: %d", cfg.Baud)
	}
	if cfg.ReadTimeout != 250*time.Millisecond {
		t.Fatalf("read timeout overwritten: %v", cfg.ReadTimeout)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Baud: 0, Patterns: []string{"/dev/ttyACM*"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected zero baud to be rejected")
	}

	cfg = Config{Baud: 9600}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected empty patterns without simulate to be rejected")
	}

	cfg = Config{Baud: 9600, Simulate: true}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("simulate config rejected: %v", err)
	}
}

func TestOpenNoDevice(t *testing.T) {
	// An empty temp dir guarantees no candidates match.
	cfg := Config{
		Patterns: []string{filepath.Join(t.TempDir(), "ttyACM*")},
		Baud:     9600,
	}

	_, err := Open(cfg)
	if !errors.Is(err, ports.ErrNoDevice) {
		t.Fatalf("Open error = %v, want ErrNoDevice", err)
	}
}
