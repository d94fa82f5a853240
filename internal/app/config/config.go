package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kyberfog/kyberfog/internal/adapters/codec"
	"github.com/kyberfog/kyberfog/internal/adapters/kem"
	"github.com/kyberfog/kyberfog/internal/adapters/serial"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// defaultPSKHex is the development key baked into the reference device
// firmware ("KYBER_IOT_PSK_01"). Deployments override it.
const defaultPSKHex = "4b594245525f494f545f50534b5f3031"

type Config struct {
	Link    serial.Config `yaml:"link"`
	PSK     string        `yaml:"psk"`
	KEM     KEMConfig     `yaml:"kem"`
	Policy  ports.Policy  `yaml:"policy"`
	Store   StoreConfig   `yaml:"store"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type KEMConfig struct {
	Level int `yaml:"level"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver"` // "file" or "postgres"
	Dir        string `yaml:"dir"`
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type MetricsConfig struct {
	Addr             string        `yaml:"addr"`
	SnapshotPath     string        `yaml:"snapshot_path"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	c.Link.ApplyDefaults()

	if c.PSK == "" {
		c.PSK = defaultPSKHex
	}
	if c.KEM.Level == 0 {
		c.KEM.Level = kem.Level512
	}
	if c.Policy.MaxQueueLen == 0 {
		c.Policy.MaxQueueLen = 100
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = ports.OnQueueFullDropNewest
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 5 * time.Millisecond
	}
	if c.Policy.ReconnectAttempts == 0 {
		c.Policy.ReconnectAttempts = 5
	}
	if c.Policy.ReconnectBackoff == 0 {
		c.Policy.ReconnectBackoff = 500 * time.Millisecond
	}
	if c.Policy.ObserverInterval == 0 {
		c.Policy.ObserverInterval = time.Second
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "file"
	}
	if c.Store.Dir == "" {
		c.Store.Dir = "./data/runs"
	}
	if c.Store.Table == "" {
		c.Store.Table = "verified_runs"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Metrics.SnapshotPath == "" {
		c.Metrics.SnapshotPath = "./data/metrics.json"
	}
	if c.Metrics.SnapshotInterval == 0 {
		c.Metrics.SnapshotInterval = 30 * time.Second
	}
}

// Validate rejects bad configuration at startup; these are the only
// errors in the system that are fatal to the process.
func (c *Config) Validate() error {
	if err := c.Link.Validate(); err != nil {
		return fmt.Errorf("link config: %w", err)
	}
	psk, err := hex.DecodeString(c.PSK)
	if err != nil {
		return fmt.Errorf("psk is not valid hex: %w", err)
	}
	if len(psk) != codec.PSKLength {
		return fmt.Errorf("psk must be %d bytes, got %d", codec.PSKLength, len(psk))
	}
	if _, err := kem.NewSuite(c.KEM.Level); err != nil {
		return fmt.Errorf("kem config: %w", err)
	}
	switch c.Policy.OnQueueFull {
	case ports.OnQueueFullDropNewest, ports.OnQueueFullDropOldest, ports.OnQueueFullBlock:
	default:
		return fmt.Errorf("policy.on_queue_full must be drop_newest, drop_oldest, or block, got %q", c.Policy.OnQueueFull)
	}
	if c.Policy.MaxQueueLen <= 0 {
		return fmt.Errorf("policy.max_queue_len must be > 0")
	}
	switch c.Store.Driver {
	case "file":
		if c.Store.Dir == "" {
			return fmt.Errorf("store.dir is required for the file driver")
		}
	case "postgres":
		if c.Store.ConnString == "" {
			return fmt.Errorf("store.conn_string is required for the postgres driver")
		}
	default:
		return fmt.Errorf("store.driver must be file or postgres, got %q", c.Store.Driver)
	}
	return nil
}

// PSKBytes returns the decoded pre-shared key. Call only after
// Validate has succeeded.
func (c *Config) PSKBytes() []byte {
	psk, _ := hex.DecodeString(c.PSK)
	return psk
}
