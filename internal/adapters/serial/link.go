package serial

import (
	"errors"
	"fmt"
	"sync"
	"time"

	bugst "go.bug.st/serial"

	"github.com/kyberfog/kyberfog/internal/ports"
)

// Config captures the runtime details required to open the device link.
type Config struct {
	Patterns    []string      `yaml:"patterns"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`

	Simulate    bool          `yaml:"simulate"`
	FallbackSim bool          `yaml:"fallback_simulate"`
	SimInterval time.Duration `yaml:"sim_interval"`
}

func (c *Config) ApplyDefaults() {
	if len(c.Patterns) == 0 {
		c.Patterns = []string{"/dev/ttyACM*", "/dev/ttyUSB*"}
	}
	if c.Baud <= 0 {
		c.Baud = 9600
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = time.Second
	}
	if c.SimInterval <= 0 {
		c.SimInterval = 2 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Baud <= 0 {
		return errors.New("baud must be > 0")
	}
	if len(c.Patterns) == 0 && !c.Simulate {
		return errors.New("at least one link path pattern is required")
	}
	return nil
}

// Link is a serial connection to the device, discovered by scanning the
// configured path patterns.
type Link struct {
	cfg Config

	mu     sync.Mutex
	port   bugst.Port
	path   string
	alive  bool
	closed bool
}

// Open discovers candidate device paths and opens the first one that
// accepts a connection at the configured baud rate. Returns
// ports.ErrNoDevice when no candidate can be opened; the caller decides
// whether to fall back to a simulated link.
func Open(cfg Config) (*Link, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := &Link{cfg: cfg}
	if err := l.acquire(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Link) acquire() error {
	paths, err := Discover(l.cfg.Patterns)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return ports.ErrNoDevice
	}

	mode := &bugst.Mode{BaudRate: l.cfg.Baud}
	var lastErr error
	for _, p := range paths {
		port, err := bugst.Open(p, mode)
		if err != nil {
			lastErr = err
			continue
		}
		if err := port.SetReadTimeout(l.cfg.ReadTimeout); err != nil {
			_ = port.Close()
			lastErr = err
			continue
		}
		l.port = port
		l.path = p
		l.alive = true
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("%w: %v", ports.ErrNoDevice, lastErr)
	}
	return ports.ErrNoDevice
}

func (l *Link) Read(p []byte) (int, error) {
	l.mu.Lock()
	port := l.port
	closed := l.closed
	l.mu.Unlock()

	if closed {
		return 0, ports.ErrLinkClosed
	}
	if port == nil {
		return 0, ports.ErrNoDevice
	}

	n, err := port.Read(p)
	if err != nil {
		l.mu.Lock()
		l.alive = false
		l.mu.Unlock()
		return n, fmt.Errorf("serial read: %w", err)
	}
	return n, nil
}

func (l *Link) Alive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.alive && !l.closed
}

// Reconnect closes any existing handle and re-runs discovery from
// scratch; a replugged device may have moved to a different path.
func (l *Link) Reconnect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ports.ErrLinkClosed
	}
	if l.port != nil {
		_ = l.port.Close()
		l.port = nil
		l.alive = false
	}
	return l.acquire()
}

func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.alive = false
	if l.port == nil {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	return err
}

// Path returns the device path currently in use.
func (l *Link) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

var _ ports.Link = (*Link)(nil)
