package serial

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// SimConfig configures the synthetic link used when no physical device
// is present.
type SimConfig struct {
	PSK      []byte
	DeviceID string
	// Interval paces frame production; zero produces frames as fast as
	// the reader pulls them (useful in tests).
	Interval time.Duration
	Seed     int64
}

// SimLink emits the same wire frames a real device would: one INIT
// comment, then encrypted sensor records with an occasional button
// trigger comment. Records are XOR-obfuscated with the PSK and hex
// encoded, so the full decode path is exercised.
type SimLink struct {
	cfg SimConfig
	rng *rand.Rand

	mu      sync.Mutex
	pending []byte
	seq     uint64
	started bool
	closed  bool
}

func NewSimLink(cfg SimConfig) *SimLink {
	if cfg.DeviceID == "" {
		cfg.DeviceID = "SIM_DEV_01"
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimLink{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

func (s *SimLink) Read(p []byte) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ports.ErrLinkClosed
	}
	if len(s.pending) == 0 {
		s.fillLocked()
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	interval := s.cfg.Interval
	s.mu.Unlock()

	if interval > 0 {
		time.Sleep(interval)
	}
	return n, nil
}

func (s *SimLink) fillLocked() {
	var b strings.Builder
	if !s.started {
		s.started = true
		fmt.Fprintf(&b, "# INIT: %s ready\r\n", s.cfg.DeviceID)
	}

	s.seq++
	if s.seq%5 == 0 {
		b.WriteString("# BUTTON: pressed\r\n")
	}
	if s.seq%7 == 0 {
		fmt.Fprintf(&b, "STATUS:%s,msgs:%d,uptime:%d\r\n", s.cfg.DeviceID, s.seq, s.seq*2000)
	}

	rec := domain.SensorRecord{
		DeviceID:    s.cfg.DeviceID,
		Seq:         s.seq,
		Temperature: round1(22 + s.rng.Float64()*6 - 3),
		Humidity:    round1(55 + s.rng.Float64()*20 - 10),
		Light:       int64(500 + s.rng.Intn(401) - 200),
		DeviceTS:    uint64(time.Now().UnixMilli()),
	}
	plain, err := json.Marshal(&rec)
	if err != nil {
		return
	}
	enc := make([]byte, len(plain))
	for i, c := range plain {
		enc[i] = c ^ s.cfg.PSK[i%len(s.cfg.PSK)]
	}
	fmt.Fprintf(&b, "ENC:%s\r\n", strings.ToUpper(hex.EncodeToString(enc)))

	s.pending = append(s.pending, b.String()...)
}

func (s *SimLink) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *SimLink) Reconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ports.ErrLinkClosed
	}
	s.pending = nil
	return nil
}

func (s *SimLink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

var _ ports.Link = (*SimLink)(nil)
