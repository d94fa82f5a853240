package ports

import "time"

// Queue overflow modes. The upstream producer has no flow control, so
// "block" stalls the reader and is supported only for embedders that
// own their producer.
const (
	OnQueueFullDropNewest = "drop_newest"
	OnQueueFullDropOldest = "drop_oldest"
	OnQueueFullBlock      = "block"
)

type Policy struct {
	MaxQueueLen int           `yaml:"max_queue_len"`
	OnQueueFull string        `yaml:"on_queue_full"`
	IdleSleep   time.Duration `yaml:"idle_sleep"`

	ReconnectAttempts int           `yaml:"reconnect_attempts"`
	ReconnectBackoff  time.Duration `yaml:"reconnect_backoff"`

	ObserverInterval time.Duration `yaml:"observer_interval"`
}
