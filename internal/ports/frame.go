package ports

import (
	"context"

	"github.com/kyberfog/kyberfog/internal/domain"
)

// FrameSource yields classified frames off the link. Next blocks until
// a full line is available or the context is cancelled. Reconnect
// discards any partial line and re-acquires the underlying link.
type FrameSource interface {
	Next(ctx context.Context) (domain.Frame, error)
	Reconnect() error
}
