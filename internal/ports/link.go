package ports

import (
	"errors"
	"io"
)

// ErrNoDevice is returned when link discovery finds no candidate path.
var ErrNoDevice = errors.New("kyberfog: no candidate device found")

// ErrLinkClosed is returned by reads on a link that has been closed.
var ErrLinkClosed = errors.New("kyberfog: link closed")

// Link is a byte stream to the upstream producer. A read error marks
// the link dead; callers must Reconnect before resuming. Reconnect
// re-runs discovery from scratch because a replugged device may appear
// on a different path.
type Link interface {
	io.Reader
	Alive() bool
	Reconnect() error
	Close() error
}
