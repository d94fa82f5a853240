package frame

import (
	"context"
	"fmt"
	"strings"

	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// maxPending caps the line reassembly buffer. A buffer past this size
// without a terminator means corrupted input; the oldest half is shed
// so a healthy stream can resynchronize.
const maxPending = 4096

// Reader reassembles newline-delimited frames from the link, buffering
// partial reads across calls. Both bare and carriage-return-prefixed
// terminators are accepted.
type Reader struct {
	link    ports.Link
	pending []byte
	chunk   [256]byte
	seq     uint64
}

func NewReader(link ports.Link) *Reader {
	return &Reader{link: link}
}

// Next blocks until a complete line has been read and classified.
func (r *Reader) Next(ctx context.Context) (domain.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Frame{}, err
		}

		if line, ok := r.nextLine(); ok {
			if line == "" {
				continue
			}
			r.seq++
			return Classify(line, r.seq), nil
		}

		n, err := r.link.Read(r.chunk[:])
		if n > 0 {
			r.pending = append(r.pending, r.chunk[:n]...)
			if len(r.pending) > maxPending {
				r.pending = append(r.pending[:0:0], r.pending[len(r.pending)/2:]...)
			}
		}
		if err != nil {
			return domain.Frame{}, fmt.Errorf("frame read: %w", err)
		}
	}
}

// Reconnect drops any partial line and re-acquires the link.
func (r *Reader) Reconnect() error {
	r.pending = r.pending[:0]
	return r.link.Reconnect()
}

// nextLine extracts the first complete line out of the pending buffer,
// handling \r\n, \n, and bare \r terminators.
func (r *Reader) nextLine() (string, bool) {
	idx := -1
	for i, c := range r.pending {
		if c == '\n' || c == '\r' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", false
	}

	line := string(r.pending[:idx])
	rest := r.pending[idx+1:]
	if r.pending[idx] == '\r' && len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	}
	r.pending = append(r.pending[:0], rest...)
	return strings.TrimSpace(line), true
}

var _ ports.FrameSource = (*Reader)(nil)
