package frame

import (
	"context"
	"io"
	"testing"

	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// scriptLink feeds pre-cut chunks so tests control read boundaries.
type scriptLink struct {
	chunks      [][]byte
	reconnected int
}

func (l *scriptLink) Read(p []byte) (int, error) {
	if len(l.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, l.chunks[0])
	if n == len(l.chunks[0]) {
		l.chunks = l.chunks[1:]
	} else {
		l.chunks[0] = l.chunks[0][n:]
	}
	return n, nil
}

func (l *scriptLink) Alive() bool { return len(l.chunks) > 0 }

func (l *scriptLink) Reconnect() error {
	l.reconnected++
	return nil
}

func (l *scriptLink) Close() error { return nil }

var _ ports.Link = (*scriptLink)(nil)

func TestReaderReassemblesAcrossChunks(t *testing.T) {
	link := &scriptLink{chunks: [][]byte{
		[]byte("ENC:DE"),
		[]byte("ADBEEF\r"),
		[]byte("\n# INIT: DEV_1 ready\n"),
	}}
	r := NewReader(link)

	f, err := r.Next(context.Background())
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if f.Kind != domain.FrameEncrypted || f.Payload != "DEADBEEF" {
		t.Fatalf("first frame = %+v", f)
	}
	if f.Seq != 1 {
		t.Fatalf("first frame seq = %d, want 1", f.Seq)
	}

	f, err = r.Next(context.Background())
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if f.Kind != domain.FrameInit {
		t.Fatalf("second frame = %+v", f)
	}
	if f.Seq != 2 {
		t.Fatalf("second frame seq = %d, want 2", f.Seq)
	}
}

func TestReaderSkipsBlankLines(t *testing.T) {
	link := &scriptLink{chunks: [][]byte{
		[]byte("\r\n\r\nPONG: ok\r\n"),
	}}
	r := NewReader(link)

	f, err := r.Next(context.Background())
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if f.Kind != domain.FramePong {
		t.Fatalf("frame = %+v, want Pong", f)
	}
}

func TestReaderPropagatesLinkError(t *testing.T) {
	r := NewReader(&scriptLink{})

	if _, err := r.Next(context.Background()); err == nil {
		t.Fatal("expected error from exhausted link")
	}
}

func TestReaderHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReader(&scriptLink{chunks: [][]byte{[]byte("PONG: ok\n")}})
	if _, err := r.Next(ctx); err != context.Canceled {
		t.Fatalf("Next error = %v, want context.Canceled", err)
	}
}

func TestReaderReconnectDropsPartialLine(t *testing.T) {
	link := &scriptLink{chunks: [][]byte{
		[]byte("ENC:DEAD"), // no terminator
	}}
	r := NewReader(link)
	r.pending = append(r.pending, []byte("ENC:DEAD")...)

	if err := r.Reconnect(); err != nil {
		t.Fatalf("Reconnect returned error: %v", err)
	}
	if link.reconnected != 1 {
		t.Fatalf("link reconnect calls = %d, want 1", link.reconnected)
	}
	if len(r.pending) != 0 {
		t.Fatalf("pending buffer not cleared: %q", r.pending)
	}
}
