package store

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

const recordHeaderLen = 12

// FileStore is an append-only terminal store of verified runs. Each
// entry is framed as [8 bytes id][4 bytes len][len bytes json]; on open
// the file is scanned and any partial tail from a crashed writer is
// truncated.
type FileStore struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	writer    *bufio.Writer
	nextID    uint64
	count     uint64
	sizeBytes int64
}

// StoreStats exposes terminal store metadata.
type StoreStats struct {
	Count     uint64
	LastID    uint64
	SizeBytes int64
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "runs.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	s := &FileStore{
		path:   path,
		file:   f,
		writer: bufio.NewWriterSize(f, 1<<16),
	}
	if err := s.scanExisting(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := s.file.Seek(0, io.SeekEnd); err != nil {
		_ = f.Close()
		return nil, err
	}
	return s, nil
}

func (s *FileStore) scanExisting() error {
	stat, err := os.Stat(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err != nil || stat.Size() == 0 {
		return nil
	}

	rf, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer rf.Close()

	reader := bufio.NewReader(rf)
	var (
		offset int64
		lastID uint64
		count  uint64
	)

	for {
		var hdr [recordHeaderLen]byte
		if _, err := io.ReadFull(reader, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return fmt.Errorf("store scan header: %w", err)
		}
		id := binary.BigEndian.Uint64(hdr[0:8])
		length := binary.BigEndian.Uint32(hdr[8:12])

		if _, err := io.CopyN(io.Discard, reader, int64(length)); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return fmt.Errorf("store scan body: %w", err)
		}
		offset += recordHeaderLen + int64(length)
		lastID = id
		count++
	}

	if err := s.file.Truncate(offset); err != nil {
		return err
	}
	s.sizeBytes = offset
	s.nextID = lastID
	s.count = count
	return nil
}

// AppendRun writes and flushes one verified run. Runs arrive at device
// event rate, so a flush per append is cheap and keeps the tail loss
// window at a single crashed write.
func (s *FileStore) AppendRun(r *domain.VerifiedRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(r)
	if err != nil {
		return err
	}

	id := s.nextID + 1
	var hdr [recordHeaderLen]byte
	binary.BigEndian.PutUint64(hdr[0:8], id)
	binary.BigEndian.PutUint32(hdr[8:12], uint32(len(b)))

	if _, err := s.writer.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := s.writer.Write(b); err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}

	s.nextID = id
	s.count++
	s.sizeBytes += int64(len(b) + recordHeaderLen)
	return nil
}

// Iterate replays every stored run in append order.
func (s *FileStore) Iterate(fn func(id uint64, r *domain.VerifiedRun) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Flush(); err != nil {
		return err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	for {
		var hdr [recordHeaderLen]byte
		if _, err := io.ReadFull(reader, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("store iterate header: %w", err)
		}
		id := binary.BigEndian.Uint64(hdr[0:8])
		length := binary.BigEndian.Uint32(hdr[8:12])

		b := make([]byte, length)
		if _, err := io.ReadFull(reader, b); err != nil {
			return fmt.Errorf("corrupt store entry: %w", err)
		}
		var run domain.VerifiedRun
		if err := json.Unmarshal(b, &run); err != nil {
			return fmt.Errorf("corrupt store entry: %w", err)
		}
		if err := fn(id, &run); err != nil {
			return err
		}
	}
}

func (s *FileStore) Stats() StoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StoreStats{Count: s.count, LastID: s.nextID, SizeBytes: s.sizeBytes}
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writer.Flush(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

func (s *FileStore) Name() string { return "file" }

var _ ports.RunStore = (*FileStore)(nil)
