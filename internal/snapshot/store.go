// Package snapshot implements the scratch-file-backed capture used by the
// diff workflow: the contents of every scanned region at a point in time,
// spilled to disk and lazily reloaded window by window.
package snapshot

import (
	"fmt"
	"os"
)

// SnappedRange is a captured region: its address range at capture time,
// plus the byte offset and length of its data inside the parent Store's
// scratch file.
type SnappedRange struct {
	Start  uint64
	End    uint64
	Offset int64
	Length int64

	store *Store
}

// Data lazily pulls this range's bytes from the parent store's scratch
// file.
func (s SnappedRange) Data() ([]byte, error) {
	return s.store.pull(s.Offset, s.Length)
}

// Store is a single active snapshot: an append-only scratch file plus the
// list of ranges captured into it. Only one Store should be active per
// Engine at a time; creating a new one after an old one is in use is the
// caller's responsibility to avoid by Closing the old one first.
type Store struct {
	path   string
	file   *os.File
	ranges []SnappedRange
}

// Open creates a new scratch file at path (truncating any prior contents)
// and returns a Store ready to accept Push calls.
func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open scratch file: %w", err)
	}
	return &Store{path: path, file: f}, nil
}

// Push appends data to the scratch file and records a SnappedRange
// covering [start, end) at the offset it was written to.
func (s *Store) Push(start, end uint64, data []byte) error {
	info, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("snapshot: stat scratch file: %w", err)
	}
	offset := info.Size()
	n, err := s.file.WriteAt(data, offset)
	if err != nil {
		return fmt.Errorf("snapshot: append: %w", err)
	}
	s.ranges = append(s.ranges, SnappedRange{
		Start:  start,
		End:    end,
		Offset: offset,
		Length: int64(n),
		store:  s,
	})
	return nil
}

func (s *Store) pull(offset, size int64) ([]byte, error) {
	buf := make([]byte, size)
	n, err := s.file.ReadAt(buf, offset)
	if err != nil && n == 0 {
		return nil, fmt.Errorf("snapshot: pull: %w", err)
	}
	return buf[:n], nil
}

// Ranges returns the captured ranges in capture order.
func (s *Store) Ranges() []SnappedRange {
	return s.ranges
}

// Close releases the scratch file and removes it from disk, matching the
// original's destructor semantics.
func (s *Store) Close() error {
	if s.file == nil {
		return nil
	}
	closeErr := s.file.Close()
	removeErr := os.Remove(s.path)
	s.file = nil
	if closeErr != nil {
		return closeErr
	}
	if removeErr != nil && !os.IsNotExist(removeErr) {
		return removeErr
	}
	return nil
}
