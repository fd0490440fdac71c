//go:build linux

package memio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/dsmmcken/memscan/internal/memaddr"
)

// wall is __WALL from <sys/wait.h>: wait for any child regardless of
// whether it is a ptrace-traced thread of a different thread group.
const wall = 0x40000000

// wordSize is the native ptrace word size used for PTRACE_POKEDATA
// chunking.
var wordSize = int(unsafe.Sizeof(uintptr(0)))

// UnixPort is the Unix/ptrace MemoryPort backend. When withoutPtrace is
// set, Attach/Detach are no-ops and all writes go through
// /proc/<pid>/mem opened O_WRONLY instead of PTRACE_POKEDATA; this is the
// only mode compatible with concurrent freeze writes.
type UnixPort struct {
	pid           int
	withoutPtrace bool

	attached  bool
	threadIDs []int
	regions   memaddr.RangeSet
	cache     regionCache
}

// NewUnixPort constructs a Unix MemoryPort for pid.
func NewUnixPort(pid int, withoutPtrace bool) *UnixPort {
	return &UnixPort{pid: pid, withoutPtrace: withoutPtrace}
}

func (p *UnixPort) PID() int { return p.pid }

func (p *UnixPort) Attached() bool { return p.attached }

func (p *UnixPort) SupportsConcurrentFreeze() bool { return p.withoutPtrace }

// Attach loads the thread ids from /proc/<pid>/task, PTRACE_ATTACHes each,
// and waits once for any stop, matching the original's single
// waitpid(-1, &status, __WALL).
func (p *UnixPort) Attach() error {
	p.cache.invalidate()
	if p.withoutPtrace {
		p.attached = true
		return nil
	}

	ids, err := loadThreadIDs(p.pid)
	if err != nil {
		return fmt.Errorf("memio: load thread ids: %w", err)
	}
	for _, tid := range ids {
		if err := unix.PtraceAttach(tid); err != nil {
			return fmt.Errorf("memio: ptrace attach %d: %w", tid, err)
		}
	}

	var ws unix.WaitStatus
	if _, err := unix.Wait4(-1, &ws, wall, nil); err != nil {
		return fmt.Errorf("memio: waitpid: %w", err)
	}

	p.threadIDs = ids
	p.attached = true
	return nil
}

// Detach reverses Attach.
func (p *UnixPort) Detach() error {
	if p.withoutPtrace {
		p.attached = false
		return nil
	}
	var firstErr error
	for _, tid := range p.threadIDs {
		if err := unix.PtraceDetach(tid); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("memio: ptrace detach %d: %w", tid, err)
		}
	}
	p.threadIDs = nil
	p.attached = false
	return firstErr
}

func loadThreadIDs(pid int) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join("/proc", strconv.Itoa(pid), "task"))
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		tid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		ids = append(ids, tid)
	}
	return ids, nil
}

// EnumerateRegions parses /proc/<pid>/maps.
func (p *UnixPort) EnumerateRegions(scope string, ignoreList []string) (memaddr.RangeSet, error) {
	f, err := os.Open(filepath.Join("/proc", strconv.Itoa(p.pid), "maps"))
	if err != nil {
		return nil, fmt.Errorf("memio: open maps: %w", err)
	}
	defer f.Close()

	set, err := ParseMapsContent(f, scope, ignoreList)
	if err != nil {
		return nil, err
	}
	p.regions = set
	return set, nil
}

// Read performs a positioned pread against /proc/<pid>/mem.
func (p *UnixPort) Read(dst []byte, r memaddr.Range) (int, error) {
	f, err := os.Open(filepath.Join("/proc", strconv.Itoa(p.pid), "mem"))
	if err != nil {
		return 0, fmt.Errorf("memio: open mem for read: %w", err)
	}
	defer f.Close()

	want := len(dst)
	if uint64(want) > r.Size() {
		want = int(r.Size())
	}
	n, err := f.ReadAt(dst[:want], int64(r.Start))
	if err != nil && n == 0 {
		return 0, fmt.Errorf("memio: read %v: %w", r, err)
	}
	return n, nil
}

// ReadCached reads sub through the single-slot parent-range cache.
func (p *UnixPort) ReadCached(dst []byte, sub, parent memaddr.Range) (int, error) {
	if err := p.cache.fill(parent, p.Read); err != nil {
		return 0, err
	}
	data := p.cache.slice(sub)
	return copy(dst, data), nil
}

// Write dispatches to the ptrace pokedata path or the attach-less
// /proc/<pid>/mem write path depending on mode and freezeFlag.
func (p *UnixPort) Write(r memaddr.Range, data []byte, freezeFlag bool) (int, error) {
	if p.withoutPtrace {
		return p.writeDirect(r, data)
	}
	if freezeFlag {
		return 0, fmt.Errorf("memio: freeze writes require attach-less mode")
	}
	return p.writeByPokeData(r, data)
}

func (p *UnixPort) writeDirect(r memaddr.Range, data []byte) (int, error) {
	f, err := os.OpenFile(filepath.Join("/proc", strconv.Itoa(p.pid), "mem"), os.O_WRONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("memio: open mem for write: %w", err)
	}
	defer f.Close()

	n, err := f.WriteAt(data, int64(r.Start))
	if err != nil && n == 0 {
		return 0, fmt.Errorf("memio: write %v: %w", r, err)
	}
	return n, nil
}

// writeByPokeData writes data in word-sized chunks via PTRACE_POKEDATA. The
// final, possibly partial, word is merged with existing memory read
// through Read and bounded to the enclosing region's end (Open Question c):
// if the merge would need bytes past that boundary, the write stops short
// and returns the partial count instead of reading into whatever mapping
// follows.
func (p *UnixPort) writeByPokeData(r memaddr.Range, data []byte) (int, error) {
	addr := uintptr(r.Start)
	written := 0

	for written < len(data) {
		remaining := len(data) - written
		if remaining >= wordSize {
			chunk := data[written : written+wordSize]
			if _, err := unix.PtracePokeData(p.pid, addr+uintptr(written), chunk); err != nil {
				return written, fmt.Errorf("memio: pokedata: %w", err)
			}
			written += wordSize
			continue
		}

		tail := make([]byte, wordSize)
		copy(tail, data[written:])
		extra := wordSize - remaining
		tailStart := r.Start + memaddr.Address(written) + memaddr.Address(remaining)
		tailEnd := tailStart + memaddr.Address(extra)

		boundary := tailStart
		if enclosing, ok := memaddr.Enclosing(p.regions, memaddr.Range{Start: r.Start, End: r.Start + memaddr.Address(len(data))}); ok {
			boundary = enclosing.End
		} else {
			boundary = r.End
		}
		if tailEnd > boundary {
			return written, fmt.Errorf("memio: pokedata tail merge would cross region boundary")
		}

		existing := make([]byte, extra)
		if _, err := p.Read(existing, memaddr.Range{Start: tailStart, End: tailEnd}); err != nil {
			return written, fmt.Errorf("memio: pokedata tail read: %w", err)
		}
		copy(tail[remaining:], existing)

		if _, err := unix.PtracePokeData(p.pid, addr+uintptr(written), tail); err != nil {
			return written, fmt.Errorf("memio: pokedata tail write: %w", err)
		}
		written += remaining
	}
	return written, nil
}

// Dump renders r as a hex+ASCII dump.
func (p *UnixPort) Dump(r memaddr.Range) (string, error) {
	buf := make([]byte, r.Size())
	n, err := p.Read(buf, r)
	if err != nil {
		return "", err
	}
	return HexDump(uint64(r.Start), buf[:n]), nil
}
