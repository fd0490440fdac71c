// Package memio implements the platform-abstract memory I/O port: attach,
// detach, bounded read/write, writable-region enumeration and the
// read-through region cache, with concrete backends for Unix (ptrace +
// /proc/<pid>/mem) and Windows (debug API).
package memio

import "github.com/dsmmcken/memscan/internal/memaddr"

// Region is a writable, non-shared range in the target's address space;
// Comment carries the backing pathname.
type Region = memaddr.Range

// IgnoreList is the built-in set of pathname prefixes excluded from region
// enumeration regardless of scope.
var IgnoreList = []string{
	"/system/lib/",
	"/lib/x86_64-linux-gnu/",
	"/usr/lib/",
}

// MemoryPort is the platform-abstract interface the Engine and
// FreezeWorkers operate through.
type MemoryPort interface {
	// Attach establishes whatever OS-level handle is required before reads
	// or writes are possible. A no-op on backends that need none.
	Attach() error
	// Detach reverses Attach.
	Detach() error
	// Attached reports whether the backend considers itself attached.
	Attached() bool

	// EnumerateRegions returns the writable, non-shared, non-ignored
	// regions of the target, optionally filtered by scope substring.
	EnumerateRegions(scope string, ignoreList []string) (memaddr.RangeSet, error)

	// Read fills dst with up to len(dst) bytes starting at r.Start,
	// returning the number of bytes actually read.
	Read(dst []byte, r memaddr.Range) (int, error)

	// ReadCached reads sub through the single-slot parent-range cache,
	// refilling it from parent when parent differs from what's cached.
	ReadCached(dst []byte, sub, parent memaddr.Range) (int, error)

	// Write writes data starting at r.Start. freezeFlag, when true, permits
	// the write to proceed without the process being attached (required by
	// the freeze loop running attach-less).
	Write(r memaddr.Range, data []byte, freezeFlag bool) (int, error)

	// Dump renders r as a formatted hex+ASCII string.
	Dump(r memaddr.Range) (string, error)

	// PID returns the target process id.
	PID() int

	// SupportsConcurrentFreeze reports whether Write(freezeFlag=true) may
	// safely run concurrently with foreground reads/writes. False for the
	// ptrace-attached backend (pokedata requires the target stopped).
	SupportsConcurrentFreeze() bool
}
