//go:build linux

package memio

// New constructs the platform MemoryPort for pid. withoutPtrace selects the
// attach-less /proc/<pid>/mem write path of the Unix backend.
func New(pid int, withoutPtrace bool) MemoryPort {
	return NewUnixPort(pid, withoutPtrace)
}
