//go:build windows

package memio

// New constructs the platform MemoryPort for pid. withoutPtrace has no
// effect on Windows: there is no ptrace path to opt out of.
func New(pid int, withoutPtrace bool) MemoryPort {
	return NewWindowsPort(pid)
}
