//go:build !linux && !windows

package memio

import (
	"fmt"

	"github.com/dsmmcken/memscan/internal/memaddr"
)

// unsupportedPort reports a clear error on every call rather than failing
// to build; this module targets Linux (ptrace) and Windows (debug API),
// matching the original's two backends.
type unsupportedPort struct{ pid int }

func NewUnixPort(pid int, withoutPtrace bool) *unsupportedPort { return &unsupportedPort{pid: pid} }

func (p *unsupportedPort) PID() int                      { return p.pid }
func (p *unsupportedPort) Attached() bool                { return false }
func (p *unsupportedPort) SupportsConcurrentFreeze() bool { return false }

func (p *unsupportedPort) err() error {
	return fmt.Errorf("memio: unsupported platform, only linux and windows are implemented")
}

func (p *unsupportedPort) Attach() error { return p.err() }
func (p *unsupportedPort) Detach() error { return p.err() }
func (p *unsupportedPort) EnumerateRegions(scope string, ignoreList []string) (memaddr.RangeSet, error) {
	return nil, p.err()
}
func (p *unsupportedPort) Read(dst []byte, r memaddr.Range) (int, error) { return 0, p.err() }
func (p *unsupportedPort) ReadCached(dst []byte, sub, parent memaddr.Range) (int, error) {
	return 0, p.err()
}
func (p *unsupportedPort) Write(r memaddr.Range, data []byte, freezeFlag bool) (int, error) {
	return 0, p.err()
}
func (p *unsupportedPort) Dump(r memaddr.Range) (string, error) { return "", p.err() }
