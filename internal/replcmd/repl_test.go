package replcmd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/dsmmcken/memscan/internal/engine"
	"github.com/dsmmcken/memscan/internal/memaddr"
)

// fakePort is a minimal single-region MemoryPort for exercising the
// dispatch loop end to end without a real target process.
type fakePort struct {
	pid     int
	base    memaddr.Address
	mem     []byte
	regions memaddr.RangeSet
}

func newFakePort(base memaddr.Address, size int) *fakePort {
	return &fakePort{
		pid:     1234,
		base:    base,
		mem:     make([]byte, size),
		regions: memaddr.RangeSet{{Start: base, End: base + memaddr.Address(size)}},
	}
}

func (p *fakePort) Attach() error  { return nil }
func (p *fakePort) Detach() error  { return nil }
func (p *fakePort) Attached() bool { return true }
func (p *fakePort) PID() int       { return p.pid }
func (p *fakePort) SupportsConcurrentFreeze() bool { return true }

func (p *fakePort) EnumerateRegions(scope string, ignoreList []string) (memaddr.RangeSet, error) {
	return append(memaddr.RangeSet(nil), p.regions...), nil
}

func (p *fakePort) Read(dst []byte, r memaddr.Range) (int, error) {
	off := int64(r.Start - p.base)
	if off < 0 || off > int64(len(p.mem)) {
		return 0, errors.New("out of range")
	}
	return copy(dst, p.mem[off:]), nil
}

func (p *fakePort) ReadCached(dst []byte, sub, parent memaddr.Range) (int, error) {
	return p.Read(dst, sub)
}

func (p *fakePort) Write(r memaddr.Range, data []byte, freezeFlag bool) (int, error) {
	off := int64(r.Start - p.base)
	if off < 0 || off+int64(len(data)) > int64(len(p.mem)) {
		return 0, errors.New("out of range")
	}
	return copy(p.mem[off:], data), nil
}

func (p *fakePort) Dump(r memaddr.Range) (string, error) {
	buf := make([]byte, r.Size())
	n, _ := p.Read(buf, r)
	return string(buf[:n]), nil
}

func (p *fakePort) putI32(addr memaddr.Address, v int32) {
	off := int64(addr - p.base)
	binary.LittleEndian.PutUint32(p.mem[off:off+4], uint32(v))
}

func TestRunDispatchesLookupAndExit(t *testing.T) {
	port := newFakePort(0xa000, 32)
	port.putI32(0xa004, 7)

	e := engine.New(port, engine.Options{Log: logrus.New()})
	in := strings.NewReader("lookup int 7\nexit\n")
	var outBuf bytes.Buffer

	if err := Run(e, in, &outBuf, logrus.New(), ""); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(outBuf.String(), "lookup: 1 candidates") {
		t.Fatalf("expected lookup result in output, got %q", outBuf.String())
	}
}

func TestRunSkipsCommentsAndBlankLines(t *testing.T) {
	port := newFakePort(0xb000, 16)
	e := engine.New(port, engine.Options{Log: logrus.New()})
	in := strings.NewReader("# a comment\n\n/ another comment\nhelp\nexit\n")
	var outBuf bytes.Buffer

	if err := Run(e, in, &outBuf, logrus.New(), ""); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(outBuf.String(), "commands:") {
		t.Fatalf("expected help text, got %q", outBuf.String())
	}
}

func TestRunUnknownCommandDoesNotAbort(t *testing.T) {
	port := newFakePort(0xc000, 16)
	e := engine.New(port, engine.Options{Log: logrus.New()})
	in := strings.NewReader("bogus\nexit\n")
	var outBuf bytes.Buffer

	if err := Run(e, in, &outBuf, logrus.New(), ""); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestDefaultPathUsesStoragePrefix(t *testing.T) {
	port := newFakePort(0xd000, 16)
	e := engine.New(port, engine.Options{StoragePrefix: "/tmp/memscan-test", Log: logrus.New()})
	got := defaultPath(e, nil, "mempatch_state.txt")
	want := "/tmp/memscan-test/mempatch_state.txt"
	if got != want {
		t.Fatalf("defaultPath: got %q want %q", got, want)
	}
}
