package engine

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/dsmmcken/memscan/internal/memaddr"
	"github.com/dsmmcken/memscan/internal/typedval"
)

// fakePort is a single-region, single-buffer MemoryPort used to exercise
// Engine operations without a real target process.
type fakePort struct {
	pid              int
	base             memaddr.Address
	mem              []byte
	regions          memaddr.RangeSet
	attached         bool
	concurrentFreeze bool
}

func newFakePort(base memaddr.Address, size int) *fakePort {
	return &fakePort{
		pid:     4242,
		base:    base,
		mem:     make([]byte, size),
		regions: memaddr.RangeSet{{Start: base, End: base + memaddr.Address(size), Comment: "[heap]"}},
	}
}

func (p *fakePort) Attach() error   { p.attached = true; return nil }
func (p *fakePort) Detach() error   { p.attached = false; return nil }
func (p *fakePort) Attached() bool  { return p.attached }
func (p *fakePort) PID() int        { return p.pid }
func (p *fakePort) SupportsConcurrentFreeze() bool { return p.concurrentFreeze }

func (p *fakePort) EnumerateRegions(scope string, ignoreList []string) (memaddr.RangeSet, error) {
	return append(memaddr.RangeSet(nil), p.regions...), nil
}

func (p *fakePort) Read(dst []byte, r memaddr.Range) (int, error) {
	off := int64(r.Start - p.base)
	if off < 0 || off > int64(len(p.mem)) {
		return 0, errors.New("fakePort: read out of range")
	}
	n := copy(dst, p.mem[off:])
	return n, nil
}

func (p *fakePort) ReadCached(dst []byte, sub, parent memaddr.Range) (int, error) {
	return p.Read(dst, sub)
}

func (p *fakePort) Write(r memaddr.Range, data []byte, freezeFlag bool) (int, error) {
	off := int64(r.Start - p.base)
	if off < 0 || off+int64(len(data)) > int64(len(p.mem)) {
		return 0, errors.New("fakePort: write out of range")
	}
	return copy(p.mem[off:], data), nil
}

func (p *fakePort) Dump(r memaddr.Range) (string, error) {
	buf := make([]byte, r.Size())
	n, err := p.Read(buf, r)
	if err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

func (p *fakePort) putI32(addr memaddr.Address, v int32) {
	off := int64(addr - p.base)
	binary.LittleEndian.PutUint32(p.mem[off:off+4], uint32(v))
}

func mustTyped(t *testing.T, typ typedval.Type, text string) typedval.TypedValue {
	t.Helper()
	tv, err := typedval.New(typ, text)
	if err != nil {
		t.Fatalf("typedval.New(%v, %q): %v", typ, text, err)
	}
	return tv
}

func TestLookupFindsAllMatches(t *testing.T) {
	port := newFakePort(0x1000, 32)
	port.putI32(0x1004, 42)
	port.putI32(0x1014, 42)

	e := New(port, Options{})
	typed := mustTyped(t, typedval.I32LE, "42")
	if err := e.Lookup(typed); err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	got := e.Candidates()
	if len(got) != 2 {
		t.Fatalf("want 2 candidates, got %d: %+v", len(got), got)
	}
	if got[0].Addr != 0x1004 || got[1].Addr != 0x1014 {
		t.Fatalf("unexpected candidate addresses: %+v", got)
	}
}

func TestFilterDropsChangedCandidates(t *testing.T) {
	port := newFakePort(0x2000, 32)
	port.putI32(0x2004, 7)
	port.putI32(0x2014, 7)

	e := New(port, Options{})
	typed := mustTyped(t, typedval.I32LE, "7")
	if err := e.Lookup(typed); err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	port.putI32(0x2014, 999)

	if err := e.Filter(typed); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	got := e.Candidates()
	if len(got) != 1 || got[0].Addr != 0x2004 {
		t.Fatalf("want only 0x2004 to survive, got %+v", got)
	}
}

func TestChangeWritesAndVerifies(t *testing.T) {
	port := newFakePort(0x3000, 32)
	port.putI32(0x3004, 1)

	e := New(port, Options{})
	typed := mustTyped(t, typedval.I32LE, "1")
	if err := e.Lookup(typed); err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	newVal := mustTyped(t, typedval.I32LE, "99")
	if err := e.Change(newVal); err != nil {
		t.Fatalf("Change: %v", err)
	}

	buf := make([]byte, 4)
	if _, err := port.Read(buf, memaddr.Range{Start: 0x3004, End: 0x3008}); err != nil {
		t.Fatalf("Read back: %v", err)
	}
	if int32(binary.LittleEndian.Uint32(buf)) != 99 {
		t.Fatalf("target memory not updated: %v", buf)
	}
	if e.Candidates()[0].Value.Bytes[0] == 1 {
		t.Fatalf("candidate value not updated after Change")
	}
}

func TestPairFilterKeepsNearestPriorCandidate(t *testing.T) {
	port := newFakePort(0x4000, 128)
	// Prior candidate simulating a struct field tracked across a reshuffle.
	prior := Candidate{Addr: 0x4010, Value: mustTyped(t, typedval.I32LE, "50")}

	e := New(port, Options{})
	e.candidates = []Candidate{prior}

	// Fresh lookup value placed near the prior candidate and far away.
	port.putI32(0x4014, 77)
	port.putI32(0x4040, 77)

	typed := mustTyped(t, typedval.I32LE, "77")
	if err := e.PairFilter(typed, 1); err != nil {
		t.Fatalf("PairFilter: %v", err)
	}

	got := e.Candidates()
	if len(got) != 1 {
		t.Fatalf("want 1 surviving candidate, got %d: %+v", len(got), got)
	}
	if got[0].Addr != prior.Addr {
		t.Fatalf("pair_filter must keep the prior candidate address, got %v want %v", got[0].Addr, prior.Addr)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/save.txt"

	port := newFakePort(0x5000, 16)
	port.putI32(0x5004, 5)

	e := New(port, Options{})
	typed := mustTyped(t, typedval.I32LE, "5")
	if err := e.Lookup(typed); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if err := e.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	e2 := New(newFakePort(0x5000, 16), Options{})
	if err := e2.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(e2.Regions()) != len(e.Regions()) {
		t.Fatalf("region count mismatch after load")
	}
	if len(e2.Candidates()) != 1 || e2.Candidates()[0].Addr != 0x5004 {
		t.Fatalf("candidate not restored correctly: %+v", e2.Candidates())
	}
}
