package memio

import (
	"testing"

	"github.com/dsmmcken/memscan/internal/memaddr"
)

func TestRegionCacheFillAndSlice(t *testing.T) {
	var c regionCache
	parent := memaddr.Range{Start: 0x1000, End: 0x1010}
	calls := 0
	readFn := func(dst []byte, r memaddr.Range) (int, error) {
		calls++
		for i := range dst {
			dst[i] = byte(i)
		}
		return len(dst), nil
	}

	if err := c.fill(parent, readFn); err != nil {
		t.Fatal(err)
	}
	if err := c.fill(parent, readFn); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 read for repeated same parent, got %d", calls)
	}

	sub := memaddr.Range{Start: 0x1004, End: 0x1008}
	got := c.slice(sub)
	want := []byte{4, 5, 6, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slice mismatch: got %v want %v", got, want)
		}
	}

	other := memaddr.Range{Start: 0x2000, End: 0x2010}
	if err := c.fill(other, readFn); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("expected cache refill on different parent, got %d calls", calls)
	}
}

func TestRegionCacheInvalidate(t *testing.T) {
	var c regionCache
	parent := memaddr.Range{Start: 0, End: 4}
	readFn := func(dst []byte, r memaddr.Range) (int, error) { return len(dst), nil }
	if err := c.fill(parent, readFn); err != nil {
		t.Fatal(err)
	}
	c.invalidate()
	if c.valid {
		t.Fatal("expected cache invalidated")
	}
}
