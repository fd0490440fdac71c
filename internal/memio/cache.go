package memio

import "github.com/dsmmcken/memscan/internal/memaddr"

// regionCache is the single-slot read-through cache shared by both
// backends: it memoizes the last parent range read so repeated
// ReadCached calls against the same enclosing region (the filter
// fast path at 10,000 candidates or more) avoid re-reading the whole region
// per candidate.
type regionCache struct {
	parent memaddr.Range
	data   []byte
	valid  bool
}

// fill refills the cache for parent using readFn, unless parent already
// matches what's cached.
func (c *regionCache) fill(parent memaddr.Range, readFn func([]byte, memaddr.Range) (int, error)) error {
	if c.valid && c.parent == parent {
		return nil
	}
	buf := make([]byte, parent.Size())
	n, err := readFn(buf, parent)
	if err != nil {
		return err
	}
	c.parent = parent
	c.data = buf[:n]
	c.valid = true
	return nil
}

// slice returns the bytes of sub out of the cached parent, assuming sub is
// a subset of the currently cached parent range.
func (c *regionCache) slice(sub memaddr.Range) []byte {
	if !c.valid {
		return nil
	}
	start := int(sub.Start - c.parent.Start)
	end := int(sub.End - c.parent.Start)
	if start < 0 || end > len(c.data) || start > end {
		return nil
	}
	return c.data[start:end]
}

// invalidate clears the cache; called on every Attach.
func (c *regionCache) invalidate() {
	c.valid = false
	c.data = nil
}
