package engine

import (
	"time"

	"github.com/dsmmcken/memscan/internal/memaddr"
	"github.com/dsmmcken/memscan/internal/typedval"
)

// cacheThreshold is the candidate count at or above which filter reads
// through the region cache instead of issuing one positioned read per
// candidate.
const cacheThreshold = 10000

// Filter retains candidates whose current memory contents equal typed's
// bytes (or lie in the fuzzy window for F32FuzzyLE). Candidates outside
// every current region are dropped.
func (e *Engine) Filter(typed typedval.TypedValue) error {
	start := time.Now()
	if err := e.refresh(); err != nil {
		return err
	}

	useCache := len(e.candidates) >= cacheThreshold
	footprint := typed.Footprint()
	var bytesScanned uint64
	survivors := e.candidates[:0]

	for _, c := range e.candidates {
		region, ok := memaddr.Enclosing(e.regions, memaddr.Range{Start: c.Addr, End: c.Addr + memaddr.Address(footprint)})
		if !ok {
			continue
		}

		buf := make([]byte, footprint)
		var n int
		var err error
		if useCache {
			n, err = e.port.ReadCached(buf, memaddr.Range{Start: c.Addr, End: c.Addr + memaddr.Address(footprint)}, region)
		} else {
			n, err = e.port.Read(buf, memaddr.Range{Start: c.Addr, End: c.Addr + memaddr.Address(footprint)})
		}
		if err != nil || n < footprint {
			continue
		}
		bytesScanned += uint64(n)

		if typed.Matches(buf) {
			survivors = append(survivors, Candidate{Addr: c.Addr, Value: typed})
		}
	}

	e.candidates = survivors
	e.logOp("filter", start, bytesScanned)
	return nil
}
