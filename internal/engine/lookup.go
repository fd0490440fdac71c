package engine

import (
	"time"

	"github.com/dsmmcken/memscan/internal/memaddr"
	"github.com/dsmmcken/memscan/internal/typedval"
)

// Lookup clears the CandidateSet, then for each writable region reads the
// full region and runs the Scanner typed dispatches to, emitting a
// candidate for every match.
func (e *Engine) Lookup(typed typedval.TypedValue) error {
	start := time.Now()
	if err := e.refresh(); err != nil {
		return err
	}

	e.candidates = nil
	var bytesScanned uint64

	for _, region := range e.regions {
		buf := make([]byte, region.Size())
		n, err := e.port.Read(buf, region)
		if err != nil {
			e.log.WithError(err).Warn("lookup: skipping unreadable region")
			continue
		}
		bytesScanned += uint64(n)
		buf = buf[:n]

		for _, offset := range typed.Scan(buf) {
			e.candidates = append(e.candidates, Candidate{
				Addr:  region.Start + memaddr.Address(offset),
				Value: typed,
			})
		}
	}

	e.logOp("lookup", start, bytesScanned)
	return nil
}
