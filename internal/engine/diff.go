package engine

import (
	"encoding/binary"
	"path/filepath"
	"time"

	"github.com/dsmmcken/memscan/internal/memaddr"
	"github.com/dsmmcken/memscan/internal/snapshot"
	"github.com/dsmmcken/memscan/internal/typedval"
)

// Diff is the state-machine command with sub-modes start, upper, lower,
// same, change, and end.
func (e *Engine) Diff(mode string) error {
	start := time.Now()
	switch mode {
	case "start":
		return e.diffStart(start)
	case "end":
		e.diffEnd()
		e.logOp("diff end", start, 0)
		return nil
	case "upper", "lower", "same", "change":
		return e.diffCompare(mode, start)
	default:
		return usageErrorf("unknown diff mode %q", mode)
	}
}

func (e *Engine) diffStart(start time.Time) error {
	if err := e.refresh(); err != nil {
		return err
	}
	e.diffEnd()

	path := filepath.Join(e.storagePrefix, "mempatch_memory-snapshot")
	store, err := snapshot.Open(path)
	if err != nil {
		return targetErrorf("diff start", err)
	}

	var bytesScanned uint64
	for _, region := range e.regions {
		buf := make([]byte, region.Size())
		n, err := e.port.Read(buf, region)
		if err != nil {
			e.log.WithError(err).Warn("diff start: skipping unreadable region")
			continue
		}
		bytesScanned += uint64(n)
		if err := store.Push(uint64(region.Start), uint64(region.Start)+uint64(n), buf[:n]); err != nil {
			return targetErrorf("diff start", err)
		}
	}

	e.snap = store
	e.logOp("diff start", start, bytesScanned)
	return nil
}

// diffEnd destroys any active snapshot.
func (e *Engine) diffEnd() {
	if e.snap != nil {
		e.snap.Close()
		e.snap = nil
	}
}

func (e *Engine) diffCompare(mode string, start time.Time) error {
	pred := diffPredicate(mode)

	if e.snap != nil {
		return e.diffCompareSnapshot(pred, mode, start)
	}
	if len(e.candidates) > 0 {
		return e.diffCompareCandidates(pred, mode, start)
	}
	e.logOp("diff "+mode, start, 0)
	return nil
}

func (e *Engine) diffCompareSnapshot(pred func(newV, oldV int32) bool, mode string, start time.Time) error {
	if err := e.refresh(); err != nil {
		return err
	}

	var bytesScanned uint64
	var result []Candidate

	for _, sr := range e.snap.Ranges() {
		snapRange := memaddr.Range{Start: memaddr.Address(sr.Start), End: memaddr.Address(sr.End)}
		clipped := memaddr.FitRange(e.regions, snapRange)
		if clipped.Empty() {
			continue
		}

		oldAll, err := sr.Data()
		if err != nil {
			continue
		}
		offsetIntoSnap := int(clipped.Start - snapRange.Start)
		size := int(clipped.Size())
		if offsetIntoSnap < 0 || offsetIntoSnap+size > len(oldAll) {
			continue
		}
		oldBytes := oldAll[offsetIntoSnap : offsetIntoSnap+size]

		newBytes := make([]byte, size)
		n, err := e.port.Read(newBytes, clipped)
		if err != nil {
			continue
		}
		bytesScanned += uint64(n)
		newBytes = newBytes[:n]
		if len(newBytes) < len(oldBytes) {
			oldBytes = oldBytes[:len(newBytes)]
		}

		strideLimit := len(oldBytes) - len(oldBytes)%4
		for off := 0; off+4 <= strideLimit; off += 4 {
			oldV := int32(binary.LittleEndian.Uint32(oldBytes[off : off+4]))
			newV := int32(binary.LittleEndian.Uint32(newBytes[off : off+4]))
			if pred(newV, oldV) {
				result = append(result, Candidate{
					Addr:  clipped.Start + memaddr.Address(off),
					Value: typedval.TypedValue{Type: typedval.I32LE, Bytes: append([]byte(nil), newBytes[off:off+4]...)},
				})
			}
		}
	}

	e.candidates = result
	e.diffEnd()
	e.logOp("diff "+mode, start, bytesScanned)
	return nil
}

func (e *Engine) diffCompareCandidates(pred func(newV, oldV int32) bool, mode string, start time.Time) error {
	if err := e.refresh(); err != nil {
		return err
	}

	var bytesScanned uint64
	survivors := e.candidates[:0]
	for _, c := range e.candidates {
		if c.Value.Footprint() != 4 {
			continue
		}
		buf := make([]byte, 4)
		n, err := e.port.Read(buf, memaddr.Range{Start: c.Addr, End: c.Addr + 4})
		if err != nil || n < 4 {
			continue
		}
		bytesScanned += uint64(n)

		oldV := int32(binary.LittleEndian.Uint32(c.Value.Bytes))
		newV := int32(binary.LittleEndian.Uint32(buf))
		if pred(newV, oldV) {
			survivors = append(survivors, Candidate{
				Addr:  c.Addr,
				Value: typedval.TypedValue{Type: typedval.I32LE, Bytes: append([]byte(nil), buf...)},
			})
		}
	}

	e.candidates = survivors
	e.logOp("diff "+mode, start, bytesScanned)
	return nil
}

func diffPredicate(mode string) func(newV, oldV int32) bool {
	switch mode {
	case "upper":
		return func(n, o int32) bool { return n > o }
	case "lower":
		return func(n, o int32) bool { return n < o }
	case "same":
		return func(n, o int32) bool { return n == o }
	case "change":
		return func(n, o int32) bool { return n != o }
	default:
		return func(n, o int32) bool { return false }
	}
}
