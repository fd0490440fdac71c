package engine

import (
	"time"

	"github.com/dsmmcken/memscan/internal/memaddr"
	"github.com/dsmmcken/memscan/internal/typedval"
)

// Change writes typed's bytes to every surviving candidate, then reads
// back and verifies each write independently. A mismatch is reported per
// candidate and does not abort the others.
func (e *Engine) Change(typed typedval.TypedValue) error {
	start := time.Now()
	if err := e.refresh(); err != nil {
		return err
	}

	var bytesWritten uint64
	for i, c := range e.candidates {
		target := memaddr.Range{Start: c.Addr, End: c.Addr + memaddr.Address(len(typed.Bytes))}
		if err := e.writeAndVerify(target, typed); err != nil {
			e.log.WithError(err).WithField("addr", c.Addr).Warn("change: candidate write failed")
			continue
		}
		e.candidates[i].Value = typed
		bytesWritten += uint64(len(typed.Bytes))
	}

	e.logOp("change", start, bytesWritten)
	return nil
}

// Replace is a single-address Change.
func (e *Engine) Replace(addr memaddr.Address, typed typedval.TypedValue) error {
	start := time.Now()
	if err := e.refresh(); err != nil {
		return err
	}

	target := memaddr.Range{Start: addr, End: addr + memaddr.Address(len(typed.Bytes))}
	if err := e.writeAndVerify(target, typed); err != nil {
		e.logOp("replace", start, 0)
		return err
	}

	e.logOp("replace", start, uint64(len(typed.Bytes)))
	return nil
}

func (e *Engine) writeAndVerify(target memaddr.Range, typed typedval.TypedValue) error {
	n, err := e.port.Write(target, typed.Bytes, false)
	if err != nil {
		return targetErrorf("write", err)
	}
	if n < len(typed.Bytes) {
		return &PartialIO{Msg: "short write at " + target.Start.String()}
	}

	readback := make([]byte, len(typed.Bytes))
	rn, err := e.port.Read(readback, target)
	if err != nil {
		return targetErrorf("readback", err)
	}
	if rn < len(typed.Bytes) || !typed.Equal(typedval.TypedValue{Type: typed.Type, Bytes: readback[:rn]}) {
		return &VerificationError{Msg: "readback at " + target.Start.String() + " did not match the written value"}
	}
	return nil
}
