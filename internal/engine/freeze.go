package engine

import (
	"time"

	"github.com/dsmmcken/memscan/internal/freeze"
	"github.com/dsmmcken/memscan/internal/memaddr"
	"github.com/dsmmcken/memscan/internal/typedval"
)

// Freeze spawns a worker that repeatedly rewrites addr with typed's bytes
// until FreezeTerminate is called. Ptrace-attach mode serializes every
// memory access behind a single waitpid, so a background writer racing the
// REPL thread against the same tracee is rejected outright.
func (e *Engine) Freeze(addr memaddr.Address, typed typedval.TypedValue) error {
	if !e.port.SupportsConcurrentFreeze() {
		return &UsageError{Msg: "freeze requires attach-less mode; this backend cannot safely write concurrently while attached"}
	}

	w := freeze.New(e.port, addr, typed, e.freezeInterval)
	w.Start()
	e.freezers = append(e.freezers, w)
	e.log.WithFields(map[string]interface{}{
		"op":   "freeze",
		"addr": addr.String(),
	}).Info("operation complete")
	return nil
}

// FreezeTerminate terminates and joins every active freeze worker.
func (e *Engine) FreezeTerminate() error {
	start := time.Now()
	for _, w := range e.freezers {
		w.Terminate()
	}
	e.freezers = nil
	e.logOp("freeze_terminate", start, 0)
	return nil
}
