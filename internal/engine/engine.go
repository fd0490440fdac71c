// Package engine implements the Patcher: the component that owns the
// candidate set, region set, snapshot handle and freeze workers, and
// exposes every scan/refine/mutate/dump operation of the tool.
package engine

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dsmmcken/memscan/internal/freeze"
	"github.com/dsmmcken/memscan/internal/memaddr"
	"github.com/dsmmcken/memscan/internal/memio"
	"github.com/dsmmcken/memscan/internal/snapshot"
)

// Engine owns all mutable refinement state for one target process.
type Engine struct {
	port memio.MemoryPort
	log  *logrus.Logger

	scope          string
	storagePrefix  string
	freezeInterval time.Duration
	ignoreExtra    []string

	regions    memaddr.RangeSet
	candidates []Candidate
	snap       *snapshot.Store
	freezers   []*freeze.Worker
}

// Options configures a new Engine.
type Options struct {
	StoragePrefix  string
	FreezeInterval time.Duration
	IgnoreExtra    []string
	Log            *logrus.Logger
}

// New constructs an Engine bound to port.
func New(port memio.MemoryPort, opts Options) *Engine {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.FreezeInterval <= 0 {
		opts.FreezeInterval = time.Millisecond
	}
	if opts.StoragePrefix == "" {
		opts.StoragePrefix = "."
	}
	return &Engine{
		port:           port,
		log:            opts.Log,
		storagePrefix:  opts.StoragePrefix,
		freezeInterval: opts.FreezeInterval,
		ignoreExtra:    opts.IgnoreExtra,
	}
}

// Candidates returns a read-only snapshot of the current CandidateSet.
func (e *Engine) Candidates() []Candidate {
	return append([]Candidate(nil), e.candidates...)
}

// Regions returns the most recently enumerated RegionSet.
func (e *Engine) Regions() memaddr.RangeSet {
	return append(memaddr.RangeSet(nil), e.regions...)
}

// Scope sets the per-region-pathname substring filter used by subsequent
// region enumerations. An empty string clears it.
func (e *Engine) Scope(substr string) {
	e.scope = substr
}

// Clear empties the CandidateSet.
func (e *Engine) Clear() {
	e.candidates = nil
}

// StoragePrefix returns the directory default save/dump/history paths are
// joined against.
func (e *Engine) StoragePrefix() string {
	return e.storagePrefix
}

// Attach is the explicit form of the attach step refresh() otherwise runs
// implicitly before every scan/write operation.
func (e *Engine) Attach() error {
	if err := e.port.Attach(); err != nil {
		return targetErrorf("attach", err)
	}
	return nil
}

// Detach reverses Attach.
func (e *Engine) Detach() error {
	if !e.port.Attached() {
		return nil
	}
	if err := e.port.Detach(); err != nil {
		return targetErrorf("detach", err)
	}
	return nil
}

// refresh attaches and re-enumerates writable regions, as every scanning
// or writing operation must before doing anything else.
func (e *Engine) refresh() error {
	if err := e.port.Attach(); err != nil {
		return targetErrorf("attach", err)
	}
	ignoreList := append(append([]string(nil), memio.IgnoreList...), e.ignoreExtra...)
	regions, err := e.port.EnumerateRegions(e.scope, ignoreList)
	if err != nil {
		return targetErrorf("enumerate_regions", err)
	}
	e.regions = regions
	return nil
}

// logOp emits the structured per-operation log line every scan/refine/mutate
// operation must produce: elapsed time, bytes scanned, region count, surviving candidate
// count.
func (e *Engine) logOp(name string, start time.Time, bytesScanned uint64) {
	e.log.WithFields(logrus.Fields{
		"op":         name,
		"elapsed":    time.Since(start),
		"bytes":      bytesScanned,
		"regions":    len(e.regions),
		"candidates": len(e.candidates),
	}).Info("operation complete")
}

// Exit terminates all freeze workers and detaches, the terminal step of
// both a clean shutdown and the signal-triggered Fatal path.
func (e *Engine) Exit() error {
	for _, w := range e.freezers {
		w.Terminate()
	}
	e.freezers = nil
	if e.snap != nil {
		e.snap.Close()
		e.snap = nil
	}
	if !e.port.Attached() {
		return nil
	}
	if err := e.port.Detach(); err != nil {
		return targetErrorf("detach", err)
	}
	return nil
}

// Dump hex-dumps the range fitted to addr..addr+length against the
// current RegionSet.
func (e *Engine) Dump(addr memaddr.Address, length uint64) (string, error) {
	if err := e.refresh(); err != nil {
		return "", err
	}
	requested := memaddr.Range{Start: addr, End: addr + memaddr.Address(length)}
	fitted := memaddr.FitRange(e.regions, requested)
	if fitted.Empty() {
		return "", usageErrorf("address %v is not inside any known region", addr)
	}
	out, err := e.port.Dump(fitted)
	if err != nil {
		return "", targetErrorf("dump", err)
	}
	return out, nil
}

// Result renders the current CandidateSet as text, recovered from the
// original's Patcher::Result / OutputResult.
func (e *Engine) Result() string {
	var out string
	for _, c := range e.candidates {
		text, err := c.Value.Text()
		if err != nil {
			text = fmt.Sprintf("<%d raw bytes>", len(c.Value.Bytes))
		}
		out += fmt.Sprintf("%v %s %s\n", c.Addr, c.Value.Type, text)
	}
	return out
}
