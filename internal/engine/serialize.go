package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dsmmcken/memscan/internal/memaddr"
	"github.com/dsmmcken/memscan/internal/typedval"
)

// writer produces the positional serialization format recovered from the
// original Utility::ByteSerialize / StringSerialize / Address::Serialize:
// every integer is "_<decimal>", every byte blob is "_<len>_<rawbytes>".
// There is no whitespace and no field separator beyond the leading
// underscore of the next token.
type writer struct {
	bw *bufio.Writer
}

func newWriter(w io.Writer) *writer {
	return &writer{bw: bufio.NewWriter(w)}
}

func (w *writer) Int(v int64) error {
	_, err := w.bw.WriteString("_" + strconv.FormatInt(v, 10))
	return err
}

func (w *writer) Bytes(b []byte) error {
	if err := w.Int(int64(len(b))); err != nil {
		return err
	}
	if err := w.bw.WriteByte('_'); err != nil {
		return err
	}
	_, err := w.bw.Write(b)
	return err
}

func (w *writer) String(s string) error {
	return w.Bytes([]byte(s))
}

func (w *writer) Flush() error {
	return w.bw.Flush()
}

// reader parses the format writer produces.
type reader struct {
	br *bufio.Reader
}

func newReader(r io.Reader) *reader {
	return &reader{br: bufio.NewReader(r)}
}

func (r *reader) Int() (int64, error) {
	b, err := r.br.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != '_' {
		return 0, fmt.Errorf("serialize: expected '_', got %q", b)
	}

	var digits []byte
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
		if b == '-' || (b >= '0' && b <= '9') {
			digits = append(digits, b)
			continue
		}
		_ = r.br.UnreadByte()
		break
	}

	v, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("serialize: bad integer %q: %w", digits, err)
	}
	return v, nil
}

func (r *reader) Bytes() ([]byte, error) {
	n, err := r.Int()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("serialize: negative length %d", n)
	}
	b, err := r.br.ReadByte()
	if err != nil {
		return nil, err
	}
	if b != '_' {
		return nil, fmt.Errorf("serialize: expected '_' before blob, got %q", b)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *reader) String() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeRange(w *writer, rg memaddr.Range) error {
	if err := w.Int(int64(rg.Start)); err != nil {
		return err
	}
	if err := w.Int(int64(rg.End)); err != nil {
		return err
	}
	return w.String(rg.Comment)
}

func readRange(r *reader) (memaddr.Range, error) {
	start, err := r.Int()
	if err != nil {
		return memaddr.Range{}, err
	}
	end, err := r.Int()
	if err != nil {
		return memaddr.Range{}, err
	}
	comment, err := r.String()
	if err != nil {
		return memaddr.Range{}, err
	}
	return memaddr.Range{Start: memaddr.Address(start), End: memaddr.Address(end), Comment: comment}, nil
}

func writeTypedValue(w *writer, t typedval.TypedValue) error {
	if err := w.String(t.Type.String()); err != nil {
		return err
	}
	return w.Bytes(t.Bytes)
}

func readTypedValue(r *reader) (typedval.TypedValue, error) {
	typeName, err := r.String()
	if err != nil {
		return typedval.TypedValue{}, err
	}
	val, err := r.Bytes()
	if err != nil {
		return typedval.TypedValue{}, err
	}
	typ := typedval.ParseType(typeName)
	if typ == typedval.Invalid {
		return typedval.TypedValue{}, fmt.Errorf("serialize: unknown type token %q", typeName)
	}
	return typedval.TypedValue{Type: typ, Bytes: val}, nil
}

func writeCandidate(w *writer, c Candidate) error {
	if err := w.Int(int64(c.Addr)); err != nil {
		return err
	}
	return writeTypedValue(w, c.Value)
}

func readCandidate(r *reader) (Candidate, error) {
	addr, err := r.Int()
	if err != nil {
		return Candidate{}, err
	}
	val, err := readTypedValue(r)
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{Addr: memaddr.Address(addr), Value: val}, nil
}

// Save writes the current PID, the Unix time at which Save was called, the
// RegionSet and the CandidateSet to path, in the format the original
// Patcher::Save produced.
func (e *Engine) Save(path string) error {
	start := time.Now()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return targetErrorf("save", err)
	}
	defer f.Close()

	w := newWriter(f)
	if err := w.Int(int64(e.port.PID())); err != nil {
		return targetErrorf("save", err)
	}
	if err := w.Int(start.Unix()); err != nil {
		return targetErrorf("save", err)
	}

	if err := w.Int(int64(len(e.regions))); err != nil {
		return targetErrorf("save", err)
	}
	for _, rg := range e.regions {
		if err := writeRange(w, rg); err != nil {
			return targetErrorf("save", err)
		}
	}

	if err := w.Int(int64(len(e.candidates))); err != nil {
		return targetErrorf("save", err)
	}
	for _, c := range e.candidates {
		if err := writeCandidate(w, c); err != nil {
			return targetErrorf("save", err)
		}
	}

	if err := w.Flush(); err != nil {
		return targetErrorf("save", err)
	}
	e.logOp("save", start, 0)
	return nil
}

// Load replaces the RegionSet and CandidateSet with the contents of a file
// previously written by Save. Load refuses to apply a save file captured
// against a different target process.
func (e *Engine) Load(path string) error {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return targetErrorf("load", err)
	}
	defer f.Close()

	r := newReader(f)
	storedPID, err := r.Int()
	if err != nil {
		return targetErrorf("load", err)
	}
	if storedPID != int64(e.port.PID()) {
		return usageErrorf("load: save file was captured for pid %d, current target is pid %d", storedPID, e.port.PID())
	}
	if _, err := r.Int(); err != nil { // stored unix timestamp
		return targetErrorf("load", err)
	}

	regionCount, err := r.Int()
	if err != nil {
		return targetErrorf("load", err)
	}
	regions := make(memaddr.RangeSet, 0, regionCount)
	for i := int64(0); i < regionCount; i++ {
		rg, err := readRange(r)
		if err != nil {
			return targetErrorf("load", err)
		}
		regions = append(regions, rg)
	}
	regions.Sort()

	candidateCount, err := r.Int()
	if err != nil {
		return targetErrorf("load", err)
	}
	candidates := make([]Candidate, 0, candidateCount)
	for i := int64(0); i < candidateCount; i++ {
		c, err := readCandidate(r)
		if err != nil {
			return targetErrorf("load", err)
		}
		candidates = append(candidates, c)
	}

	e.regions = regions
	e.candidates = candidates
	e.logOp("load", start, 0)
	return nil
}

// DumpAll refreshes, then writes the PID, the serialized RegionSet and the
// raw bytes of every region back to back with no length prefix between
// them: boundaries are recovered from the RegionSet written just before.
func (e *Engine) DumpAll(path string) error {
	start := time.Now()
	if err := e.refresh(); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return targetErrorf("dumpall", err)
	}
	defer f.Close()

	w := newWriter(f)
	if err := w.Int(int64(e.port.PID())); err != nil {
		return targetErrorf("dumpall", err)
	}
	if err := w.Int(int64(len(e.regions))); err != nil {
		return targetErrorf("dumpall", err)
	}
	for _, rg := range e.regions {
		if err := writeRange(w, rg); err != nil {
			return targetErrorf("dumpall", err)
		}
	}
	if err := w.Flush(); err != nil {
		return targetErrorf("dumpall", err)
	}

	var bytesScanned uint64
	for _, rg := range e.regions {
		buf := make([]byte, rg.Size())
		n, err := e.port.Read(buf, rg)
		if err != nil {
			e.log.WithError(err).Warn("dumpall: skipping unreadable region")
			n = 0
		}
		bytesScanned += uint64(n)
		if _, err := f.Write(buf[:n]); err != nil {
			return targetErrorf("dumpall", err)
		}
		if n < len(buf) {
			// region shrank between EnumerateRegions and Read; pad with
			// zeros so the byte offsets recorded in the RegionSet above
			// stay valid for a reader walking the file sequentially.
			pad := make([]byte, len(buf)-n)
			if _, err := f.Write(pad); err != nil {
				return targetErrorf("dumpall", err)
			}
		}
	}

	e.logOp("dumpall", start, bytesScanned)
	return nil
}
