package typedval

import (
	"bytes"
	"fmt"

	"github.com/dsmmcken/memscan/internal/scanner"
)

// TypedValue is a (type, bytes) pair: the decoded representation of a value
// observed or supplied by the operator. Ordering is purely lexicographic on
// Bytes — the type tag never participates in comparisons.
type TypedValue struct {
	Type  Type
	Bytes []byte
}

// New encodes text under t into a TypedValue.
func New(t Type, text string) (TypedValue, error) {
	b, err := Encode(t, text)
	if err != nil {
		return TypedValue{}, err
	}
	return TypedValue{Type: t, Bytes: b}, nil
}

// Footprint is the number of bytes this value occupies in memory.
func (v TypedValue) Footprint() int {
	return len(v.Bytes)
}

// Text decodes v back to operator-facing text.
func (v TypedValue) Text() (string, error) {
	return Decode(v.Type, v.Bytes)
}

// Less implements the lexicographic total order over Bytes required by the
// data model; the type tag is not consulted.
func (v TypedValue) Less(other TypedValue) bool {
	return bytes.Compare(v.Bytes, other.Bytes) < 0
}

// Equal reports byte-exact equality, ignoring Type.
func (v TypedValue) Equal(other TypedValue) bool {
	return bytes.Equal(v.Bytes, other.Bytes)
}

// Scan dispatches to the scanner appropriate for v's Type: a fuzzy float
// window search for F32FuzzyLE, exact rolling-hash search otherwise. This
// is the polymorphic dispatch point Design Note 9 calls for, so callers
// never branch on the type tag themselves.
func (v TypedValue) Scan(haystack []byte) []int {
	if v.Type == F32FuzzyLE {
		return scanner.FloatFuzzySearch(haystack, v.Bytes)
	}
	return scanner.RollingHashSearch(haystack, v.Bytes)
}

// Matches reports whether the bytes at the front of data satisfy v: for
// F32FuzzyLE this is the fuzzy window test, otherwise byte-exact equality
// over v's footprint.
func (v TypedValue) Matches(data []byte) bool {
	if len(data) < len(v.Bytes) {
		return false
	}
	if v.Type == F32FuzzyLE {
		return len(scanner.FloatFuzzySearch(data[:len(v.Bytes)], v.Bytes)) > 0
	}
	return bytes.Equal(data[:len(v.Bytes)], v.Bytes)
}

func (v TypedValue) String() string {
	text, err := v.Text()
	if err != nil {
		return fmt.Sprintf("%s:<undecodable %d bytes>", v.Type, len(v.Bytes))
	}
	return fmt.Sprintf("%s:%s", v.Type, text)
}
