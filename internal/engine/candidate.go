package engine

import (
	"github.com/dsmmcken/memscan/internal/memaddr"
	"github.com/dsmmcken/memscan/internal/typedval"
)

// Candidate is an address under consideration during refinement, paired
// with the TypedValue last observed (or supplied) there. Its byte length
// defines the footprint.
type Candidate struct {
	Addr  memaddr.Address
	Value typedval.TypedValue
}

// cloneCandidates returns a value copy of src, matching Design Note 9's
// "clone-by-value is explicit" requirement for pair_filter.
func cloneCandidates(src []Candidate) []Candidate {
	return append([]Candidate(nil), src...)
}
