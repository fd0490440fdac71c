package engine

import (
	"sort"
	"time"

	"github.com/dsmmcken/memscan/internal/typedval"
)

// PairFilter performs a lookup against a preserved copy of the current
// candidate set, then for every prior candidate finds its nearest-by-
// address match in the newly looked-up set (two-pointer sweep over both
// sorted sequences). It retains up to k of the prior candidates, those
// with the smallest neighbor distance.
func (e *Engine) PairFilter(typed typedval.TypedValue, k int) error {
	start := time.Now()

	prior := cloneCandidates(e.candidates)
	sort.Slice(prior, func(i, j int) bool { return prior[i].Addr < prior[j].Addr })

	if err := e.Lookup(typed); err != nil {
		return err
	}
	fresh := cloneCandidates(e.candidates)
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].Addr < fresh[j].Addr })

	type pair struct {
		dist uint64
		cand Candidate
	}

	var pairs []pair
	if len(fresh) > 0 {
		j := 0
		for _, p := range prior {
			for j+1 < len(fresh) && fresh[j+1].Addr.Dist(p.Addr) <= fresh[j].Addr.Dist(p.Addr) {
				j++
			}
			pairs = append(pairs, pair{dist: fresh[j].Addr.Dist(p.Addr), cand: p})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].dist < pairs[j].dist })
	if k < 0 {
		k = 0
	}
	if k < len(pairs) {
		pairs = pairs[:k]
	}

	kept := make([]Candidate, 0, len(pairs))
	for _, p := range pairs {
		kept = append(kept, p.cand)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Addr < kept[j].Addr })
	e.candidates = kept

	e.logOp("pair_filter", start, 0)
	return nil
}
