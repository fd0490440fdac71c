package memaddr

import "sort"

// RangeSet is an ordered, disjoint collection of ranges, used both for the
// writable-region set enumerated from the target and for ad-hoc grouping.
type RangeSet []Range

// Sort orders the set by Start then End in place.
func (s RangeSet) Sort() {
	sort.Slice(s, func(i, j int) bool { return Less(s[i], s[j]) })
}

// FitAddress returns addr unchanged if it is contained in some range of
// the set, or the sentinel Zero otherwise.
func FitAddress(set RangeSet, addr Address) Address {
	for _, r := range set {
		if r.Contains(addr) {
			return addr
		}
	}
	return Zero
}

// FitRange clips r to the first range in set it overlaps with, returning
// the intersection. If no range overlaps, it returns the empty Range{}.
func FitRange(set RangeSet, r Range) Range {
	for _, candidate := range set {
		overlap := candidate.Overlap(r)
		if !overlap.Empty() {
			overlap.Comment = candidate.Comment
			return overlap
		}
	}
	return Range{}
}

// Enclosing returns the range in set that contains r entirely (a superset),
// and true, or the zero Range and false if none does.
func Enclosing(set RangeSet, r Range) (Range, bool) {
	for _, candidate := range set {
		if candidate.Superset(r) {
			return candidate, true
		}
	}
	return Range{}, false
}
