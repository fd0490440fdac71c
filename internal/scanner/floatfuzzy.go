package scanner

import (
	"encoding/binary"
	"math"
)

// fuzzyLow and fuzzyHigh bound the acceptance window around the nominal
// value, tolerating the rounding a user sees when an integer-valued float
// is displayed to them.
const (
	fuzzyLow  = 0.55
	fuzzyHigh = 1.05
)

// FloatFuzzySearch interprets needle4 as a little-endian f32 lower-edge
// value v, then scans every byte-stepped 4-byte window of haystack,
// reinterpreting it as f32 and emitting the window's offset if it falls in
// [v-0.55, v+1.05]. NaN windows are skipped. Every window including the
// final one is considered; see DESIGN.md for why.
func FloatFuzzySearch(haystack, needle4 []byte) []int {
	const l = 4
	n := len(haystack)
	if len(needle4) != l || n < l {
		return nil
	}

	v := math.Float32frombits(binary.LittleEndian.Uint32(needle4))
	min := v - fuzzyLow
	max := v + fuzzyHigh

	var matches []int
	for i := 0; i+l <= n; i++ {
		candidate := math.Float32frombits(binary.LittleEndian.Uint32(haystack[i : i+l]))
		if math.IsNaN(float64(candidate)) {
			continue
		}
		if candidate >= min && candidate <= max {
			matches = append(matches, i)
		}
	}
	return matches
}
