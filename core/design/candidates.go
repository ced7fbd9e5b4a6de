package design

// Span is a candidate primer placement in local 0-based, end-exclusive
// window coordinates.
type Span struct {
	Start int
	End   int
}

// JunctionSpans enumerates every span crossing position j of an n-base
// window with left and right overlaps in [ovMin, ovMax] and a total length
// in [sizeMin, sizeMax]. Enumeration order is (leftOverlap, rightOverlap)
// ascending; the scorer's stable sort relies on it for deterministic
// tie-breaks. An empty result is a legitimate outcome.
func JunctionSpans(n, j, ovMin, ovMax, sizeMin, sizeMax int) []Span {
	var out []Span
	for left := ovMin; left <= ovMax; left++ {
		for right := ovMin; right <= ovMax; right++ {
			total := left + right
			if total < sizeMin || total > sizeMax {
				continue
			}
			start := j - left
			end := j + right
			if start < 0 || end > n {
				continue
			}
			out = append(out, Span{Start: start, End: end})
		}
	}
	return out
}
