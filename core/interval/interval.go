// Package interval provides closed genomic interval primitives.
package interval

// Interval is a 1-based, inclusive genomic interval with Start <= End.
// Well-formedness is the caller's responsibility; all operations are pure.
type Interval struct {
	Start int
	End   int
}

// Length returns the number of bases covered by iv.
func (iv Interval) Length() int { return iv.End - iv.Start + 1 }

// Empty reports whether iv covers no bases (Start > End). Clamp may
// produce empty intervals; callers must check.
func (iv Interval) Empty() bool { return iv.Start > iv.End }

// Overlap returns the inclusive overlap of a and b, or ok=false when they
// are disjoint.
func Overlap(a, b Interval) (Interval, bool) {
	s := max(a.Start, b.Start)
	e := min(a.End, b.End)
	if s > e {
		return Interval{}, false
	}
	return Interval{Start: s, End: e}, true
}

// Clamp restricts iv to [lo, hi]. The result may be empty.
func Clamp(iv Interval, lo, hi int) Interval {
	return Interval{Start: max(iv.Start, lo), End: min(iv.End, hi)}
}

// TotalLength sums the lengths of ivs.
func TotalLength(ivs []Interval) int {
	n := 0
	for _, iv := range ivs {
		n += iv.Length()
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
