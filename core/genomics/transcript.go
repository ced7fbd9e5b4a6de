// Package genomics maps transcript annotations between genomic,
// transcript-order, and spliced coordinate systems.
package genomics

import (
	"sort"

	"github.com/KowalskiBio/Primerool/core/interval"
)

// Strand is the genomic strand of a transcript.
type Strand string

const (
	Plus  Strand = "+"
	Minus Strand = "-"
)

// Feature selects which intervals of a transcript are spliced together.
type Feature int

const (
	FeatureExons Feature = iota
	FeatureCDS
)

func (f Feature) String() string {
	if f == FeatureCDS {
		return "cds"
	}
	return "exons"
}

// TranscriptInfo is the immutable annotation bundle for one transcript, as
// returned by the annotation service. Interval sets are sorted by genomic
// start and pairwise non-overlapping. CDS is empty for non-coding
// transcripts.
type TranscriptInfo struct {
	ID     string
	Name   string
	Chrom  string
	Strand Strand

	Exons []interval.Interval
	CDS   []interval.Interval
	UTR5  []interval.Interval
	UTR3  []interval.Interval
}

// Coding reports whether the transcript has an annotated coding region.
func (t *TranscriptInfo) Coding() bool { return len(t.CDS) > 0 }

// FeatureIntervals returns the genomic intervals selected by f, sorted by
// genomic start. The returned slice is a copy. An empty result is a
// legitimate outcome (CDS of a non-coding transcript), not an error.
func (t *TranscriptInfo) FeatureIntervals(f Feature) []interval.Interval {
	var src []interval.Interval
	switch f {
	case FeatureCDS:
		src = t.CDS
	default:
		src = t.Exons
	}
	out := make([]interval.Interval, len(src))
	copy(out, src)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// ExonSpan returns the outer genomic bounds of the exon set, or ok=false
// when the transcript has no exons.
func (t *TranscriptInfo) ExonSpan() (interval.Interval, bool) {
	return outerBounds(t.Exons)
}

// Anchor returns the outer bounds of the coding region when useCDS is set
// and a CDS exists, otherwise the exon span.
func (t *TranscriptInfo) Anchor(useCDS bool) (interval.Interval, bool) {
	if useCDS && t.Coding() {
		return outerBounds(t.CDS)
	}
	return outerBounds(t.Exons)
}

func outerBounds(ivs []interval.Interval) (interval.Interval, bool) {
	if len(ivs) == 0 {
		return interval.Interval{}, false
	}
	b := ivs[0]
	for _, iv := range ivs[1:] {
		if iv.Start < b.Start {
			b.Start = iv.Start
		}
		if iv.End > b.End {
			b.End = iv.End
		}
	}
	return b, true
}

// DeriveRegions splits sorted exons into CDS and UTR segments given the
// genomic translation bounds. On the minus strand the 5' UTR sits at the
// higher genomic coordinates. Exons entirely outside the translation span
// contribute whole UTR segments.
func DeriveRegions(exons []interval.Interval, translation interval.Interval, strand Strand) (cds, utr5, utr3 []interval.Interval) {
	for _, ex := range exons {
		if ov, ok := interval.Overlap(ex, translation); ok {
			cds = append(cds, ov)
		}
		low := interval.Interval{Start: ex.Start, End: min(ex.End, translation.Start-1)}
		high := interval.Interval{Start: max(ex.Start, translation.End+1), End: ex.End}
		if strand == Minus {
			if !high.Empty() {
				utr5 = append(utr5, high)
			}
			if !low.Empty() {
				utr3 = append(utr3, low)
			}
		} else {
			if !low.Empty() {
				utr5 = append(utr5, low)
			}
			if !high.Empty() {
				utr3 = append(utr3, high)
			}
		}
	}
	sortByStart(cds)
	sortByStart(utr5)
	sortByStart(utr3)
	return cds, utr5, utr3
}

func sortByStart(ivs []interval.Interval) {
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })
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
