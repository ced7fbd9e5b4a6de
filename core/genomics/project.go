package genomics

import (
	"sort"

	"github.com/KowalskiBio/Primerool/core/interval"
)

// Span is a 0-based, end-exclusive interval in spliced (exon-concatenated)
// coordinates.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ProjectCDS maps the genomic CDS intervals into spliced coordinates of the
// exon-concatenated transcript. Exons are walked in genomic order while an
// offset accumulates; each exon∩CDS overlap maps to
// [offset + (ov.Start - exon.Start), offset + (ov.End - exon.Start) + 1).
// On the minus strand every span is reflected through the total spliced
// length and the set re-sorted ascending. The result is ascending,
// non-overlapping and contained in [0, total).
func (t *TranscriptInfo) ProjectCDS() []Span {
	exons := t.FeatureIntervals(FeatureExons)
	cds := t.FeatureIntervals(FeatureCDS)
	if len(exons) == 0 || len(cds) == 0 {
		return nil
	}

	var spans []Span
	offset := 0
	j := 0
	for _, ex := range exons {
		for j < len(cds) && cds[j].End < ex.Start {
			j++
		}
		for k := j; k < len(cds) && cds[k].Start <= ex.End; k++ {
			if ov, ok := interval.Overlap(ex, cds[k]); ok {
				spans = append(spans, Span{
					Start: offset + (ov.Start - ex.Start),
					End:   offset + (ov.End - ex.Start) + 1,
				})
			}
		}
		offset += ex.Length()
	}

	if t.Strand == Minus {
		total := interval.TotalLength(exons)
		for i, s := range spans {
			spans[i] = Span{Start: total - s.End, End: total - s.Start}
		}
		sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	}
	return spans
}
