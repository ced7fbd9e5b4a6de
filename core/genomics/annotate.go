package genomics

import (
	"sort"

	"github.com/KowalskiBio/Primerool/core/interval"
)

// Annotation is a display overlay in 0-based, end-exclusive coordinates of
// either the genomic span or the spliced sequence.
type Annotation struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type"`
}

const (
	AnnotationExon = "exon"
	AnnotationCDS  = "cds"
)

// GenomicAnnotations produces exon and CDS overlays relative to the
// transcript's genomic span (intron-retaining display). Minus-strand
// overlays are reflected so they index into the reverse-complemented span
// sequence. Overlays are sorted by (type, start).
func (t *TranscriptInfo) GenomicAnnotations() []Annotation {
	span, ok := t.ExonSpan()
	if !ok {
		return nil
	}
	total := span.Length()

	var out []Annotation
	add := (func(iv interval.Interval, typ string) {
		start := iv.Start - span.Start
		end := (iv.End - span.Start) + 1
		if t.Strand == Minus {
			start, end = total-end, total-start
		}
		out = append(out, Annotation{Start: start, End: end, Type: typ})
	})

	for _, ex := range t.FeatureIntervals(FeatureExons) {
		add(ex, AnnotationExon)
	}
	for _, c := range t.FeatureIntervals(FeatureCDS) {
		cc := interval.Clamp(c, span.Start, span.End)
		if cc.Empty() {
			continue
		}
		add(cc, AnnotationCDS)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Start < out[j].Start
	})
	return out
}

// SplicedAnnotations produces CDS overlays in spliced coordinates, for the
// exon-concatenated display mode.
func (t *TranscriptInfo) SplicedAnnotations() []Annotation {
	spans := t.ProjectCDS()
	out := make([]Annotation, 0, len(spans))
	for _, s := range spans {
		out = append(out, Annotation{Start: s.Start, End: s.End, Type: AnnotationCDS})
	}
	return out
}
