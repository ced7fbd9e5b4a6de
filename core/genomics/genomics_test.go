package genomics

import (
	"testing"

	"github.com/KowalskiBio/Primerool/core/interval"
)

// Three exons on the plus strand: lengths 100, 50, 200.
func plusTranscript() *TranscriptInfo {
	return &TranscriptInfo{
		ID:     "T1",
		Chrom:  "7",
		Strand: Plus,
		Exons: []interval.Interval{
			{Start: 1000, End: 1099},
			{Start: 2000, End: 2049},
			{Start: 3000, End: 3199},
		},
		CDS: []interval.Interval{
			{Start: 1050, End: 1099},
			{Start: 2000, End: 2049},
			{Start: 3000, End: 3029},
		},
	}
}

func minusTranscript() *TranscriptInfo {
	t := plusTranscript()
	t.Strand = Minus
	return t
}

func TestBlocksOrder(t *testing.T) {
	p := plusTranscript()
	blocks := p.Blocks(FeatureExons)
	if len(blocks) != 3 || blocks[0].Start != 1000 || blocks[2].Start != 3000 {
		t.Fatalf("plus-strand blocks out of order: %+v", blocks)
	}

	m := minusTranscript()
	blocks = m.Blocks(FeatureExons)
	if len(blocks) != 3 || blocks[0].Start != 3000 || blocks[2].Start != 1000 {
		t.Fatalf("minus-strand blocks not reversed: %+v", blocks)
	}
}

func TestBlocksEmptyFeature(t *testing.T) {
	nc := &TranscriptInfo{
		Strand: Plus,
		Exons:  []interval.Interval{{Start: 10, End: 40}},
	}
	if blocks := nc.Blocks(FeatureCDS); len(blocks) != 0 {
		t.Fatalf("non-coding transcript should have no CDS blocks: %+v", blocks)
	}
	if nc.Coding() {
		t.Fatal("transcript without CDS should not report coding")
	}
}

func TestJunctions(t *testing.T) {
	p := plusTranscript()
	blocks := p.Blocks(FeatureExons)
	js := Junctions(blocks)

	if len(js) != len(blocks)-1 {
		t.Fatalf("want %d junctions, got %d", len(blocks)-1, len(js))
	}
	total := p.SplicedLength(FeatureExons)
	prev := 0
	for i, j := range js {
		if j.Pos <= prev {
			t.Fatalf("junction pos not strictly increasing: %+v", js)
		}
		if j.Pos >= total {
			t.Fatalf("junction pos %d not below spliced length %d", j.Pos, total)
		}
		if j.Index != i {
			t.Fatalf("junction index = %d, want %d", j.Index, i)
		}
		prev = j.Pos
	}
	if js[0].Pos != 100 || js[1].Pos != 150 {
		t.Fatalf("unexpected junction positions: %+v", js)
	}
	if js[0].Label != "Exon 1|2" || js[1].Label != "Exon 2|3" {
		t.Fatalf("unexpected labels: %+v", js)
	}
}

func TestJunctionsSingleExon(t *testing.T) {
	blocks := []interval.Interval{{Start: 1, End: 500}}
	if js := Junctions(blocks); js != nil {
		t.Fatalf("single-exon transcript must have zero junctions: %+v", js)
	}
}

func TestProjectCDSPlus(t *testing.T) {
	spans := plusTranscript().ProjectCDS()
	want := []Span{{50, 100}, {100, 150}, {150, 180}}
	if len(spans) != len(want) {
		t.Fatalf("span count = %d, want %d", len(spans), len(want))
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Fatalf("span[%d] = %+v, want %+v", i, spans[i], want[i])
		}
	}
}

// Minus-strand projection is the plus projection reflected through the total
// spliced length, re-sorted ascending.
func TestProjectCDSMinusReflection(t *testing.T) {
	p := plusTranscript()
	m := minusTranscript()
	total := p.SplicedLength(FeatureExons)

	plus := p.ProjectCDS()
	minus := m.ProjectCDS()
	if len(plus) != len(minus) {
		t.Fatalf("span counts differ: %d vs %d", len(plus), len(minus))
	}

	reflected := make(map[Span]bool, len(plus))
	for _, s := range plus {
		reflected[Span{Start: total - s.End, End: total - s.Start}] = true
	}
	prevEnd := 0
	for _, s := range minus {
		if !reflected[s] {
			t.Fatalf("minus span %+v is not a reflected plus span", s)
		}
		// Adjacent spans are fine; overlapping ones are not.
		if s.Start < prevEnd {
			t.Fatalf("minus spans overlap or descend: %+v", minus)
		}
		if s.Start < 0 || s.End > total {
			t.Fatalf("span %+v outside [0,%d)", s, total)
		}
		prevEnd = s.End
	}
}

func TestDeriveRegions(t *testing.T) {
	exons := []interval.Interval{{Start: 100, End: 199}, {Start: 300, End: 399}}
	translation := interval.Interval{Start: 150, End: 350}

	cds, utr5, utr3 := DeriveRegions(exons, translation, Plus)
	if len(cds) != 2 || cds[0] != (interval.Interval{Start: 150, End: 199}) || cds[1] != (interval.Interval{Start: 300, End: 350}) {
		t.Fatalf("cds = %+v", cds)
	}
	if len(utr5) != 1 || utr5[0] != (interval.Interval{Start: 100, End: 149}) {
		t.Fatalf("utr5 = %+v", utr5)
	}
	if len(utr3) != 1 || utr3[0] != (interval.Interval{Start: 351, End: 399}) {
		t.Fatalf("utr3 = %+v", utr3)
	}

	// Minus strand swaps the UTR roles.
	_, utr5m, utr3m := DeriveRegions(exons, translation, Minus)
	if len(utr5m) != 1 || utr5m[0] != (interval.Interval{Start: 351, End: 399}) {
		t.Fatalf("minus utr5 = %+v", utr5m)
	}
	if len(utr3m) != 1 || utr3m[0] != (interval.Interval{Start: 100, End: 149}) {
		t.Fatalf("minus utr3 = %+v", utr3m)
	}
}

func TestFlankRegionsPlus(t *testing.T) {
	p := plusTranscript()
	up, down := p.FlankRegions(200, 300, true)
	// CDS anchor: 1050..3029.
	if up.Region != (interval.Interval{Start: 850, End: 1049}) || up.RevComp {
		t.Fatalf("upstream = %+v", up)
	}
	if down.Region != (interval.Interval{Start: 3030, End: 3329}) || down.RevComp {
		t.Fatalf("downstream = %+v", down)
	}
}

func TestFlankRegionsMinus(t *testing.T) {
	m := minusTranscript()
	up, down := m.FlankRegions(200, 300, true)
	if up.Region != (interval.Interval{Start: 3030, End: 3229}) || !up.RevComp {
		t.Fatalf("upstream = %+v", up)
	}
	if down.Region != (interval.Interval{Start: 750, End: 1049}) || !down.RevComp {
		t.Fatalf("downstream = %+v", down)
	}
}

func TestFlankRegionsClampAtChromStart(t *testing.T) {
	p := &TranscriptInfo{
		Strand: Plus,
		Exons:  []interval.Interval{{Start: 50, End: 150}},
	}
	up, _ := p.FlankRegions(200, 0, false)
	if up.Region.Start != 1 || up.Region.End != 49 {
		t.Fatalf("upstream not clamped to chromosome start: %+v", up)
	}
}

func TestFlankRegionsZeroRequest(t *testing.T) {
	p := plusTranscript()
	up, down := p.FlankRegions(0, 0, false)
	if !up.Empty() || !down.Empty() {
		t.Fatalf("zero-length flanks should be empty: %+v %+v", up, down)
	}
}

func TestGenomicAnnotations(t *testing.T) {
	p := plusTranscript()
	ann := p.GenomicAnnotations()
	// 3 cds overlays sort before 3 exon overlays.
	if len(ann) != 6 {
		t.Fatalf("annotation count = %d", len(ann))
	}
	if ann[0].Type != AnnotationCDS || ann[3].Type != AnnotationExon {
		t.Fatalf("annotations not sorted by type: %+v", ann)
	}
	if ann[3].Start != 0 || ann[3].End != 100 {
		t.Fatalf("first exon overlay = %+v", ann[3])
	}

	span, _ := p.ExonSpan()
	total := span.Length()
	m := minusTranscript()
	for _, a := range m.GenomicAnnotations() {
		if a.Start < 0 || a.End > total || a.Start >= a.End {
			t.Fatalf("reflected overlay out of bounds: %+v", a)
		}
	}
}
