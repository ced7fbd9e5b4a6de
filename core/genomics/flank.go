package genomics

import "github.com/KowalskiBio/Primerool/core/interval"

// FlankRegion is a genomic region to fetch for an upstream or downstream
// flank. RevComp is set when the raw forward-strand sequence must be
// reverse-complemented before it can be labeled upstream/downstream of the
// transcript (minus-strand transcripts).
type FlankRegion struct {
	Region  interval.Interval
	RevComp bool
}

// Empty reports whether no sequence should be fetched for the flank.
func (f FlankRegion) Empty() bool { return f.Region.Empty() }

// FlankRegions computes the genomic regions upstream and downstream of the
// transcript anchor (CDS bounds when useCDSAnchor and a CDS exists,
// otherwise the exon span). "Upstream" follows transcript direction: on the
// minus strand it sits at higher genomic coordinates and the fetched
// sequence needs reverse-complementing. Zero-length requests and missing
// exons yield empty regions.
func (t *TranscriptInfo) FlankRegions(upstreamBP, downstreamBP int, useCDSAnchor bool) (up, down FlankRegion) {
	up = FlankRegion{Region: interval.Interval{Start: 1, End: 0}}
	down = FlankRegion{Region: interval.Interval{Start: 1, End: 0}}

	anchor, ok := t.Anchor(useCDSAnchor)
	if !ok {
		return up, down
	}

	if t.Strand == Minus {
		if upstreamBP > 0 {
			up = FlankRegion{
				Region:  interval.Interval{Start: anchor.End + 1, End: anchor.End + upstreamBP},
				RevComp: true,
			}
		}
		if downstreamBP > 0 {
			down = FlankRegion{
				Region:  interval.Interval{Start: max(1, anchor.Start-downstreamBP), End: anchor.Start - 1},
				RevComp: true,
			}
		}
		return up, down
	}

	if upstreamBP > 0 {
		up = FlankRegion{
			Region: interval.Interval{Start: max(1, anchor.Start-upstreamBP), End: anchor.Start - 1},
		}
	}
	if downstreamBP > 0 {
		down = FlankRegion{
			Region: interval.Interval{Start: anchor.End + 1, End: anchor.End + downstreamBP},
		}
	}
	return up, down
}
