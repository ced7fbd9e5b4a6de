package genomics

import "github.com/KowalskiBio/Primerool/core/interval"

// Blocks returns the selected feature intervals in transcript 5'→3' order:
// sorted by genomic start, reversed on the minus strand. An empty feature
// set yields an empty block list.
func (t *TranscriptInfo) Blocks(f Feature) []interval.Interval {
	blocks := t.FeatureIntervals(f)
	if t.Strand == Minus {
		for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
			blocks[i], blocks[j] = blocks[j], blocks[i]
		}
	}
	return blocks
}

// SplicedLength returns the total length of the concatenated feature blocks.
func (t *TranscriptInfo) SplicedLength(f Feature) int {
	return interval.TotalLength(t.FeatureIntervals(f))
}
