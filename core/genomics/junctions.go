package genomics

import (
	"fmt"

	"github.com/KowalskiBio/Primerool/core/interval"
)

// Junction marks an exon-exon boundary in spliced coordinates. Pos is the
// 0-based offset immediately after the Index-th transcript block; Label
// names the flanking exon pair with 1-based transcript-order numbers.
type Junction struct {
	Index int    `json:"index"`
	Pos   int    `json:"pos"`
	Label string `json:"label"`
}

// Junctions derives the exon-exon boundaries of blocks given in transcript
// order. k blocks yield exactly k-1 junctions with strictly increasing Pos.
func Junctions(blocks []interval.Interval) []Junction {
	if len(blocks) < 2 {
		return nil
	}
	out := make([]Junction, 0, len(blocks)-1)
	cum := 0
	for i, b := range blocks[:len(blocks)-1] {
		cum += b.Length()
		out = append(out, Junction{
			Index: i,
			Pos:   cum,
			Label: fmt.Sprintf("Exon %d|%d", i+1, i+2),
		})
	}
	return out
}
