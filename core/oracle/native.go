package oracle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KowalskiBio/Primerool/core/dna"
	"github.com/KowalskiBio/Primerool/core/thermo"
)

// Native is the in-process oracle backed by core/thermo.
type Native struct {
	Cond thermo.Conditions
}

// NewNative returns an oracle using the given reaction conditions.
func NewNative(cond thermo.Conditions) *Native {
	return &Native{Cond: cond}
}

func (n *Native) Analyze(seq string) (thermo.Report, error) {
	return thermo.Analyze(seq, n.Cond)
}

func (n *Native) AnalyzePair(fwd, rev string) (thermo.PairReport, error) {
	return thermo.AnalyzePair(fwd, rev, n.Cond)
}

// sizePenaltyWeight scales the size-vs-optimum term of the ranking penalty
// relative to the Tm term.
const sizePenaltyWeight = 0.5

// Search enumerates every window of an admissible size inside the included
// region, filters on Tm and GC bounds, and returns the NumReturn best
// candidates ranked by penalty (ties broken by position, then length, so
// repeat runs are reproducible).
func (n *Native) Search(template string, which Which, c Constraints) (Result, error) {
	c = c.withDefaults()
	tpl := dna.Normalize(template)
	if tpl == "" {
		return Result{}, fmt.Errorf("empty template")
	}
	if c.SizeMin < 1 || c.SizeMax < c.SizeMin {
		return Result{}, fmt.Errorf("invalid size bounds %d..%d", c.SizeMin, c.SizeMax)
	}

	regionStart, regionEnd := 0, len(tpl)
	if c.Included != nil {
		if c.Included.Start < 0 || c.Included.Length <= 0 || c.Included.Start+c.Included.Length > len(tpl) {
			return Result{}, fmt.Errorf("included region [%d,+%d) outside template of %d bp",
				c.Included.Start, c.Included.Length, len(tpl))
		}
		regionStart = c.Included.Start
		regionEnd = c.Included.Start + c.Included.Length
	}

	var (
		cands      []Candidate
		considered int
		ambiguous  int
		lowTm      int
		highTm     int
		badGC      int
	)

	for size := c.SizeMin; size <= c.SizeMax; size++ {
		for start := regionStart; start+size <= regionEnd; start++ {
			considered++
			window := tpl[start : start+size]
			if strings.ContainsRune(window, 'N') {
				ambiguous++
				continue
			}
			seq := window
			if which == PickRight {
				seq = dna.RevComp(window)
			}
			tm, _, _, err := thermo.Tm(seq, n.Cond)
			if err != nil {
				ambiguous++
				continue
			}
			if tm < c.TmMin {
				lowTm++
				continue
			}
			if tm > c.TmMax {
				highTm++
				continue
			}
			gc := dna.GCPercent(seq)
			if gc < c.GCMin || gc > c.GCMax {
				badGC++
				continue
			}
			pen := abs(tm-c.TmOpt) + sizePenaltyWeight*absInt(size-c.SizeOpt)
			cands = append(cands, Candidate{
				Sequence:  seq,
				Start:     start,
				End:       start + size,
				Tm:        tm,
				GCPercent: gc,
				Penalty:   pen,
			})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Penalty != cands[j].Penalty {
			return cands[i].Penalty < cands[j].Penalty
		}
		if cands[i].Start != cands[j].Start {
			return cands[i].Start < cands[j].Start
		}
		return cands[i].End < cands[j].End
	})
	if len(cands) > c.NumReturn {
		cands = cands[:c.NumReturn]
	}

	explain := fmt.Sprintf("considered %d, ambiguous 'N' %d, low tm %d, high tm %d, GC content failed %d, ok %d",
		considered, ambiguous, lowTm, highTm, badGC, len(cands))
	return Result{Candidates: cands, Considered: considered, Explain: explain}, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func absInt(x int) float64 {
	if x < 0 {
		x = -x
	}
	return float64(x)
}
