package design

import (
	"fmt"

	"github.com/KowalskiBio/Primerool/core/dna"
	"github.com/KowalskiBio/Primerool/core/oracle"
	"github.com/KowalskiBio/Primerool/core/thermo"
)

// Reason distinguishes the legitimate zero-result outcomes of a design run
// from hard errors. An empty Reason means pairs were found.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonNoCandidatesInWindow Reason = "no junction-spanning candidates in window"
	ReasonWindowTooSmall       Reason = "window too small for downstream primers"
	ReasonNoDownstreamPrimers  Reason = "no downstream primers found"
	ReasonNoCompatiblePairs    Reason = "no compatible pairs after filtering"
)

// Primer is one designed oligo with its full-template placement.
type Primer struct {
	thermo.Report
	Interval Span `json:"interval"` // full-template coords, end-exclusive
}

// PrimerPair is one emitted left/right combination.
type PrimerPair struct {
	PairNumber  int               `json:"pair_number"`
	JunctionPos int               `json:"junction_pos"`
	Spanning    string            `json:"junction_spanning"`
	Left        Primer            `json:"left"`
	Right       Primer            `json:"right"`
	ProductSize int               `json:"product_size"`
	Metrics     thermo.PairReport `json:"pair_metrics"`
}

// PairResult is the outcome of a pair-producing design run. Zero pairs is
// not an error: Reason says which stage came up empty and Explain carries
// the oracle's diagnostic text when one was produced.
type PairResult struct {
	Pairs   []PrimerPair `json:"pairs"`
	Count   int          `json:"num_pairs"`
	Reason  Reason       `json:"reason,omitempty"`
	Explain string       `json:"explain,omitempty"`
}

type pairKey struct {
	left    string
	right   string
	product int
}

// DesignJunctionPairs forces the left primer to span junctionPos and pairs
// the scored spanning candidates against one independent downstream right
// search. The right search runs once, not per left candidate. Output order
// is deterministic: left candidates by score, right candidates by oracle
// rank, capped at cfg.MaxPairs.
func DesignJunctionPairs(orc oracle.Oracle, template string, junctionPos int, cfg JunctionConfig) (*PairResult, error) {
	cfg = cfg.Sanitize()
	tpl := dna.Normalize(template)
	nFull := len(tpl)
	if nFull == 0 {
		return nil, fmt.Errorf("empty template")
	}
	if junctionPos <= 0 || junctionPos >= nFull {
		return nil, fmt.Errorf("junction position %d out of range for %d bp template", junctionPos, nFull)
	}

	primerCons := cfg.Primer
	sizeMin := primerCons.SizeMin
	if sizeMin == 0 {
		sizeMin = oracle.DefaultSizeMin
	}
	sizeMax := primerCons.SizeMax
	if sizeMax == 0 {
		sizeMax = oracle.DefaultSizeMax
	}
	optTm := primerCons.TmOpt
	if optTm == 0 {
		optTm = oracle.DefaultTmOpt
	}

	// Local search window around the junction.
	winStart := clamp(junctionPos-cfg.LeftPad, 0, nFull)
	winEnd := clamp(junctionPos+cfg.RightPad, 0, nFull)
	local := tpl[winStart:winEnd]
	jLocal := junctionPos - winStart
	n := len(local)

	spans := JunctionSpans(n, jLocal, cfg.OverlapMin, cfg.OverlapMax, sizeMin, sizeMax)
	if len(spans) == 0 {
		return &PairResult{Reason: ReasonNoCandidatesInWindow}, nil
	}

	lefts := scoreSpans(local, spans, orc, optTm, primerCons.GCMin, primerCons.GCMax, cfg.MaxCandidates)
	if len(lefts) == 0 {
		return &PairResult{Reason: ReasonNoCandidatesInWindow}, nil
	}

	// Independent downstream right-primer search, from the junction to the
	// window end.
	if n-jLocal < sizeMin {
		return &PairResult{Reason: ReasonWindowTooSmall}, nil
	}
	rightCons := primerCons
	rightCons.NumReturn = rightSearchReturn
	rightCons.Included = &oracle.Region{Start: jLocal, Length: n - jLocal}
	rightRes, err := orc.Search(local, oracle.PickRight, rightCons)
	if err != nil {
		return nil, fmt.Errorf("right primer search: %w", err)
	}
	if len(rightRes.Candidates) == 0 {
		return &PairResult{Reason: ReasonNoDownstreamPrimers, Explain: rightRes.Explain}, nil
	}

	res := &PairResult{Explain: rightRes.Explain}
	seen := make(map[pairKey]struct{})

pairing:
	for _, left := range lefts {
		for _, rc := range rightRes.Candidates {
			if abs(left.Report.Tm-rc.Tm) > cfg.MaxTmDiff {
				continue
			}
			// Left start and right end share the local window frame, so the
			// difference is the amplicon size.
			productSize := rc.End - left.Start
			if productSize < cfg.ProductMin || productSize > cfg.ProductMax {
				continue
			}
			key := pairKey{left: left.Report.Sequence, right: rc.Sequence, product: productSize}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			rightRep, aErr := orc.Analyze(rc.Sequence)
			if aErr != nil {
				continue
			}
			metrics, aErr := orc.AnalyzePair(left.Report.Sequence, rc.Sequence)
			if aErr != nil {
				continue
			}

			res.Pairs = append(res.Pairs, PrimerPair{
				PairNumber:  len(res.Pairs) + 1,
				JunctionPos: junctionPos,
				Spanning:    "left",
				Left: Primer{
					Report:   left.Report,
					Interval: Span{Start: winStart + left.Start, End: winStart + left.End},
				},
				Right: Primer{
					Report:   rightRep,
					Interval: Span{Start: winStart + rc.Start, End: winStart + rc.End},
				},
				ProductSize: productSize,
				Metrics:     metrics,
			})
			if len(res.Pairs) >= cfg.MaxPairs {
				break pairing
			}
		}
	}

	res.Count = len(res.Pairs)
	if res.Count == 0 {
		res.Reason = ReasonNoCompatiblePairs
	}
	return res, nil
}
