package design

import (
	"fmt"
	"sort"

	"github.com/KowalskiBio/Primerool/core/dna"
	"github.com/KowalskiBio/Primerool/core/oracle"
	"github.com/KowalskiBio/Primerool/core/thermo"
)

// heterodimer ΔG values above this (less negative) are considered benign;
// anything stronger contributes to the combo score.
const hetDGTolerance = -10.0

const fromSeqMaxPairs = 5

// ScoredCombo is a forward/reverse combination from two independently
// searched regions, ranked by Tm gap plus a heterodimer term.
type ScoredCombo struct {
	ForwardSeq  string           `json:"forward_seq"`
	ForwardTm   float64          `json:"forward_tm"`
	ReverseSeq  string           `json:"reverse_seq"`
	ReverseTm   float64          `json:"reverse_tm"`
	TmDiff      float64          `json:"tm_diff"`
	Heterodimer thermo.Structure `json:"heterodimer"`
	Score       float64          `json:"score"`
}

// FromSequenceResult carries the two candidate lists and the best-scored
// cross pairs.
type FromSequenceResult struct {
	ForwardPrimers []Primer      `json:"forward_primers"`
	ReversePrimers []Primer      `json:"reverse_primers"`
	BestPairs      []ScoredCombo `json:"best_pairs"`
	ForwardExplain string        `json:"forward_explain,omitempty"`
	ReverseExplain string        `json:"reverse_explain,omitempty"`
}

// Empty reports whether either side found no primers.
func (r *FromSequenceResult) Empty() bool {
	return len(r.ForwardPrimers) == 0 || len(r.ReversePrimers) == 0
}

// DesignFromRegions searches forward primers over fwdRegion and reverse
// primers over revRegion independently, then scores every cross pair by
// Tm difference plus a penalty for strong heterodimers.
func DesignFromRegions(orc oracle.Oracle, fwdRegion, revRegion string) (*FromSequenceResult, error) {
	fwd := dna.Clean(fwdRegion)
	rev := dna.Clean(revRegion)
	if len(fwd) < oracle.DefaultSizeMin {
		return nil, fmt.Errorf("forward region too short (need at least %d bp)", oracle.DefaultSizeMin)
	}
	if len(rev) < oracle.DefaultSizeMin {
		return nil, fmt.Errorf("reverse region too short (need at least %d bp)", oracle.DefaultSizeMin)
	}

	res := &FromSequenceResult{}

	fr, err := orc.Search(fwd, oracle.PickLeft, oracle.Constraints{NumReturn: oracle.DefaultNumReturn})
	if err != nil {
		return nil, fmt.Errorf("forward search: %w", err)
	}
	res.ForwardExplain = fr.Explain
	for _, c := range fr.Candidates {
		if rep, aErr := orc.Analyze(c.Sequence); aErr == nil {
			res.ForwardPrimers = append(res.ForwardPrimers, Primer{Report: rep, Interval: Span{Start: c.Start, End: c.End}})
		}
	}

	rr, err := orc.Search(rev, oracle.PickRight, oracle.Constraints{NumReturn: oracle.DefaultNumReturn})
	if err != nil {
		return nil, fmt.Errorf("reverse search: %w", err)
	}
	res.ReverseExplain = rr.Explain
	for _, c := range rr.Candidates {
		if rep, aErr := orc.Analyze(c.Sequence); aErr == nil {
			res.ReversePrimers = append(res.ReversePrimers, Primer{Report: rep, Interval: Span{Start: c.Start, End: c.End}})
		}
	}

	if res.Empty() {
		return res, nil
	}

	var combos []ScoredCombo
	for _, fp := range res.ForwardPrimers {
		for _, rp := range res.ReversePrimers {
			pairRep, aErr := orc.AnalyzePair(fp.Sequence, rp.Sequence)
			if aErr != nil {
				continue
			}
			tmDiff := abs(fp.Tm - rp.Tm)
			score := tmDiff
			if het := pairRep.Heterodimer; het.Found && het.DG < hetDGTolerance {
				score += (hetDGTolerance - het.DG) * 0.1
			}
			combos = append(combos, ScoredCombo{
				ForwardSeq:  fp.Sequence,
				ForwardTm:   fp.Tm,
				ReverseSeq:  rp.Sequence,
				ReverseTm:   rp.Tm,
				TmDiff:      tmDiff,
				Heterodimer: pairRep.Heterodimer,
				Score:       score,
			})
		}
	}
	sort.SliceStable(combos, func(i, j int) bool { return combos[i].Score < combos[j].Score })
	if len(combos) > fromSeqMaxPairs {
		combos = combos[:fromSeqMaxPairs]
	}
	res.BestPairs = combos
	return res, nil
}
