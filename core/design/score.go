package design

import (
	"sort"

	"github.com/KowalskiBio/Primerool/core/oracle"
	"github.com/KowalskiBio/Primerool/core/thermo"
)

// Candidate is a junction-spanning span with its thermodynamic report and
// ranking score (lower is better).
type Candidate struct {
	Span
	Report thermo.Report
	Score  float64
}

// scoreSpans analyzes each span's subsequence and ranks by
// |Tm - optTm| plus a fixed penalty when GC% leaves [gcMin, gcMax].
// The sort is stable, so ties keep generation order and repeat runs are
// byte-identical. Spans whose analysis fails (ambiguous bases) are dropped.
func scoreSpans(local string, spans []Span, orc oracle.Oracle, optTm, gcMin, gcMax float64, maxCandidates int) []Candidate {
	scored := make([]Candidate, 0, len(spans))
	for _, sp := range spans {
		rep, err := orc.Analyze(local[sp.Start:sp.End])
		if err != nil {
			continue
		}
		score := abs(rep.Tm - optTm)
		if rep.GCPercent < gcMin || rep.GCPercent > gcMax {
			score += GCPenalty
		}
		scored = append(scored, Candidate{Span: sp, Report: rep, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score < scored[j].Score })
	if maxCandidates > 0 && len(scored) > maxCandidates {
		scored = scored[:maxCandidates]
	}
	return scored
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
