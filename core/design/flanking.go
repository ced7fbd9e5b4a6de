package design

import (
	"fmt"

	"github.com/KowalskiBio/Primerool/core/dna"
	"github.com/KowalskiBio/Primerool/core/oracle"
	"github.com/KowalskiBio/Primerool/core/thermo"
)

// FlankSide is one side of a flanking (WGA) design: the ranked primers
// found in that flank, or the oracle's explanation when none were.
type FlankSide struct {
	NumReturned int      `json:"num_returned"`
	Primers     []Primer `json:"primers"`
	Explain     string   `json:"explain,omitempty"`
}

// FlankingResult pairs a forward primer from the upstream flank with a
// reverse primer from the downstream flank.
type FlankingResult struct {
	Forward     FlankSide          `json:"forward"`
	Reverse     FlankSide          `json:"reverse"`
	PairMetrics *thermo.PairReport `json:"pair_metrics,omitempty"`
}

func flankConstraints() oracle.Constraints {
	return oracle.Constraints{
		TmMin: FlankTmMin,
		TmMax: FlankTmMax,
		GCMin: FlankGCMin,
		GCMax: FlankGCMax,
	}
}

// DesignFlankingPrimers picks the forward primer from the trailing
// flankWindow bases of the upstream flank and the reverse primer from the
// leading flankWindow bases of the downstream flank. flankWindow <= 0 uses
// each whole flank. Either side may come back empty with an explanation;
// pair metrics are computed for the best forward/reverse combination when
// both sides produced primers.
func DesignFlankingPrimers(orc oracle.Oracle, upstream, downstream string, flankWindow int) (*FlankingResult, error) {
	up := dna.Normalize(upstream)
	down := dna.Normalize(downstream)
	if up == "" && down == "" {
		return nil, fmt.Errorf("no flanking sequences provided")
	}

	res := &FlankingResult{}

	if len(up) >= oracle.DefaultSizeMin {
		win := len(up)
		if flankWindow > 0 && flankWindow < win {
			win = flankWindow
		}
		cons := flankConstraints()
		cons.Included = &oracle.Region{Start: len(up) - win, Length: win}
		side, err := searchFlankSide(orc, up, oracle.PickLeft, cons)
		if err != nil {
			return nil, fmt.Errorf("forward flank search: %w", err)
		}
		res.Forward = side
	}

	if len(down) >= oracle.DefaultSizeMin {
		win := len(down)
		if flankWindow > 0 && flankWindow < win {
			win = flankWindow
		}
		cons := flankConstraints()
		cons.Included = &oracle.Region{Start: 0, Length: win}
		side, err := searchFlankSide(orc, down, oracle.PickRight, cons)
		if err != nil {
			return nil, fmt.Errorf("reverse flank search: %w", err)
		}
		res.Reverse = side
	}

	if len(res.Forward.Primers) > 0 && len(res.Reverse.Primers) > 0 {
		metrics, err := orc.AnalyzePair(res.Forward.Primers[0].Sequence, res.Reverse.Primers[0].Sequence)
		if err == nil {
			res.PairMetrics = &metrics
		}
	}
	return res, nil
}

func searchFlankSide(orc oracle.Oracle, tpl string, which oracle.Which, cons oracle.Constraints) (FlankSide, error) {
	sr, err := orc.Search(tpl, which, cons)
	if err != nil {
		return FlankSide{}, err
	}
	side := FlankSide{NumReturned: len(sr.Candidates), Explain: sr.Explain}
	for _, c := range sr.Candidates {
		rep, aErr := orc.Analyze(c.Sequence)
		if aErr != nil {
			continue
		}
		side.Primers = append(side.Primers, Primer{
			Report:   rep,
			Interval: Span{Start: c.Start, End: c.End},
		})
	}
	return side, nil
}
