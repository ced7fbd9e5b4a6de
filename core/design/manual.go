package design

import (
	"fmt"

	"github.com/KowalskiBio/Primerool/core/dna"
	"github.com/KowalskiBio/Primerool/core/oracle"
)

// ManualResult is a single constrained primer pick. When no primer
// satisfies the constraints, Primer is nil and Explain says why.
type ManualResult struct {
	Primer  *Primer `json:"design"`
	Explain string  `json:"explain,omitempty"`
}

// DesignOnePrimer picks the single best left or right primer constrained
// to template[includeStart : includeStart+includeLen).
func DesignOnePrimer(orc oracle.Oracle, template string, includeStart, includeLen int, which oracle.Which) (*ManualResult, error) {
	tpl := dna.Normalize(template)
	if tpl == "" {
		return nil, fmt.Errorf("empty template")
	}
	if includeStart < 0 || includeLen <= 0 || includeStart+includeLen > len(tpl) {
		return nil, fmt.Errorf("invalid include region [%d,+%d) for %d bp template", includeStart, includeLen, len(tpl))
	}

	sr, err := orc.Search(tpl, which, oracle.Constraints{
		NumReturn: oracle.DefaultNumReturn,
		Included:  &oracle.Region{Start: includeStart, Length: includeLen},
	})
	if err != nil {
		return nil, fmt.Errorf("%s primer search: %w", which, err)
	}
	if len(sr.Candidates) == 0 {
		return &ManualResult{Explain: sr.Explain}, nil
	}

	best := sr.Candidates[0]
	rep, err := orc.Analyze(best.Sequence)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s primer: %w", which, err)
	}
	return &ManualResult{
		Primer: &Primer{Report: rep, Interval: Span{Start: best.Start, End: best.End}},
	}, nil
}
