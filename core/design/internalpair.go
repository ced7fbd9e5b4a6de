package design

import (
	"fmt"
	"sort"

	"github.com/KowalskiBio/Primerool/core/dna"
	"github.com/KowalskiBio/Primerool/core/oracle"
)

// DesignInternalPairs designs classic pairs around a target region inside
// sequence: left primers upstream of the target, right primers downstream,
// cross-paired under the internal product-size bounds. targetStart and
// targetEnd are 0-based, end-exclusive.
func DesignInternalPairs(orc oracle.Oracle, sequence string, targetStart, targetEnd int) (*PairResult, error) {
	tpl := dna.Normalize(sequence)
	n := len(tpl)
	if n == 0 {
		return nil, fmt.Errorf("empty sequence")
	}
	if targetStart < 0 || targetEnd > n || targetStart >= targetEnd {
		return nil, fmt.Errorf("invalid target positions %d..%d for %d bp sequence", targetStart, targetEnd, n)
	}

	sizeMin := oracle.DefaultSizeMin
	if targetStart < sizeMin || n-targetEnd < sizeMin {
		return &PairResult{Reason: ReasonWindowTooSmall}, nil
	}

	leftRes, err := orc.Search(tpl, oracle.PickLeft, oracle.Constraints{
		NumReturn: rightSearchReturn,
		Included:  &oracle.Region{Start: 0, Length: targetStart},
	})
	if err != nil {
		return nil, fmt.Errorf("left primer search: %w", err)
	}
	rightRes, err := orc.Search(tpl, oracle.PickRight, oracle.Constraints{
		NumReturn: rightSearchReturn,
		Included:  &oracle.Region{Start: targetEnd, Length: n - targetEnd},
	})
	if err != nil {
		return nil, fmt.Errorf("right primer search: %w", err)
	}
	if len(leftRes.Candidates) == 0 || len(rightRes.Candidates) == 0 {
		explain := leftRes.Explain
		if len(rightRes.Candidates) == 0 {
			explain = rightRes.Explain
		}
		return &PairResult{Reason: ReasonNoDownstreamPrimers, Explain: explain}, nil
	}

	type combo struct {
		left    oracle.Candidate
		right   oracle.Candidate
		product int
		penalty float64
	}
	var combos []combo
	for _, l := range leftRes.Candidates {
		for _, r := range rightRes.Candidates {
			product := r.End - l.Start
			if product < InternalProductMin || product > InternalProductMax {
				continue
			}
			combos = append(combos, combo{
				left:    l,
				right:   r,
				product: product,
				penalty: l.Penalty + r.Penalty + abs(l.Tm-r.Tm),
			})
		}
	}
	sort.SliceStable(combos, func(i, j int) bool { return combos[i].penalty < combos[j].penalty })

	res := &PairResult{}
	seen := make(map[pairKey]struct{})
	for _, c := range combos {
		if len(res.Pairs) >= InternalMaxPairs {
			break
		}
		key := pairKey{left: c.left.Sequence, right: c.right.Sequence, product: c.product}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		leftRep, aErr := orc.Analyze(c.left.Sequence)
		if aErr != nil {
			continue
		}
		rightRep, aErr := orc.Analyze(c.right.Sequence)
		if aErr != nil {
			continue
		}
		metrics, aErr := orc.AnalyzePair(c.left.Sequence, c.right.Sequence)
		if aErr != nil {
			continue
		}
		res.Pairs = append(res.Pairs, PrimerPair{
			PairNumber:  len(res.Pairs) + 1,
			Left:        Primer{Report: leftRep, Interval: Span{Start: c.left.Start, End: c.left.End}},
			Right:       Primer{Report: rightRep, Interval: Span{Start: c.right.Start, End: c.right.End}},
			ProductSize: c.product,
			Metrics:     metrics,
		})
	}

	res.Count = len(res.Pairs)
	if res.Count == 0 {
		res.Reason = ReasonNoCompatiblePairs
	}
	return res, nil
}
