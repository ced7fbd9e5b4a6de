package thermo

import (
	"math"
	"strings"
)

// Structure is a secondary-structure estimate. Tm and DG are meaningful
// only when Found is set.
type Structure struct {
	Found bool    `json:"structure_found"`
	Tm    float64 `json:"tm"`
	DG    float64 `json:"dg"`
}

const (
	minStem     = 3 // bases required to call a hairpin stem
	minLoop     = 3
	minDimerRun = 4 // contiguous WC pairs required to call a dimer
	assayTempC  = 37.0
)

// Hairpin scans seq for the longest self-complementary stem enclosing a
// loop of at least minLoop bases and reports a stem-duplex estimate.
func Hairpin(seq string, cond Conditions) Structure {
	s := strings.ToUpper(strings.TrimSpace(seq))
	n := len(s)
	bestLen, bestI := 0, 0
	for i := 0; i < n; i++ {
		for j := n - 1; j > i; j-- {
			k := 0
			for i+k < j-k-minLoop && isWC(s[i+k], s[j-k]) {
				k++
			}
			if k > bestLen {
				bestLen, bestI = k, i
			}
		}
	}
	if bestLen < minStem {
		return Structure{}
	}
	return stemEstimate(s[bestI:bestI+bestLen], cond, true)
}

// Homodimer reports the strongest self-dimer of seq.
func Homodimer(seq string, cond Conditions) Structure {
	return Heterodimer(seq, seq, cond)
}

// Heterodimer aligns a against b antiparallel at every offset and reports
// the strongest contiguous complementary run.
func Heterodimer(a, b string, cond Conditions) Structure {
	sa := strings.ToUpper(strings.TrimSpace(a))
	sb := reverse(strings.ToUpper(strings.TrimSpace(b)))
	na, nb := len(sa), len(sb)
	if na == 0 || nb == 0 {
		return Structure{}
	}

	bestLen, bestI := 0, 0
	for off := -(nb - 1); off < na; off++ {
		run, runStart := 0, 0
		for j := 0; j < nb; j++ {
			i := off + j
			if i < 0 || i >= na {
				run = 0
				continue
			}
			if isWC(sa[i], sb[j]) {
				if run == 0 {
					runStart = i
				}
				run++
				if run > bestLen {
					bestLen, bestI = run, runStart
				}
			} else {
				run = 0
			}
		}
	}
	if bestLen < minDimerRun {
		return Structure{}
	}
	return stemEstimate(sa[bestI:bestI+bestLen], cond, false)
}

// stemEstimate sums nearest-neighbor terms over a perfectly paired segment
// and converts them to a Tm/ΔG estimate. Hairpins are unimolecular, so the
// concentration term drops out.
func stemEstimate(stem string, cond Conditions, unimolecular bool) Structure {
	dH, dS := 0.0, 0.0
	for i := 0; i < len(stem)-1; i++ {
		dh, okH := nnDH[stem[i:i+2]]
		ds, okS := nnDS[stem[i:i+2]]
		if !okH || !okS {
			return Structure{}
		}
		dH += dh
		dS += ds
	}
	if dS == 0 {
		return Structure{}
	}
	var tmK float64
	if unimolecular {
		tmK = dH * 1000.0 / dS
	} else {
		ct := math.Max(cond.PrimerM, 1e-12)
		tmK = dH * 1000.0 / (dS + Rcal*math.Log(ct/4.0))
	}
	return Structure{
		Found: true,
		Tm:    tmK - 273.15,
		DG:    DeltaGAt(dH, dS, assayTempC),
	}
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
