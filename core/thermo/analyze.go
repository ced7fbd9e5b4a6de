package thermo

import (
	"github.com/KowalskiBio/Primerool/core/dna"
)

// Report is the full single-oligo analysis.
type Report struct {
	Sequence  string    `json:"sequence"`
	Length    int       `json:"length"`
	GCPercent float64   `json:"gc_percent"`
	Tm        float64   `json:"tm"`
	Hairpin   Structure `json:"hairpin"`
	Homodimer Structure `json:"homodimer"`
}

// PairReport carries the cross-oligo metrics of a primer pair.
type PairReport struct {
	Heterodimer Structure `json:"heterodimer"`
}

// Analyze computes Tm, GC%, hairpin and homodimer estimates for one oligo.
func Analyze(seq string, cond Conditions) (Report, error) {
	s, err := dna.Validate(seq)
	if err != nil {
		return Report{}, err
	}
	tm, _, _, err := Tm(s, cond)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Sequence:  s,
		Length:    len(s),
		GCPercent: dna.GCPercent(s),
		Tm:        tm,
		Hairpin:   Hairpin(s, cond),
		Homodimer: Homodimer(s, cond),
	}, nil
}

// AnalyzePair computes the heterodimer estimate for a forward/reverse pair.
func AnalyzePair(fwd, rev string, cond Conditions) (PairReport, error) {
	f, err := dna.Validate(fwd)
	if err != nil {
		return PairReport{}, err
	}
	r, err := dna.Validate(rev)
	if err != nil {
		return PairReport{}, err
	}
	return PairReport{Heterodimer: Heterodimer(f, r, cond)}, nil
}
