package design

import (
	"github.com/KowalskiBio/Primerool/core/dna"
	"github.com/KowalskiBio/Primerool/core/oracle"
	"github.com/KowalskiBio/Primerool/core/thermo"
)

// stubOracle is a deterministic fake: Analyze derives Tm from sequence
// length unless overridden per sequence, and Search returns a canned
// candidate list.
type stubOracle struct {
	tmBySeq map[string]float64
	rights  []oracle.Candidate
	lefts   []oracle.Candidate
	explain string
}

func (s *stubOracle) analyzeTm(seq string) float64 {
	if tm, ok := s.tmBySeq[seq]; ok {
		return tm
	}
	return 55.0 + 0.25*float64(len(seq))
}

func (s *stubOracle) Analyze(seq string) (thermo.Report, error) {
	return thermo.Report{
		Sequence:  seq,
		Length:    len(seq),
		GCPercent: dna.GCPercent(seq),
		Tm:        s.analyzeTm(seq),
	}, nil
}

func (s *stubOracle) AnalyzePair(fwd, rev string) (thermo.PairReport, error) {
	return thermo.PairReport{}, nil
}

func (s *stubOracle) Search(template string, which oracle.Which, c oracle.Constraints) (oracle.Result, error) {
	cands := s.rights
	if which == oracle.PickLeft {
		cands = s.lefts
	}
	return oracle.Result{Candidates: cands, Considered: 1, Explain: s.explain}, nil
}

// template of n bases with enough variation to look like real sequence.
func syntheticTemplate(n int) string {
	unit := "ACGTTGCAGCTAGGCATCAA"
	b := make([]byte, 0, n+len(unit))
	for len(b) < n {
		b = append(b, unit...)
	}
	return string(b[:n])
}
