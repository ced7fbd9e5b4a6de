// Package oracle defines the primer oracle contract: single-oligo analysis,
// pair analysis, and constrained single-primer search over a template.
// Design strategies depend on the interface so tests can substitute fakes.
package oracle

import "github.com/KowalskiBio/Primerool/core/thermo"

// Which selects the primer sense to search for. A left primer reads the
// template strand directly; a right primer is the reverse complement of its
// template window.
type Which int

const (
	PickLeft Which = iota
	PickRight
)

func (w Which) String() string {
	if w == PickRight {
		return "right"
	}
	return "left"
}

// Region restricts a search to template[Start : Start+Length).
type Region struct {
	Start  int
	Length int
}

// Constraints bound a primer search. Zero-valued numeric fields fall back
// to the package defaults.
type Constraints struct {
	SizeOpt int
	SizeMin int
	SizeMax int

	TmOpt float64
	TmMin float64
	TmMax float64

	GCMin float64
	GCMax float64

	NumReturn int
	Included  *Region // nil = whole template
}

// Default primer-picking bounds shared by every design mode.
const (
	DefaultSizeOpt = 20
	DefaultSizeMin = 18
	DefaultSizeMax = 25

	DefaultTmOpt = 62.0
	DefaultTmMin = 57.0
	DefaultTmMax = 67.0

	DefaultGCMin = 40.0
	DefaultGCMax = 60.0

	DefaultNumReturn = 5
)

func (c Constraints) withDefaults() Constraints {
	if c.SizeOpt == 0 {
		c.SizeOpt = DefaultSizeOpt
	}
	if c.SizeMin == 0 {
		c.SizeMin = DefaultSizeMin
	}
	if c.SizeMax == 0 {
		c.SizeMax = DefaultSizeMax
	}
	if c.TmOpt == 0 {
		c.TmOpt = DefaultTmOpt
	}
	if c.TmMin == 0 {
		c.TmMin = DefaultTmMin
	}
	if c.TmMax == 0 {
		c.TmMax = DefaultTmMax
	}
	if c.GCMin == 0 {
		c.GCMin = DefaultGCMin
	}
	if c.GCMax == 0 {
		c.GCMax = DefaultGCMax
	}
	if c.NumReturn == 0 {
		c.NumReturn = DefaultNumReturn
	}
	return c
}

// Candidate is one ranked primer from a search. Start/End index the
// template in local 0-based, end-exclusive coordinates regardless of sense.
type Candidate struct {
	Sequence  string
	Start     int
	End       int
	Tm        float64
	GCPercent float64
	Penalty   float64
}

// Result carries the ranked candidates of one search. Explain summarizes
// why windows were rejected, so an empty result is diagnosable.
type Result struct {
	Candidates []Candidate
	Considered int
	Explain    string
}

// Oracle is the thermodynamic collaborator of the design strategies.
type Oracle interface {
	Analyze(seq string) (thermo.Report, error)
	AnalyzePair(fwd, rev string) (thermo.PairReport, error)
	Search(template string, which Which, c Constraints) (Result, error)
}
