// Package design implements the primer design strategies: junction-spanning
// pair design, internal target-region pairs, flanking (WGA) primers, manual
// single-primer picks, and free cross-pairing of two searched regions.
package design

import "github.com/KowalskiBio/Primerool/core/oracle"

// Junction-mode tuning. Kept as named constants rather than literals: the
// GC penalty and Tm-difference thresholds may become per-assay knobs later.
const (
	GCPenalty        = 5.0 // score penalty when candidate GC% leaves the band
	DefaultMaxTmDiff = 5.0 // max left/right Tm gap for a pair

	DefaultOverlapMin = 6
	DefaultOverlapMax = 12
	DefaultProductMin = 80
	DefaultProductMax = 220

	DefaultLeftPad  = 250
	DefaultRightPad = 400
	MinLeftPad      = 80
	MaxLeftPad      = 800
	MinRightPad     = 120
	MaxRightPad     = 1200

	DefaultMaxCandidates = 25
	MinMaxCandidates     = 5
	MaxMaxCandidates     = 60

	DefaultMaxPairs = 10

	// Downstream right-primer search depth.
	rightSearchReturn = 20
)

// Junction-spanning primers cross exon boundaries, so the acceptance bands
// are looser than the general defaults.
const (
	JunctionTmMin = 55.0
	JunctionTmMax = 68.0
	JunctionGCMin = 35.0
	JunctionGCMax = 65.0
)

// Flanking (WGA) primers sit in genomic sequence that is frequently AT- or
// GC-rich, so those bands are looser still.
const (
	FlankTmMin = 52.0
	FlankTmMax = 68.0
	FlankGCMin = 20.0
	FlankGCMax = 80.0
)

// Internal target-region product bounds.
const (
	InternalProductMin = 100
	InternalProductMax = 1000
	InternalMaxPairs   = 5
)

// JunctionConfig bounds one junction design request. NewJunctionConfig
// fills defaults and clamps the caller-tunable knobs into their legal
// ranges (mirroring the request sanitation of the original service).
type JunctionConfig struct {
	OverlapMin    int
	OverlapMax    int
	ProductMin    int
	ProductMax    int
	LeftPad       int
	RightPad      int
	MaxCandidates int
	MaxPairs      int
	MaxTmDiff     float64
	Primer        oracle.Constraints
}

// NewJunctionConfig returns the default junction configuration.
func NewJunctionConfig() JunctionConfig {
	return JunctionConfig{
		OverlapMin:    DefaultOverlapMin,
		OverlapMax:    DefaultOverlapMax,
		ProductMin:    DefaultProductMin,
		ProductMax:    DefaultProductMax,
		LeftPad:       DefaultLeftPad,
		RightPad:      DefaultRightPad,
		MaxCandidates: DefaultMaxCandidates,
		MaxPairs:      DefaultMaxPairs,
		MaxTmDiff:     DefaultMaxTmDiff,
		Primer: oracle.Constraints{
			TmMin: JunctionTmMin,
			TmMax: JunctionTmMax,
			GCMin: JunctionGCMin,
			GCMax: JunctionGCMax,
		},
	}
}

// Sanitize clamps tunable knobs into their legal ranges.
func (c JunctionConfig) Sanitize() JunctionConfig {
	if c.OverlapMin < 1 {
		c.OverlapMin = 1
	}
	if c.OverlapMax < c.OverlapMin {
		c.OverlapMax = c.OverlapMin
	}
	c.LeftPad = clamp(c.LeftPad, MinLeftPad, MaxLeftPad)
	c.RightPad = clamp(c.RightPad, MinRightPad, MaxRightPad)
	c.MaxCandidates = clamp(c.MaxCandidates, MinMaxCandidates, MaxMaxCandidates)
	if c.MaxPairs <= 0 {
		c.MaxPairs = DefaultMaxPairs
	}
	if c.MaxTmDiff <= 0 {
		c.MaxTmDiff = DefaultMaxTmDiff
	}
	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
