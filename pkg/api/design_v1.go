// pkg/api/design_v1.go
package api

import (
	"math"

	"github.com/KowalskiBio/Primerool/core/design"
	"github.com/KowalskiBio/Primerool/core/thermo"
)

// Round1 rounds metrics to one decimal for the wire, the precision primer
// Tm and GC values are meaningful to.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// StructureV1 is a hairpin or dimer prediction.
type StructureV1 struct {
	Found bool    `json:"structure_found"`
	Tm    float64 `json:"tm"`
	DG    float64 `json:"dg"`
}

// OligoV1 is the stable schema for a single analyzed oligo.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type OligoV1 struct {
	Sequence  string      `json:"sequence"`
	Length    int         `json:"length"`
	Tm        float64     `json:"tm"`
	GC        float64     `json:"gc"`
	Hairpin   StructureV1 `json:"hairpin"`
	Homodimer StructureV1 `json:"homodimer"`
}

// PrimerV1 is an oligo with its template placement.
type PrimerV1 struct {
	OligoV1
	Start int `json:"start"`
	End   int `json:"end"`
}

// PairMetricsV1 carries cross-oligo predictions.
type PairMetricsV1 struct {
	Heterodimer StructureV1 `json:"heterodimer"`
}

// PrimerPairV1 is one designed pair.
type PrimerPairV1 struct {
	PairNumber  int           `json:"pair_number"`
	JunctionPos int           `json:"junction_pos,omitempty"`
	Spanning    string        `json:"junction_spanning,omitempty"`
	Left        PrimerV1      `json:"left"`
	Right       PrimerV1      `json:"right"`
	ProductSize int           `json:"product_size"`
	Metrics     PairMetricsV1 `json:"pair_metrics"`
}

// DesignResponseV1 is the envelope of a pair-design request.
type DesignResponseV1 struct {
	DesignID string         `json:"design_id"`
	Mode     string         `json:"mode"`
	NumPairs int            `json:"num_pairs"`
	Pairs    []PrimerPairV1 `json:"primers"`
	Reason   string         `json:"reason,omitempty"`
	Explain  string         `json:"explain,omitempty"`
}

// FlankSideV1 is one side of a flanking design.
type FlankSideV1 struct {
	NumReturned int        `json:"num_returned"`
	Primers     []PrimerV1 `json:"primers"`
	Explain     string     `json:"explain,omitempty"`
}

// FlankingResponseV1 is the envelope of a flanking (WGA) design request.
type FlankingResponseV1 struct {
	DesignID string         `json:"design_id"`
	Mode     string         `json:"mode"`
	Forward  FlankSideV1    `json:"forward"`
	Reverse  FlankSideV1    `json:"reverse"`
	Metrics  *PairMetricsV1 `json:"pair_metrics,omitempty"`
}

func structureV1(s thermo.Structure) StructureV1 {
	return StructureV1{Found: s.Found, Tm: Round1(s.Tm), DG: Round1(s.DG)}
}

// OligoFromReport converts an analysis report, rounding Tm and GC.
func OligoFromReport(r thermo.Report) OligoV1 {
	return OligoV1{
		Sequence:  r.Sequence,
		Length:    r.Length,
		Tm:        Round1(r.Tm),
		GC:        Round1(r.GCPercent),
		Hairpin:   structureV1(r.Hairpin),
		Homodimer: structureV1(r.Homodimer),
	}
}

// PairMetricsFromReport converts cross-oligo metrics.
func PairMetricsFromReport(r thermo.PairReport) PairMetricsV1 {
	return PairMetricsV1{Heterodimer: structureV1(r.Heterodimer)}
}

func primerV1(p design.Primer) PrimerV1 {
	return PrimerV1{
		OligoV1: OligoFromReport(p.Report),
		Start:   p.Interval.Start,
		End:     p.Interval.End,
	}
}

// DesignResponse converts a pair-design result into the v1 envelope.
func DesignResponse(designID string, mode string, res *design.PairResult) DesignResponseV1 {
	out := DesignResponseV1{
		DesignID: designID,
		Mode:     mode,
		NumPairs: res.Count,
		Reason:   string(res.Reason),
		Explain:  res.Explain,
	}
	for _, p := range res.Pairs {
		out.Pairs = append(out.Pairs, PrimerPairV1{
			PairNumber:  p.PairNumber,
			JunctionPos: p.JunctionPos,
			Spanning:    p.Spanning,
			Left:        primerV1(p.Left),
			Right:       primerV1(p.Right),
			ProductSize: p.ProductSize,
			Metrics:     PairMetricsFromReport(p.Metrics),
		})
	}
	return out
}

func flankSideV1(s design.FlankSide) FlankSideV1 {
	out := FlankSideV1{NumReturned: s.NumReturned, Explain: s.Explain}
	for _, p := range s.Primers {
		out.Primers = append(out.Primers, primerV1(p))
	}
	return out
}

// FlankingResponse converts a flanking result into the v1 envelope.
func FlankingResponse(designID string, res *design.FlankingResult) FlankingResponseV1 {
	out := FlankingResponseV1{
		DesignID: designID,
		Mode:     "flanking",
		Forward:  flankSideV1(res.Forward),
		Reverse:  flankSideV1(res.Reverse),
	}
	if res.PairMetrics != nil {
		m := PairMetricsFromReport(*res.PairMetrics)
		out.Metrics = &m
	}
	return out
}

// AnalyzeResponseV1 is the manual primer analysis payload. Absent oligos
// are omitted.
type AnalyzeResponseV1 struct {
	Forward *OligoV1       `json:"forward,omitempty"`
	Reverse *OligoV1       `json:"reverse,omitempty"`
	Pair    *PairMetricsV1 `json:"pair,omitempty"`
}

// ManualDesignResponseV1 is a single constrained primer pick.
type ManualDesignResponseV1 struct {
	Design  *PrimerV1 `json:"design"`
	Explain string    `json:"explain,omitempty"`
}

// ManualDesignResponse converts a manual pick result.
func ManualDesignResponse(res *design.ManualResult) ManualDesignResponseV1 {
	out := ManualDesignResponseV1{Explain: res.Explain}
	if res.Primer != nil {
		p := primerV1(*res.Primer)
		out.Design = &p
	}
	return out
}

// ScoredComboV1 is one cross-pairing of two searched regions.
type ScoredComboV1 struct {
	ForwardSeq  string      `json:"forward_seq"`
	ForwardTm   float64     `json:"forward_tm"`
	ReverseSeq  string      `json:"reverse_seq"`
	ReverseTm   float64     `json:"reverse_tm"`
	TmDiff      float64     `json:"tm_diff"`
	Heterodimer StructureV1 `json:"heterodimer"`
	Score       float64     `json:"score"`
}

// FromSequenceResponseV1 is the envelope of a from-sequence design.
type FromSequenceResponseV1 struct {
	DesignID       string          `json:"design_id"`
	ForwardPrimers []OligoV1       `json:"forward_primers"`
	ReversePrimers []OligoV1       `json:"reverse_primers"`
	BestPairs      []ScoredComboV1 `json:"best_pairs"`
}

// FromSequenceResponse converts a from-sequence result.
func FromSequenceResponse(designID string, res *design.FromSequenceResult) FromSequenceResponseV1 {
	out := FromSequenceResponseV1{DesignID: designID}
	for _, p := range res.ForwardPrimers {
		out.ForwardPrimers = append(out.ForwardPrimers, OligoFromReport(p.Report))
	}
	for _, p := range res.ReversePrimers {
		out.ReversePrimers = append(out.ReversePrimers, OligoFromReport(p.Report))
	}
	for _, c := range res.BestPairs {
		out.BestPairs = append(out.BestPairs, ScoredComboV1{
			ForwardSeq:  c.ForwardSeq,
			ForwardTm:   Round1(c.ForwardTm),
			ReverseSeq:  c.ReverseSeq,
			ReverseTm:   Round1(c.ReverseTm),
			TmDiff:      Round1(c.TmDiff),
			Heterodimer: structureV1(c.Heterodimer),
			Score:       Round1(c.Score),
		})
	}
	return out
}
