// pkg/api/sequence_v1.go
package api

import (
	"github.com/KowalskiBio/Primerool/core/genomics"
)

// TranscriptSummaryV1 is one row of a gene search response.
type TranscriptSummaryV1 struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Biotype   string `json:"biotype,omitempty"`
	Strand    string `json:"strand"`
	ExonCount int    `json:"exon_count"`
	Canonical bool   `json:"is_canonical"`
}

// GeneSearchResponseV1 lists a gene's transcripts.
type GeneSearchResponseV1 struct {
	GeneName    string                `json:"gene_name"`
	GeneID      string                `json:"gene_id"`
	Species     string                `json:"species"`
	Chrom       string                `json:"chrom"`
	Strand      string                `json:"strand"`
	Transcripts []TranscriptSummaryV1 `json:"transcripts"`
}

// JunctionV1 is an exon-exon boundary in spliced coordinates.
type JunctionV1 struct {
	Index int    `json:"index"`
	Pos   int    `json:"pos"`
	Label string `json:"label"`
}

// AnnotationV1 is a feature overlay on the display sequence, 0-based
// end-exclusive.
type AnnotationV1 struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type"`
}

// SequenceResponseV1 is the full sequence-retrieval payload: flanks,
// display sequence, the always-computed exon-spliced template, junctions,
// and feature overlays.
type SequenceResponseV1 struct {
	GeneName       string `json:"gene_name"`
	TranscriptID   string `json:"transcript_id"`
	TranscriptName string `json:"transcript_name"`
	Chrom          string `json:"chrom"`
	Strand         string `json:"strand"`

	UpstreamLen   int `json:"upstream_len"`
	GeneLen       int `json:"gene_len"`
	DownstreamLen int `json:"downstream_len"`

	UpstreamSeq   string `json:"upstream_seq"`
	GeneSeq       string `json:"gene_seq"`
	DownstreamSeq string `json:"downstream_seq"`

	SplicedSeq      string `json:"spliced_seq"`
	SplicedExonsSeq string `json:"spliced_exons_seq"`

	Junctions   []JunctionV1   `json:"junctions"`
	Annotations []AnnotationV1 `json:"annotations"`

	IncludeIntrons bool `json:"include_introns"`
	IncludeUTR     bool `json:"include_utr"`
}

// JunctionsV1 converts the coordinate engine's junction list.
func JunctionsV1(js []genomics.Junction) []JunctionV1 {
	out := make([]JunctionV1, 0, len(js))
	for _, j := range js {
		out = append(out, JunctionV1{Index: j.Index, Pos: j.Pos, Label: j.Label})
	}
	return out
}

// AnnotationsV1 converts feature overlays.
func AnnotationsV1(anns []genomics.Annotation) []AnnotationV1 {
	out := make([]AnnotationV1, 0, len(anns))
	for _, a := range anns {
		out = append(out, AnnotationV1{Start: a.Start, End: a.End, Type: a.Type})
	}
	return out
}

// BlastHitV1 is one sequence-identification hit enriched with the Ensembl
// species code.
type BlastHitV1 struct {
	Organism       string  `json:"organism"`
	EnsemblSpecies string  `json:"ensembl_species"`
	GeneSymbol     string  `json:"gene_symbol,omitempty"`
	Accession      string  `json:"accession"`
	Title          string  `json:"title"`
	EValue         float64 `json:"evalue"`
	BitScore       float64 `json:"bit_score"`
	IdentityPct    float64 `json:"identity_pct"`
	QueryFrom      int     `json:"query_from"`
	QueryTo        int     `json:"query_to"`
	HitFrom        int     `json:"hit_from"`
	HitTo          int     `json:"hit_to"`
	QueryLen       int     `json:"query_len"`
}

// BlastResponseV1 wraps the hit list.
type BlastResponseV1 struct {
	Hits []BlastHitV1 `json:"hits"`
}

// ErrorV1 is the JSON error body.
type ErrorV1 struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}
