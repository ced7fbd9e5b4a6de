package server

import (
	"errors"
	"net/http"

	"github.com/KowalskiBio/Primerool/core/genomics"
	"github.com/KowalskiBio/Primerool/internal/apperr"
	"github.com/KowalskiBio/Primerool/internal/ensembl"
	"github.com/KowalskiBio/Primerool/pkg/api"
)

type searchGeneRequest struct {
	GeneName string `json:"gene_name"`
	Species  string `json:"species"`
}

func (s *Server) handleSearchGene(w http.ResponseWriter, r *http.Request) {
	var req searchGeneRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.GeneName == "" {
		s.writeError(w, apperr.NewInvalidRequest("please provide a gene name"))
		return
	}

	ann := s.annotate(req.Species)
	g, err := ann.LookupGene(r.Context(), req.GeneName)
	if err != nil {
		if errors.Is(err, ensembl.ErrNotFound) {
			s.writeError(w, apperr.NewNotFound("gene", req.GeneName+" ("+ann.Species()+")"))
			return
		}
		s.writeError(w, apperr.NewUpstream("ensembl", err))
		return
	}

	resp := api.GeneSearchResponseV1{
		GeneName: g.Symbol,
		GeneID:   g.ID,
		Species:  ann.Species(),
		Chrom:    g.Chrom,
		Strand:   string(g.Strand),
	}
	for _, t := range g.Transcripts {
		resp.Transcripts = append(resp.Transcripts, api.TranscriptSummaryV1{
			ID:        t.ID,
			Name:      t.Name,
			Biotype:   t.Biotype,
			Strand:    string(t.Strand),
			ExonCount: t.ExonCount,
			Canonical: t.Canonical,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type getSequenceRequest struct {
	GeneName     string `json:"gene_name"`
	TranscriptID string `json:"transcript_id"`
	Species      string `json:"species"`

	UpstreamBP   int `json:"upstream_bp"`
	DownstreamBP int `json:"downstream_bp"`

	IncludeIntrons bool `json:"include_introns"`
	IncludeUTR     bool `json:"include_utr"`
}

func (s *Server) handleGetSequence(w http.ResponseWriter, r *http.Request) {
	var req getSequenceRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.GeneName == "" || req.TranscriptID == "" {
		s.writeError(w, apperr.NewInvalidRequest("please provide gene_name and transcript_id"))
		return
	}

	ctx := r.Context()
	ann := s.annotate(req.Species)
	t, err := ann.LookupTranscript(ctx, req.TranscriptID)
	if err != nil {
		if errors.Is(err, ensembl.ErrNotFound) {
			s.writeError(w, apperr.NewNotFound("transcript", req.TranscriptID))
			return
		}
		s.writeError(w, apperr.NewUpstream("ensembl", err))
		return
	}
	if len(t.Exons) == 0 {
		s.writeError(w, apperr.NewUpstream("ensembl", errors.New("no exon coordinates for transcript "+req.TranscriptID)))
		return
	}

	up, down, err := ann.FlankingSequences(ctx, t, req.UpstreamBP, req.DownstreamBP, t.Coding())
	if err != nil {
		s.writeError(w, apperr.NewUpstream("ensembl", err))
		return
	}

	// The exon-spliced template always ships: junction primer design runs
	// against it regardless of the display mode.
	splicedExons, err := ann.SplicedSequence(ctx, t, genomics.FeatureExons)
	if err != nil {
		s.writeError(w, apperr.NewUpstream("ensembl", err))
		return
	}
	junctions := genomics.Junctions(t.Blocks(genomics.FeatureExons))

	displayFeature := genomics.FeatureCDS
	if req.IncludeUTR {
		displayFeature = genomics.FeatureExons
	}

	resp := api.SequenceResponseV1{
		GeneName:        req.GeneName,
		TranscriptID:    t.ID,
		TranscriptName:  t.Name,
		Chrom:           t.Chrom,
		Strand:          string(t.Strand),
		UpstreamSeq:     up,
		DownstreamSeq:   down,
		UpstreamLen:     len(up),
		DownstreamLen:   len(down),
		SplicedExonsSeq: splicedExons,
		Junctions:       api.JunctionsV1(junctions),
		Annotations:     []api.AnnotationV1{},
		IncludeIntrons:  req.IncludeIntrons,
		IncludeUTR:      req.IncludeUTR,
	}

	if req.IncludeIntrons {
		geneSeq, err := ann.GenomicSequence(ctx, t)
		if err != nil {
			s.writeError(w, apperr.NewUpstream("ensembl", err))
			return
		}
		resp.GeneSeq = geneSeq
		resp.Annotations = api.AnnotationsV1(t.GenomicAnnotations())

		// The spliced panel rides along; a coding transcript without UTR
		// display shows CDS only, and a missing CDS leaves it empty.
		if displayFeature == genomics.FeatureExons {
			resp.SplicedSeq = splicedExons
		} else if t.Coding() {
			spliced, err := ann.SplicedSequence(ctx, t, genomics.FeatureCDS)
			if err != nil {
				s.writeError(w, apperr.NewUpstream("ensembl", err))
				return
			}
			resp.SplicedSeq = spliced
		}
	} else {
		if displayFeature == genomics.FeatureCDS && !t.Coding() {
			s.writeError(w, apperr.NewInvalidRequest("CDS-only requested, but this transcript has no CDS (likely non-coding)"))
			return
		}
		geneSeq := splicedExons
		if displayFeature == genomics.FeatureCDS {
			if geneSeq, err = ann.SplicedSequence(ctx, t, genomics.FeatureCDS); err != nil {
				s.writeError(w, apperr.NewUpstream("ensembl", err))
				return
			}
		}
		resp.GeneSeq = geneSeq
		resp.SplicedSeq = geneSeq
		if req.IncludeUTR {
			resp.Annotations = api.AnnotationsV1(t.SplicedAnnotations())
		}
	}

	resp.GeneLen = len(resp.GeneSeq)
	s.writeJSON(w, http.StatusOK, resp)
}
