// Package server exposes the JSON API: gene search, sequence retrieval
// with junctions and annotation overlays, the design strategies, manual
// primer analysis, and BLAST identification.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/KowalskiBio/Primerool/core/genomics"
	"github.com/KowalskiBio/Primerool/core/oracle"
	"github.com/KowalskiBio/Primerool/internal/apperr"
	"github.com/KowalskiBio/Primerool/internal/blast"
	"github.com/KowalskiBio/Primerool/internal/ensembl"
	"github.com/KowalskiBio/Primerool/pkg/api"
)

// Annotator is the per-species slice of the Ensembl client the handlers
// consume. *ensembl.Client satisfies it.
type Annotator interface {
	Species() string
	LookupGene(ctx context.Context, symbol string) (*ensembl.Gene, error)
	LookupTranscript(ctx context.Context, transcriptID string) (*genomics.TranscriptInfo, error)
	SplicedSequence(ctx context.Context, t *genomics.TranscriptInfo, f genomics.Feature) (string, error)
	GenomicSequence(ctx context.Context, t *genomics.TranscriptInfo) (string, error)
	FlankingSequences(ctx context.Context, t *genomics.TranscriptInfo, upstreamBP, downstreamBP int, useCDSAnchor bool) (up, down string, err error)
}

// AnnotatorFactory yields an Annotator for a species code; the empty
// string selects the default species.
type AnnotatorFactory func(species string) Annotator

// Identifier runs a sequence-identification search. *blast.Client
// satisfies it.
type Identifier interface {
	Run(ctx context.Context, sequence string) ([]blast.Hit, error)
}

// Server holds the handler dependencies.
type Server struct {
	annotate AnnotatorFactory
	identify Identifier
	oracle   oracle.Oracle
	log      *slog.Logger
}

// New wires a Server. identify may be nil, in which case the BLAST route
// reports the service as unavailable.
func New(annotate AnnotatorFactory, identify Identifier, orc oracle.Oracle, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{annotate: annotate, identify: identify, oracle: orc, log: log}
}

// Handler builds the chi router for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute)) // BLAST long-polls

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/search_gene", s.handleSearchGene)
	r.Post("/get_sequence", s.handleGetSequence)
	r.Post("/design_primers", s.handleDesignPrimers)
	r.Post("/design_manual_primer", s.handleDesignManualPrimer)
	r.Post("/analyze_manual_primers", s.handleAnalyzePrimers)
	r.Post("/design_from_sequence", s.handleDesignFromSequence)
	r.Post("/blast_sequence", s.handleBlastSequence)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) decode(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return apperr.NewInvalidRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("encoding response", "error", err)
	}
}

// writeError maps any error onto the JSON error body. Ensembl not-found
// and BLAST terminal errors get their proper statuses even when handlers
// pass them through untyped.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	switch {
	case errors.As(err, &ae):
	case errors.Is(err, ensembl.ErrNotFound):
		ae = apperr.NewNotFound("record", "see detail")
		ae.Message = err.Error()
	case errors.Is(err, blast.ErrTimeout):
		ae = apperr.NewTimeout("blast")
	case errors.Is(err, blast.ErrSearchFailed), errors.Is(err, blast.ErrUnknownRID):
		ae = apperr.NewUpstream("blast", err)
	default:
		s.log.Error("internal error", "error", err)
		ae = apperr.NewInternal(err)
	}
	s.writeJSON(w, ae.Status, api.ErrorV1{
		Error:   ae.Message,
		Code:    string(ae.Code),
		Details: ae.Details,
	})
}

func newDesignID() string { return uuid.NewString() }
