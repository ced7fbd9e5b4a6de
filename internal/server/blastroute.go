package server

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/KowalskiBio/Primerool/internal/apperr"
	"github.com/KowalskiBio/Primerool/internal/blast"
	"github.com/KowalskiBio/Primerool/pkg/api"
)

const (
	blastMinQuery = 20
	blastMaxQuery = 50000
)

// Accession pattern: 1-4 letters, optional underscore, 5+ digits, optional
// version ("NR_132312.2", "AL359314.14").
var accessionRe = regexp.MustCompile(`([A-Za-z]{1,4}_?[0-9]{5,}(?:\.[0-9]+)?)`)

// IUPAC nucleotide codes accepted in a raw query.
func isIUPAC(c rune) bool {
	return strings.ContainsRune("ACGTNRYSWKMBDHV", c)
}

// blastQuery decides whether the pasted input is an accession ID or a raw
// sequence, and normalizes it either way. FASTA headers are stripped first.
func blastQuery(raw string) (string, error) {
	var content []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ">") {
			continue
		}
		content = append(content, line)
	}
	joined := strings.Join(content, " ")

	if m := accessionRe.FindStringSubmatch(joined); m != nil && strings.ContainsAny(joined, "0123456789") {
		return m[1], nil
	}

	var sb strings.Builder
	for _, line := range content {
		for _, c := range strings.ToUpper(line) {
			if isIUPAC(c) {
				sb.WriteRune(c)
			}
		}
	}
	seq := sb.String()
	if len(seq) < blastMinQuery {
		return "", apperr.NewInvalidRequest("sequence too short (need at least 20 bp)")
	}
	if len(seq) > blastMaxQuery {
		return "", apperr.NewInvalidRequest("sequence too long (max 50,000 bp)")
	}
	return seq, nil
}

type blastRequest struct {
	Sequence string `json:"sequence"`
}

func (s *Server) handleBlastSequence(w http.ResponseWriter, r *http.Request) {
	var req blastRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if s.identify == nil {
		s.writeError(w, apperr.NewUpstreamBusy("blast"))
		return
	}

	query, err := blastQuery(req.Sequence)
	if err != nil {
		s.writeError(w, err)
		return
	}

	hits, err := s.identify.Run(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(hits) == 0 {
		ae := apperr.NewNotFound("matches", "blast")
		ae.Message = "no significant matches found"
		s.writeError(w, ae)
		return
	}

	resp := api.BlastResponseV1{}
	for _, h := range hits {
		resp.Hits = append(resp.Hits, api.BlastHitV1{
			Organism:       h.Organism,
			EnsemblSpecies: blast.EnsemblSpecies(h.Organism),
			GeneSymbol:     h.GeneSymbol,
			Accession:      h.Accession,
			Title:          h.Title,
			EValue:         h.EValue,
			BitScore:       h.BitScore,
			IdentityPct:    h.IdentityPct,
			QueryFrom:      h.QueryFrom,
			QueryTo:        h.QueryTo,
			HitFrom:        h.HitFrom,
			HitTo:          h.HitTo,
			QueryLen:       h.QueryLen,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}
