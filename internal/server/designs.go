package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/KowalskiBio/Primerool/core/design"
	"github.com/KowalskiBio/Primerool/core/dna"
	"github.com/KowalskiBio/Primerool/core/oracle"
	"github.com/KowalskiBio/Primerool/internal/apperr"
	"github.com/KowalskiBio/Primerool/pkg/api"
)

// designRequest is the union body of /design_primers; each mode reads its
// own fields. Pointer fields distinguish absent from zero.
type designRequest struct {
	Mode string `json:"mode"`

	Sequence      string `json:"sequence"`
	JunctionPos   *int   `json:"junction_pos"`
	OverlapMin    *int   `json:"junction_overlap_min"`
	OverlapMax    *int   `json:"junction_overlap_max"`
	AmpliconMin   *int   `json:"amplicon_min"`
	AmpliconMax   *int   `json:"amplicon_max"`
	LeftPad       *int   `json:"junction_left_pad"`
	RightPad      *int   `json:"junction_right_pad"`
	MaxCandidates *int   `json:"junction_max_candidates"`

	TargetStart int `json:"target_start"`
	TargetEnd   int `json:"target_end"`

	UpstreamSeq   string `json:"upstream_seq"`
	DownstreamSeq string `json:"downstream_seq"`
	FlankWindow   int    `json:"flank_window"`
}

func (s *Server) handleDesignPrimers(w http.ResponseWriter, r *http.Request) {
	var req designRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Mode == "" {
		req.Mode = "internal"
	}
	mode, err := design.ParseMode(req.Mode, req.JunctionPos != nil)
	if err != nil {
		s.writeError(w, apperr.NewInvalidRequest(err.Error()))
		return
	}

	dreq := design.Request{}
	switch mode {
	case design.ModeJunction:
		template := dna.Clean(req.Sequence)
		if template == "" {
			s.writeError(w, apperr.NewInvalidRequest("no template sequence provided"))
			return
		}
		if req.JunctionPos == nil {
			s.writeError(w, apperr.NewInvalidRequest("junction_pos is required for junction mode"))
			return
		}
		if *req.JunctionPos <= 0 || *req.JunctionPos >= len(template) {
			s.writeError(w, apperr.NewInvalidRequest("junction_pos out of range for provided sequence"))
			return
		}
		cfg := design.NewJunctionConfig()
		applyInt(&cfg.OverlapMin, req.OverlapMin)
		applyInt(&cfg.OverlapMax, req.OverlapMax)
		applyInt(&cfg.ProductMin, req.AmpliconMin)
		applyInt(&cfg.ProductMax, req.AmpliconMax)
		applyInt(&cfg.LeftPad, req.LeftPad)
		applyInt(&cfg.RightPad, req.RightPad)
		applyInt(&cfg.MaxCandidates, req.MaxCandidates)
		dreq.Template = template
		dreq.JunctionPos = *req.JunctionPos
		dreq.Junction = cfg
	case design.ModeInternal:
		if req.Sequence == "" {
			s.writeError(w, apperr.NewInvalidRequest("no sequence provided"))
			return
		}
		dreq.Sequence = req.Sequence
		dreq.TargetStart = req.TargetStart
		dreq.TargetEnd = req.TargetEnd
	case design.ModeFlanking:
		if req.UpstreamSeq == "" || req.DownstreamSeq == "" {
			s.writeError(w, apperr.NewInvalidRequest("no flanking sequences provided"))
			return
		}
		dreq.Upstream = req.UpstreamSeq
		dreq.Downstream = req.DownstreamSeq
		dreq.FlankWindow = req.FlankWindow
	}

	resp, err := design.Strategies(s.oracle)[mode].Design(dreq)
	if err != nil {
		s.writeError(w, apperr.NewInvalidRequest(err.Error()))
		return
	}

	if resp.Flanking != nil {
		s.writeFlanking(w, resp.Flanking)
		return
	}

	if resp.Pairs.Count == 0 {
		msg := "no primer pairs found; try different positions or relax constraints"
		if resp.Pairs.Reason != design.ReasonNone {
			msg = string(resp.Pairs.Reason)
		}
		ae := apperr.NewNotFound("primer pairs", mode.String())
		ae.Message = msg
		if resp.Pairs.Explain != "" {
			ae.Details["explain"] = resp.Pairs.Explain
		}
		s.writeError(w, ae)
		return
	}

	s.writeJSON(w, http.StatusOK, api.DesignResponse(newDesignID(), mode.String(), resp.Pairs))
}

func (s *Server) writeFlanking(w http.ResponseWriter, res *design.FlankingResult) {
	if res.Forward.NumReturned == 0 || res.Reverse.NumReturned == 0 {
		var details []string
		if res.Forward.NumReturned == 0 {
			details = append(details, sideDetail("forward", res.Forward.Explain))
		}
		if res.Reverse.NumReturned == 0 {
			details = append(details, sideDetail("reverse", res.Reverse.Explain))
		}
		ae := apperr.NewNotFound("primers", "flanking")
		ae.Message = "no primers found: " + strings.Join(details, " | ")
		s.writeError(w, ae)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FlankingResponse(newDesignID(), res))
}

func sideDetail(side, explain string) string {
	if explain == "" {
		return side + ": no candidates"
	}
	return fmt.Sprintf("%s: %s", side, explain)
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

type manualDesignRequest struct {
	Which        string `json:"which"`
	Template     string `json:"template"`
	IncludeStart int    `json:"include_start"`
	IncludeLen   int    `json:"include_len"`
}

func (s *Server) handleDesignManualPrimer(w http.ResponseWriter, r *http.Request) {
	var req manualDesignRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var which oracle.Which
	switch req.Which {
	case "left":
		which = oracle.PickLeft
	case "right":
		which = oracle.PickRight
	default:
		s.writeError(w, apperr.NewInvalidRequest("which must be 'left' or 'right'"))
		return
	}
	if req.Template == "" || req.IncludeLen <= 0 {
		s.writeError(w, apperr.NewInvalidRequest("no template/include region provided"))
		return
	}

	res, err := design.DesignOnePrimer(s.oracle, req.Template, req.IncludeStart, req.IncludeLen, which)
	if err != nil {
		s.writeError(w, apperr.NewInvalidRequest(err.Error()))
		return
	}
	s.writeJSON(w, http.StatusOK, api.ManualDesignResponse(res))
}

type analyzeRequest struct {
	Forward string `json:"forward"`
	Reverse string `json:"reverse"`
}

func (s *Server) handleAnalyzePrimers(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	fwd := strings.TrimSpace(req.Forward)
	rev := strings.TrimSpace(req.Reverse)
	if fwd == "" && rev == "" {
		s.writeError(w, apperr.NewInvalidRequest("provide at least one of forward/reverse"))
		return
	}

	var resp api.AnalyzeResponseV1
	if fwd != "" {
		rep, err := s.oracle.Analyze(fwd)
		if err != nil {
			s.writeError(w, apperr.NewInvalidRequest("forward: "+err.Error()))
			return
		}
		o := api.OligoFromReport(rep)
		resp.Forward = &o
	}
	if rev != "" {
		rep, err := s.oracle.Analyze(rev)
		if err != nil {
			s.writeError(w, apperr.NewInvalidRequest("reverse: "+err.Error()))
			return
		}
		o := api.OligoFromReport(rep)
		resp.Reverse = &o
	}
	if fwd != "" && rev != "" {
		rep, err := s.oracle.AnalyzePair(fwd, rev)
		if err != nil {
			s.writeError(w, apperr.NewInvalidRequest(err.Error()))
			return
		}
		m := api.PairMetricsFromReport(rep)
		resp.Pair = &m
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type fromSequenceRequest struct {
	ForwardRegion string `json:"forward_region"`
	ReverseRegion string `json:"reverse_region"`
}

func (s *Server) handleDesignFromSequence(w http.ResponseWriter, r *http.Request) {
	var req fromSequenceRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	res, err := design.DesignFromRegions(s.oracle, req.ForwardRegion, req.ReverseRegion)
	if err != nil {
		s.writeError(w, apperr.NewInvalidRequest(err.Error()))
		return
	}
	if res.Empty() {
		var details []string
		if len(res.ForwardPrimers) == 0 {
			details = append(details, sideDetail("forward", res.ForwardExplain))
		}
		if len(res.ReversePrimers) == 0 {
			details = append(details, sideDetail("reverse", res.ReverseExplain))
		}
		ae := apperr.NewNotFound("primers", "from_sequence")
		ae.Message = "no primers found: " + strings.Join(details, " | ")
		s.writeError(w, ae)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromSequenceResponse(newDesignID(), res))
}
