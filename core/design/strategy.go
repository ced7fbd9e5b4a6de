package design

import (
	"fmt"

	"github.com/KowalskiBio/Primerool/core/oracle"
)

// Mode is the closed set of pair-design strategies. Transport layers parse
// their mode strings once, at the boundary, into this enum.
type Mode int

const (
	ModeJunction Mode = iota
	ModeInternal
	ModeFlanking
)

func (m Mode) String() string {
	switch m {
	case ModeInternal:
		return "internal"
	case ModeFlanking:
		return "flanking"
	default:
		return "junction"
	}
}

// ParseMode maps a request mode string onto the enum. The original service
// folded junction requests under "internal" with a junction position, so
// that spelling is accepted for both.
func ParseMode(s string, hasJunction bool) (Mode, error) {
	switch s {
	case "junction":
		return ModeJunction, nil
	case "internal":
		if hasJunction {
			return ModeJunction, nil
		}
		return ModeInternal, nil
	case "flanking":
		return ModeFlanking, nil
	default:
		return 0, fmt.Errorf("unknown design mode %q", s)
	}
}

// Request is the union of strategy inputs; each strategy reads only its
// own fields.
type Request struct {
	// Junction mode.
	Template    string
	JunctionPos int
	Junction    JunctionConfig

	// Internal mode.
	Sequence    string
	TargetStart int
	TargetEnd   int

	// Flanking mode.
	Upstream    string
	Downstream  string
	FlankWindow int
}

// Response carries the outcome of whichever strategy ran. Exactly one of
// Pairs and Flanking is set.
type Response struct {
	Mode     Mode            `json:"mode"`
	Pairs    *PairResult     `json:"primers,omitempty"`
	Flanking *FlankingResult `json:"flanking,omitempty"`
}

// Strategy is the shared capability of all design modes: a request in,
// pairs or a structured zero-result out.
type Strategy interface {
	Design(req Request) (*Response, error)
}

// Strategies returns the mode dispatch table over one oracle.
func Strategies(orc oracle.Oracle) map[Mode]Strategy {
	return map[Mode]Strategy{
		ModeJunction: junctionStrategy{orc: orc},
		ModeInternal: internalStrategy{orc: orc},
		ModeFlanking: flankingStrategy{orc: orc},
	}
}

type junctionStrategy struct{ orc oracle.Oracle }

func (s junctionStrategy) Design(req Request) (*Response, error) {
	res, err := DesignJunctionPairs(s.orc, req.Template, req.JunctionPos, req.Junction)
	if err != nil {
		return nil, err
	}
	return &Response{Mode: ModeJunction, Pairs: res}, nil
}

type internalStrategy struct{ orc oracle.Oracle }

func (s internalStrategy) Design(req Request) (*Response, error) {
	res, err := DesignInternalPairs(s.orc, req.Sequence, req.TargetStart, req.TargetEnd)
	if err != nil {
		return nil, err
	}
	return &Response{Mode: ModeInternal, Pairs: res}, nil
}

type flankingStrategy struct{ orc oracle.Oracle }

func (s flankingStrategy) Design(req Request) (*Response, error) {
	res, err := DesignFlankingPrimers(s.orc, req.Upstream, req.Downstream, req.FlankWindow)
	if err != nil {
		return nil, err
	}
	return &Response{Mode: ModeFlanking, Flanking: res}, nil
}
