// Package thermo computes oligonucleotide duplex thermodynamics: melting
// temperature, hairpin, homodimer and heterodimer estimates.
package thermo

import (
	"fmt"
	"math"
	"strings"
)

// Conditions holds the ionic and concentration parameters of a reaction.
// All values are mol/L.
type Conditions struct {
	MonovalentM float64 // Na+/K+
	MagnesiumM  float64
	DNTPM       float64
	PrimerM     float64
}

// DefaultConditions mirrors common qPCR buffer assumptions:
// 50 mM monovalent, 1.5 mM Mg2+, 0.2 mM dNTP, 50 nM primer.
func DefaultConditions() Conditions {
	return Conditions{
		MonovalentM: 50e-3,
		MagnesiumM:  1.5e-3,
		DNTPM:       0.2e-3,
		PrimerM:     50e-9,
	}
}

// EffectiveMonovalent folds free magnesium into a single Na+-equivalent for
// the salt correction. dNTPs chelate Mg2+, so only the excess counts.
func (c Conditions) EffectiveMonovalent() float64 {
	mg := c.MagnesiumM - c.DNTPM
	if mg < 0 {
		mg = 0
	}
	na := c.MonovalentM
	if mg > 0 {
		na += 3.8 * math.Sqrt(mg)
	}
	return na
}

// ParseConc parses "50mM", "250nM", "3uM" into mol/L.
func ParseConc(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	unit := ""
	val := 0.0
	if _, err := fmt.Sscanf(s, "%f%s", &val, &unit); err != nil {
		return 0, fmt.Errorf("invalid conc %q: %w", s, err)
	}
	switch unit {
	case "m", "":
		return val, nil
	case "mm":
		return val * 1e-3, nil
	case "um", "μm":
		return val * 1e-6, nil
	case "nm":
		return val * 1e-9, nil
	default:
		return 0, fmt.Errorf("unknown unit %q in %q", unit, s)
	}
}
