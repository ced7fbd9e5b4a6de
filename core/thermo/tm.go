package thermo

import (
	"errors"
	"math"
	"strings"
)

func selfComplementary(s string) bool {
	n := len(s)
	for i := 0; i < n; i++ {
		if !isWC(s[i], s[n-1-i]) {
			return false
		}
	}
	return true
}

// Tm returns the nearest-neighbor melting temperature (°C) of the oligo
// against its perfect complement, with salt correction, plus the summed
// enthalpy (kcal/mol) and entropy (cal/K/mol).
func Tm(primer5to3 string, cond Conditions) (tmC, dH, dS float64, _ error) {
	s := strings.ToUpper(strings.TrimSpace(primer5to3))
	if len(s) < 2 {
		return 0, 0, 0, errors.New("sequence too short")
	}
	dH = initDH
	dS = initDS
	for i := 0; i < len(s)-1; i++ {
		dh, okH := nnDH[s[i:i+2]]
		ds, okS := nnDS[s[i:i+2]]
		if !okH || !okS {
			return 0, 0, 0, errors.New("invalid base (need A/C/G/T)")
		}
		dH += dh
		dS += ds
	}
	self := selfComplementary(s)
	if self {
		dS += symmetryDS
	}
	naEff := cond.EffectiveMonovalent()
	if naEff <= 0 {
		naEff = 1e-6
	}
	dS += 0.368 * float64(len(s)-1) * math.Log(naEff)

	ct := math.Max(cond.PrimerM, 1e-12)
	cfactor := 4.0
	if self {
		cfactor = 1.0
	}
	den := dS + Rcal*math.Log(ct/cfactor)
	tmK := (dH*1000.0)/den + 273.15
	return tmK - 273.15, dH, dS, nil
}

// DeltaGAt returns ΔG (kcal/mol) for the given enthalpy/entropy at tempC.
func DeltaGAt(dHkcal, dScal, tempC float64) float64 {
	tK := tempC + 273.15
	return dHkcal - tK*dScal/1000.0
}

func isWC(p, t byte) bool {
	switch p {
	case 'A', 'a':
		return t == 'T' || t == 't'
	case 'T', 't':
		return t == 'A' || t == 'a'
	case 'C', 'c':
		return t == 'G' || t == 'g'
	case 'G', 'g':
		return t == 'C' || t == 'c'
	default:
		return false
	}
}
