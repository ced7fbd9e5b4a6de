package thermo

import (
	"math"
	"strings"
	"testing"
)

func TestTmBasics(t *testing.T) {
	cond := DefaultConditions()

	tmAT, _, _, err := Tm("ATATATATATATATATATAT", cond)
	if err != nil {
		t.Fatalf("Tm: %v", err)
	}
	tmGC, _, _, err := Tm("GCGCGCGCGCGCGCGCGCGC", cond)
	if err != nil {
		t.Fatalf("Tm: %v", err)
	}
	if tmGC <= tmAT {
		t.Fatalf("GC-rich Tm (%.1f) should exceed AT-rich Tm (%.1f)", tmGC, tmAT)
	}

	// A typical 20-mer should land in a plausible qPCR range.
	tm20, _, _, err := Tm("ACGTGCTAGCTAGGCTAACG", cond)
	if err != nil {
		t.Fatalf("Tm: %v", err)
	}
	if tm20 < 40 || tm20 > 80 {
		t.Fatalf("20-mer Tm out of plausible range: %.1f", tm20)
	}
}

func TestTmErrors(t *testing.T) {
	cond := DefaultConditions()
	if _, _, _, err := Tm("A", cond); err == nil {
		t.Fatal("expected error for 1-base sequence")
	}
	if _, _, _, err := Tm("ACGN", cond); err == nil {
		t.Fatal("expected error for N base")
	}
}

func TestTmSaltDependence(t *testing.T) {
	lo := DefaultConditions()
	lo.MonovalentM = 10e-3
	hi := DefaultConditions()
	hi.MonovalentM = 200e-3

	seq := "ACGTGCTAGCTAGGCTAACG"
	tmLo, _, _, _ := Tm(seq, lo)
	tmHi, _, _, _ := Tm(seq, hi)
	if tmHi <= tmLo {
		t.Fatalf("Tm should rise with salt: %.1f vs %.1f", tmLo, tmHi)
	}
}

func TestHairpin(t *testing.T) {
	cond := DefaultConditions()
	// Strong stem (8 bp) around a 4-base loop.
	hp := Hairpin("GCGCGCGCTTTTGCGCGCGC", cond)
	if !hp.Found {
		t.Fatal("expected hairpin structure")
	}
	if hp.DG >= 0 {
		t.Fatalf("stable hairpin should have negative dG, got %.2f", hp.DG)
	}
	// Homopolymer cannot fold back.
	if hp := Hairpin("AAAAAAAAAAAAAAAAAAAA", cond); hp.Found {
		t.Fatalf("unexpected hairpin in poly-A: %+v", hp)
	}
}

func TestDimers(t *testing.T) {
	cond := DefaultConditions()
	// Palindromic oligo dimerizes with itself over its full length.
	hd := Homodimer("ACGTACGTACGT", cond)
	if !hd.Found {
		t.Fatal("expected homodimer for palindromic sequence")
	}

	het := Heterodimer("AAAAAAGGGGGG", "CCCCCCTTTTTT", cond)
	if !het.Found {
		t.Fatal("expected heterodimer for complementary oligos")
	}
	if none := Heterodimer("AAAAAAAAAAAA", "AAAAAAAAAAAA", cond); none.Found {
		t.Fatalf("unexpected dimer between poly-A strands: %+v", none)
	}
}

func TestAnalyze(t *testing.T) {
	cond := DefaultConditions()
	rep, err := Analyze(" acgtgctagctaggctaacg ", cond)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Sequence != "ACGTGCTAGCTAGGCTAACG" || rep.Length != 20 {
		t.Fatalf("unexpected normalization: %+v", rep)
	}
	if math.Abs(rep.GCPercent-50.0) > 1e-9 {
		t.Fatalf("GC = %v", rep.GCPercent)
	}
	if _, err := Analyze("", cond); err == nil {
		t.Fatal("expected error for empty oligo")
	}
}

func TestAnalyzePair(t *testing.T) {
	cond := DefaultConditions()
	pr, err := AnalyzePair("AAAAAAGGGGGG", "CCCCCCTTTTTT", cond)
	if err != nil {
		t.Fatalf("AnalyzePair: %v", err)
	}
	if !pr.Heterodimer.Found {
		t.Fatalf("expected heterodimer: %+v", pr)
	}
}

func TestParseConc(t *testing.T) {
	cases := map[string]float64{
		"50mM":  50e-3,
		"250nM": 250e-9,
		"3uM":   3e-6,
		"1M":    1.0,
	}
	for in, want := range cases {
		got, err := ParseConc(in)
		if err != nil {
			t.Fatalf("ParseConc(%q): %v", in, err)
		}
		if math.Abs(got-want)/want > 1e-9 {
			t.Fatalf("ParseConc(%q) = %g, want %g", in, got, want)
		}
	}
	if _, err := ParseConc("50kg"); err == nil || !strings.Contains(err.Error(), "unknown unit") {
		t.Fatalf("expected unit error, got %v", err)
	}
}
