// Package dna holds nucleotide sequence helpers shared by the coordinate
// engine, the oracle, and the design strategies.
package dna

import (
	"fmt"
	"strings"
	"unicode"
)

var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = 'N'
	}
	pairs := map[byte]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A', 'N': 'N'}
	for b, c := range pairs {
		complement[b] = c
		complement[b+'a'-'A'] = c + 'a' - 'A'
	}
}

// Normalize removes whitespace and quotes and uppercases bases.
func Normalize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\'' || r == '"' {
			continue
		}
		out = append(out, unicode.ToUpper(r))
	}
	return string(out)
}

// Clean normalizes s and drops everything that is not A/C/G/T/N. FASTA
// header lines are removed before filtering.
func Clean(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, ">") {
			continue
		}
		for _, r := range Normalize(line) {
			switch r {
			case 'A', 'C', 'G', 'T', 'N':
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// Validate returns a normalized sequence or an error if any base is not
// A/C/G/T/N.
func Validate(raw string) (string, error) {
	s := Normalize(raw)
	if s == "" {
		return "", fmt.Errorf("empty sequence")
	}
	for i, r := range s {
		switch r {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			return "", fmt.Errorf("invalid base %q at %d; allowed: A C G T N", r, i+1)
		}
	}
	return s, nil
}

// RevComp returns the reverse complement of seq, preserving case.
// Unknown bases complement to N.
func RevComp(seq string) string {
	n := len(seq)
	if n == 0 {
		return ""
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = complement[seq[n-1-i]]
	}
	return string(out)
}

// GCPercent returns the G+C fraction of seq as a percentage (0 for empty).
func GCPercent(seq string) float64 {
	if seq == "" {
		return 0
	}
	gc := 0
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'G', 'g', 'C', 'c':
			gc++
		}
	}
	return 100.0 * float64(gc) / float64(len(seq))
}
