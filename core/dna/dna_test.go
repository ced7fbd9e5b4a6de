package dna

import "testing"

func TestRevComp(t *testing.T) {
	if got := RevComp("ACGT"); got != "ACGT" {
		t.Fatalf("RevComp(ACGT) = %q", got)
	}
	if got := RevComp("AACCGGTT"); got != "AACCGGTT" {
		t.Fatalf("RevComp palindrome broken: %q", got)
	}
	if got := RevComp("ATGC"); got != "GCAT" {
		t.Fatalf("RevComp(ATGC) = %q, want GCAT", got)
	}
	if got := RevComp("acGT"); got != "ACgt" {
		t.Fatalf("case not preserved: %q", got)
	}
}

// RevComp must be its own inverse under double application.
func TestRevCompInvolution(t *testing.T) {
	seqs := []string{"A", "AT", "ATGCGTTAACCGN", "GGGGCCCCATATAT", ""}
	for _, s := range seqs {
		if got := RevComp(RevComp(s)); got != s {
			t.Fatalf("RevComp(RevComp(%q)) = %q", s, got)
		}
	}
}

func TestClean(t *testing.T) {
	in := ">header line\nacg t\nNNXX--TT\n"
	if got := Clean(in); got != "ACGTNNTT" {
		t.Fatalf("Clean = %q", got)
	}
}

func TestValidate(t *testing.T) {
	if _, err := Validate(""); err == nil {
		t.Fatal("expected error for empty sequence")
	}
	if _, err := Validate("ACGU"); err == nil {
		t.Fatal("expected error for U")
	}
	s, err := Validate(" ac gt n ")
	if err != nil || s != "ACGTN" {
		t.Fatalf("Validate = %q, %v", s, err)
	}
}

func TestGCPercent(t *testing.T) {
	if gc := GCPercent("GGCC"); gc != 100 {
		t.Fatalf("GC(GGCC) = %v", gc)
	}
	if gc := GCPercent("ATAT"); gc != 0 {
		t.Fatalf("GC(ATAT) = %v", gc)
	}
	if gc := GCPercent("ATGC"); gc != 50 {
		t.Fatalf("GC(ATGC) = %v", gc)
	}
}
