package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KowalskiBio/Primerool/core/dna"
	"github.com/KowalskiBio/Primerool/core/genomics"
	"github.com/KowalskiBio/Primerool/core/interval"
	"github.com/KowalskiBio/Primerool/core/oracle"
	"github.com/KowalskiBio/Primerool/core/thermo"
	"github.com/KowalskiBio/Primerool/internal/blast"
	"github.com/KowalskiBio/Primerool/internal/ensembl"
)

// fakeAnnotator serves canned annotation data.
type fakeAnnotator struct {
	species    string
	gene       *ensembl.Gene
	transcript *genomics.TranscriptInfo

	splicedExons string
	splicedCDS   string
	genomic      string
	up, down     string
}

func (f *fakeAnnotator) Species() string { return f.species }

func (f *fakeAnnotator) LookupGene(ctx context.Context, symbol string) (*ensembl.Gene, error) {
	if f.gene == nil || f.gene.Symbol != strings.ToUpper(strings.TrimSpace(symbol)) {
		return nil, fmt.Errorf("gene %s: %w", symbol, ensembl.ErrNotFound)
	}
	return f.gene, nil
}

func (f *fakeAnnotator) LookupTranscript(ctx context.Context, id string) (*genomics.TranscriptInfo, error) {
	if f.transcript == nil || f.transcript.ID != id {
		return nil, fmt.Errorf("transcript %s: %w", id, ensembl.ErrNotFound)
	}
	return f.transcript, nil
}

func (f *fakeAnnotator) SplicedSequence(ctx context.Context, t *genomics.TranscriptInfo, feat genomics.Feature) (string, error) {
	if feat == genomics.FeatureCDS {
		if f.splicedCDS == "" {
			return "", fmt.Errorf("transcript %s has no cds intervals", t.ID)
		}
		return f.splicedCDS, nil
	}
	return f.splicedExons, nil
}

func (f *fakeAnnotator) GenomicSequence(ctx context.Context, t *genomics.TranscriptInfo) (string, error) {
	return f.genomic, nil
}

func (f *fakeAnnotator) FlankingSequences(ctx context.Context, t *genomics.TranscriptInfo, upBP, downBP int, useCDS bool) (string, string, error) {
	up, down := f.up, f.down
	if upBP == 0 {
		up = ""
	}
	if downBP == 0 {
		down = ""
	}
	return up, down, nil
}

// stubOracle mirrors the deterministic fake used by the design tests.
type stubOracle struct {
	lefts, rights []oracle.Candidate
	explain       string
}

func (s *stubOracle) Analyze(seq string) (thermo.Report, error) {
	if _, err := dna.Validate(seq); err != nil {
		return thermo.Report{}, err
	}
	return thermo.Report{
		Sequence:  seq,
		Length:    len(seq),
		GCPercent: dna.GCPercent(seq),
		Tm:        55.0 + 0.25*float64(len(seq)),
	}, nil
}

func (s *stubOracle) AnalyzePair(fwd, rev string) (thermo.PairReport, error) {
	return thermo.PairReport{}, nil
}

func (s *stubOracle) Search(template string, which oracle.Which, c oracle.Constraints) (oracle.Result, error) {
	cands := s.rights
	if which == oracle.PickLeft {
		cands = s.lefts
	}
	return oracle.Result{Candidates: cands, Considered: 1, Explain: s.explain}, nil
}

type fakeIdentifier struct {
	gotQuery string
	hits     []blast.Hit
	err      error
}

func (f *fakeIdentifier) Run(ctx context.Context, sequence string) ([]blast.Hit, error) {
	f.gotQuery = sequence
	return f.hits, f.err
}

func testTranscript() *genomics.TranscriptInfo {
	exons := []interval.Interval{{Start: 1, End: 10}, {Start: 21, End: 30}}
	cds, utr5, utr3 := genomics.DeriveRegions(exons, interval.Interval{Start: 5, End: 24}, genomics.Plus)
	return &genomics.TranscriptInfo{
		ID:     "ENST0001",
		Name:   "GENE-201",
		Chrom:  "7",
		Strand: genomics.Plus,
		Exons:  exons,
		CDS:    cds,
		UTR5:   utr5,
		UTR3:   utr3,
	}
}

func testServer(t *testing.T, ann Annotator, ident Identifier, orc oracle.Oracle) *httptest.Server {
	t.Helper()
	if orc == nil {
		orc = &stubOracle{}
	}
	factory := func(species string) Annotator { return ann }
	s := New(factory, ident, orc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := srv.Client().Post(srv.URL+path, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestSearchGene(t *testing.T) {
	ann := &fakeAnnotator{
		species: "homo_sapiens",
		gene: &ensembl.Gene{
			Symbol: "TP53", ID: "ENSG0001", Chrom: "17", Strand: genomics.Minus,
			Transcripts: []ensembl.TranscriptSummary{
				{ID: "ENST0001", Name: "TP53-201", Strand: genomics.Minus, ExonCount: 11, Canonical: true},
			},
		},
	}
	srv := testServer(t, ann, nil, nil)

	resp, body := postJSON(t, srv, "/search_gene", map[string]any{"gene_name": "tp53"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "TP53", body["gene_name"])
	assert.Equal(t, "homo_sapiens", body["species"])
	ts := body["transcripts"].([]any)
	require.Len(t, ts, 1)
	first := ts[0].(map[string]any)
	assert.Equal(t, "TP53-201", first["name"])
	assert.Equal(t, true, first["is_canonical"])

	resp, body = postJSON(t, srv, "/search_gene", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "gene name")

	resp, _ = postJSON(t, srv, "/search_gene", map[string]any{"gene_name": "NOPE"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetSequenceSplicedWithUTR(t *testing.T) {
	ann := &fakeAnnotator{
		species:      "homo_sapiens",
		transcript:   testTranscript(),
		splicedExons: "ACGTACGTAAGGGGCCCCTT",
		splicedCDS:   "ACGTAAGGGG",
		up:           "TTTT",
		down:         "GGGG",
	}
	srv := testServer(t, ann, nil, nil)

	resp, body := postJSON(t, srv, "/get_sequence", map[string]any{
		"gene_name":     "GENE",
		"transcript_id": "ENST0001",
		"upstream_bp":   4,
		"downstream_bp": 4,
		"include_utr":   true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "ACGTACGTAAGGGGCCCCTT", body["gene_seq"])
	assert.Equal(t, body["gene_seq"], body["spliced_seq"])
	assert.Equal(t, "ACGTACGTAAGGGGCCCCTT", body["spliced_exons_seq"])
	assert.Equal(t, float64(20), body["gene_len"])
	assert.Equal(t, "TTTT", body["upstream_seq"])
	assert.Equal(t, float64(4), body["upstream_len"])

	junctions := body["junctions"].([]any)
	require.Len(t, junctions, 1)
	j := junctions[0].(map[string]any)
	assert.Equal(t, float64(10), j["pos"])
	assert.Equal(t, "Exon 1|2", j["label"])

	anns := body["annotations"].([]any)
	require.Len(t, anns, 2)
	first := anns[0].(map[string]any)
	assert.Equal(t, "cds", first["type"])
	assert.Equal(t, float64(4), first["start"])
	assert.Equal(t, float64(10), first["end"])
}

func TestGetSequenceCDSOnlyNonCoding(t *testing.T) {
	tr := testTranscript()
	tr.CDS = nil
	ann := &fakeAnnotator{transcript: tr, splicedExons: "ACGTACGTAAGGGGCCCCTT"}
	srv := testServer(t, ann, nil, nil)

	resp, body := postJSON(t, srv, "/get_sequence", map[string]any{
		"gene_name":     "GENE",
		"transcript_id": "ENST0001",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "no CDS")
}

func TestGetSequenceGenomicMode(t *testing.T) {
	ann := &fakeAnnotator{
		transcript:   testTranscript(),
		splicedExons: "ACGTACGTAAGGGGCCCCTT",
		splicedCDS:   "ACGTAAGGGG",
		genomic:      strings.Repeat("A", 30),
	}
	srv := testServer(t, ann, nil, nil)

	resp, body := postJSON(t, srv, "/get_sequence", map[string]any{
		"gene_name":       "GENE",
		"transcript_id":   "ENST0001",
		"include_introns": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(30), body["gene_len"])
	assert.Equal(t, "ACGTAAGGGG", body["spliced_seq"])
	// Exon and CDS overlays against the genomic span.
	anns := body["annotations"].([]any)
	require.Len(t, anns, 4)
}

func TestGetSequenceValidation(t *testing.T) {
	srv := testServer(t, &fakeAnnotator{}, nil, nil)
	resp, _ := postJSON(t, srv, "/get_sequence", map[string]any{"gene_name": "GENE"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, srv, "/get_sequence", map[string]any{
		"gene_name": "GENE", "transcript_id": "ENST9999",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDesignPrimersJunction(t *testing.T) {
	orc := &stubOracle{
		rights: []oracle.Candidate{
			{Sequence: "ACGTTGCAGCTAGGCATCAA", Start: 380, End: 400, Tm: 60.0},
		},
	}
	srv := testServer(t, &fakeAnnotator{}, nil, orc)

	template := strings.Repeat("ACGTTGCAGCTAGGCATCAA", 35)
	resp, body := postJSON(t, srv, "/design_primers", map[string]any{
		"mode":         "internal",
		"sequence":     template,
		"junction_pos": 300,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
	assert.Equal(t, "junction", body["mode"])
	assert.NotEmpty(t, body["design_id"])
	pairs := body["primers"].([]any)
	require.NotEmpty(t, pairs)
	first := pairs[0].(map[string]any)
	assert.Equal(t, float64(300), first["junction_pos"])
	assert.Equal(t, "left", first["junction_spanning"])
	assert.Greater(t, first["product_size"], float64(0))
}

func TestDesignPrimersJunctionValidation(t *testing.T) {
	srv := testServer(t, &fakeAnnotator{}, nil, &stubOracle{})

	resp, _ := postJSON(t, srv, "/design_primers", map[string]any{
		"mode": "internal", "sequence": "", "junction_pos": 10,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Explicit junction mode without a junction position.
	resp, body := postJSON(t, srv, "/design_primers", map[string]any{
		"mode": "junction", "sequence": strings.Repeat("ACGTTGCAGCTAGGCATCAA", 35),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "junction_pos")

	resp, _ = postJSON(t, srv, "/design_primers", map[string]any{
		"mode": "internal", "sequence": "ACGTACGT", "junction_pos": 100,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDesignPrimersJunctionNoPairs(t *testing.T) {
	// No right candidates -> zero pairs -> 404 with reason.
	srv := testServer(t, &fakeAnnotator{}, nil, &stubOracle{explain: "low tm 3"})
	template := strings.Repeat("ACGTTGCAGCTAGGCATCAA", 35)
	resp, body := postJSON(t, srv, "/design_primers", map[string]any{
		"mode": "internal", "sequence": template, "junction_pos": 300,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestDesignPrimersInternalMode(t *testing.T) {
	seq := strings.Repeat("ACGTTGCAGCTAGGCATCAA", 25)
	orc := &stubOracle{
		lefts:  []oracle.Candidate{{Sequence: seq[100:120], Start: 100, End: 120, Tm: 60.0}},
		rights: []oracle.Candidate{{Sequence: seq[300:320], Start: 300, End: 320, Tm: 60.0}},
	}
	srv := testServer(t, &fakeAnnotator{}, nil, orc)

	resp, body := postJSON(t, srv, "/design_primers", map[string]any{
		"mode":         "internal",
		"sequence":     seq,
		"target_start": 200,
		"target_end":   280,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
	assert.Equal(t, "internal", body["mode"])
	pairs := body["primers"].([]any)
	require.Len(t, pairs, 1)
	assert.Equal(t, float64(220), pairs[0].(map[string]any)["product_size"])
}

func TestDesignPrimersFlankingMode(t *testing.T) {
	up := strings.Repeat("ACGTTGCAGCTAGGCATCAA", 5)
	orc := &stubOracle{
		lefts:  []oracle.Candidate{{Sequence: up[60:80], Start: 60, End: 80, Tm: 60.0}},
		rights: []oracle.Candidate{{Sequence: up[20:40], Start: 20, End: 40, Tm: 60.0}},
	}
	srv := testServer(t, &fakeAnnotator{}, nil, orc)

	resp, body := postJSON(t, srv, "/design_primers", map[string]any{
		"mode":           "flanking",
		"upstream_seq":   up,
		"downstream_seq": up,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
	assert.Equal(t, "flanking", body["mode"])
	fwd := body["forward"].(map[string]any)
	assert.Equal(t, float64(1), fwd["num_returned"])

	resp, _ = postJSON(t, srv, "/design_primers", map[string]any{
		"mode": "flanking", "upstream_seq": up,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDesignManualPrimer(t *testing.T) {
	seq := strings.Repeat("ACGTTGCAGCTAGGCATCAA", 5)
	orc := &stubOracle{
		lefts: []oracle.Candidate{{Sequence: seq[10:30], Start: 10, End: 30, Tm: 60.0}},
	}
	srv := testServer(t, &fakeAnnotator{}, nil, orc)

	resp, body := postJSON(t, srv, "/design_manual_primer", map[string]any{
		"which": "left", "template": seq, "include_start": 0, "include_len": 60,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	d := body["design"].(map[string]any)
	assert.Equal(t, seq[10:30], d["sequence"])
	assert.Equal(t, float64(10), d["start"])

	resp, body = postJSON(t, srv, "/design_manual_primer", map[string]any{
		"which": "middle", "template": seq, "include_len": 60,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "left")
}

func TestAnalyzeManualPrimers(t *testing.T) {
	srv := testServer(t, &fakeAnnotator{}, nil, &stubOracle{})

	resp, body := postJSON(t, srv, "/analyze_manual_primers", map[string]any{
		"forward": "ACGTTGCAGCTAGGCATCAA",
		"reverse": "TTGATGCCTAGCTGCAACGT",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fwd := body["forward"].(map[string]any)
	assert.Equal(t, float64(20), fwd["length"])
	assert.Equal(t, float64(60), fwd["tm"])
	assert.NotNil(t, body["pair"])

	resp, _ = postJSON(t, srv, "/analyze_manual_primers", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, srv, "/analyze_manual_primers", map[string]any{"forward": "ACGTXXCAGCTAGGCATCAA"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDesignFromSequence(t *testing.T) {
	region := strings.Repeat("ACGTTGCAGCTAGGCATCAA", 3)
	orc := &stubOracle{
		lefts:  []oracle.Candidate{{Sequence: region[0:20], Start: 0, End: 20, Tm: 60.0}},
		rights: []oracle.Candidate{{Sequence: region[30:50], Start: 30, End: 50, Tm: 60.0}},
	}
	srv := testServer(t, &fakeAnnotator{}, nil, orc)

	resp, body := postJSON(t, srv, "/design_from_sequence", map[string]any{
		"forward_region": region, "reverse_region": region,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
	assert.NotEmpty(t, body["forward_primers"])
	assert.NotEmpty(t, body["best_pairs"])

	resp, _ = postJSON(t, srv, "/design_from_sequence", map[string]any{
		"forward_region": "ACGT", "reverse_region": region,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBlastSequenceAccessionHeuristic(t *testing.T) {
	ident := &fakeIdentifier{hits: []blast.Hit{{
		Organism: "Homo sapiens", Accession: "NM_002123", Title: "Homo sapiens (HLA-DQB1), mRNA",
	}}}
	srv := testServer(t, &fakeAnnotator{}, ident, nil)

	resp, body := postJSON(t, srv, "/blast_sequence", map[string]any{
		"sequence": ">query\nNR_132312.2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "NR_132312.2", ident.gotQuery)
	hits := body["hits"].([]any)
	require.Len(t, hits, 1)
	assert.Equal(t, "homo_sapiens", hits[0].(map[string]any)["ensembl_species"])
}

func TestBlastSequenceRawSequence(t *testing.T) {
	ident := &fakeIdentifier{hits: []blast.Hit{{Organism: "Mus musculus"}}}
	srv := testServer(t, &fakeAnnotator{}, ident, nil)

	raw := ">my query\nacgt\nACGTACGTACGTACGTACGT\n"
	resp, _ := postJSON(t, srv, "/blast_sequence", map[string]any{"sequence": raw})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ACGTACGTACGTACGTACGTACGT", ident.gotQuery)

	resp, body := postJSON(t, srv, "/blast_sequence", map[string]any{"sequence": "ACGTACGT"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "too short")
}

func TestBlastSequenceErrorMapping(t *testing.T) {
	seq := strings.Repeat("ACGTA", 10)

	ident := &fakeIdentifier{err: fmt.Errorf("poll: %w", blast.ErrTimeout)}
	srv := testServer(t, &fakeAnnotator{}, ident, nil)
	resp, _ := postJSON(t, srv, "/blast_sequence", map[string]any{"sequence": seq})
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)

	ident = &fakeIdentifier{err: fmt.Errorf("upstream: %w", blast.ErrSearchFailed)}
	srv = testServer(t, &fakeAnnotator{}, ident, nil)
	resp, _ = postJSON(t, srv, "/blast_sequence", map[string]any{"sequence": seq})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	ident = &fakeIdentifier{}
	srv = testServer(t, &fakeAnnotator{}, ident, nil)
	resp, _ = postJSON(t, srv, "/blast_sequence", map[string]any{"sequence": seq})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	srv = testServer(t, &fakeAnnotator{}, nil, nil)
	resp, _ = postJSON(t, srv, "/blast_sequence", map[string]any{"sequence": seq})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := testServer(t, &fakeAnnotator{}, nil, nil)
	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
