// Package ensembl is the annotation and sequence client for the Ensembl
// REST API. All requests are paced below the public rate limit and the
// lookup endpoints are cached, so browsing transcripts of one gene does
// not hammer the service.
package ensembl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/KowalskiBio/Primerool/core/dna"
	"github.com/KowalskiBio/Primerool/core/genomics"
	"github.com/KowalskiBio/Primerool/core/interval"
	"github.com/KowalskiBio/Primerool/internal/lookupcache"
)

// ErrNotFound marks an unknown gene symbol, transcript ID, or region.
var ErrNotFound = errors.New("ensembl: not found")

const (
	// DefaultSpecies is assumed when a request names none.
	DefaultSpecies = "homo_sapiens"

	// The public API allows 15 req/s; ~14 req/s stays safe.
	defaultMinInterval = 70 * time.Millisecond

	defaultCacheCap = 256
	requestTimeout  = 30 * time.Second
)

// TranscriptSummary is one transcript row of a gene lookup.
type TranscriptSummary struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Biotype   string          `json:"biotype"`
	Strand    genomics.Strand `json:"strand"`
	ExonCount int             `json:"exon_count"`
	Canonical bool            `json:"is_canonical"`
}

// Gene is the result of a symbol lookup.
type Gene struct {
	Symbol      string              `json:"gene_name"`
	ID          string              `json:"gene_id"`
	Chrom       string              `json:"chrom"`
	Strand      genomics.Strand     `json:"strand"`
	Start       int                 `json:"start"`
	End         int                 `json:"end"`
	Transcripts []TranscriptSummary `json:"transcripts"`
}

// Options configures a Client. Zero values select the public endpoint,
// default pacing, and default cache size.
type Options struct {
	BaseURL     string
	Species     string
	HTTPClient  *http.Client
	MinInterval time.Duration
	CacheCap    int
	Logger      *slog.Logger
}

type regionKey struct {
	species string
	chrom   string
	start   int
	end     int
}

// Client talks to one Ensembl REST endpoint. Safe for concurrent use.
type Client struct {
	baseURL  string
	species  string
	cacheCap int
	hc       *http.Client
	limiter  *rate.Limiter
	log      *slog.Logger

	genes       *lookupcache.Cache[string, *Gene]
	transcripts *lookupcache.Cache[string, *genomics.TranscriptInfo]
	regions     *lookupcache.Cache[regionKey, string]
}

// New returns a Client for opts.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://rest.ensembl.org"
	}
	if opts.Species == "" {
		opts.Species = DefaultSpecies
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: requestTimeout}
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = defaultMinInterval
	}
	if opts.CacheCap <= 0 {
		opts.CacheCap = defaultCacheCap
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		species:     opts.Species,
		cacheCap:    opts.CacheCap,
		hc:          opts.HTTPClient,
		limiter:     rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		log:         opts.Logger,
		genes:       lookupcache.New[string, *Gene](opts.CacheCap),
		transcripts: lookupcache.New[string, *genomics.TranscriptInfo](opts.CacheCap),
		regions:     lookupcache.New[regionKey, string](opts.CacheCap),
	}
}

// Species returns the species the client queries by default.
func (c *Client) Species() string { return c.species }

// ForSpecies returns a client querying sp. The transport, pacing, and the
// ID-keyed caches are shared with the receiver; only the symbol cache is
// fresh, since gene symbols resolve per species. Transcript IDs and region
// keys already carry their species.
func (c *Client) ForSpecies(sp string) *Client {
	sp = strings.TrimSpace(sp)
	if sp == "" || sp == c.species {
		return c
	}
	clone := *c
	clone.species = sp
	clone.genes = lookupcache.New[string, *Gene](c.cacheCap)
	return &clone
}

// lookupPayload covers both gene and transcript lookups; Ensembl nests
// transcripts under genes with the same shape.
type lookupPayload struct {
	ID            string          `json:"id"`
	ObjectType    string          `json:"object_type"`
	DisplayName   string          `json:"display_name"`
	SeqRegionName string          `json:"seq_region_name"`
	Strand        int             `json:"strand"`
	Start         int             `json:"start"`
	End           int             `json:"end"`
	Biotype       string          `json:"biotype"`
	IsCanonical   int             `json:"is_canonical"`
	Transcript    []lookupPayload `json:"Transcript"`
	Exon          []struct {
		Start int `json:"start"`
		End   int `json:"end"`
	} `json:"Exon"`
	Translation *struct {
		Start int `json:"start"`
		End   int `json:"end"`
	} `json:"Translation"`
}

type sequencePayload struct {
	Seq string `json:"seq"`
}

func strandOf(n int) genomics.Strand {
	if n == -1 {
		return genomics.Minus
	}
	return genomics.Plus
}

// LookupGene resolves a gene symbol to its transcript list.
// GET /lookup/symbol/{species}/{symbol}?expand=1
func (c *Client) LookupGene(ctx context.Context, symbol string) (*Gene, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty gene symbol")
	}
	return c.genes.GetOrFill(symbol, func() (*Gene, error) {
		var data lookupPayload
		if err := c.getJSON(ctx, "/lookup/symbol/"+c.species+"/"+url.PathEscape(symbol), url.Values{"expand": {"1"}}, &data); err != nil {
			return nil, err
		}
		if data.ObjectType != "Gene" {
			return nil, fmt.Errorf("%q resolves to a %s: %w", symbol, data.ObjectType, ErrNotFound)
		}
		g := &Gene{
			Symbol: symbol,
			ID:     data.ID,
			Chrom:  data.SeqRegionName,
			Strand: strandOf(data.Strand),
			Start:  data.Start,
			End:    data.End,
		}
		for _, t := range data.Transcript {
			name := t.DisplayName
			if name == "" {
				name = t.ID
			}
			g.Transcripts = append(g.Transcripts, TranscriptSummary{
				ID:        t.ID,
				Name:      name,
				Biotype:   t.Biotype,
				Strand:    strandOf(t.Strand),
				ExonCount: len(t.Exon),
				Canonical: t.IsCanonical != 0,
			})
		}
		return g, nil
	})
}

// LookupTranscript fetches the exon structure of one transcript and
// derives its CDS and UTR segments from the translation bounds.
// GET /lookup/id/{id}?expand=1
func (c *Client) LookupTranscript(ctx context.Context, transcriptID string) (*genomics.TranscriptInfo, error) {
	transcriptID = strings.TrimSpace(transcriptID)
	if transcriptID == "" {
		return nil, fmt.Errorf("empty transcript id")
	}
	return c.transcripts.GetOrFill(transcriptID, func() (*genomics.TranscriptInfo, error) {
		var data lookupPayload
		if err := c.getJSON(ctx, "/lookup/id/"+url.PathEscape(transcriptID), url.Values{"expand": {"1"}}, &data); err != nil {
			return nil, err
		}

		name := data.DisplayName
		if name == "" {
			name = transcriptID
		}
		info := &genomics.TranscriptInfo{
			ID:     transcriptID,
			Name:   name,
			Chrom:  data.SeqRegionName,
			Strand: strandOf(data.Strand),
		}
		for _, ex := range data.Exon {
			info.Exons = append(info.Exons, interval.Interval{Start: ex.Start, End: ex.End})
		}
		sort.Slice(info.Exons, func(i, j int) bool { return info.Exons[i].Start < info.Exons[j].Start })

		if tr := data.Translation; tr != nil && tr.Start > 0 && tr.End > 0 {
			info.CDS, info.UTR5, info.UTR3 = genomics.DeriveRegions(
				info.Exons,
				interval.Interval{Start: tr.Start, End: tr.End},
				info.Strand,
			)
		}
		return info, nil
	})
}

// SequenceByID fetches a sequence for an Ensembl ID. seqType is one of
// "genomic", "cdna", "cds".
// GET /sequence/id/{id}?type={type}
func (c *Client) SequenceByID(ctx context.Context, id, seqType string) (string, error) {
	var data sequencePayload
	if err := c.getJSON(ctx, "/sequence/id/"+url.PathEscape(id), url.Values{"type": {seqType}}, &data); err != nil {
		return "", err
	}
	return dna.Normalize(data.Seq), nil
}

// RegionSequence fetches the forward-strand sequence of a genomic region,
// 1-based inclusive. An inverted region yields the empty string.
// GET /sequence/region/{species}/{chrom}:{start}..{end}:1
func (c *Client) RegionSequence(ctx context.Context, chrom string, start, end int) (string, error) {
	if end < start {
		return "", nil
	}
	key := regionKey{species: c.species, chrom: chrom, start: start, end: end}
	return c.regions.GetOrFill(key, func() (string, error) {
		region := fmt.Sprintf("%s:%d..%d:1", chrom, start, end)
		var data sequencePayload
		if err := c.getJSON(ctx, "/sequence/region/"+c.species+"/"+region, nil, &data); err != nil {
			return "", err
		}
		return dna.Normalize(data.Seq), nil
	})
}

// SplicedSequence concatenates the transcript's exon (or CDS) sequences in
// genomic order and reverse-complements the result for minus-strand
// transcripts, yielding the mature 5'->3' sequence.
func (c *Client) SplicedSequence(ctx context.Context, t *genomics.TranscriptInfo, f genomics.Feature) (string, error) {
	ivs := t.FeatureIntervals(f)
	if len(ivs) == 0 {
		return "", fmt.Errorf("transcript %s has no %s intervals", t.ID, f)
	}
	var sb strings.Builder
	for _, iv := range ivs {
		seq, err := c.RegionSequence(ctx, t.Chrom, iv.Start, iv.End)
		if err != nil {
			return "", fmt.Errorf("fetching %s %d..%d: %w", t.Chrom, iv.Start, iv.End, err)
		}
		sb.WriteString(seq)
	}
	seq := sb.String()
	if t.Strand == genomics.Minus {
		seq = dna.RevComp(seq)
	}
	return seq, nil
}

// GenomicSequence fetches the transcript's full genomic span, introns
// included, oriented 5'->3' along the transcript.
func (c *Client) GenomicSequence(ctx context.Context, t *genomics.TranscriptInfo) (string, error) {
	span, ok := t.ExonSpan()
	if !ok {
		return "", fmt.Errorf("transcript %s has no exons", t.ID)
	}
	seq, err := c.RegionSequence(ctx, t.Chrom, span.Start, span.End)
	if err != nil {
		return "", err
	}
	if t.Strand == genomics.Minus {
		seq = dna.RevComp(seq)
	}
	return seq, nil
}

// FlankingSequences fetches the sequences upstream and downstream of the
// transcript anchor, oriented along transcript direction. A zero bp count
// yields an empty string for that side.
func (c *Client) FlankingSequences(ctx context.Context, t *genomics.TranscriptInfo, upstreamBP, downstreamBP int, useCDSAnchor bool) (up, down string, err error) {
	upR, downR := t.FlankRegions(upstreamBP, downstreamBP, useCDSAnchor)
	if up, err = c.fetchFlank(ctx, t.Chrom, upR); err != nil {
		return "", "", fmt.Errorf("upstream flank: %w", err)
	}
	if down, err = c.fetchFlank(ctx, t.Chrom, downR); err != nil {
		return "", "", fmt.Errorf("downstream flank: %w", err)
	}
	return up, down, nil
}

func (c *Client) fetchFlank(ctx context.Context, chrom string, fr genomics.FlankRegion) (string, error) {
	if fr.Empty() {
		return "", nil
	}
	seq, err := c.RegionSequence(ctx, chrom, fr.Region.Start, fr.Region.End)
	if err != nil {
		return "", err
	}
	if fr.RevComp {
		seq = dna.RevComp(seq)
	}
	return seq, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := c.do(ctx, path, params)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := retryDelay(resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		c.log.Warn("ensembl rate limited, retrying once", "path", path, "retry_after", retryAfter)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryAfter):
		}
		if resp, err = c.do(ctx, path, params); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ensembl %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ensembl %s: %w", path, err)
	}
	return resp, nil
}

func retryDelay(header string) time.Duration {
	if secs, err := strconv.ParseFloat(header, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return time.Second
}
