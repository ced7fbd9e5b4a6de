// Package blast identifies unknown nucleotide sequences through the NCBI
// BLAST URL API: submit, poll for completion, then parse the XML hit list
// into organism, gene symbol, and accession guesses.
package blast

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrSearchFailed marks a job NCBI reported as FAILED.
	ErrSearchFailed = errors.New("blast: search failed")
	// ErrUnknownRID marks an expired or invalid request ID.
	ErrUnknownRID = errors.New("blast: RID unknown or expired")
	// ErrTimeout marks a job that did not finish within the poll budget.
	ErrTimeout = errors.New("blast: search did not complete in time")
)

// NCBI usage policy: at least 10s between polls of the same RID.
const (
	DefaultPollInterval = 10 * time.Second
	DefaultMaxWait      = 180 * time.Second

	defaultDatabase    = "nt"
	defaultHitlistSize = 10
	toolName           = "primerool"
)

var (
	ridRe  = regexp.MustCompile(`RID = (\S+)`)
	rtoeRe = regexp.MustCompile(`RTOE = (\d+)`)
	// Gene symbols in hit titles appear parenthesized, hyphens and dots
	// included ("(HLA-DQB1) gene", "(TRIM2.1), mRNA").
	geneRe = regexp.MustCompile(`\(([\w\-\.]+)\)`)
)

// Job identifies a submitted search.
type Job struct {
	RID string `json:"rid"`
	// RTOE is NCBI's estimated time to completion in seconds.
	RTOE int `json:"rtoe"`
}

// Hit is one parsed BLAST hit with its best-scoring segment.
type Hit struct {
	Organism    string  `json:"organism"`
	GeneSymbol  string  `json:"gene_symbol,omitempty"`
	Accession   string  `json:"accession"`
	Title       string  `json:"title"`
	EValue      float64 `json:"evalue"`
	BitScore    float64 `json:"bit_score"`
	IdentityPct float64 `json:"identity_pct"`
	QueryFrom   int     `json:"query_from"`
	QueryTo     int     `json:"query_to"`
	HitFrom     int     `json:"hit_from"`
	HitTo       int     `json:"hit_to"`
	QueryLen    int     `json:"query_len"`
}

// Options configures a Client. Zero values select the public endpoint and
// policy-compliant pacing.
type Options struct {
	BaseURL      string
	Database     string
	HitlistSize  int
	PollInterval time.Duration
	MaxWait      time.Duration
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client runs searches against one BLAST endpoint.
type Client struct {
	baseURL      string
	database     string
	hitlistSize  int
	pollInterval time.Duration
	maxWait      time.Duration
	hc           *http.Client
	log          *slog.Logger
}

// New returns a Client for opts.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://blast.ncbi.nlm.nih.gov/Blast.cgi"
	}
	if opts.Database == "" {
		opts.Database = defaultDatabase
	}
	if opts.HitlistSize <= 0 {
		opts.HitlistSize = defaultHitlistSize
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL:      opts.BaseURL,
		database:     opts.Database,
		hitlistSize:  opts.HitlistSize,
		pollInterval: opts.PollInterval,
		maxWait:      opts.MaxWait,
		hc:           opts.HTTPClient,
		log:          opts.Logger,
	}
}

// Submit posts a megablast search and parses the RID/RTOE out of the
// response page. POST supports queries over 2 kb.
func (c *Client) Submit(ctx context.Context, sequence string) (Job, error) {
	form := url.Values{
		"CMD":          {"Put"},
		"PROGRAM":      {"blastn"},
		"DATABASE":     {c.database},
		"QUERY":        {sequence},
		"HITLIST_SIZE": {strconv.Itoa(c.hitlistSize)},
		"FORMAT_TYPE":  {"XML"},
		"MEGABLAST":    {"on"},
		"tool":         {toolName},
	}
	body, err := c.request(ctx, http.MethodPost, form)
	if err != nil {
		return Job{}, fmt.Errorf("submitting search: %w", err)
	}

	rid := ridRe.FindStringSubmatch(body)
	if rid == nil {
		return Job{}, fmt.Errorf("no RID in submit response")
	}
	job := Job{RID: rid[1], RTOE: 30}
	if m := rtoeRe.FindStringSubmatch(body); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			job.RTOE = n
		}
	}
	return job, nil
}

// Wait polls the job until READY, pacing polls per NCBI policy. It returns
// ErrSearchFailed, ErrUnknownRID, or ErrTimeout on the terminal non-ready
// outcomes.
func (c *Client) Wait(ctx context.Context, rid string) error {
	deadline := time.Now().Add(c.maxWait)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}

		body, err := c.request(ctx, http.MethodGet, url.Values{
			"CMD":           {"Get"},
			"FORMAT_OBJECT": {"SearchInfo"},
			"RID":           {rid},
		})
		if err != nil {
			return fmt.Errorf("polling %s: %w", rid, err)
		}
		switch {
		case strings.Contains(body, "Status=READY"):
			return nil
		case strings.Contains(body, "Status=FAILED"):
			return fmt.Errorf("%s: %w", rid, ErrSearchFailed)
		case strings.Contains(body, "Status=UNKNOWN"):
			return fmt.Errorf("%s: %w", rid, ErrUnknownRID)
		}
		// Status=WAITING, keep going.
		c.log.Debug("blast job still running", "rid", rid)
		if time.Now().After(deadline) {
			return fmt.Errorf("%s after %s: %w", rid, c.maxWait, ErrTimeout)
		}
	}
}

// Results fetches and parses the XML report of a READY job.
func (c *Client) Results(ctx context.Context, rid string) ([]Hit, error) {
	body, err := c.request(ctx, http.MethodGet, url.Values{
		"CMD":         {"Get"},
		"FORMAT_TYPE": {"XML"},
		"RID":         {rid},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching results for %s: %w", rid, err)
	}
	return ParseReport([]byte(body))
}

// Run is the blocking pipeline: submit, wait, fetch, parse. It can take
// minutes; the context bounds the whole thing.
func (c *Client) Run(ctx context.Context, sequence string) ([]Hit, error) {
	job, err := c.Submit(ctx, sequence)
	if err != nil {
		return nil, err
	}
	c.log.Info("blast search submitted", "rid", job.RID, "rtoe_s", job.RTOE)
	if err := c.Wait(ctx, job.RID); err != nil {
		return nil, err
	}
	return c.Results(ctx, job.RID)
}

func (c *Client) request(ctx context.Context, method string, params url.Values) (string, error) {
	var req *http.Request
	var err error
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL, strings.NewReader(params.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+"?"+params.Encode(), nil)
	}
	if err != nil {
		return "", err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Report XML shape: BlastOutput > BlastOutput_iterations > Iteration >
// Iteration_hits > Hit > Hit_hsps > Hsp.
type blastOutput struct {
	QueryLen   int `xml:"BlastOutput_query-len"`
	Iterations struct {
		Iterations []struct {
			Hits []xmlHit `xml:"Iteration_hits>Hit"`
		} `xml:"Iteration"`
	} `xml:"BlastOutput_iterations"`
}

type xmlHit struct {
	Def       string   `xml:"Hit_def"`
	Accession string   `xml:"Hit_accession"`
	Hsps      []xmlHsp `xml:"Hit_hsps>Hsp"`
}

type xmlHsp struct {
	BitScore  float64 `xml:"Hsp_bit-score"`
	EValue    float64 `xml:"Hsp_evalue"`
	QueryFrom int     `xml:"Hsp_query-from"`
	QueryTo   int     `xml:"Hsp_query-to"`
	HitFrom   int     `xml:"Hsp_hit-from"`
	HitTo     int     `xml:"Hsp_hit-to"`
	Identity  int     `xml:"Hsp_identity"`
	AlignLen  int     `xml:"Hsp_align-len"`
}

// ParseReport extracts the hit list from a BLAST XML report. Hits without
// an HSP are skipped; only the best HSP of each hit is reported.
func ParseReport(data []byte) ([]Hit, error) {
	var out blastOutput
	if err := xml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing blast xml: %w", err)
	}

	var hits []Hit
	for _, it := range out.Iterations.Iterations {
		for _, h := range it.Hits {
			if len(h.Hsps) == 0 {
				continue
			}
			hsp := h.Hsps[0]
			hit := Hit{
				Organism:  organismOf(h.Def),
				Accession: h.Accession,
				Title:     h.Def,
				EValue:    hsp.EValue,
				BitScore:  hsp.BitScore,
				QueryFrom: hsp.QueryFrom,
				QueryTo:   hsp.QueryTo,
				HitFrom:   hsp.HitFrom,
				HitTo:     hsp.HitTo,
				QueryLen:  out.QueryLen,
			}
			if m := geneRe.FindStringSubmatch(h.Def); m != nil {
				hit.GeneSymbol = m[1]
			}
			if hsp.AlignLen > 0 {
				hit.IdentityPct = round1(100.0 * float64(hsp.Identity) / float64(hsp.AlignLen))
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// organismOf guesses the binomial name from the first two words of the hit
// title ("Borrelia hermsii strain ..." -> "Borrelia hermsii").
func organismOf(title string) string {
	parts := strings.Fields(title)
	switch {
	case len(parts) >= 2:
		return parts[0] + " " + parts[1]
	case len(parts) == 1:
		return parts[0]
	default:
		return "Unknown"
	}
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// speciesMap covers the organisms Ensembl hosts under non-derivable codes.
var speciesMap = map[string]string{
	"homo sapiens":             "homo_sapiens",
	"mus musculus":             "mus_musculus",
	"rattus norvegicus":        "rattus_norvegicus",
	"danio rerio":              "danio_rerio",
	"gallus gallus":            "gallus_gallus",
	"drosophila melanogaster":  "drosophila_melanogaster",
	"caenorhabditis elegans":   "caenorhabditis_elegans",
	"xenopus tropicalis":       "xenopus_tropicalis",
	"sus scrofa":               "sus_scrofa",
	"bos taurus":               "bos_taurus",
	"ovis aries":               "ovis_aries",
	"canis lupus familiaris":   "canis_lupus_familiaris",
	"felis catus":              "felis_catus",
	"macaca mulatta":           "macaca_mulatta",
	"pan troglodytes":          "pan_troglodytes",
	"oryctolagus cuniculus":    "oryctolagus_cuniculus",
	"saccharomyces cerevisiae": "saccharomyces_cerevisiae",
}

// EnsemblSpecies converts an NCBI organism name to an Ensembl species
// code, falling back to lowercased underscores for unmapped organisms.
func EnsemblSpecies(organism string) string {
	key := strings.ToLower(strings.TrimSpace(organism))
	if code, ok := speciesMap[key]; ok {
		return code
	}
	return strings.ReplaceAll(key, " ", "_")
}
