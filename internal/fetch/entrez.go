// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves bibliographic records from PubMed through the
// NCBI E-utilities: ESearch for counting and paging PMIDs, EFetch for
// downloading Medline-format records in batches.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/pubmed-engine/internal/httputil"
	"github.com/pdiddy/pubmed-engine/internal/record"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// eutilsBase is the NCBI E-utilities endpoint. Declared as a var so tests
// can substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const (
	defaultBatchSize = 50
	defaultTimeout   = 60 * time.Second
	defaultTool      = "pubmed-engine"
	defaultUserAgent = "pubmed-engine/0.1"

	// searchPageSize is the retmax per ESearch page. NCBI caps a single
	// ESearch response at 10000 IDs.
	searchPageSize = 10000
)

// Client fetches PubMed records through the E-utilities. The Email field
// of the config is the requester identity NCBI asks heavy users to send;
// queries without one risk being blocked.
type Client struct {
	HTTP *http.Client
	cfg  types.FetchConfig
}

// NewClient returns a client with config defaults applied.
func NewClient(cfg types.FetchConfig) *Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Tool == "" {
		cfg.Tool = defaultTool
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// esearchResponse is the JSON shape of an ESearch reply.
type esearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// get performs one E-utilities request with identity parameters attached
// and 429-aware retry.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	params.Set("tool", c.cfg.Tool)
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	reqURL := eutilsBase + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned HTTP %d", endpoint, resp.StatusCode)
	}
	return resp, nil
}

// Count returns the total number of PubMed hits for the search term,
// without paging any IDs.
func (c *Client) Count(ctx context.Context, term string) (int, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {"0"},
	}
	resp, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var er esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return 0, fmt.Errorf("parsing ESearch response: %w", err)
	}
	count, err := strconv.Atoi(er.ESearchResult.Count)
	if err != nil {
		return 0, fmt.Errorf("parsing ESearch count %q: %w", er.ESearchResult.Count, err)
	}
	return count, nil
}

// SearchIDs pages through ESearch results and returns the matching PMIDs
// in relevance order. max caps the number returned (0 = no cap).
func (c *Client) SearchIDs(ctx context.Context, term string, max int) ([]string, error) {
	var ids []string
	for {
		retmax := searchPageSize
		if max > 0 && max-len(ids) < retmax {
			retmax = max - len(ids)
		}
		if retmax <= 0 {
			break
		}

		params := url.Values{
			"db":       {"pubmed"},
			"term":     {term},
			"retmode":  {"json"},
			"retmax":   {strconv.Itoa(retmax)},
			"retstart": {strconv.Itoa(len(ids))},
		}
		resp, err := c.get(ctx, "esearch.fcgi", params)
		if err != nil {
			return nil, err
		}

		var er esearchResponse
		err = json.NewDecoder(resp.Body).Decode(&er)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing ESearch response: %w", err)
		}

		page := er.ESearchResult.IDList
		if len(page) == 0 {
			break
		}
		ids = append(ids, page...)
		if len(page) < retmax {
			break
		}
	}
	return ids, nil
}

// FetchRecords downloads full Medline records for the given PMIDs in
// batches and returns them as a collection, one record per article. When
// the config carries a field allow-list, records keep only those fields.
// Progress is written to w.
func (c *Client) FetchRecords(ctx context.Context, pmids []string, w io.Writer) (*record.Collection, error) {
	recs, err := record.NewCollection()
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(pmids); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(pmids) {
			end = len(pmids)
		}
		batch := pmids[start:end]

		params := url.Values{
			"db":      {"pubmed"},
			"id":      {strings.Join(batch, ",")},
			"rettype": {"medline"},
			"retmode": {"text"},
		}
		resp, err := c.get(ctx, "efetch.fcgi", params)
		if err != nil {
			return nil, err
		}

		parsed, err := ParseMedline(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		for _, rec := range parsed {
			if err := recs.Append(filterFields(rec, c.cfg.Fields)); err != nil {
				return nil, err
			}
		}
		fmt.Fprintf(w, "fetched %d/%d records\n", recs.Len(), len(pmids))
	}

	return recs, nil
}

// Query runs the full search-and-download flow for a term: report the
// total hit count, page the matching PMIDs, and fetch the records in
// batches. Progress is written to w.
func (c *Client) Query(ctx context.Context, term string, w io.Writer) (*record.Collection, error) {
	count, err := c.Count(ctx, term)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "%d records found for %q\n", count, term)
	if count == 0 {
		return record.NewCollection()
	}

	max := c.cfg.MaxRecords
	if max == 0 || max > count {
		max = count
	}

	ids, err := c.SearchIDs(ctx, term, max)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "no record IDs returned")
		return record.NewCollection()
	}

	return c.FetchRecords(ctx, ids, w)
}
