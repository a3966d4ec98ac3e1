// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// ErrNoDOI is returned by ResolveDOIURL when the record carries no
// DOI-shaped substring. Distinct from network failures, which wrap the
// transport error.
var ErrNoDOI = errors.New("record has no DOI")

// doiResolverBase is the DOI resolver endpoint. Declared as a var so tests
// can substitute an httptest server.
var doiResolverBase = "https://doi.org/"

// doiPattern matches DOI-shaped substrings such as "10.1016/j.cub.2014.03.022".
var doiPattern = regexp.MustCompile(`10\.\d{4,6}/[^\s"'&]+`)

// doiFields are scanned for a DOI, in priority order.
var doiFields = []string{"AID", "SO", "LID"}

// ExtractDOI scans the AID, SO, and LID fields in that order and returns
// the first DOI-shaped substring. List values prefer parts that mention
// "doi" (AID lists carry both pii and doi entries).
func (r *Record) ExtractDOI() (string, bool) {
	for _, code := range doiFields {
		v, ok := r.fields[code]
		if !ok {
			continue
		}

		parts := v.parts
		if v.list {
			var doiParts []string
			for _, p := range parts {
				if strings.Contains(p, "doi") {
					doiParts = append(doiParts, p)
				}
			}
			if len(doiParts) > 0 {
				parts = doiParts
			}
		}

		for _, p := range parts {
			if m := doiPattern.FindString(p); m != "" {
				return m, true
			}
		}
	}
	return "", false
}

// ResolveDOIURL resolves the record's DOI against the DOI resolver and
// returns the final URL after redirects. It returns ErrNoDOI when the
// record has no DOI; transport failures are returned wrapped. The resolver
// is followed even on a non-2xx final status, since publishers answer
// resolved article URLs with all kinds of statuses.
func (r *Record) ResolveDOIURL(ctx context.Context, client *http.Client) (string, error) {
	doi, ok := r.ExtractDOI()
	if !ok {
		return "", ErrNoDOI
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, doiResolverBase+doi, nil)
	if err != nil {
		return "", fmt.Errorf("creating DOI request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolving DOI %s: %w", doi, err)
	}
	defer resp.Body.Close()

	return resp.Request.URL.String(), nil
}
