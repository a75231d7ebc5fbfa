// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// europePMCAPIBase is the Europe PMC REST endpoint. Declared as a var so
// tests can substitute an httptest server.
var europePMCAPIBase = "https://www.ebi.ac.uk/europepmc/webservices/rest"

// EuropePMCSource queries the Europe PMC REST search API.
type EuropePMCSource struct {
	Client *http.Client
}

// Name returns the source identifier used in credibility tables.
func (s *EuropePMCSource) Name() string { return "Europe PMC" }

// Search fetches matching publication records.
func (s *EuropePMCSource) Search(ctx context.Context, query string, cfg types.SourcesConfig) ([]types.EvidenceRecord, error) {
	max := cfg.MaxPerSource
	if max <= 0 {
		max = 10
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")
	params.Set("pageSize", fmt.Sprintf("%d", max))

	reqURL := europePMCAPIBase + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Europe PMC request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Europe PMC returned HTTP %d", resp.StatusCode)
	}

	var parsed europePMCResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing Europe PMC response: %w", err)
	}

	var records []types.EvidenceRecord
	for _, item := range parsed.ResultList.Result {
		citation := item.AuthorString
		if item.JournalTitle != "" {
			citation += " " + item.JournalTitle
		}
		if item.PubYear != "" {
			citation += " (" + item.PubYear + ")"
		}
		if item.DOI != "" {
			citation += " doi:" + item.DOI
		}

		recURL := ""
		if item.PMID != "" {
			recURL = "https://europepmc.org/abstract/MED/" + item.PMID
		} else if item.DOI != "" {
			recURL = "https://doi.org/" + item.DOI
		}

		records = append(records, types.EvidenceRecord{
			Source:   "Europe PMC",
			Title:    strings.TrimSpace(item.Title),
			Citation: strings.TrimSpace(citation),
			URL:      recURL,
		})
	}
	return records, nil
}

type europePMCResponse struct {
	ResultList struct {
		Result []struct {
			PMID         string `json:"pmid"`
			DOI          string `json:"doi"`
			Title        string `json:"title"`
			AuthorString string `json:"authorString"`
			JournalTitle string `json:"journalTitle"`
			PubYear      string `json:"pubYear"`
		} `json:"result"`
	} `json:"resultList"`
}
