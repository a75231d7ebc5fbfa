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

// pubmedAPIBase is the NCBI E-utilities endpoint. Declared as a var so
// tests can substitute an httptest server.
var pubmedAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMedSource queries PubMed through the E-utilities esearch + esummary
// pair.
type PubMedSource struct {
	Client *http.Client
}

// Name returns the source identifier used in credibility tables.
func (s *PubMedSource) Name() string { return "PubMed" }

// Search runs esearch to collect PMIDs, then esummary to fetch metadata.
func (s *PubMedSource) Search(ctx context.Context, query string, cfg types.SourcesConfig) ([]types.EvidenceRecord, error) {
	max := cfg.MaxPerSource
	if max <= 0 {
		max = 10
	}

	searchURL := fmt.Sprintf("%s/esearch.fcgi?db=pubmed&retmode=json&retmax=%d&term=%s",
		pubmedAPIBase, max, url.QueryEscape(query))

	var search pubmedSearchResponse
	if err := s.getJSON(ctx, searchURL, cfg, &search); err != nil {
		return nil, fmt.Errorf("PubMed search: %w", err)
	}
	if len(search.ESearchResult.IDList) == 0 {
		return nil, nil
	}

	summaryURL := fmt.Sprintf("%s/esummary.fcgi?db=pubmed&retmode=json&id=%s",
		pubmedAPIBase, strings.Join(search.ESearchResult.IDList, ","))

	var summary pubmedSummaryResponse
	if err := s.getJSON(ctx, summaryURL, cfg, &summary); err != nil {
		return nil, fmt.Errorf("PubMed summary: %w", err)
	}

	var records []types.EvidenceRecord
	for _, pmid := range search.ESearchResult.IDList {
		doc, ok := summary.Result[pmid]
		if !ok {
			continue
		}
		var item pubmedDoc
		if err := json.Unmarshal(doc, &item); err != nil {
			continue
		}

		citation := fmt.Sprintf("%s %s (%s)", formatPubMedAuthors(item.Authors), item.FullJournalName, item.PubDate)
		records = append(records, types.EvidenceRecord{
			Source:   "PubMed",
			Title:    strings.TrimSpace(item.Title),
			Citation: strings.TrimSpace(citation),
			URL:      "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/",
		})
	}
	return records, nil
}

func (s *PubMedSource) getJSON(ctx context.Context, rawURL string, cfg types.SourcesConfig, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func formatPubMedAuthors(authors []pubmedAuthor) string {
	var names []string
	for i, a := range authors {
		if i == 3 {
			names = append(names, "et al.")
			break
		}
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// E-utilities JSON structures.
type pubmedSearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// esummary's "result" object maps PMIDs to documents but also carries a
// "uids" array, so the values are decoded lazily.
type pubmedSummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type pubmedDoc struct {
	Title           string         `json:"title"`
	PubDate         string         `json:"pubdate"`
	FullJournalName string         `json:"fulljournalname"`
	Authors         []pubmedAuthor `json:"authors"`
}

type pubmedAuthor struct {
	Name string `json:"name"`
}
