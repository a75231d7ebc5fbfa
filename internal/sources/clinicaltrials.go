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

// clinicalTrialsAPIBase is the ClinicalTrials.gov v2 endpoint. Declared as
// a var so tests can substitute an httptest server.
var clinicalTrialsAPIBase = "https://clinicaltrials.gov/api/v2"

// ClinicalTrialsSource queries the ClinicalTrials.gov v2 studies API.
type ClinicalTrialsSource struct {
	Client *http.Client
}

// Name returns the source identifier used in credibility tables.
func (s *ClinicalTrialsSource) Name() string { return "ClinicalTrials.gov" }

// Search fetches registered studies matching the query.
func (s *ClinicalTrialsSource) Search(ctx context.Context, query string, cfg types.SourcesConfig) ([]types.EvidenceRecord, error) {
	max := cfg.MaxPerSource
	if max <= 0 {
		max = 10
	}

	params := url.Values{}
	params.Set("query.term", query)
	params.Set("pageSize", fmt.Sprintf("%d", max))
	params.Set("fields", "NCTId,BriefTitle,OverallStatus,StartDate,BriefSummary")

	reqURL := clinicalTrialsAPIBase + "/studies?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ClinicalTrials.gov request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ClinicalTrials.gov returned HTTP %d", resp.StatusCode)
	}

	var parsed ctgovResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing ClinicalTrials.gov response: %w", err)
	}

	var records []types.EvidenceRecord
	for _, study := range parsed.Studies {
		ident := study.ProtocolSection.IdentificationModule
		status := study.ProtocolSection.StatusModule

		nctID := ident.NCTID
		if nctID == "" {
			continue
		}
		citation := nctID
		if status.OverallStatus != "" {
			citation += " - " + titleStatus(status.OverallStatus)
		}
		if status.StartDateStruct.Date != "" {
			citation += " - " + status.StartDateStruct.Date
		}

		records = append(records, types.EvidenceRecord{
			Source:   "ClinicalTrials.gov",
			Title:    strings.TrimSpace(ident.BriefTitle),
			Citation: citation,
			URL:      "https://clinicaltrials.gov/study/" + nctID,
			Abstract: strings.TrimSpace(study.ProtocolSection.DescriptionModule.BriefSummary),
		})
	}
	return records, nil
}

// titleStatus rewrites an enum status like "RECRUITING" or
// "ACTIVE_NOT_RECRUITING" as "Recruiting" or "Active not recruiting".
func titleStatus(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// v2 studies API structures, limited to the requested fields.
type ctgovResponse struct {
	Studies []struct {
		ProtocolSection struct {
			IdentificationModule struct {
				NCTID      string `json:"nctId"`
				BriefTitle string `json:"briefTitle"`
			} `json:"identificationModule"`
			StatusModule struct {
				OverallStatus   string `json:"overallStatus"`
				StartDateStruct struct {
					Date string `json:"date"`
				} `json:"startDateStruct"`
			} `json:"statusModule"`
			DescriptionModule struct {
				BriefSummary string `json:"briefSummary"`
			} `json:"descriptionModule"`
		} `json:"protocolSection"`
	} `json:"studies"`
}
