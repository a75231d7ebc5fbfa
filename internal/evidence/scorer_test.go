// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"math"
	"testing"
	"time"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

func fixedScorer(year int) *Scorer {
	return &Scorer{Now: func() time.Time {
		return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC)
	}}
}

func TestScoreRanges(t *testing.T) {
	s := fixedScorer(2026)
	rec := types.EvidenceRecord{
		Source:      "PubMed",
		Title:       "Insulin resistance in type 2 diabetes",
		Citation:    "Smith et al. (2023) Nature Medicine. 150 citations",
		KeyFindings: []string{"HbA1c reduced"},
	}
	sc := s.Score(rec, []string{"insulin", "diabetes", "glucose"})

	for name, v := range map[string]float64{
		"relevance":  sc.Relevance,
		"quality":    sc.Quality,
		"recency":    sc.Recency,
		"impact":     sc.Impact,
		"confidence": sc.Confidence,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %f, out of [0,1]", name, v)
		}
	}
}

func TestConfidenceWeights(t *testing.T) {
	s := fixedScorer(2026)
	rec := types.EvidenceRecord{
		Source:   "Crossref",
		Title:    "Cardiac remodeling after infarction",
		Citation: "Jones et al. (2024) Circulation",
	}
	sc := s.Score(rec, []string{"cardiac"})

	want := math.Round((0.35*sc.Relevance+0.30*sc.Quality+0.20*sc.Impact+0.15*sc.Recency)*1000) / 1000
	if sc.Confidence != want {
		t.Errorf("Confidence = %f, want %f", sc.Confidence, want)
	}
}

func TestApplyDomainBlend(t *testing.T) {
	s := fixedScorer(2026)
	rec := types.EvidenceRecord{
		Source:   "PubMed",
		Title:    "Tumor microenvironment",
		Citation: "Lee et al. (2025) Cell",
	}
	base := s.Score(rec, []string{"tumor"})

	blended := rec
	s.Apply(&blended, []string{"tumor"}, 0.9)

	want := math.Round((0.70*base.Confidence+0.30*0.9)*1000) / 1000
	if blended.ConfidenceScore != want {
		t.Errorf("blended confidence = %f, want %f", blended.ConfidenceScore, want)
	}

	unblended := rec
	s.Apply(&unblended, []string{"tumor"}, -1)
	if unblended.ConfidenceScore != base.Confidence {
		t.Errorf("unblended confidence = %f, want %f", unblended.ConfidenceScore, base.Confidence)
	}
}

func TestRelevance(t *testing.T) {
	s := fixedScorer(2026)
	tests := []struct {
		name  string
		rec   types.EvidenceRecord
		terms []string
		want  float64
	}{
		{
			"no terms defaults",
			types.EvidenceRecord{Title: "Anything"},
			nil,
			0.5,
		},
		{
			"exact title match with bonus",
			types.EvidenceRecord{Title: "glucose metabolism"},
			[]string{"glucose"},
			1.0,
		},
		{
			"no match",
			types.EvidenceRecord{Title: "unrelated topic"},
			[]string{"glucose"},
			0.0,
		},
		{
			"partial compound term",
			types.EvidenceRecord{Excerpts: []string{"insulin levels were measured"}},
			[]string{"insulin resistance"},
			0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.relevance(tt.rec, tt.terms)
			if got != tt.want {
				t.Errorf("relevance = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestQuality(t *testing.T) {
	s := fixedScorer(2026)
	tests := []struct {
		name string
		rec  types.EvidenceRecord
		want float64
	}{
		{"unknown source", types.EvidenceRecord{Source: "SomethingElse"}, 0.5},
		{"trial registry base", types.EvidenceRecord{Source: "ClinicalTrials.gov"}, 0.95},
		{
			"venue bonus",
			types.EvidenceRecord{Source: "Crossref", Citation: "Published in Nature Medicine"},
			// 0.90 + 0.05 venue + 0.02 "published", capped per step.
			0.97,
		},
		{
			"preprint penalty floors at 0.3",
			types.EvidenceRecord{Source: "Unknown", Citation: "bioRxiv preprint"},
			0.45,
		},
		{
			"key findings bonus",
			types.EvidenceRecord{Source: "KEGG", KeyFindings: []string{"pathway X"}},
			0.93,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.quality(tt.rec)
			if got != tt.want {
				t.Errorf("quality = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestRecency(t *testing.T) {
	s := fixedScorer(2026)
	tests := []struct {
		name     string
		citation string
		want     float64
	}{
		{"current year", "Smith et al. (2026)", 1.0},
		{"five years old", "Smith et al. (2021)", math.Round(math.Exp(-1)*1000) / 1000},
		{"no year", "Smith et al.", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.recency(types.EvidenceRecord{Citation: tt.citation})
			if got != tt.want {
				t.Errorf("recency = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestImpact(t *testing.T) {
	s := fixedScorer(2026)
	tests := []struct {
		name string
		rec  types.EvidenceRecord
		want float64
	}{
		{"base", types.EvidenceRecord{Source: "Crossref"}, 0.5},
		{
			"citation count",
			types.EvidenceRecord{Source: "Crossref", Citation: "99 citations"},
			math.Round((0.3+math.Log10(100)/4)*1000) / 1000,
		},
		{"trial floor", types.EvidenceRecord{Source: "ClinicalTrials.gov"}, 0.8},
		{
			"votes capped at 0.9",
			types.EvidenceRecord{Source: "Kaggle", Citation: "500 votes"},
			0.9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.impact(tt.rec)
			if got != tt.want {
				t.Errorf("impact = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestScoreTrialRegistryScenario(t *testing.T) {
	s := fixedScorer(2024)
	rec := types.EvidenceRecord{
		Source:   "ClinicalTrials.gov",
		Title:    "Metformin adjunct trial",
		Citation: "NCT01234567 - Recruiting - 2024",
	}
	sc := s.Score(rec, []string{"metformin"})

	if math.Abs(sc.Quality-0.95) > 0.05 {
		t.Errorf("quality = %f, want ≈ 0.95", sc.Quality)
	}
	if sc.Recency != 1.0 {
		t.Errorf("recency = %f, want 1.0 for current-year citation", sc.Recency)
	}
	if sc.Impact < 0.8 {
		t.Errorf("impact = %f, want ≥ 0.8 trial floor", sc.Impact)
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		confidence float64
		want       types.EvidenceTier
	}{
		{0.90, types.TierExceptional},
		{0.85, types.TierExceptional},
		{0.80, types.TierHigh},
		{0.75, types.TierHigh},
		{0.60, types.TierModerate},
		{0.45, types.TierLow},
		{0.10, types.TierMarginal},
	}
	for _, tt := range tests {
		if got := Tier(tt.confidence); got != tt.want {
			t.Errorf("Tier(%f) = %s, want %s", tt.confidence, got, tt.want)
		}
	}
}

func TestRank(t *testing.T) {
	records := []types.EvidenceRecord{
		{Title: "low", ConfidenceScore: 0.3},
		{Title: "high", ConfidenceScore: 0.9},
		{Title: "mid", ConfidenceScore: 0.6},
	}

	ranked := Rank(records, 0)
	if ranked[0].Title != "high" || ranked[2].Title != "low" {
		t.Errorf("not sorted descending: %v", ranked)
	}

	top := Rank(records, 2)
	if len(top) != 2 {
		t.Errorf("len(top) = %d, want 2", len(top))
	}
}

func TestDomainRelevance(t *testing.T) {
	rec := types.EvidenceRecord{
		Title:    "CAR-T persistence in glioblastoma",
		Abstract: "We study chimeric antigen receptor therapy.",
	}

	full := DomainRelevance(rec, []string{"glioblastoma", "car-t"})
	if math.Abs(full-0.8) > 0.001 {
		t.Errorf("full coverage = %f, want 0.8", full)
	}

	none := DomainRelevance(rec, []string{"cardiomyopathy"})
	if none != 0.5 {
		t.Errorf("no coverage = %f, want base 0.5", none)
	}

	empty := DomainRelevance(rec, nil)
	if empty != 0.5 {
		t.Errorf("nil concepts = %f, want 0.5", empty)
	}
}
