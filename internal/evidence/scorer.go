// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence implements the quality model for gathered scientific
// evidence: query expansion, multi-dimensional scoring, tier classification,
// deduplication, and epistemic (study-type) weighting.
package evidence

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// sourceCredibility maps a backend name to its base quality score.
// Unknown sources get 0.5.
var sourceCredibility = map[string]float64{
	"PubMed":             0.95,
	"ClinicalTrials.gov": 0.95,
	"UniProt":            0.95,
	"Crossref":           0.90,
	"Europe PMC":         0.90,
	"KEGG":               0.90,
	"ChEMBL":             0.90,
	"PubChem":            0.85,
	"Zenodo":             0.75,
	"arXiv":              0.70,
	"Kaggle":             0.70,
}

// highImpactVenues are substrings of citation text that mark a top-tier
// journal.
var highImpactVenues = []string{
	"nature", "science", "cell", "lancet", "nejm", "jama", "pnas",
	"nature medicine", "nature biotechnology",
}

var (
	yearRe     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	citationRe = regexp.MustCompile(`(\d+)\s+citation`)
	downloadRe = regexp.MustCompile(`(\d+)\s+download`)
	voteRe     = regexp.MustCompile(`(\d+)\s+vote`)
)

// Scores holds the four scoring dimensions plus their weighted combination.
type Scores struct {
	Relevance  float64
	Quality    float64
	Recency    float64
	Impact     float64
	Confidence float64
}

// Scorer computes per-record scores. Now is injectable so recency decay is
// deterministic in tests.
type Scorer struct {
	Now func() time.Time
}

// NewScorer returns a Scorer using wall-clock time.
func NewScorer() *Scorer {
	return &Scorer{Now: time.Now}
}

// Score computes the four dimensions for one record and combines them into
// a confidence value (weights 0.35 relevance, 0.30 quality, 0.20 impact,
// 0.15 recency). All values are rounded to 3 decimals and lie in [0,1].
func (s *Scorer) Score(rec types.EvidenceRecord, queryTerms []string) Scores {
	sc := Scores{
		Relevance: s.relevance(rec, queryTerms),
		Quality:   s.quality(rec),
		Recency:   s.recency(rec),
		Impact:    s.impact(rec),
	}
	sc.Confidence = round3(0.35*sc.Relevance + 0.30*sc.Quality + 0.20*sc.Impact + 0.15*sc.Recency)
	return sc
}

// Apply scores rec in place and assigns its tier. domainRelevance, when
// non-negative, is blended into the confidence score with 30% weight.
func (s *Scorer) Apply(rec *types.EvidenceRecord, queryTerms []string, domainRelevance float64) {
	sc := s.Score(*rec, queryTerms)
	rec.RelevanceScore = sc.Relevance
	rec.QualityScore = sc.Quality
	rec.RecencyScore = sc.Recency
	rec.ImpactScore = sc.Impact
	rec.ConfidenceScore = sc.Confidence
	if domainRelevance >= 0 {
		rec.ConfidenceScore = round3(0.70*sc.Confidence + 0.30*domainRelevance)
	}
	rec.Tier = Tier(rec.ConfidenceScore)
}

// relevance measures query-term overlap with title+excerpts+key findings.
// Exact term hits count 1, word-level partial hits 0.5, normalized by the
// term count; each title hit adds a further 0.1, capped at 1.0.
func (s *Scorer) relevance(rec types.EvidenceRecord, queryTerms []string) float64 {
	if len(queryTerms) == 0 {
		return 0.5
	}

	title := strings.ToLower(rec.Title)
	combined := title + " " +
		strings.ToLower(strings.Join(rec.Excerpts, " ")) + " " +
		strings.ToLower(strings.Join(rec.KeyFindings, " "))

	var matches float64
	for _, term := range queryTerms {
		lower := strings.ToLower(term)
		if strings.Contains(combined, lower) {
			matches++
			continue
		}
		for _, word := range strings.Fields(lower) {
			if strings.Contains(combined, word) {
				matches += 0.5
				break
			}
		}
	}

	relevance := math.Min(matches/float64(len(queryTerms)), 1.0)

	titleHits := 0
	for _, term := range queryTerms {
		if strings.Contains(title, strings.ToLower(term)) {
			titleHits++
		}
	}
	if titleHits > 0 {
		relevance = math.Min(relevance+float64(titleHits)*0.1, 1.0)
	}

	return round3(relevance)
}

// quality starts from the source credibility table and adjusts for venue,
// peer-review and preprint indicators, and the presence of key findings.
func (s *Scorer) quality(rec types.EvidenceRecord) float64 {
	q, ok := sourceCredibility[rec.Source]
	if !ok {
		q = 0.5
	}

	citation := strings.ToLower(rec.Citation)
	if containsAny(citation, highImpactVenues) {
		q = math.Min(q+0.05, 1.0)
	}
	if containsAny(citation, []string{"peer-reviewed", "published", "journal"}) {
		q = math.Min(q+0.02, 1.0)
	}
	if containsAny(citation, []string{"preprint", "arxiv", "biorxiv"}) {
		q = math.Max(q-0.05, 0.3)
	}
	if len(rec.KeyFindings) > 0 {
		q = math.Min(q+0.03, 1.0)
	}

	return round3(q)
}

// recency decays exponentially with the age of the first 4-digit year in
// the citation string, as exp(-years/5). No parseable year gives 0.5.
func (s *Scorer) recency(rec types.EvidenceRecord) float64 {
	m := yearRe.FindString(rec.Citation)
	if m == "" {
		return 0.5
	}
	pubYear, err := strconv.Atoi(m)
	if err != nil {
		return 0.5
	}
	yearsOld := float64(s.Now().Year() - pubYear)
	return round3(math.Exp(-yearsOld / 5.0))
}

// impact scales logarithmically with parsed citation or download counts.
// Trial-registry records floor at 0.8; community-dataset vote counts boost
// up to 0.9.
func (s *Scorer) impact(rec types.EvidenceRecord) float64 {
	citation := strings.ToLower(rec.Citation)
	impact := 0.5

	if m := citationRe.FindStringSubmatch(citation); m != nil {
		n, _ := strconv.Atoi(m[1])
		impact = math.Min(0.3+math.Log10(float64(n)+1)/4, 1.0)
	}
	if strings.Contains(citation, "downloads") {
		if m := downloadRe.FindStringSubmatch(citation); m != nil {
			n, _ := strconv.Atoi(m[1])
			impact = math.Max(impact, math.Min(0.4+math.Log10(float64(n)+1)/5, 1.0))
		}
	}
	if rec.Source == "ClinicalTrials.gov" {
		impact = math.Max(impact, 0.8)
	}
	if strings.Contains(citation, "votes") {
		if m := voteRe.FindStringSubmatch(citation); m != nil {
			n, _ := strconv.Atoi(m[1])
			impact = math.Max(impact, math.Min(0.5+float64(n)/100, 0.9))
		}
	}

	return round3(impact)
}

// Tier maps a confidence score onto its ordinal quality bucket.
func Tier(confidence float64) types.EvidenceTier {
	switch {
	case confidence >= 0.85:
		return types.TierExceptional
	case confidence >= 0.75:
		return types.TierHigh
	case confidence >= 0.60:
		return types.TierModerate
	case confidence >= 0.45:
		return types.TierLow
	default:
		return types.TierMarginal
	}
}

// Rank sorts records descending by confidence score (stable) and truncates
// to topK when topK > 0.
func Rank(records []types.EvidenceRecord, topK int) []types.EvidenceRecord {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ConfidenceScore > records[j].ConfidenceScore
	})
	if topK > 0 && len(records) > topK {
		return records[:topK]
	}
	return records
}

// DomainRelevance scores how well a record matches the target concepts of
// the run, in [0,1]. Base 0.5, plus up to 0.3 for concept coverage over
// title+abstract text.
func DomainRelevance(rec types.EvidenceRecord, targetConcepts []string) float64 {
	text := strings.ToLower(rec.Title + " " + rec.Abstract)

	score := 0.5
	if len(targetConcepts) > 0 {
		hits := 0
		for _, c := range targetConcepts {
			if strings.Contains(text, strings.ToLower(c)) {
				hits++
			}
		}
		score += float64(hits) / float64(len(targetConcepts)) * 0.3
	}

	return math.Max(0.0, math.Min(1.0, score))
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
