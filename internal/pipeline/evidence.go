// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/hypothesis-engine/internal/evidence"
	"github.com/pdiddy/hypothesis-engine/internal/sources"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

const (
	defaultMaxQueryTerms = 10
	maxSupportingIDs     = 10
)

// runEvidence is the only stage without an LLM call: it expands the
// query terms, fans out to the configured source backends, then
// deduplicates, domain-boosts, scores, and ranks the haul. A failed
// source degrades to a warning; an empty haul never fails the run.
func (p *Pipeline) runEvidence(ctx context.Context, run *types.HypothesisRun, out io.Writer) (stageResult, error) {
	cfg := p.Config.Sources
	queries := p.buildQueries(run)

	var records []types.EvidenceRecord
	var failedSources int
	if len(p.Sources) == 0 {
		fmt.Fprintln(out, "warning: no evidence sources configured")
	} else {
		for _, q := range queries {
			got, err := sources.Gather(ctx, q, p.Sources, cfg, out)
			if err != nil {
				return stageResult{}, fmt.Errorf("gathering evidence for %q: %w", q, err)
			}
			records = append(records, got.Records...)
			failedSources += len(got.SourceErrors)
		}
	}

	gathered := len(records)

	dedup := evidence.NewDeduplicator()
	if cfg.TitleSimilarityThreshold > 0 {
		dedup.SimilarityThreshold = cfg.TitleSimilarityThreshold
	}
	var removed int
	if cfg.MergeDuplicates {
		merged := dedup.Merge(records)
		removed = gathered - len(merged)
		records = merged
	} else {
		records, removed = dedup.Deduplicate(records, true)
	}

	scorer := evidence.NewScorer()
	concepts := run.Concepts.CoreConcepts
	topConfidence := 0.0
	for i := range records {
		records[i].Epistemic = evidence.ExtractEpistemic(records[i])
		rel := -1.0
		if len(concepts) > 0 {
			rel = evidence.DomainRelevance(records[i], concepts)
		}
		scorer.Apply(&records[i], queries, rel)
		if records[i].ConfidenceScore > topConfidence {
			topConfidence = records[i].ConfidenceScore
		}
	}

	run.EvidencePacks = evidence.Rank(records, cfg.TopK)
	n := len(run.EvidencePacks)

	tierCounts := make(map[types.EvidenceTier]int)
	for _, r := range run.EvidencePacks {
		tierCounts[r.Tier]++
	}

	confidence := topConfidence
	if confidence == 0 {
		confidence = 0.5
	}

	step := newStep(
		types.AgentEvidenceMiner,
		"Gather Scientific Evidence",
		fmt.Sprintf("%d query terms across %d sources", len(queries), len(p.Sources)),
		fmt.Sprintf("Gathered %d evidence records using query expansion and multi-dimension scoring, removed %d duplicates, and ranked the remainder by confidence. Tier distribution: %s", gathered, removed, tierSummary(tierCounts)),
		confidence,
	)
	step.QuestionAsked = "What scientific evidence supports or challenges the proposed research directions?"
	step.KeyInsight = fmt.Sprintf("Compiled %d unique evidence sources with quality-based tiering, providing scientific validation for hypothesis development.", n)
	step.ImpactOnHypothesis = "Establishes the empirical foundation for hypothesis synthesis through peer-reviewed scientific evidence."
	for i, r := range run.EvidencePacks {
		if i == maxSupportingIDs {
			break
		}
		step.SupportingEvidence = append(step.SupportingEvidence, r.ID)
	}

	decisions := []string{
		fmt.Sprintf("Gathered %d records, kept %d after dedup", gathered, n),
		fmt.Sprintf("Top confidence: %.2f", topConfidence),
	}
	if n > 0 {
		v2 := evidence.EvidenceStrengthV2(run.EvidencePacks)
		decisions = append(decisions, fmt.Sprintf("Epistemic-weighted strength: %.2f over %d study types", v2.Strength, len(v2.Breakdown)))
	}
	if failedSources > 0 {
		decisions = append(decisions, fmt.Sprintf("%d source queries failed", failedSources))
	}

	return stageResult{
		step: step,
		trace: types.TraceEntry{
			InputSummary:  fmt.Sprintf("Query: %d terms across %d sources", len(queries), len(p.Sources)),
			OutputSummary: fmt.Sprintf("%d evidence records (tiers: %s)", n, tierSummary(tierCounts)),
			KeyDecisions:  decisions,
		},
	}, nil
}

// buildQueries combines the concept map's query terms with an expansion
// of the raw goal, deduplicated and capped.
func (p *Pipeline) buildQueries(run *types.HypothesisRun) []string {
	maxTerms := p.Config.Sources.MaxQueryTerms
	if maxTerms <= 0 {
		maxTerms = defaultMaxQueryTerms
	}

	seen := make(map[string]bool)
	var queries []string
	add := func(term string) {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" || seen[key] || len(queries) >= maxTerms {
			return
		}
		seen[key] = true
		queries = append(queries, term)
	}

	for _, t := range run.Concepts.QueryTerms {
		add(t)
	}
	expanded := evidence.Expand(run.Goal, evidence.ExpandOptions{
		Domain:                string(run.Domain),
		MaxTerms:              maxTerms,
		IncludeSynonyms:       true,
		IncludeDomainKeywords: true,
		IncludeAcronyms:       true,
	})
	for _, t := range expanded {
		add(t)
	}
	return queries
}

func tierSummary(counts map[types.EvidenceTier]int) string {
	if len(counts) == 0 {
		return "none"
	}
	order := []types.EvidenceTier{
		types.TierExceptional, types.TierHigh, types.TierModerate, types.TierLow, types.TierMarginal,
	}
	var parts []string
	for _, tier := range order {
		if counts[tier] > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", tier, counts[tier]))
		}
	}
	return strings.Join(parts, " ")
}
