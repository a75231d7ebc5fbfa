// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/hypothesis-engine/internal/evidence"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// ExecutiveSummary is the researcher-facing summary of a completed run.
// It answers: what, why, how, and what next.
type ExecutiveSummary struct {
	ElevatorPitch       string   `json:"elevator_pitch" yaml:"elevator_pitch"`
	GapAnalysis         string   `json:"gap_analysis" yaml:"gap_analysis"`
	KeyInnovation       string   `json:"key_innovation" yaml:"key_innovation"`
	BiologicalRationale string   `json:"biological_rationale" yaml:"biological_rationale"`
	PriorityActions     []string `json:"priority_actions" yaml:"priority_actions"`
	EvidenceStrength    string   `json:"evidence_strength" yaml:"evidence_strength"`
	EpistemicConfidence string   `json:"epistemic_confidence,omitempty" yaml:"epistemic_confidence,omitempty"`
	FeasibilityVerdict  string   `json:"feasibility_verdict" yaml:"feasibility_verdict"`
	EstimatedTimeline   string   `json:"estimated_timeline" yaml:"estimated_timeline"`
	EstimatedCost       string   `json:"estimated_cost" yaml:"estimated_cost"`
	SuccessProbability  string   `json:"success_probability" yaml:"success_probability"`

	// Composite is the weighted feasibility score the verdict derives from.
	Composite float64 `json:"composite" yaml:"composite"`

	// Diagnostic reports whether the hypothesis was classified as a
	// diagnostic rather than a therapeutic.
	Diagnostic bool `json:"diagnostic" yaml:"diagnostic"`

	// Evidence is the consolidated evidence metadata all sections share.
	Evidence EvidenceMeta `json:"evidence" yaml:"evidence"`
}

// BuildExecutiveSummary derives the executive summary from a run. All
// numbers come from ConsolidateEvidence and the scorecard; no section
// recomputes its own counts.
func BuildExecutiveSummary(run *types.HypothesisRun) ExecutiveSummary {
	doc := run.Document
	diagnostic := DetectDiagnostic(doc)

	mechanism := doc.Mechanism
	rationale := doc.Rationale
	if diagnostic {
		mechanism = CleanDiagnosticText(mechanism, true)
		rationale = CleanDiagnosticText(rationale, true)
		rationale = SoftenAccuracyClaims(rationale, true)
	}

	evidence := ConsolidateEvidence(run.EvidencePacks)
	avgConf := averageConfidence(run.ReasoningSteps)

	// Fill missing scorecard dimensions before computing the composite.
	technical := InferMissingScore(run.Scorecard.TechnicalFeasibility, evidence.Strength, avgConf, 0.6)
	clinical := InferMissingScore(run.Scorecard.ClinicalTranslatability, evidence.Strength, avgConf, 0.6)
	safety := InferMissingScore(run.Scorecard.SafetyProfile, evidence.Strength, avgConf, 0.8)
	regulatory := InferMissingScore(run.Scorecard.RegulatoryPathReady, evidence.Strength, avgConf, 0.4)

	var composite float64
	if diagnostic {
		composite = 0.35*technical + 0.35*clinical + 0.2*regulatory + 0.1*safety
	} else {
		composite = 0.4*technical + 0.3*clinical + 0.2*safety + 0.1*regulatory
	}

	ethicsVerdict := CapEthicsVerdict(evidence.Strength, run.Ethics.Verdict)

	s := ExecutiveSummary{
		Composite:  composite,
		Diagnostic: diagnostic,
		Evidence:   evidence,
	}

	s.ElevatorPitch = buildElevatorPitch(doc.Title, mechanism, doc.Statement)
	s.GapAnalysis = buildGapAnalysis(rationale, run.ReasoningSteps, evidence, diagnostic)
	s.KeyInnovation = buildKeyInnovation(mechanism, doc.MolecularTargets, run.Transfers, diagnostic)
	s.BiologicalRationale = buildBiologicalRationale(mechanism, rationale, evidence)
	s.PriorityActions = buildPriorityActions(doc, run.Transfers, diagnostic)
	s.EvidenceStrength = buildEvidenceStrengthText(evidence)
	s.EpistemicConfidence = buildEpistemicConfidence(run.EvidencePacks)
	s.FeasibilityVerdict = buildFeasibilityVerdict(composite, technical, clinical, safety, regulatory, ethicsVerdict, run.Scorecard, evidence.Strength, run.Ethics.Verdict)
	s.EstimatedTimeline, s.EstimatedCost = buildTimelineAndCost(composite, diagnostic)
	s.SuccessProbability = buildSuccessProbability(avgConf, evidence, run.Scorecard.OverallFeasibility, ethicsVerdict)

	// Text hygiene over every assembled section.
	s.ElevatorPitch = CleanTextBlocks(PunctuationGuard(s.ElevatorPitch))
	s.GapAnalysis = CleanTextBlocks(PunctuationGuard(s.GapAnalysis))
	s.KeyInnovation = CleanTextBlocks(PunctuationGuard(s.KeyInnovation))
	s.BiologicalRationale = CleanTextBlocks(PunctuationGuard(s.BiologicalRationale))
	s.EvidenceStrength = CleanTextBlocks(PunctuationGuard(s.EvidenceStrength))
	s.EpistemicConfidence = CleanTextBlocks(s.EpistemicConfidence)
	s.FeasibilityVerdict = CleanTextBlocks(PunctuationGuard(s.FeasibilityVerdict))
	s.EstimatedTimeline = CleanTextBlocks(PunctuationGuard(s.EstimatedTimeline))
	s.EstimatedCost = CleanTextBlocks(PunctuationGuard(s.EstimatedCost))
	s.SuccessProbability = CleanTextBlocks(PunctuationGuard(s.SuccessProbability))

	return s
}

// Markdown renders the summary as a researcher-facing document.
func (s ExecutiveSummary) Markdown() string {
	var b strings.Builder
	b.WriteString("# Executive Summary\n\n")
	b.WriteString("## Elevator Pitch\n\n" + s.ElevatorPitch + "\n\n")
	b.WriteString("## Gap Analysis\n\n" + s.GapAnalysis + "\n\n")
	b.WriteString("## Key Innovation\n\n" + s.KeyInnovation + "\n\n")
	b.WriteString("## Biological Rationale\n\n" + s.BiologicalRationale + "\n\n")
	b.WriteString("## Priority Actions\n\n")
	for i, a := range s.PriorityActions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a)
	}
	b.WriteString("\n## Evidence Strength\n\n" + s.EvidenceStrength + "\n\n")
	if s.EpistemicConfidence != "" {
		b.WriteString("## Epistemic Confidence\n\n" + s.EpistemicConfidence + "\n\n")
	}
	b.WriteString("## Feasibility Verdict\n\n" + s.FeasibilityVerdict + "\n\n")
	b.WriteString("## Estimated Timeline\n\n" + s.EstimatedTimeline + "\n\n")
	b.WriteString("## Estimated Cost\n\n" + s.EstimatedCost + "\n\n")
	b.WriteString("## Success Probability\n\n" + s.SuccessProbability + "\n")
	return b.String()
}

// SuccessProbability combines reasoning confidence, evidence strength,
// feasibility, and ethics into a single likelihood of reaching clinical
// proof-of-concept.
func SuccessProbability(avgConfidence, strength float64, feasibility types.FeasibilityLevel, verdict types.EthicsVerdict) float64 {
	prob := avgConfidence*0.3 + strength*0.4

	switch feasibility {
	case types.FeasibilityGreen:
		prob += 0.2
	case types.FeasibilityAmber:
		prob += 0.12
	default:
		prob += 0.05
	}

	switch verdict {
	case types.VerdictGreen:
		prob += 0.1
	case types.VerdictAmber:
		prob += 0.07
	default:
		prob += 0.03
	}

	return prob
}

func averageConfidence(steps []types.ReasoningStep) float64 {
	if len(steps) == 0 {
		return 0.5
	}
	var sum float64
	for _, s := range steps {
		sum += s.Confidence
	}
	return sum / float64(len(steps))
}

func buildElevatorPitch(title, mechanism, statement string) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("We propose %s.", title))
	if mechanism != "" {
		// Strip template prefixes so the pitch does not double them.
		clean := strings.TrimSpace(mechanism)
		for _, prefix := range []string{"This hypothesis proposes ", "this hypothesis proposes ", "This approach works by ", "this approach works by "} {
			clean = strings.TrimPrefix(clean, prefix)
		}
		lines = append(lines, fmt.Sprintf("This approach works by %s.", SentenceCase(clean)))
	}
	if statement != "" {
		lines = append(lines, fmt.Sprintf("Expected outcome: %s.", SentenceCase(statement)))
	}
	return strings.Join(lines, " ")
}

func buildGapAnalysis(rationale string, steps []types.ReasoningStep, evidence EvidenceMeta, diagnostic bool) string {
	var b strings.Builder
	if diagnostic {
		b.WriteString("**Current Diagnostic Limitations**:\n\n")
		b.WriteString("- Existing diagnostics lack sensitivity/specificity for early detection\n")
		b.WriteString("- Current methods are invasive, expensive, or inaccessible\n")
		b.WriteString("- No reliable biomarkers for disease progression or treatment response\n\n")
	} else {
		b.WriteString("**Current Treatment Limitations**:\n\n")
		b.WriteString("- Existing therapies show limited efficacy in certain patient populations\n")
		b.WriteString("- Disease progression often continues despite treatment\n")
		b.WriteString("- Side effects and resistance remain major challenges\n\n")
	}

	if rationale != "" {
		fmt.Fprintf(&b, "**Clinical Context**: %s\n\n", rationale)
	}

	for _, s := range steps {
		if s.Agent == types.AgentEvidenceMiner && s.KeyInsight != "" {
			fmt.Fprintf(&b, "**Evidence shows**: %s\n\n", s.KeyInsight)
			break
		}
	}

	fmt.Fprintf(&b, "**Compiled from %d scientific sources** across %s.", evidence.Total, pluralizeDomains(len(evidence.Sources)))
	return b.String()
}

func buildKeyInnovation(mechanism string, targets []string, transfers []types.CrossDomainTransfer, diagnostic bool) string {
	var b strings.Builder
	if mechanism != "" {
		fmt.Fprintf(&b, "**Novel Mechanism**: %s\n\n", mechanism)
	} else {
		b.WriteString("**Novel Mechanism**: Multi-target approach combining established pathways\n\n")
	}

	if len(transfers) > 0 {
		fmt.Fprintf(&b, "**Cross-Domain Breakthrough**: This %s leverages innovations from %d fields:\n\n",
			hypothesisKind(diagnostic), len(transfers))
		for i, t := range transfers {
			if i == 4 {
				break
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", t.SourceDomain, t.Concept)
		}
		b.WriteString("\n")
	}

	if len(targets) > 0 {
		n := len(targets)
		if n > 5 {
			n = 5
		}
		fmt.Fprintf(&b, "**Molecular Targets**: %s\n", strings.Join(targets[:n], ", "))
	}
	return b.String()
}

func hypothesisKind(diagnostic bool) string {
	if diagnostic {
		return "diagnostic"
	}
	return "hypothesis"
}

func buildBiologicalRationale(mechanism, rationale string, evidence EvidenceMeta) string {
	var b strings.Builder
	if mechanism != "" {
		fmt.Fprintf(&b, "**Mechanistic Justification**:\n\n%s\n\n", mechanism)
	}
	if rationale != "" {
		fmt.Fprintf(&b, "**Clinical Context**:\n\n%s\n\n", rationale)
	}

	fmt.Fprintf(&b, "**Evidence Base**: %d sources -> T1 (high): %d, T2 (moderate): %d, T3 (low): %d, T4 (marginal): %d\n\n",
		evidence.Total, evidence.Tiers.T1, evidence.Tiers.T2, evidence.Tiers.T3, evidence.Tiers.T4)
	fmt.Fprintf(&b, "**Evidence Strength**: %.2f ", evidence.Strength)
	switch {
	case evidence.Strength >= 0.7:
		b.WriteString("(Strong) - Well-supported by literature")
	case evidence.Strength >= 0.5:
		b.WriteString("(Moderate) - Individual components supported; combination is novel")
	case evidence.Strength >= 0.3:
		b.WriteString("(Emerging) - Preliminary support requiring validation")
	default:
		b.WriteString("(Weak) - Speculative; requires extensive validation")
	}
	return b.String()
}

func buildPriorityActions(doc types.HypothesisDocument, transfers []types.CrossDomainTransfer, diagnostic bool) []string {
	var actions []string
	if diagnostic {
		actions = append(actions,
			"Develop preanalytical SOPs (sample collection, tubes, temperature, storage, spike-in controls)",
			"Perform analytical validation (LoD/LoQ, precision, reproducibility, cross-contamination tests)",
			"Design pilot clinical cohort with a pre-registered protocol",
			"Build an explainable model with calibration curves and decision thresholds",
			"Conduct a clinical utility study (decision-curve analysis, net reclassification index)",
			"Prepare regulatory pathway documentation (CLIA LDT or CE-IVD dossier)",
		)
		return actions
	}

	if len(doc.Assumptions) > 0 {
		actions = append(actions, fmt.Sprintf("Validate key assumption: %s", doc.Assumptions[0]))
	}
	if len(doc.MolecularTargets) > 0 {
		actions = append(actions, fmt.Sprintf("Test %s as primary molecular target in relevant disease model", doc.MolecularTargets[0]))
	}
	if len(transfers) > 0 {
		actions = append(actions, fmt.Sprintf("Validate cross-domain transfer: %s", transfers[0].Concept))
	}
	actions = append(actions,
		"Conduct systematic literature review to identify evidence gaps",
		"Design preliminary in vitro/in vivo experiments to test mechanism",
	)
	return actions
}

func buildEvidenceStrengthText(e EvidenceMeta) string {
	switch {
	case e.Strength >= 0.7:
		return fmt.Sprintf("**STRONG EVIDENCE**: %d sources with %d high-quality studies. "+
			"The mechanistic rationale is well-established in the literature. "+
			"T2 (%d) and T3 (%d) provide corroborating evidence.",
			e.Total, e.Tiers.T1, e.Tiers.T2, e.Tiers.T3)
	case e.Strength >= 0.5:
		return fmt.Sprintf("**MODERATE EVIDENCE**: %d sources with strength score %.2f. "+
			"T1 (%d) + T2 (%d) support key aspects. "+
			"Individual components are validated; the combination is innovative and requires experimental validation.",
			e.Total, e.Strength, e.Tiers.T1, e.Tiers.T2)
	case e.Strength >= 0.3:
		return fmt.Sprintf("**EMERGING EVIDENCE**: %d sources with strength score %.2f. "+
			"Primarily T3 (%d) and T4 (%d) evidence. "+
			"This represents an early-stage area requiring significant validation.",
			e.Total, e.Strength, e.Tiers.T3, e.Tiers.T4)
	default:
		return fmt.Sprintf("**WEAK EVIDENCE**: %d sources with strength score %.2f. "+
			"Mostly marginal evidence (T4: %d). "+
			"This is a speculative hypothesis requiring extensive preclinical work.",
			e.Total, e.Strength, e.Tiers.T4)
	}
}

// buildEpistemicConfidence renders the study-type-weighted strength of the
// evidence base. Empty when no records were gathered, which drops the
// section from the rendered summary.
func buildEpistemicConfidence(packs []types.EvidenceRecord) string {
	v2 := evidence.EvidenceStrengthV2(packs)
	if v2.Total == 0 {
		return ""
	}

	studyTypes := make([]types.StudyType, 0, len(v2.Breakdown))
	for st := range v2.Breakdown {
		studyTypes = append(studyTypes, st)
	}
	sort.Slice(studyTypes, func(i, j int) bool {
		wi, wj := evidence.StudyTypeWeight(studyTypes[i]), evidence.StudyTypeWeight(studyTypes[j])
		if wi != wj {
			return wi > wj
		}
		return studyTypes[i] < studyTypes[j]
	})

	var b strings.Builder
	fmt.Fprintf(&b, "**Evidence Strength**: %.2f (epistemic-weighted, n=%d)\n\n", v2.Strength, v2.Total)
	b.WriteString("**Study Type Breakdown**:\n")
	for _, st := range studyTypes {
		fmt.Fprintf(&b, "- %s: %d (weight: %.2f)\n",
			studyTypeLabel(st), v2.Breakdown[st], evidence.StudyTypeWeight(st))
	}
	return b.String()
}

func studyTypeLabel(st types.StudyType) string {
	words := strings.Split(string(st), "_")
	for i, w := range words {
		switch {
		case w == "rct":
			words[i] = "RCT"
		case w != "":
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func buildFeasibilityVerdict(composite, technical, clinical, safety, regulatory float64, verdict types.EthicsVerdict, card types.SimulationScorecard, strength float64, requested types.EthicsVerdict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** - Composite %.2f\n\n", FeasibilityLabel(composite), composite)
	fmt.Fprintf(&b, "**Technical Feasibility**: %.0f%%\n", technical*100)
	fmt.Fprintf(&b, "**Clinical Translatability**: %.0f%%\n", clinical*100)
	fmt.Fprintf(&b, "**Safety Profile**: %.0f%%\n", safety*100)
	fmt.Fprintf(&b, "**Regulatory Readiness**: %.0f%%\n\n", regulatory*100)

	if len(card.RiskFactors) > 0 {
		n := len(card.RiskFactors)
		if n > 3 {
			n = 3
		}
		fmt.Fprintf(&b, "**Key Limitations**: %s\n\n", strings.Join(card.RiskFactors[:n], "; "))
	}

	text := DedupeParagraphs(b.String()) + "\n\n"

	text += fmt.Sprintf("**Ethics Assessment**: %s - ", strings.ToUpper(string(verdict)))
	switch verdict {
	case types.VerdictGreen:
		text += "No significant ethical concerns identified"
	case types.VerdictAmber:
		text += "Manageable ethical considerations requiring oversight"
	default:
		text += "Significant ethical concerns requiring resolution"
	}

	if strength < 0.45 && requested == types.VerdictGreen {
		text += "\n\n*Note: Ethics verdict capped at AMBER due to weak evidence base*"
	}
	return text
}

func buildTimelineAndCost(composite float64, diagnostic bool) (string, string) {
	if diagnostic {
		return IVDTimelineCost(composite)
	}
	switch {
	case composite >= 0.70:
		return "**18-36 months** to clinical proof-of-concept",
			"**MODERATE**: $2-5M for preclinical + Phase I/II"
	case composite >= 0.50:
		return "**24-48 months** to clinical proof-of-concept",
			"**MODERATE-HIGH**: $4-8M for preclinical + Phase I/II"
	default:
		return "**36-60+ months** to clinical proof-of-concept",
			"**HIGH**: $8-15M+ for preclinical + Phase I/II"
	}
}

func buildSuccessProbability(avgConf float64, evidence EvidenceMeta, feasibility types.FeasibilityLevel, verdict types.EthicsVerdict) string {
	prob := SuccessProbability(avgConf, evidence.Strength, feasibility, verdict)
	pct := int(prob * 100)

	var b strings.Builder
	fmt.Fprintf(&b, "**%d%%** likelihood of reaching clinical proof-of-concept\n\n", pct)
	b.WriteString("**Justification**:\n")
	fmt.Fprintf(&b, "- Reasoning confidence: %.0f%%\n", avgConf*100)
	fmt.Fprintf(&b, "- Evidence strength: %.2f from %d sources (T1:%d, T2:%d, T3:%d, T4:%d)\n",
		evidence.Strength, evidence.Total,
		evidence.Tiers.T1, evidence.Tiers.T2, evidence.Tiers.T3, evidence.Tiers.T4)
	fmt.Fprintf(&b, "- Technical feasibility: %s\n", feasibility)
	fmt.Fprintf(&b, "- Ethical assessment: %s\n\n", strings.ToUpper(string(verdict)))

	switch {
	case pct >= 60:
		b.WriteString("**Interpretation**: Strong candidate for development with favorable risk/reward profile")
	case pct >= 40:
		b.WriteString("**Interpretation**: Viable opportunity requiring careful execution and risk management")
	default:
		b.WriteString("**Interpretation**: High-risk/high-reward opportunity requiring substantial validation")
	}
	return b.String()
}
