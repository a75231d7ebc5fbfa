// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// decisionCriteria lists what guided each agent's choices.
var decisionCriteria = map[string][]string{
	types.AgentVisioner:          {"complementary biology layers", "clinical scalability", "multi-target robustness"},
	types.AgentConceptLearner:    {"measurable surrogates", "pathophysiological coverage", "assay availability"},
	types.AgentEvidenceMiner:     {"high-quality peer review", "reproducible methods", "clinical translatability"},
	types.AgentCrossDomainMapper: {"proven source domain", "mechanistic transferability", "regulatory precedent"},
	types.AgentSynthesizer:       {"biological coherence", "robustness to variation", "therapeutic rationale"},
	types.AgentSimulator:         {"clinical feasibility", "safety profile", "regulatory pathway"},
	types.AgentEthicsValidator:   {"patient safety", "equity & accessibility", "risk transparency"},
}

// handoffPayloads lists what each agent delivers to the next stage.
var handoffPayloads = map[string][]string{
	types.AgentVisioner:          {"research_directions", "molecular_targets", "pathways"},
	types.AgentConceptLearner:    {"concept_map", "query_terms", "relationships"},
	types.AgentEvidenceMiner:     {"evidence_packs", "quality_tiers", "key_findings"},
	types.AgentCrossDomainMapper: {"cross_domain_transfers", "analogies", "precedents"},
	types.AgentSynthesizer:       {"hypothesis_document", "assumptions", "gaps"},
	types.AgentSimulator:         {"scorecard", "uncertainties", "risk_factors"},
	types.AgentEthicsValidator:   {"verdict", "conditions", "safeguards"},
}

// agentUncertainties lists the residual unknowns each agent leaves open.
var agentUncertainties = map[string][]string{
	types.AgentVisioner:          {"optimal layer weighting", "population heterogeneity"},
	types.AgentConceptLearner:    {"preanalytical stability", "batch effects"},
	types.AgentEvidenceMiner:     {"publication bias", "population diversity"},
	types.AgentCrossDomainMapper: {"transfer validation", "implementation complexity"},
	types.AgentSynthesizer:       {"integration generalizability", "threshold optimization"},
	types.AgentSimulator:         {"real-world variability", "long-term stability"},
	types.AgentEthicsValidator:   {"longitudinal monitoring", "equity across settings"},
}

// ReasoningNarrative renders the reasoning steps as a flowing Markdown
// document: per-step "why this, not that" sections, then a synthesis.
func ReasoningNarrative(steps []types.ReasoningStep, packs []types.EvidenceRecord) string {
	if len(steps) == 0 {
		return "No reasoning steps recorded."
	}

	byID := make(map[string]types.EvidenceRecord, len(packs))
	for _, p := range packs {
		byID[p.ID] = p
	}

	var parts []string
	parts = append(parts, narrativeIntro(len(steps)))

	for i, step := range steps {
		var stepEvidence []types.EvidenceRecord
		for _, id := range step.SupportingEvidence {
			if rec, ok := byID[id]; ok {
				stepEvidence = append(stepEvidence, rec)
			}
			if len(stepEvidence) == 3 {
				break
			}
		}
		parts = append(parts, stepNarrative(step, i+1, len(steps), stepEvidence))
	}

	parts = append(parts, narrativeSynthesis(steps))
	return strings.Join(parts, "\n\n")
}

func narrativeIntro(stageCount int) string {
	var b strings.Builder
	b.WriteString("# The Journey of Discovery: From Question to Hypothesis\n\n")
	b.WriteString("---\n\n")
	b.WriteString("This document is a complete window into how the pipeline reasoned through the research goal")
	b.WriteString(" - not just the final answer, but the turns of the thinking process.\n\n")
	fmt.Fprintf(&b, "The hypothesis was built through **%d stages of analysis**, each handled by a specialized agent. ", stageCount)
	b.WriteString("The agents weighed alternatives, scored evidence, and built on each other's outputs.\n\n")
	b.WriteString("**How to read this**:\n\n")
	b.WriteString("- Validate the reasoning against scientific principles\n")
	b.WriteString("- Check the confidence levels and the uncertainties each stage left open\n")
	b.WriteString("- Use the evidence citations as a starting point for deeper review\n")
	return b.String()
}

func stepNarrative(step types.ReasoningStep, index, total int, stepEvidence []types.EvidenceRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### %d/%d. %s: %s\n\n---\n\n", index, total, step.Agent, step.Action)

	if step.QuestionAsked != "" {
		fmt.Fprintf(&b, "#### The Question\n\n*%s*\n\n", step.QuestionAsked)
	}

	b.WriteString("#### Why This, Not That\n\n")
	if len(step.AlternativesConsidered) > 0 {
		b.WriteString("**Alternatives Evaluated:**\n\n")
		for i, alt := range step.AlternativesConsidered {
			if i == 4 {
				break
			}
			fmt.Fprintf(&b, "- Dropped: %s\n", alt)
		}
		fmt.Fprintf(&b, "\n**Selected**: %s\n\n", step.Action)
		fmt.Fprintf(&b, "**Why this choice?** %s\n\n", step.DecisionRationale)
		if step.Reasoning != "" {
			fmt.Fprintf(&b, "**Rationale:**\n\n%s\n\n", step.Reasoning)
		}
	} else {
		fmt.Fprintf(&b, "**Primary approach**: %s\n\n", step.Action)
		rationale := step.DecisionRationale
		if rationale == "" {
			rationale = "Direct path based on prior steps"
		}
		fmt.Fprintf(&b, "**Rationale**: %s\n\n", rationale)
	}

	b.WriteString("#### Decision Criteria\n\n")
	for _, c := range decisionCriteria[step.Agent] {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	fmt.Fprintf(&b, "\n**Applied to this case**: %s\n\n", step.InputSummary)

	if step.KeyInsight != "" {
		fmt.Fprintf(&b, "#### Key Insight\n\n%s\n\n", step.KeyInsight)
	}

	fmt.Fprintf(&b, "#### Confidence & Uncertainties\n\n")
	fmt.Fprintf(&b, "**Confidence Level**: %s (%.0f%%)\n\n", ConfidenceLabel(step.Confidence), step.Confidence*100)
	b.WriteString("**Remaining Uncertainties:**\n\n")
	for _, u := range agentUncertainties[step.Agent] {
		fmt.Fprintf(&b, "- %s\n", u)
	}
	b.WriteString("\n")

	b.WriteString("#### Handoff to Next Stage\n\n")
	if index < total {
		b.WriteString("**Delivered to next agent:**\n\n")
		for _, p := range handoffPayloads[step.Agent] {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		impact := step.ImpactOnHypothesis
		if impact == "" {
			impact = "Build upon validated foundation"
		}
		fmt.Fprintf(&b, "\n**This enables the next agent to**: %s\n\n", impact)
	} else {
		b.WriteString("**Final output**: Complete hypothesis with transparent reasoning chain\n\n")
	}

	if len(step.SupportingEvidence) > 0 {
		fmt.Fprintf(&b, "#### Evidence Base\n\nBacked by **%d scientific sources**\n\n", len(step.SupportingEvidence))
		if len(stepEvidence) > 0 {
			b.WriteString("**Top Supporting Studies:**\n\n")
			for i, rec := range stepEvidence {
				if i == 2 {
					break
				}
				fmt.Fprintf(&b, "- %s - %s\n", rec.Title, rec.Citation)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func narrativeSynthesis(steps []types.ReasoningStep) string {
	var b strings.Builder

	b.WriteString("## The Complete Journey\n\n---\n\n")
	fmt.Fprintf(&b, "This hypothesis emerged through a systematic %d-stage process, each step building on the previous one.\n\n", len(steps))

	b.WriteString("### Critical Milestones\n\n")
	for i, step := range steps {
		if step.KeyInsight != "" {
			fmt.Fprintf(&b, "**Stage %d (%s)**: %s\n\n", i+1, step.Agent, step.KeyInsight)
		}
	}

	avg := averageConfidence(steps)
	b.WriteString("### Overall Confidence Assessment\n\n")
	fmt.Fprintf(&b, "**Aggregate Confidence**: %s (%.0f%%)\n\n", ConfidenceLabel(avg), avg*100)
	switch {
	case avg >= 0.80:
		b.WriteString("**What This Means**: The convergence of evidence, theoretical support, and feasibility assessments suggests a high-priority research opportunity.\n\n")
	case avg >= 0.70:
		b.WriteString("**What This Means**: Solid scientific merit with good supporting evidence. Some uncertainties remain, but the framework is sound and warrants further validation.\n\n")
	default:
		b.WriteString("**What This Means**: An exploratory direction with moderate confidence. It offers innovative possibilities but requires additional validation before committing significant resources.\n\n")
	}

	totalAlternatives := 0
	totalEvidence := 0
	for _, step := range steps {
		totalAlternatives += len(step.AlternativesConsidered)
		totalEvidence += len(step.SupportingEvidence)
	}

	b.WriteString("### Analytical Rigor\n\n")
	fmt.Fprintf(&b, "- **Alternatives Evaluated**: %d different approaches were considered and compared\n", totalAlternatives)
	fmt.Fprintf(&b, "- **Evidence Sources**: %d scientific sources were consulted and analyzed\n", totalEvidence)
	fmt.Fprintf(&b, "- **Process Stages**: %d specialized agents contributed\n\n", len(steps))

	for _, step := range steps {
		if step.Agent == types.AgentEthicsValidator {
			b.WriteString("### Scientific Integrity\n\n")
			b.WriteString("**Ethics Review Completed**: This hypothesis has been evaluated for patient safety, informed consent requirements, equity concerns, and regulatory compliance.\n\n")
			break
		}
	}

	b.WriteString("### Decision Chain\n\n")
	for i, step := range steps {
		fmt.Fprintf(&b, "%d. **%s** -> *%s*\n", i+1, step.Agent, step.Action)
	}
	return b.String()
}

// NarrativeDocument is the structured form of the reasoning narrative,
// for programmatic access and UI rendering.
type NarrativeDocument struct {
	Narrative  NarrativeBody `json:"narrative" yaml:"narrative"`
	Cards      ReportCards   `json:"cards" yaml:"cards"`
	Provenance Provenance    `json:"provenance" yaml:"provenance"`
}

// NarrativeBody holds the per-agent reasoning records.
type NarrativeBody struct {
	Question string           `json:"question" yaml:"question"`
	Criteria []string         `json:"criteria" yaml:"criteria"`
	Agents   []AgentNarrative `json:"agents" yaml:"agents"`
}

// AgentNarrative is one agent's decisions in structured form.
type AgentNarrative struct {
	Name           string           `json:"name" yaml:"name"`
	Action         string           `json:"action" yaml:"action"`
	WhyThisNotThat []KeptDropped    `json:"why_this_not_that" yaml:"why_this_not_that"`
	DecisionPoints []string         `json:"decision_points" yaml:"decision_points"`
	Handoff        NarrativeHandoff `json:"handoff" yaml:"handoff"`
	Uncertainties  []string         `json:"uncertainties" yaml:"uncertainties"`
	Confidence     float64          `json:"confidence" yaml:"confidence"`
	KeyInsight     string           `json:"key_insight" yaml:"key_insight"`
}

// KeptDropped records one selected approach and its rejected alternatives.
type KeptDropped struct {
	Kept    string `json:"kept" yaml:"kept"`
	Dropped string `json:"dropped" yaml:"dropped"`
	Reason  string `json:"reason" yaml:"reason"`
}

// NarrativeHandoff records what an agent passed downstream.
type NarrativeHandoff struct {
	To      string   `json:"to" yaml:"to"`
	Payload []string `json:"payload" yaml:"payload"`
}

// ReportCards are compact run facts for quick UI consumption.
type ReportCards struct {
	Hypothesis HypothesisCard `json:"hypothesis" yaml:"hypothesis"`
	Evidence   EvidenceCard   `json:"evidence" yaml:"evidence"`
	Simulation SimulationCard `json:"simulation" yaml:"simulation"`
	Ethics     EthicsCard     `json:"ethics" yaml:"ethics"`
}

// HypothesisCard summarizes the hypothesis document.
type HypothesisCard struct {
	Title       string                 `json:"title" yaml:"title"`
	Feasibility types.FeasibilityLevel `json:"feasibility" yaml:"feasibility"`
	Ethics      types.EthicsVerdict    `json:"ethics" yaml:"ethics"`
	Panel       []string               `json:"panel" yaml:"panel"`
	NextSteps   []string               `json:"next_steps" yaml:"next_steps"`
}

// EvidenceCard summarizes the evidence base.
type EvidenceCard struct {
	Count int        `json:"count" yaml:"count"`
	Tiers TierCounts `json:"tiers" yaml:"tiers"`
}

// SimulationCard summarizes the feasibility scorecard.
type SimulationCard struct {
	Scores map[string]float64 `json:"scores" yaml:"scores"`
}

// EthicsCard summarizes the ethics report.
type EthicsCard struct {
	Verdict    types.EthicsVerdict `json:"verdict" yaml:"verdict"`
	Conditions []string            `json:"conditions" yaml:"conditions"`
}

// Provenance ties the document back to the run that produced it.
type Provenance struct {
	TraceID   string            `json:"trace_id" yaml:"trace_id"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
	Agents    map[string]string `json:"agents_versions" yaml:"agents_versions"`
}

// defaultCriteria frame every narrative.
var defaultCriteria = []string{"non-invasive", "reproducible", "clinically feasible", "evidence-based"}

// BuildNarrativeDocument assembles the structured narrative for a run.
func BuildNarrativeDocument(run *types.HypothesisRun) NarrativeDocument {
	steps := run.ReasoningSteps

	agents := make([]AgentNarrative, 0, len(steps))
	for i, step := range steps {
		a := AgentNarrative{
			Name:           strings.ToLower(step.Agent),
			Action:         step.Action,
			DecisionPoints: decisionCriteria[step.Agent],
			Uncertainties:  agentUncertainties[step.Agent],
			Confidence:     step.Confidence,
			KeyInsight:     step.KeyInsight,
		}

		if len(step.AlternativesConsidered) > 0 {
			dropped := step.AlternativesConsidered
			if len(dropped) > 3 {
				dropped = dropped[:3]
			}
			a.WhyThisNotThat = append(a.WhyThisNotThat, KeptDropped{
				Kept:    step.Action,
				Dropped: strings.Join(dropped, ", "),
				Reason:  step.DecisionRationale,
			})
		}

		next := "user"
		if i+1 < len(steps) {
			next = strings.ToLower(steps[i+1].Agent)
		}
		a.Handoff = NarrativeHandoff{To: next, Payload: handoffPayloads[step.Agent]}

		agents = append(agents, a)
	}

	evidence := ConsolidateEvidence(run.EvidencePacks)

	question := run.Goal
	if question == "" {
		question = "Generate novel medical hypothesis"
	}

	targets := run.Document.MolecularTargets
	if len(targets) > 5 {
		targets = targets[:5]
	}
	safeguards := run.Ethics.RecommendedSafeguards
	if len(safeguards) > 5 {
		safeguards = safeguards[:5]
	}

	scores := map[string]float64{}
	if run.Scorecard.TechnicalFeasibility != nil {
		scores["technical_feasibility"] = *run.Scorecard.TechnicalFeasibility
	}
	if run.Scorecard.ClinicalTranslatability != nil {
		scores["clinical_translatability"] = *run.Scorecard.ClinicalTranslatability
	}
	if run.Scorecard.SafetyProfile != nil {
		scores["safety_profile"] = *run.Scorecard.SafetyProfile
	}
	if run.Scorecard.RegulatoryPathReady != nil {
		scores["regulatory_path_ready"] = *run.Scorecard.RegulatoryPathReady
	}

	agentVersions := make(map[string]string, len(steps))
	for _, step := range steps {
		agentVersions[step.Agent] = "1.0"
	}

	return NarrativeDocument{
		Narrative: NarrativeBody{
			Question: question,
			Criteria: defaultCriteria,
			Agents:   agents,
		},
		Cards: ReportCards{
			Hypothesis: HypothesisCard{
				Title:       run.Document.Title,
				Feasibility: run.Scorecard.OverallFeasibility,
				Ethics:      run.Ethics.Verdict,
				Panel:       targets,
				NextSteps: []string{
					"Validate key molecular targets",
					"Conduct preliminary in vitro/in vivo studies",
					"Design pilot clinical study",
				},
			},
			Evidence: EvidenceCard{
				Count: evidence.Total,
				Tiers: evidence.Tiers,
			},
			Simulation: SimulationCard{Scores: scores},
			Ethics: EthicsCard{
				Verdict:    run.Ethics.Verdict,
				Conditions: safeguards,
			},
		},
		Provenance: Provenance{
			TraceID:   "hyp_" + uuid.NewString(),
			Timestamp: time.Now().UTC(),
			Agents:    agentVersions,
		},
	}
}
