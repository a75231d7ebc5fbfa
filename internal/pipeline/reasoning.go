// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "github.com/pdiddy/hypothesis-engine/pkg/types"

// stageAlternatives lists the clinical and biological approaches each
// stage weighs and rejects. These are domain alternatives, not process
// alternatives: what a researcher would have done instead.
var stageAlternatives = map[string][]string{
	types.AgentVisioner: {
		"Single-target approach (monotherapy)",
		"Repurpose existing approved drug",
		"Focus solely on symptomatic treatment",
		"Target late-stage disease only",
	},
	types.AgentConceptLearner: {
		"Limit to well-established biomarkers only",
		"Include experimental markers without validation",
		"Focus on single biological pathway",
		"Ignore cross-talk between pathways",
	},
	types.AgentEvidenceMiner: {
		"Only use clinical trial data (exclude preclinical)",
		"Accept all sources without quality filtering",
		"Limit to last 2 years only",
		"Include only meta-analyses and reviews",
	},
	types.AgentCrossDomainMapper: {
		"Stay within single medical domain",
		"Copy entire protocol from source domain",
		"Ignore regulatory differences",
		"Skip mechanistic validation",
	},
	types.AgentSynthesizer: {
		"Monotherapy hypothesis",
		"Combination without mechanistic rationale",
		"Focus only on efficacy (ignore safety)",
		"Skip delivery/formulation considerations",
	},
	types.AgentSimulator: {
		"Assume ideal clinical conditions only",
		"Skip cost-effectiveness analysis",
		"Ignore patient compliance factors",
		"Use only in-silico models (no real-world data)",
	},
	types.AgentEthicsValidator: {
		"Approve without conditions",
		"Reject due to any minor uncertainty",
		"Skip vulnerable population analysis",
		"Defer ethics to later stage",
	},
}

// stageRationales explains, per stage, why the chosen path won over the
// alternatives in biological and clinical terms.
var stageRationales = map[string]string{
	types.AgentVisioner: "Multi-layer approach selected because early-stage disease requires convergent evidence " +
		"from multiple pathophysiological pathways. Single-target strategies have historically " +
		"failed due to disease heterogeneity and compensatory mechanisms.",
	types.AgentConceptLearner: "Selected measurable surrogates that map to known pathophysiology, ensuring each concept " +
		"has validated assay methods and clinical relevance. This balances comprehensiveness " +
		"with technical feasibility.",
	types.AgentEvidenceMiner: "Applied multi-dimension scoring (relevance, quality, recency, impact) to prioritize " +
		"high-quality peer-reviewed studies with reproducible methods. This filters out " +
		"low-quality data while maintaining sufficient evidence base.",
	types.AgentCrossDomainMapper: "Selected transfers with proven feasibility in source domain AND mechanistic " +
		"transferability to target disease. Each transfer addresses a specific gap in " +
		"current approaches.",
	types.AgentSynthesizer: "Integrated complementary biological layers to create robust signal resilient to " +
		"technical and biological variation. Multi-layer approach provides cross-validation " +
		"and reduces false positives.",
	types.AgentSimulator: "Weighted clinical feasibility and patient accessibility highly, while applying " +
		"specificity penalties for non-specific markers. This prioritizes real-world " +
		"applicability over theoretical performance.",
	types.AgentEthicsValidator: "Conditional approval requires standardization protocols, bias audits, and " +
		"longitudinal monitoring before clinical deployment. Risk-benefit balance is " +
		"favorable with proper safeguards.",
}

// newStep assembles a reasoning step with the stage's canned alternatives
// and rationale filled in.
func newStep(agent, action, inputSummary, reasoning string, confidence float64) types.ReasoningStep {
	return types.ReasoningStep{
		Agent:                  agent,
		Action:                 action,
		InputSummary:           inputSummary,
		Reasoning:              reasoning,
		AlternativesConsidered: stageAlternatives[agent],
		DecisionRationale:      stageRationales[agent],
		Confidence:             confidence,
	}
}
