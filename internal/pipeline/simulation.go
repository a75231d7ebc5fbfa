// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"text/template"

	"github.com/pdiddy/hypothesis-engine/internal/llm"
	"github.com/pdiddy/hypothesis-engine/internal/report"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

var simulationPromptTmpl = template.Must(template.New("simulation").Parse(`You are an expert in computational biology and drug development, with deep knowledge of pharmacology, delivery systems, toxicity prediction, and regulatory pathways. Provide a realistic, evidence-based feasibility assessment.

Hypothesis: {{.Title}}

Mechanism: {{.Mechanism}}

Targets: {{.Targets}}

Domain: {{.Domain}}

Score the hypothesis from 0.0 to 1.0 on four dimensions: technical feasibility (can it be built), clinical translatability (path to patient use), safety profile (patient risk), and regulatory readiness. Also list the open uncertainties and the key risk factors with mitigation notes.

Respond with a JSON object only, no text outside it:
{"technical_feasibility": 0.7, "clinical_translatability": 0.6, "safety_profile": 0.8, "regulatory_path_ready": 0.5, "uncertainties": ["..."], "risk_factors": ["..."]}
`))

func (p *Pipeline) runSimulation(ctx context.Context, run *types.HypothesisRun, out io.Writer) (stageResult, error) {
	doc := run.Document

	var buf bytes.Buffer
	err := simulationPromptTmpl.Execute(&buf, map[string]string{
		"Title":     doc.Title,
		"Mechanism": doc.Mechanism,
		"Targets":   strings.Join(doc.MolecularTargets, ", "),
		"Domain":    string(run.Domain),
	})
	if err != nil {
		return stageResult{}, fmt.Errorf("rendering simulation prompt: %w", err)
	}

	var card types.SimulationScorecard
	raw, err := llm.CallWithRetry(ctx, p.Backend, buf.String(), p.maxRetries())
	if err == nil {
		err = llm.Decode(raw, &card)
	}
	if err != nil {
		fmt.Fprintf(out, "warning: simulation stage degraded: %v\n", err)
		card = fallbackScorecard()
	}
	clampScorecard(&card)

	// Derive the composite from the four dimensions, inferring any the
	// model skipped from the evidence strength and step confidence.
	strength := report.ConsolidateEvidence(run.EvidencePacks).Strength
	avgConf := stepConfidenceAverage(run.ReasoningSteps)
	technical := report.InferMissingScore(card.TechnicalFeasibility, strength, avgConf, 0.6)
	clinical := report.InferMissingScore(card.ClinicalTranslatability, strength, avgConf, 0.6)
	safety := report.InferMissingScore(card.SafetyProfile, strength, avgConf, 0.8)
	regulatory := report.InferMissingScore(card.RegulatoryPathReady, strength, avgConf, 0.4)

	composite := types.WeightTechnical*technical +
		types.WeightClinical*clinical +
		types.WeightSafety*safety +
		types.WeightRegulatory*regulatory
	card.FeasibilityScore = math.Round(composite*100) / 100
	card.OverallFeasibility = types.OverallLabel(composite)
	run.Scorecard = card

	step := newStep(
		types.AgentSimulator,
		"Assess Scientific & Technical Feasibility",
		fmt.Sprintf("Evaluating hypothesis '%s' across technical, clinical, safety, and regulatory dimensions", doc.Title),
		fmt.Sprintf("Assessed feasibility score %.2f with overall verdict %s. Technical feasibility: %.2f, regulatory readiness: %.2f.",
			card.FeasibilityScore, card.OverallFeasibility, technical, regulatory),
		0.75,
	)
	step.QuestionAsked = "Is this hypothesis scientifically sound and practically achievable with current technology and resources?"
	step.KeyInsight = fmt.Sprintf("Feasibility verdict: %s (score: %.2f). %s", card.OverallFeasibility, card.FeasibilityScore, feasibilityGloss(card.OverallFeasibility))
	step.ImpactOnHypothesis = "Provides a realistic assessment of implementation viability, practical constraints, and resource needs."

	return stageResult{
		step: step,
		trace: types.TraceEntry{
			InputSummary:  fmt.Sprintf("Assessing %s", truncate(doc.Title, 50)),
			OutputSummary: fmt.Sprintf("Verdict: %s (score: %.2f)", card.OverallFeasibility, card.FeasibilityScore),
			KeyDecisions:  []string{fmt.Sprintf("Feasibility: %s", card.OverallFeasibility), fmt.Sprintf("Score: %.2f", card.FeasibilityScore)},
		},
	}, nil
}

func feasibilityGloss(level types.FeasibilityLevel) string {
	switch level {
	case types.FeasibilityGreen:
		return "Hypothesis is viable for implementation."
	case types.FeasibilityRed:
		return "Hypothesis faces significant challenges."
	default:
		return "Hypothesis requires careful planning."
	}
}

func clampScorecard(card *types.SimulationScorecard) {
	for _, v := range []*float64{
		card.TechnicalFeasibility, card.ClinicalTranslatability,
		card.SafetyProfile, card.RegulatoryPathReady,
	} {
		if v == nil {
			continue
		}
		if *v < 0 {
			*v = 0
		}
		if *v > 1 {
			*v = 1
		}
	}
}

// fallbackScorecard is the conservative baseline when the model is
// unavailable.
func fallbackScorecard() types.SimulationScorecard {
	return types.SimulationScorecard{
		TechnicalFeasibility:    types.Float(0.6),
		ClinicalTranslatability: types.Float(0.6),
		SafetyProfile:           types.Float(0.7),
		RegulatoryPathReady:     types.Float(0.6),
		Uncertainties:           []string{"Limited in-silico data", "Requires experimental validation"},
		RiskFactors:             []string{"Mechanism validity unconfirmed", "Target accessibility unproven"},
	}
}

func stepConfidenceAverage(steps []types.ReasoningStep) float64 {
	if len(steps) == 0 {
		return 0.5
	}
	var sum float64
	for _, s := range steps {
		sum += s.Confidence
	}
	return sum / float64(len(steps))
}
