// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pdiddy/hypothesis-engine/internal/llm"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

var ethicsPromptTmpl = template.Must(template.New("ethics").Parse(`You are a medical ethics and regulatory expert versed in clinical research ethics, regulatory frameworks, patient safety, risk-benefit analysis, and healthcare equity.

Hypothesis: {{.Title}}

Mechanism: {{.Mechanism}}

Domain: {{.Domain}}

Safety Profile Score: {{.SafetyScore}}{{.Constraints}}

Conduct an ethical and regulatory assessment covering patient safety, regulatory path, vulnerable populations, informed consent, and equity. Then run an adversarial review: name the top fragile assumptions (assumptions that, if wrong, invalidate the approach) and the potential confounders that could explain the expected outcomes without the proposed mechanism.

Verdict scale: "green" means ethically sound, "amber" acceptable with safeguards and monitoring, "red" significant concerns requiring resolution.

Respond with a JSON object only, no text outside it:
{"verdict": "green|amber|red", "concerns": ["..."], "fragile_assumptions": ["..."], "potential_confounders": ["..."], "recommended_safeguards": ["..."]}
`))

// maxFragileForGreen is the adversarial-review bound: more fragile
// assumptions than this caps a green verdict at amber.
const maxFragileForGreen = 2

func (p *Pipeline) runEthics(ctx context.Context, run *types.HypothesisRun, out io.Writer) (stageResult, error) {
	doc := run.Document
	safety := 0.5
	if run.Scorecard.SafetyProfile != nil {
		safety = *run.Scorecard.SafetyProfile
	}

	var buf bytes.Buffer
	err := ethicsPromptTmpl.Execute(&buf, map[string]string{
		"Title":       doc.Title,
		"Mechanism":   doc.Mechanism,
		"Domain":      string(run.Domain),
		"SafetyScore": fmt.Sprintf("%.2f", safety),
		"Constraints": constraintsText(run.Constraints),
	})
	if err != nil {
		return stageResult{}, fmt.Errorf("rendering ethics prompt: %w", err)
	}

	var rep types.EthicsReport
	raw, err := llm.CallWithRetry(ctx, p.Backend, buf.String(), p.maxRetries())
	if err == nil {
		err = llm.Decode(raw, &rep)
	}
	if err != nil {
		fmt.Fprintf(out, "warning: ethics stage degraded: %v\n", err)
		rep = fallbackEthicsReport(run.Domain)
	}
	normalizeEthicsReport(&rep)
	run.Ethics = rep

	step := newStep(
		types.AgentEthicsValidator,
		"Validate Ethical & Safety Standards",
		fmt.Sprintf("Evaluating hypothesis '%s' against ethical frameworks: patient safety, informed consent, equity, regulatory compliance", doc.Title),
		fmt.Sprintf("Ethics verdict: %s. Identified %d concerns and %d recommended safeguards; adversarial review surfaced %d fragile assumptions and %d potential confounders.",
			strings.ToUpper(string(rep.Verdict)), len(rep.Concerns), len(rep.RecommendedSafeguards), len(rep.FragileAssumptions), len(rep.PotentialConfounders)),
		0.85,
	)
	step.QuestionAsked = "Does this hypothesis meet ethical standards for patient safety, consent, equity, and regulatory compliance?"
	step.KeyInsight = fmt.Sprintf("Ethics verdict: %s. %s (%d concerns, %d safeguards).",
		strings.ToUpper(string(rep.Verdict)), ethicsGloss(rep.Verdict), len(rep.Concerns), len(rep.RecommendedSafeguards))
	step.ImpactOnHypothesis = "Ensures hypothesis development prioritizes patient safety, ethical standards, and social responsibility before clinical implementation."

	decisions := []string{
		fmt.Sprintf("Ethics: %s", strings.ToUpper(string(rep.Verdict))),
		fmt.Sprintf("%d concerns", len(rep.Concerns)),
		fmt.Sprintf("%d fragile assumptions", len(rep.FragileAssumptions)),
	}
	if rep.CapApplied != "" {
		decisions = append(decisions, rep.CapApplied)
	}

	return stageResult{
		step: step,
		trace: types.TraceEntry{
			InputSummary:  fmt.Sprintf("Validating %s", truncate(doc.Title, 50)),
			OutputSummary: fmt.Sprintf("Verdict: %s (%d fragile assumptions)", strings.ToUpper(string(rep.Verdict)), len(rep.FragileAssumptions)),
			KeyDecisions:  decisions,
		},
	}, nil
}

// normalizeEthicsReport enforces a valid verdict and the adversarial
// override: a green verdict with too many fragile assumptions drops to
// amber, with the cap recorded on the report.
func normalizeEthicsReport(rep *types.EthicsReport) {
	switch types.EthicsVerdict(strings.ToLower(string(rep.Verdict))) {
	case types.VerdictGreen:
		rep.Verdict = types.VerdictGreen
	case types.VerdictRed:
		rep.Verdict = types.VerdictRed
	default:
		rep.Verdict = types.VerdictAmber
	}

	if rep.Verdict == types.VerdictGreen && len(rep.FragileAssumptions) > maxFragileForGreen {
		rep.Verdict = types.VerdictAmber
		rep.CapApplied = fmt.Sprintf("downgraded green to amber: %d fragile assumptions without fallback plans", len(rep.FragileAssumptions))
	}
}

func ethicsGloss(v types.EthicsVerdict) string {
	switch v {
	case types.VerdictGreen:
		return "Hypothesis meets ethical standards"
	case types.VerdictRed:
		return "Hypothesis requires significant ethical modifications"
	default:
		return "Hypothesis needs ethical considerations addressed"
	}
}

// fallbackEthicsReport is the conservative amber verdict used when the
// model is unavailable.
func fallbackEthicsReport(domain types.MedicalDomain) types.EthicsReport {
	return types.EthicsReport{
		Verdict: types.VerdictAmber,
		Concerns: []string{
			"Requires safety monitoring",
			"Long-term effects unknown",
		},
		RecommendedSafeguards: []string{
			"Safety monitoring committee",
			"Regular adverse event reporting",
			"Patient follow-up protocol",
			fmt.Sprintf("Standard ethics review for %s research", domain),
		},
	}
}
