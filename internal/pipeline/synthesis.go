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

var synthesisPromptTmpl = template.Must(template.New("synthesis").Parse(`You are a senior medical researcher specializing in hypothesis development. Synthesize the gathered knowledge into a coherent, testable hypothesis.

Medical Goal: {{.Goal}}
Domain: {{.Domain}}

Research Directions:
{{.Directions}}

Key Concepts: {{.Concepts}}

Evidence: {{.EvidenceCount}} scored evidence records gathered

Cross-Domain Innovations:
{{.Transfers}}

Create a publication-ready hypothesis with a clear title, a single testable statement, the mechanism of action, the clinical rationale, the molecular targets, the key assumptions requiring validation, and the open gaps.

Also add 2 divergent variants: short speculative claims that reframe the hypothesis through a cross-domain analogy or a mechanistic inversion. Each variant must be novel, testable, and plausible.

Respond with a JSON object only, no text outside it:
{"title": "...", "statement": "...", "mechanism": "...", "rationale": "...", "molecular_targets": ["..."], "assumptions": ["..."], "gaps": ["..."], "divergent_variants": ["variant claim 1", "variant claim 2"]}
`))

const maxSynthesisEvidenceIDs = 5

func (p *Pipeline) runSynthesis(ctx context.Context, run *types.HypothesisRun, out io.Writer) (stageResult, error) {
	var dirLines []string
	for i, d := range run.Directions {
		if i == 3 {
			break
		}
		dirLines = append(dirLines, fmt.Sprintf("- %s: %s", d.Title, d.Description))
	}
	concepts := run.Concepts.CoreConcepts
	if len(concepts) > 10 {
		concepts = concepts[:10]
	}
	var transferLines []string
	for i, t := range run.Transfers {
		if i == 3 {
			break
		}
		transferLines = append(transferLines, fmt.Sprintf("- %s from %s", t.Concept, t.SourceDomain))
	}

	var buf bytes.Buffer
	err := synthesisPromptTmpl.Execute(&buf, map[string]any{
		"Goal":          run.Goal,
		"Domain":        string(run.Domain),
		"Directions":    strings.Join(dirLines, "\n"),
		"Concepts":      strings.Join(concepts, ", "),
		"EvidenceCount": len(run.EvidencePacks),
		"Transfers":     strings.Join(transferLines, "\n"),
	})
	if err != nil {
		return stageResult{}, fmt.Errorf("rendering synthesis prompt: %w", err)
	}

	var doc types.HypothesisDocument
	raw, err := llm.CallWithRetry(ctx, p.Backend, buf.String(), p.maxRetries())
	if err == nil {
		err = llm.Decode(raw, &doc)
	}
	if err != nil || doc.Title == "" {
		fmt.Fprintf(out, "warning: synthesis stage degraded: %v\n", err)
		doc = fallbackDocument(run.Domain)
	}
	fillDocumentDefaults(&doc)
	run.Document = doc

	step := newStep(
		types.AgentSynthesizer,
		"Synthesize Comprehensive Hypothesis",
		fmt.Sprintf("Integrating %d directions, %d concepts, %d evidence records, %d cross-domain transfers",
			len(run.Directions), len(run.Concepts.CoreConcepts), len(run.EvidencePacks), len(run.Transfers)),
		fmt.Sprintf("Synthesized hypothesis document '%s' with mechanism of action, molecular targets, clinical rationale, and %d divergent variants.", doc.Title, len(doc.DivergentVariants)),
		0.85,
	)
	step.QuestionAsked = "How can we integrate all gathered knowledge into a coherent, actionable hypothesis?"
	step.KeyInsight = fmt.Sprintf("Created hypothesis '%s' combining evidence-based rationale with cross-domain innovation.", doc.Title)
	step.ImpactOnHypothesis = "Transforms raw data and insights into a structured, testable hypothesis ready for feasibility and ethics evaluation."
	for i, r := range run.EvidencePacks {
		if i == maxSynthesisEvidenceIDs {
			break
		}
		step.SupportingEvidence = append(step.SupportingEvidence, r.ID)
	}

	return stageResult{
		step: step,
		trace: types.TraceEntry{
			InputSummary:  fmt.Sprintf("Integrating %d evidence + %d transfers", len(run.EvidencePacks), len(run.Transfers)),
			OutputSummary: fmt.Sprintf("Hypothesis: %s (%d variants)", truncate(doc.Title, 50), len(doc.DivergentVariants)),
			KeyDecisions:  []string{fmt.Sprintf("Synthesized '%s'", doc.Title), fmt.Sprintf("Divergent variants: %d", len(doc.DivergentVariants))},
		},
	}, nil
}

// fillDocumentDefaults backfills fields models routinely omit so the
// report layer never renders an empty section.
func fillDocumentDefaults(doc *types.HypothesisDocument) {
	if doc.Statement == "" {
		doc.Statement = doc.Title
	}
	if doc.Rationale == "" {
		var parts []string
		if doc.Mechanism != "" {
			parts = append(parts, fmt.Sprintf("This approach is justified by its %s", truncate(doc.Mechanism, 150)))
		}
		if len(doc.MolecularTargets) > 0 {
			n := len(doc.MolecularTargets)
			if n > 2 {
				n = 2
			}
			parts = append(parts, fmt.Sprintf("Targeting %s provides a rational strategy.", strings.Join(doc.MolecularTargets[:n], ", ")))
		}
		doc.Rationale = strings.Join(parts, " ")
		if doc.Rationale == "" {
			doc.Rationale = "Clinical rationale requires validation through systematic experimental studies."
		}
	}
}

func fallbackDocument(domain types.MedicalDomain) types.HypothesisDocument {
	return types.HypothesisDocument{
		Title:            fmt.Sprintf("Novel Therapeutic Approach for %s", domain),
		Statement:        "A multi-targeted intervention improves clinical outcomes",
		Mechanism:        "Multi-targeted intervention addressing key pathological mechanisms",
		Rationale:        "Addresses unmet medical need",
		MolecularTargets: []string{"To be determined"},
		Assumptions:      []string{"Pathway involvement", "Target accessibility"},
		Gaps:             []string{"Optimal dosing", "Long-term effects"},
	}
}
