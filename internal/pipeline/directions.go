// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"text/template"

	"github.com/pdiddy/hypothesis-engine/internal/llm"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// directionsPromptTmpl asks for 2-5 complementary research directions.
var directionsPromptTmpl = template.Must(template.New("directions").Parse(`You are an expert medical research strategist. Generate creative, feasible research directions for the following medical challenge.

Medical Challenge:
{{.Goal}}

Domain: {{.Domain}}{{.Constraints}}

Generate 2-5 innovative research directions. For each direction provide a clear title, the proposed mechanism, the molecular targets or pathways involved, and a novelty estimate in [0,1].

Respond with a JSON object only, no text outside it:
{"directions": [{"title": "...", "description": "mechanism and approach", "molecular_targets": ["..."], "pathways": ["..."], "novelty_score": 0.7}]}
`))

type directionsResponse struct {
	Directions []types.ResearchDirection `json:"directions"`
}

func (p *Pipeline) runDirections(ctx context.Context, run *types.HypothesisRun, out io.Writer) (stageResult, error) {
	var buf bytes.Buffer
	err := directionsPromptTmpl.Execute(&buf, map[string]string{
		"Goal":        run.Goal,
		"Domain":      string(run.Domain),
		"Constraints": constraintsText(run.Constraints),
	})
	if err != nil {
		return stageResult{}, fmt.Errorf("rendering directions prompt: %w", err)
	}

	var resp directionsResponse
	raw, err := llm.CallWithRetry(ctx, p.Backend, buf.String(), p.maxRetries())
	if err == nil {
		err = llm.Decode(raw, &resp)
	}
	if err != nil || len(resp.Directions) == 0 {
		fmt.Fprintf(out, "warning: directions stage degraded: %v\n", err)
		resp.Directions = fallbackDirections(run.Domain)
	}
	run.Directions = resp.Directions

	n := len(run.Directions)
	step := newStep(
		types.AgentVisioner,
		"Generate Research Directions",
		fmt.Sprintf("Research goal: '%s' in domain: %s", run.Goal, run.Domain),
		fmt.Sprintf("Analyzed clinical need and pathophysiology to identify %d complementary research directions spanning multiple biological layers. Each direction addresses a different aspect of disease complexity.", n),
		0.80,
	)
	step.QuestionAsked = "What research directions are most promising for achieving this medical goal?"
	step.KeyInsight = fmt.Sprintf("Identified %d viable research paths that complement each other and address disease heterogeneity through multi-layer biological coverage.", n)
	step.ImpactOnHypothesis = "Sets strategic foundation by defining multi-target scope, enabling subsequent stages to explore a comprehensive solution space."

	return stageResult{
		step: step,
		trace: types.TraceEntry{
			InputSummary:  fmt.Sprintf("Goal: %s", truncate(run.Goal, 100)),
			OutputSummary: fmt.Sprintf("%d research directions identified", n),
			KeyDecisions:  []string{fmt.Sprintf("Generated %d complementary directions", n)},
		},
	}, nil
}

// fallbackDirections keeps the pipeline moving when the model is
// unavailable or returns garbage.
func fallbackDirections(domain types.MedicalDomain) []types.ResearchDirection {
	return []types.ResearchDirection{
		{
			Title:            fmt.Sprintf("Novel therapeutic approach for %s", domain),
			Description:      "Multi-targeted intervention addressing key pathways",
			MolecularTargets: []string{"To be determined"},
			NoveltyScore:     0.5,
		},
	}
}
