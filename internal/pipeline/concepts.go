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

var conceptsPromptTmpl = template.Must(template.New("concepts").Parse(`You are an expert medical knowledge engineer. Build a concept map for the following research goal.

Medical Goal: {{.Goal}}

Domain: {{.Domain}}

Research Directions:
{{.Directions}}

Extract the core biomedical concepts (disease mechanisms, molecular targets, pathways, biomarkers, interventions), the relationships between them as "A -> B: mechanism" strings, search terms suitable for literature queries, and measurable surrogates with validated assays.

Respond with a JSON object only, no text outside it:
{"core_concepts": ["..."], "relationships": ["A -> B: mechanism"], "query_terms": ["..."], "measurable_surrogates": ["..."]}
`))

// wearableKeywords trigger the device-concept injection. Goals about
// continuous monitoring routinely lose the device concept in model
// output, which starves evidence mining of its best query terms.
var wearableKeywords = []string{"wear", "wearable", "sensor", "ecg", "device"}

func (p *Pipeline) runConcepts(ctx context.Context, run *types.HypothesisRun, out io.Writer) (stageResult, error) {
	var dirLines []string
	for _, d := range run.Directions {
		dirLines = append(dirLines, fmt.Sprintf("- %s: %s", d.Title, d.Description))
	}

	var buf bytes.Buffer
	err := conceptsPromptTmpl.Execute(&buf, map[string]string{
		"Goal":       run.Goal,
		"Domain":     string(run.Domain),
		"Directions": strings.Join(dirLines, "\n"),
	})
	if err != nil {
		return stageResult{}, fmt.Errorf("rendering concepts prompt: %w", err)
	}

	var cm types.ConceptMap
	raw, err := llm.CallWithRetry(ctx, p.Backend, buf.String(), p.maxRetries())
	if err == nil {
		err = llm.Decode(raw, &cm)
	}
	if err != nil || len(cm.CoreConcepts) == 0 {
		fmt.Fprintf(out, "warning: concepts stage degraded: %v\n", err)
		cm = fallbackConceptMap(run)
	}

	injectWearableConcept(&cm, run.Goal+" "+strings.Join(dirLines, " "))
	run.Concepts = cm

	nc, nr := len(cm.CoreConcepts), len(cm.Relationships)
	step := newStep(
		types.AgentConceptLearner,
		"Build Domain Concept Map",
		fmt.Sprintf("Domain: %s, %d research directions to analyze", run.Domain, len(run.Directions)),
		fmt.Sprintf("Extracted %d key biomedical concepts with relationships and measurable surrogates. Mapped %d concept relationships relevant to the research goal.", nc, nr),
		0.85,
	)
	step.QuestionAsked = "What biomedical concepts, pathways, and relationships are essential for understanding this domain?"
	step.KeyInsight = fmt.Sprintf("Built a knowledge foundation with %d interconnected concepts, establishing the scientific vocabulary for evidence analysis.", nc)
	step.ImpactOnHypothesis = "Provides the conceptual framework that guides evidence gathering and ensures comprehensive coverage of the domain."

	return stageResult{
		step: step,
		trace: types.TraceEntry{
			InputSummary:  fmt.Sprintf("%d directions -> concept map", len(run.Directions)),
			OutputSummary: fmt.Sprintf("%d concepts, %d relationships", nc, nr),
			KeyDecisions:  []string{fmt.Sprintf("Extracted %d key concepts", nc), fmt.Sprintf("Mapped %d relationships", nr)},
		},
	}, nil
}

// injectWearableConcept prepends a wearable-sensor concept when the goal
// is about devices but the model produced none.
func injectWearableConcept(cm *types.ConceptMap, context string) {
	lower := strings.ToLower(context)
	hit := false
	for _, kw := range wearableKeywords {
		if strings.Contains(lower, kw) {
			hit = true
			break
		}
	}
	if !hit {
		return
	}
	for _, c := range cm.CoreConcepts {
		cl := strings.ToLower(c)
		if strings.Contains(cl, "wear") || strings.Contains(cl, "sensor") ||
			strings.Contains(cl, "ecg") || strings.Contains(cl, "device") {
			return
		}
	}
	cm.CoreConcepts = append([]string{"wearable sensors"}, cm.CoreConcepts...)
	cm.QueryTerms = append(cm.QueryTerms, "wearable biosensor", "continuous physiological monitoring")
	cm.MeasurableSurrogates = append(cm.MeasurableSurrogates, "ECG", "PPG", "accelerometry")
}

func fallbackConceptMap(run *types.HypothesisRun) types.ConceptMap {
	return types.ConceptMap{
		CoreConcepts: []string{string(run.Domain)},
		QueryTerms:   []string{run.Goal},
	}
}
