// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"strings"
	"testing"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

func narrativeSteps() []types.ReasoningStep {
	return []types.ReasoningStep{
		{
			Agent:                  types.AgentVisioner,
			Action:                 "Select multi-layer research directions",
			QuestionAsked:          "Which biology layers offer the strongest signal?",
			InputSummary:           "research goal and domain constraints",
			AlternativesConsidered: []string{"single-layer genomics", "imaging-only approach", "proteomics-only panel", "metabolomics screen"},
			DecisionRationale:      "multi-layer panels tolerate single-marker failure",
			Confidence:             0.85,
			KeyInsight:             "complementary layers derisk biological variability",
		},
		{
			Agent:              types.AgentEvidenceMiner,
			Action:             "Mine literature and trial registries",
			Confidence:         0.72,
			SupportingEvidence: []string{"e1", "e2", "e3", "e4"},
		},
		{
			Agent:      types.AgentEthicsValidator,
			Action:     "Validate ethics and safety",
			Confidence: 0.65,
		},
	}
}

func TestReasoningNarrativeEmpty(t *testing.T) {
	if got := ReasoningNarrative(nil, nil); got != "No reasoning steps recorded." {
		t.Errorf("got %q", got)
	}
}

func TestReasoningNarrativeStructure(t *testing.T) {
	steps := narrativeSteps()
	packs := []types.EvidenceRecord{
		rec("e1", "PubMed", 0.9, 0.9),
		rec("e2", "PubMed", 0.8, 0.8),
		rec("e3", "Europe PMC", 0.7, 0.7),
	}

	got := ReasoningNarrative(steps, packs)

	if !strings.Contains(got, "**3 stages of analysis**") {
		t.Errorf("intro missing stage count:\n%s", got)
	}
	for i, step := range steps {
		header := strings.Join([]string{step.Agent, step.Action}, ": ")
		if !strings.Contains(got, header) {
			t.Errorf("step %d header missing: %q", i+1, header)
		}
	}
	if !strings.Contains(got, "Dropped: single-layer genomics") {
		t.Errorf("alternatives not rendered:\n%s", got)
	}
	if !strings.Contains(got, "**Confidence Level**: High (85%)") {
		t.Errorf("confidence label mismatch:\n%s", got)
	}
	// Evidence count comes from the step, capped titles from the packs.
	if !strings.Contains(got, "Backed by **4 scientific sources**") {
		t.Errorf("evidence count missing:\n%s", got)
	}
	if !strings.Contains(got, "Record e1") || strings.Contains(got, "Record e3") {
		t.Errorf("top studies should cap at two records:\n%s", got)
	}
	// The last stage hands off to the user, not to another agent.
	if !strings.Contains(got, "**Final output**: Complete hypothesis with transparent reasoning chain") {
		t.Errorf("final handoff missing:\n%s", got)
	}
	if !strings.Contains(got, "Ethics Review Completed") {
		t.Errorf("ethics synthesis block missing:\n%s", got)
	}
	if !strings.Contains(got, "**Alternatives Evaluated**: 4 different approaches") {
		t.Errorf("rigor tally wrong:\n%s", got)
	}
}

func TestBuildNarrativeDocument(t *testing.T) {
	run := summaryRun(t)
	run.ReasoningSteps = narrativeSteps()

	doc := BuildNarrativeDocument(run)

	if doc.Narrative.Question != run.Goal {
		t.Errorf("got question %q, want run goal", doc.Narrative.Question)
	}
	if len(doc.Narrative.Agents) != 3 {
		t.Fatalf("got %d agents, want 3", len(doc.Narrative.Agents))
	}

	first := doc.Narrative.Agents[0]
	if first.Name != "visioner" {
		t.Errorf("agent names are lowercased: got %q", first.Name)
	}
	if first.Handoff.To != "evidenceminer" {
		t.Errorf("got handoff %q, want next agent", first.Handoff.To)
	}
	if len(first.WhyThisNotThat) != 1 {
		t.Fatalf("got %d kept/dropped entries, want 1", len(first.WhyThisNotThat))
	}
	// Dropped alternatives cap at three.
	if got := strings.Count(first.WhyThisNotThat[0].Dropped, ","); got != 2 {
		t.Errorf("dropped list should hold 3 entries, got %q", first.WhyThisNotThat[0].Dropped)
	}

	last := doc.Narrative.Agents[2]
	if last.Handoff.To != "user" {
		t.Errorf("final handoff goes to %q, want user", last.Handoff.To)
	}
	if len(last.WhyThisNotThat) != 0 {
		t.Errorf("step without alternatives should have no kept/dropped entries")
	}

	if doc.Cards.Evidence.Count != 4 {
		t.Errorf("got evidence count %d, want 4", doc.Cards.Evidence.Count)
	}
	if doc.Cards.Evidence.Tiers.T1 != 1 {
		t.Errorf("got tiers %+v", doc.Cards.Evidence.Tiers)
	}
	if got := doc.Cards.Simulation.Scores["technical_feasibility"]; got != 0.8 {
		t.Errorf("got technical score %v, want 0.8", got)
	}
	if doc.Cards.Hypothesis.Feasibility != types.FeasibilityGreen {
		t.Errorf("got feasibility %v", doc.Cards.Hypothesis.Feasibility)
	}

	if !strings.HasPrefix(doc.Provenance.TraceID, "hyp_") {
		t.Errorf("got trace ID %q", doc.Provenance.TraceID)
	}
	if doc.Provenance.Timestamp.IsZero() {
		t.Error("provenance timestamp not set")
	}
	if doc.Provenance.Agents[types.AgentVisioner] != "1.0" {
		t.Errorf("got agent versions %v", doc.Provenance.Agents)
	}
}

func TestBuildNarrativeDocumentDefaultQuestion(t *testing.T) {
	run := summaryRun(t)
	run.Goal = ""
	doc := BuildNarrativeDocument(run)
	if doc.Narrative.Question != "Generate novel medical hypothesis" {
		t.Errorf("got %q", doc.Narrative.Question)
	}
}

func TestBuildNarrativeDocumentMissingScores(t *testing.T) {
	run := summaryRun(t)
	run.Scorecard = types.SimulationScorecard{
		TechnicalFeasibility: types.Float(0.5),
	}
	doc := BuildNarrativeDocument(run)
	if len(doc.Cards.Simulation.Scores) != 1 {
		t.Errorf("nil dimensions should be omitted: %v", doc.Cards.Simulation.Scores)
	}
}
