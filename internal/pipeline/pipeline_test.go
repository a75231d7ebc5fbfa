// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/hypothesis-engine/internal/sources"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// scriptedBackend returns canned JSON keyed on a distinctive phrase in
// each stage prompt.
type scriptedBackend struct {
	calls int
}

func (b *scriptedBackend) GenerateJSON(_ context.Context, prompt string) (json.RawMessage, error) {
	b.calls++
	switch {
	case strings.Contains(prompt, "research strategist"):
		return json.RawMessage(`{"directions": [
			{"title": "KRAS degrader therapy", "description": "Targeted protein degradation of mutant KRAS", "molecular_targets": ["KRAS G12D"], "pathways": ["MAPK"], "novelty_score": 0.8},
			{"title": "Stromal remodeling", "description": "Normalize tumor stroma to improve drug penetration", "molecular_targets": ["FAP"], "pathways": ["TGF-beta"], "novelty_score": 0.7}
		]}`), nil
	case strings.Contains(prompt, "knowledge engineer"):
		return json.RawMessage(`{
			"core_concepts": ["KRAS signaling", "tumor stroma"],
			"relationships": ["KRAS G12D -> MAPK activation: constitutive signaling"],
			"query_terms": ["KRAS G12D inhibitor pancreatic"],
			"measurable_surrogates": ["phospho-ERK"]
		}`), nil
	case strings.Contains(prompt, "cross-domain idea transfer"):
		return json.RawMessage(`{"transfers": [
			{"source_domain": "materials science", "concept": "stimuli-responsive polymers", "application": "pH-triggered drug release in tumor microenvironment", "transferability_score": 0.7}
		]}`), nil
	case strings.Contains(prompt, "hypothesis development"):
		return json.RawMessage(`{
			"title": "pH-responsive KRAS degrader delivery",
			"statement": "Encapsulating a KRAS G12D degrader in pH-responsive polymers improves tumor-selective exposure",
			"mechanism": "Acidic tumor microenvironment triggers polymer release of the degrader payload",
			"rationale": "Combines validated KRAS targeting with selective delivery",
			"molecular_targets": ["KRAS G12D"],
			"assumptions": ["tumor pH is consistently acidic"],
			"gaps": ["no in vivo release kinetics data"],
			"divergent_variants": ["systemic degrader without carrier", "antibody-conjugated carrier"]
		}`), nil
	case strings.Contains(prompt, "computational biology"):
		return json.RawMessage(`{
			"technical_feasibility": 0.8,
			"clinical_translatability": 0.7,
			"safety_profile": 0.9,
			"regulatory_path_ready": 0.6,
			"uncertainties": ["release kinetics in vivo"],
			"risk_factors": ["polymer immunogenicity"]
		}`), nil
	case strings.Contains(prompt, "medical ethics"):
		return json.RawMessage(`{
			"verdict": "green",
			"concerns": ["requires dose-escalation safety data"],
			"fragile_assumptions": ["tumor pH is consistently acidic"],
			"potential_confounders": ["chemotherapy co-treatment"],
			"recommended_safeguards": ["independent safety monitoring board"]
		}`), nil
	}
	return nil, fmt.Errorf("unexpected prompt: %s", prompt[:40])
}

// failingBackend simulates an unreachable model endpoint.
type failingBackend struct{}

func (failingBackend) GenerateJSON(context.Context, string) (json.RawMessage, error) {
	return nil, fmt.Errorf("connection refused")
}

// fakeSource returns two fixed records for any query.
type fakeSource struct{}

func (fakeSource) Name() string { return "FakeLab" }

func (fakeSource) Search(_ context.Context, query string, _ types.SourcesConfig) ([]types.EvidenceRecord, error) {
	return []types.EvidenceRecord{
		{
			ID:       "rec000000001",
			Source:   "FakeLab",
			Title:    "KRAS G12D inhibitor efficacy in pancreatic cancer models",
			Abstract: "A KRAS G12D inhibitor reduced tumor growth in pancreatic cancer xenografts.",
			Citation: "J Fake Oncol, 2025",
		},
		{
			ID:       "rec000000002",
			Source:   "FakeLab",
			Title:    "pH-responsive polymer carriers for tumor drug delivery",
			Abstract: "Stimuli-responsive polymers released payloads selectively at tumor pH.",
			Citation: "Fake Mater Sci, 2024",
		},
	}, nil
}

// recordingStore captures each persisted status in order.
type recordingStore struct {
	statuses []types.RunStatus
	err      error
}

func (s *recordingStore) UpdateRun(_ context.Context, run *types.HypothesisRun) error {
	if s.err != nil {
		return s.err
	}
	s.statuses = append(s.statuses, run.Status)
	return nil
}

func testConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{}
	cfg.LLM.MaxRetries = 1
	cfg.Sources.TopK = 5
	cfg.Sources.MaxQueryTerms = 5
	return cfg
}

func TestExecuteFullRun(t *testing.T) {
	backend := &scriptedBackend{}
	store := &recordingStore{}
	var out bytes.Buffer
	p := &Pipeline{
		Backend: backend,
		Sources: []sources.Source{fakeSource{}},
		Config:  testConfig(),
		Store:   store,
		Out:     &out,
	}

	run := &types.HypothesisRun{
		ID:     "hyp_test0001",
		Goal:   "targeted therapy for KRAS-mutant pancreatic cancer",
		Domain: types.DomainOncology,
	}
	if err := p.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if run.Status != types.StatusCompleted {
		t.Fatalf("status = %s, want %s", run.Status, types.StatusCompleted)
	}

	wantAgents := []string{
		types.AgentVisioner, types.AgentConceptLearner, types.AgentEvidenceMiner,
		types.AgentCrossDomainMapper, types.AgentSynthesizer, types.AgentSimulator,
		types.AgentEthicsValidator,
	}
	if len(run.ReasoningSteps) != len(wantAgents) {
		t.Fatalf("got %d reasoning steps, want %d", len(run.ReasoningSteps), len(wantAgents))
	}
	for i, want := range wantAgents {
		if run.ReasoningSteps[i].Agent != want {
			t.Errorf("step %d agent = %s, want %s", i, run.ReasoningSteps[i].Agent, want)
		}
	}
	if len(run.Trace) != 7 {
		t.Fatalf("got %d trace entries, want 7", len(run.Trace))
	}
	for i, tr := range run.Trace {
		if tr.Stage == "" {
			t.Errorf("trace %d has empty stage", i)
		}
		if tr.OutputSummary == "" {
			t.Errorf("trace %d (%s) has empty output summary", i, tr.Stage)
		}
	}

	if len(run.Directions) != 2 {
		t.Errorf("got %d directions, want 2", len(run.Directions))
	}
	if len(run.Concepts.CoreConcepts) != 2 {
		t.Errorf("got %d core concepts, want 2", len(run.Concepts.CoreConcepts))
	}
	if len(run.EvidencePacks) != 2 {
		t.Errorf("got %d evidence records, want 2", len(run.EvidencePacks))
	}
	for _, rec := range run.EvidencePacks {
		if rec.ConfidenceScore <= 0 {
			t.Errorf("record %s was not scored", rec.ID)
		}
		if rec.Epistemic.StudyType == "" || rec.Epistemic.Weight <= 0 {
			t.Errorf("record %s has no epistemic metadata: %+v", rec.ID, rec.Epistemic)
		}
	}
	if len(run.Transfers) != 1 || run.Transfers[0].SourceDomain != "materials science" {
		t.Errorf("transfers = %+v, want one materials science transfer", run.Transfers)
	}
	if run.Document.Title != "pH-responsive KRAS degrader delivery" {
		t.Errorf("document title = %q", run.Document.Title)
	}

	// 0.35*0.8 + 0.30*0.7 + 0.20*0.9 + 0.15*0.6
	if run.Scorecard.FeasibilityScore != 0.76 {
		t.Errorf("feasibility score = %v, want 0.76", run.Scorecard.FeasibilityScore)
	}
	if run.Scorecard.OverallFeasibility != types.FeasibilityGreen {
		t.Errorf("overall feasibility = %s, want GREEN", run.Scorecard.OverallFeasibility)
	}
	if run.Ethics.Verdict != types.VerdictGreen {
		t.Errorf("ethics verdict = %s, want green", run.Ethics.Verdict)
	}
	if !strings.Contains(run.ExecutiveSummary, "# Executive Summary") {
		t.Errorf("executive summary missing header:\n%s", run.ExecutiveSummary)
	}

	if len(store.statuses) != 2 {
		t.Fatalf("store saw %d updates, want 2: %v", len(store.statuses), store.statuses)
	}
	if store.statuses[0] != types.StatusRunning || store.statuses[1] != types.StatusCompleted {
		t.Errorf("persisted statuses = %v, want [running completed]", store.statuses)
	}
	if backend.calls != 6 {
		t.Errorf("backend called %d times, want 6", backend.calls)
	}
}

func TestExecuteDegradedBackend(t *testing.T) {
	// A cancelled context makes the retry loop bail without sleeping, so
	// every model-backed stage falls back immediately.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	p := &Pipeline{
		Backend: failingBackend{},
		Config:  testConfig(),
		Out:     &out,
	}
	run := &types.HypothesisRun{
		ID:     "hyp_test0002",
		Goal:   "novel immunotherapy for glioblastoma",
		Domain: types.DomainOncology,
	}
	if err := p.Execute(ctx, run); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if run.Status != types.StatusCompleted {
		t.Fatalf("status = %s, want completed", run.Status)
	}
	if len(run.Directions) != 1 || !strings.Contains(run.Directions[0].Title, "Novel therapeutic approach") {
		t.Errorf("fallback directions = %+v", run.Directions)
	}
	if len(run.Concepts.CoreConcepts) == 0 {
		t.Error("fallback concept map is empty")
	}
	if len(run.EvidencePacks) != 0 {
		t.Errorf("got %d evidence records with no sources configured", len(run.EvidencePacks))
	}
	if run.Document.Title == "" {
		t.Error("fallback hypothesis document missing")
	}
	if run.Ethics.Verdict != types.VerdictAmber {
		t.Errorf("fallback ethics verdict = %s, want amber", run.Ethics.Verdict)
	}
	// Fallback scorecard: 0.35*0.6 + 0.30*0.6 + 0.20*0.7 + 0.15*0.6
	if run.Scorecard.OverallFeasibility != types.FeasibilityAmber {
		t.Errorf("fallback feasibility = %s, want AMBER", run.Scorecard.OverallFeasibility)
	}
	if !strings.Contains(out.String(), "degraded") {
		t.Errorf("output missing degradation warnings:\n%s", out.String())
	}
	if len(run.ReasoningSteps) != 7 {
		t.Errorf("got %d reasoning steps, want 7", len(run.ReasoningSteps))
	}
}

func TestExecuteRequiresGoal(t *testing.T) {
	p := &Pipeline{Backend: failingBackend{}, Config: testConfig()}
	run := &types.HypothesisRun{ID: "hyp_nogoal"}
	err := p.Execute(context.Background(), run)
	if err == nil || !strings.Contains(err.Error(), "no goal") {
		t.Fatalf("err = %v, want goal error", err)
	}
}

func TestExecuteStoreFailure(t *testing.T) {
	store := &recordingStore{err: fmt.Errorf("disk full")}
	p := &Pipeline{Backend: &scriptedBackend{}, Config: testConfig(), Store: store}
	run := &types.HypothesisRun{ID: "hyp_test0003", Goal: "any goal", Domain: types.DomainGeneral}
	err := p.Execute(context.Background(), run)
	if err == nil || !strings.Contains(err.Error(), "persisting run") {
		t.Fatalf("err = %v, want persistence error", err)
	}
}

func TestBuildQueries(t *testing.T) {
	p := &Pipeline{Config: testConfig()}
	run := &types.HypothesisRun{
		Goal:   "gene therapy for cystic fibrosis",
		Domain: types.DomainGenetics,
	}
	run.Concepts.QueryTerms = []string{"CFTR modulator", "cftr modulator", "  "}

	queries := p.buildQueries(run)
	if len(queries) == 0 {
		t.Fatal("no queries built")
	}
	if queries[0] != "CFTR modulator" {
		t.Errorf("queries[0] = %q, want concept term first", queries[0])
	}
	if len(queries) > 5 {
		t.Errorf("got %d queries, want at most 5", len(queries))
	}
	seen := make(map[string]bool)
	for _, q := range queries {
		key := strings.ToLower(q)
		if seen[key] {
			t.Errorf("duplicate query %q", q)
		}
		seen[key] = true
	}
}

func TestInjectWearableConcept(t *testing.T) {
	tests := []struct {
		name    string
		context string
		cm      types.ConceptMap
		want    string
		inject  bool
	}{
		{
			name:    "wearable goal without device concept",
			context: "continuous ECG monitoring for arrhythmia detection",
			cm:      types.ConceptMap{CoreConcepts: []string{"atrial fibrillation"}},
			want:    "wearable sensors",
			inject:  true,
		},
		{
			name:    "existing sensor concept untouched",
			context: "wearable arrhythmia detection",
			cm:      types.ConceptMap{CoreConcepts: []string{"biosensor platforms"}},
			inject:  false,
		},
		{
			name:    "non-device goal untouched",
			context: "small molecule inhibitor of JAK2",
			cm:      types.ConceptMap{CoreConcepts: []string{"JAK-STAT signaling"}},
			inject:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(tt.cm.CoreConcepts)
			injectWearableConcept(&tt.cm, tt.context)
			if tt.inject {
				if tt.cm.CoreConcepts[0] != tt.want {
					t.Errorf("first concept = %q, want %q", tt.cm.CoreConcepts[0], tt.want)
				}
				if len(tt.cm.QueryTerms) < 2 || len(tt.cm.MeasurableSurrogates) < 3 {
					t.Errorf("query terms / surrogates not enriched: %+v", tt.cm)
				}
			} else if len(tt.cm.CoreConcepts) != before {
				t.Errorf("concepts changed: %v", tt.cm.CoreConcepts)
			}
		})
	}
}

func TestNormalizeEthicsReport(t *testing.T) {
	tests := []struct {
		name    string
		rep     types.EthicsReport
		want    types.EthicsVerdict
		capSet  bool
	}{
		{
			name: "green with few fragile assumptions stays green",
			rep:  types.EthicsReport{Verdict: "green", FragileAssumptions: []string{"a", "b"}},
			want: types.VerdictGreen,
		},
		{
			name:   "green with many fragile assumptions drops to amber",
			rep:    types.EthicsReport{Verdict: "green", FragileAssumptions: []string{"a", "b", "c"}},
			want:   types.VerdictAmber,
			capSet: true,
		},
		{
			name: "uppercase verdict normalized",
			rep:  types.EthicsReport{Verdict: "RED"},
			want: types.VerdictRed,
		},
		{
			name: "unknown verdict defaults to amber",
			rep:  types.EthicsReport{Verdict: "maybe"},
			want: types.VerdictAmber,
		},
		{
			name: "red with many fragile assumptions stays red",
			rep:  types.EthicsReport{Verdict: "red", FragileAssumptions: []string{"a", "b", "c", "d"}},
			want: types.VerdictRed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalizeEthicsReport(&tt.rep)
			if tt.rep.Verdict != tt.want {
				t.Errorf("verdict = %s, want %s", tt.rep.Verdict, tt.want)
			}
			if tt.capSet && tt.rep.CapApplied == "" {
				t.Error("expected CapApplied to record the downgrade")
			}
			if !tt.capSet && tt.rep.CapApplied != "" {
				t.Errorf("unexpected cap: %s", tt.rep.CapApplied)
			}
		})
	}
}

func TestConstraintsText(t *testing.T) {
	if got := constraintsText(types.Constraints{}); got != "" {
		t.Errorf("empty constraints rendered %q", got)
	}
	c := types.Constraints{
		MaxInvasiveness:    "non-invasive",
		BudgetUSD:          500000,
		TimelineMonths:     18,
		CrossDomainSources: []string{"materials science", "robotics"},
	}
	got := constraintsText(c)
	for _, want := range []string{
		"Maximum invasiveness: non-invasive",
		"USD 500000",
		"18 months",
		"materials science, robotics",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("constraints text missing %q:\n%s", want, got)
		}
	}
}
