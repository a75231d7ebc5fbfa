// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

func rec(id, source string, relevance, quality float64) types.EvidenceRecord {
	return types.EvidenceRecord{
		ID:             id,
		Source:         source,
		Title:          "Record " + id,
		RelevanceScore: relevance,
		QualityScore:   quality,
	}
}

func TestConsolidateEvidenceTiers(t *testing.T) {
	packs := []types.EvidenceRecord{
		rec("a", "PubMed", 0.9, 0.85),           // T1
		rec("b", "PubMed", 0.75, 0.72),          // T2
		rec("c", "Europe PMC", 0.65, 0.3),       // T3 (relevance only)
		rec("d", "Europe PMC", 0.2, 0.65),       // T3 (quality only)
		rec("e", "ClinicalTrials.gov", 0.3, 0.3), // T4
	}

	meta := ConsolidateEvidence(packs)
	if meta.Total != 5 {
		t.Fatalf("got total %d, want 5", meta.Total)
	}
	want := TierCounts{T1: 1, T2: 1, T3: 2, T4: 1}
	if meta.Tiers != want {
		t.Errorf("got tiers %+v, want %+v", meta.Tiers, want)
	}
	// (1.0 + 0.7 + 0.4 + 0.4 + 0.2) / 5 = 0.54
	if meta.Strength != 0.54 {
		t.Errorf("got strength %v, want 0.54", meta.Strength)
	}
	wantSources := []string{"ClinicalTrials.gov", "Europe PMC", "PubMed"}
	if !reflect.DeepEqual(meta.Sources, wantSources) {
		t.Errorf("got sources %v, want %v", meta.Sources, wantSources)
	}
}

func TestConsolidateEvidenceDedupe(t *testing.T) {
	packs := []types.EvidenceRecord{
		rec("same", "PubMed", 0.9, 0.9),
		rec("same", "PubMed", 0.9, 0.9),
		// No ID: deduped by title+source signature.
		{Source: "Europe PMC", Title: "Shared title", RelevanceScore: 0.5, QualityScore: 0.5},
		{Source: "Europe PMC", Title: "Shared title", RelevanceScore: 0.5, QualityScore: 0.5},
	}

	meta := ConsolidateEvidence(packs)
	if meta.Total != 2 {
		t.Errorf("got total %d, want 2 after dedupe", meta.Total)
	}
}

func TestConsolidateEvidenceEmpty(t *testing.T) {
	meta := ConsolidateEvidence(nil)
	if meta.Total != 0 || meta.Strength != 0.0 {
		t.Errorf("got %+v, want zero meta", meta)
	}
}

func TestSmoothTiers(t *testing.T) {
	tests := []struct {
		name string
		in   TierCounts
		want TierCounts
	}{
		{
			name: "pathological all-T3 batch is smoothed",
			in:   TierCounts{T3: 20},
			want: TierCounts{T2: 3, T3: 17},
		},
		{
			name: "small batch untouched",
			in:   TierCounts{T3: 10},
			want: TierCounts{T3: 10},
		},
		{
			name: "presence of T1 disables smoothing",
			in:   TierCounts{T1: 1, T3: 19},
			want: TierCounts{T1: 1, T3: 19},
		},
		{
			name: "90 percent not exceeded",
			in:   TierCounts{T3: 18, T4: 2},
			want: TierCounts{T3: 18, T4: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SmoothTiers(tt.in); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSmoothTiersPreservesTotal(t *testing.T) {
	in := TierCounts{T3: 30}
	out := SmoothTiers(in)
	if out.Total() != in.Total() {
		t.Errorf("smoothing changed total: %d -> %d", in.Total(), out.Total())
	}
}

func TestStrengthFromTiers(t *testing.T) {
	if got := StrengthFromTiers(TierCounts{}); got != 0.0 {
		t.Errorf("empty tiers: got %v, want 0", got)
	}
	// (2*1.0 + 3*0.7 + 4*0.4 + 1*0.2) / 10 = 0.59
	if got := StrengthFromTiers(TierCounts{T1: 2, T2: 3, T3: 4, T4: 1}); got != 0.59 {
		t.Errorf("got %v, want 0.59", got)
	}
}

func TestFeasibilityLabel(t *testing.T) {
	tests := []struct {
		composite float64
		want      string
	}{
		{0.85, "High (Green)"},
		{0.80, "High (Green)"},
		{0.79, "Moderate-High (Green)"},
		{0.60, "Moderate-High (Green)"},
		{0.59, "Moderate (Amber)"},
		{0.40, "Moderate (Amber)"},
		{0.39, "Low (Red)"},
	}
	for _, tt := range tests {
		if got := FeasibilityLabel(tt.composite); got != tt.want {
			t.Errorf("FeasibilityLabel(%v) = %q, want %q", tt.composite, got, tt.want)
		}
	}
}

func TestConfidenceLabel(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{0.85, "High"},
		{0.8, "High"},
		{0.7, "Moderate-High"},
		{0.5, "Moderate"},
		{0.2, "Low"},
	}
	for _, tt := range tests {
		if got := ConfidenceLabel(tt.confidence); got != tt.want {
			t.Errorf("ConfidenceLabel(%v) = %q, want %q", tt.confidence, got, tt.want)
		}
	}
}

func TestInferMissingScore(t *testing.T) {
	// Present values pass through with clamping.
	if got := InferMissingScore(types.Float(0.75), 0.2, 0.2, 0.5); got != 0.75 {
		t.Errorf("present value: got %v, want 0.75", got)
	}
	if got := InferMissingScore(types.Float(1.5), 0.2, 0.2, 0.5); got != 1.0 {
		t.Errorf("out-of-range value: got %v, want 1.0", got)
	}

	// Missing: 0.6*strength + 0.3*avgConf + 0.1*fallback.
	got := InferMissingScore(nil, 0.5, 0.8, 0.6)
	want := 0.6*0.5 + 0.3*0.8 + 0.1*0.6
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("inferred: got %v, want %v", got, want)
	}

	// Inferred scores never reach the hard bounds.
	if got := InferMissingScore(nil, 0.0, 0.0, 0.0); got != 0.01 {
		t.Errorf("lower clamp: got %v, want 0.01", got)
	}
	if got := InferMissingScore(nil, 1.0, 1.0, 1.0); got != 0.99 {
		t.Errorf("upper clamp: got %v, want 0.99", got)
	}
}

func TestCapEthicsVerdict(t *testing.T) {
	if got := CapEthicsVerdict(0.40, types.VerdictGreen); got != types.VerdictAmber {
		t.Errorf("weak evidence green: got %v, want amber", got)
	}
	if got := CapEthicsVerdict(0.50, types.VerdictGreen); got != types.VerdictGreen {
		t.Errorf("adequate evidence green: got %v", got)
	}
	if got := CapEthicsVerdict(0.10, types.VerdictRed); got != types.VerdictRed {
		t.Errorf("red never upgraded: got %v", got)
	}
	if got := CapEthicsVerdict(0.10, types.VerdictAmber); got != types.VerdictAmber {
		t.Errorf("amber unchanged: got %v", got)
	}
}

func TestDetectDiagnostic(t *testing.T) {
	diag := types.HypothesisDocument{
		Title:     "Blood-based biomarker panel for early detection",
		Mechanism: "Exosome screening assay measuring circulating miRNA",
	}
	if !DetectDiagnostic(diag) {
		t.Error("biomarker panel should classify as diagnostic")
	}

	ther := types.HypothesisDocument{
		Title:     "Small-molecule inhibitor therapy",
		Mechanism: "Drug intervention targeting the compound's agonist activity for treatment",
	}
	if DetectDiagnostic(ther) {
		t.Error("inhibitor therapy should classify as therapeutic")
	}

	// Ties break toward therapeutic.
	if DetectDiagnostic(types.HypothesisDocument{Title: "Untitled"}) {
		t.Error("no keywords should default to therapeutic")
	}
}

func TestCleanDiagnosticText(t *testing.T) {
	in := "Isolation uses lipid nanoparticles and self-healing polymers for capture."
	out := CleanDiagnosticText(in, true)
	if strings.Contains(strings.ToLower(out), "lipid nanoparticle") {
		t.Errorf("therapeutic phrase survived: %q", out)
	}
	if strings.Contains(strings.ToLower(out), "self-healing polymer") {
		t.Errorf("therapeutic phrase survived: %q", out)
	}

	if got := CleanDiagnosticText(in, false); got != in {
		t.Errorf("therapeutic mode should not modify text")
	}
}

func TestSoftenAccuracyClaims(t *testing.T) {
	out := SoftenAccuracyClaims("The panel achieves >90% accuracy in validation.", true)
	if strings.Contains(out, ">90% accuracy") {
		t.Errorf("claim not softened: %q", out)
	}
	if !strings.Contains(out, "target AUC 0.80-0.88") {
		t.Errorf("replacement missing: %q", out)
	}

	unchanged := SoftenAccuracyClaims("The drug achieves >90% accuracy.", false)
	if !strings.Contains(unchanged, ">90% accuracy") {
		t.Errorf("therapeutic mode should not soften claims")
	}
}

func TestPunctuationGuard(t *testing.T) {
	if got := PunctuationGuard("A sentence .. with issues , here ."); got != "A sentence. with issues, here." {
		t.Errorf("got %q", got)
	}
}

func TestDedupeParagraphs(t *testing.T) {
	in := "First line\nSecond line\nfirst line\nThird line"
	want := "First line\nSecond line\nThird line"
	if got := DedupeParagraphs(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCleanTextBlocks(t *testing.T) {
	in := "Heading\n\n\n\nHeading\nBody text.."
	out := CleanTextBlocks(in)
	if strings.Count(out, "Heading") != 1 {
		t.Errorf("duplicate line survived: %q", out)
	}
	if strings.Contains(out, "\n\n\n") {
		t.Errorf("blank lines not collapsed: %q", out)
	}
	if strings.Contains(out, "..") {
		t.Errorf("double dot survived: %q", out)
	}
}

func TestCleanTextBlocksSectionBreaks(t *testing.T) {
	in := "and improved clinical symptoms**Ethics Assessment**: GREEN\nrisk factors**Key Limitations**: small cohorts"
	out := CleanTextBlocks(in)
	if !strings.Contains(out, "symptoms\n\n**Ethics Assessment**") {
		t.Errorf("ethics marker not broken out: %q", out)
	}
	if !strings.Contains(out, "factors\n\n**Key Limitations**") {
		t.Errorf("limitations marker not broken out: %q", out)
	}

	// A marker already on its own line stays where it is.
	clean := "Symptoms improved.\n\n**Ethics Assessment**: GREEN"
	if got := CleanTextBlocks(clean); got != clean {
		t.Errorf("well-formed text modified: %q", got)
	}
}

func TestSentenceCase(t *testing.T) {
	if got := SentenceCase("lowercase start"); got != "Lowercase start" {
		t.Errorf("got %q", got)
	}
	if got := SentenceCase(""); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestIVDTimelineCost(t *testing.T) {
	timeline, cost := IVDTimelineCost(0.75)
	if !strings.Contains(timeline, "12-18 months") {
		t.Errorf("high composite timeline: %q", timeline)
	}
	if !strings.Contains(cost, "250,000") {
		t.Errorf("high composite cost: %q", cost)
	}

	timeline, _ = IVDTimelineCost(0.55)
	if !strings.Contains(timeline, "18-24 months") {
		t.Errorf("mid composite timeline: %q", timeline)
	}

	timeline, _ = IVDTimelineCost(0.30)
	if !strings.Contains(timeline, "24-36 months") {
		t.Errorf("low composite timeline: %q", timeline)
	}
}
