// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"testing"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

func TestDetectStudyType(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		abstract string
		venue    string
		want     types.StudyType
		minConf  float64
	}{
		{"meta-analysis", "A meta-analysis of statin trials", "", "", types.StudyMetaAnalysis, 0.95},
		{"systematic review", "", "We performed a systematic review of 40 studies.", "", types.StudySystematicReview, 0.95},
		{"rct", "", "A double-blind placebo-controlled study.", "", types.StudyRCT, 0.90},
		{"cohort", "", "This prospective cohort followed 2000 adults.", "", types.StudyCohort, 0.85},
		{"in vitro", "", "Cultured cells were treated with the compound.", "", types.StudyInVitro, 0.75},
		{"in vivo", "", "A mouse model of glioblastoma was used.", "", types.StudyInVivo, 0.70},
		{"preprint venue", "Anything", "", "bioRxiv", types.StudyPreprint, 0.95},
		{"review venue", "Anything", "", "Nature Reviews Cancer", types.StudyReview, 0.90},
		{"unknown", "Plain title", "Plain abstract text.", "", types.StudyUnknown, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, conf := DetectStudyType(tt.title, tt.abstract, tt.venue)
			if st != tt.want {
				t.Errorf("study type = %s, want %s", st, tt.want)
			}
			if conf < tt.minConf {
				t.Errorf("confidence = %f, want ≥ %f", conf, tt.minConf)
			}
		})
	}
}

func TestExtractSampleSize(t *testing.T) {
	tests := []struct {
		name     string
		abstract string
		want     int
		wantNil  bool
	}{
		{"n equals", "A trial with n = 120 across two arms.", 120, false},
		{"count noun", "We followed 2500 participants over 5 years.", 2500, false},
		{"enrolled", "The study enrolled 48 children.", 48, false},
		{"cohort of", "A cohort of 310 was assembled.", 310, false},
		{"none", "No counts are given here.", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSampleSize(tt.abstract)
			if tt.wantNil {
				if got != nil {
					t.Errorf("got %d, want nil", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("got %v, want %d", got, tt.want)
			}
		})
	}
}

func TestExtractEpistemicWeightAdjustment(t *testing.T) {
	large := ExtractEpistemic(types.EvidenceRecord{
		Abstract: "A randomized controlled trial with n = 2000 adults.",
	})
	if large.StudyType != types.StudyRCT {
		t.Fatalf("study type = %s, want rct", large.StudyType)
	}
	// 0.9 boosted 10% for n ≥ 1000, rounded.
	if large.Weight != 0.99 {
		t.Errorf("large-sample weight = %f, want 0.99", large.Weight)
	}

	small := ExtractEpistemic(types.EvidenceRecord{
		Abstract: "A randomized controlled trial enrolled 20 adults.",
	})
	if small.Weight != 0.81 {
		t.Errorf("small-sample weight = %f, want 0.81", small.Weight)
	}
}

func TestEvidenceStrengthV2(t *testing.T) {
	records := []types.EvidenceRecord{
		{Epistemic: types.EpistemicMetadata{StudyType: types.StudyMetaAnalysis, Weight: 1.0}},
		{Epistemic: types.EpistemicMetadata{StudyType: types.StudyRCT, Weight: 0.9}},
		{Epistemic: types.EpistemicMetadata{}}, // untagged falls back to 0.4
	}

	out := EvidenceStrengthV2(records)
	if out.Total != 3 {
		t.Errorf("Total = %d, want 3", out.Total)
	}
	if out.WeightedTotal != 2.3 {
		t.Errorf("WeightedTotal = %f, want 2.3", out.WeightedTotal)
	}
	if out.Strength != 0.77 {
		t.Errorf("Strength = %f, want 0.77", out.Strength)
	}
	if out.Breakdown[types.StudyUnknown] != 1 {
		t.Errorf("Breakdown = %v, want one unknown", out.Breakdown)
	}
}

func TestEvidenceStrengthV2Empty(t *testing.T) {
	out := EvidenceStrengthV2(nil)
	if out.Strength != 0 || out.Total != 0 {
		t.Errorf("empty input should yield zeros, got %+v", out)
	}
}
