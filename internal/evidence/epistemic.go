// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// studyTypeWeights ranks study methodologies by evidence hierarchy.
var studyTypeWeights = map[types.StudyType]float64{
	types.StudyMetaAnalysis:     1.0,
	types.StudySystematicReview: 0.95,
	types.StudyRCT:              0.9,
	types.StudyCohort:           0.75,
	types.StudyCaseControl:      0.6,
	types.StudyInVivo:           0.55,
	types.StudyCrossSectional:   0.5,
	types.StudyReview:           0.5,
	types.StudyCaseReport:       0.4,
	types.StudyPreprint:         0.35,
	types.StudyInVitro:          0.3,
	types.StudyInSilico:         0.25,
	types.StudyUnknown:          0.25,
}

// StudyTypeWeight returns the evidence-hierarchy weight for a study type,
// defaulting to the unknown weight.
func StudyTypeWeight(st types.StudyType) float64 {
	if w, ok := studyTypeWeights[st]; ok {
		return w
	}
	return 0.25
}

// studyPattern maps text indicators onto a study type with a detection
// confidence; patterns are checked in order, first hit wins.
type studyPattern struct {
	terms      []string
	studyType  types.StudyType
	confidence float64
}

var studyPatterns = []studyPattern{
	{[]string{"meta-analysis", "meta analysis", "metaanalysis"}, types.StudyMetaAnalysis, 0.95},
	{[]string{"systematic review"}, types.StudySystematicReview, 0.95},
	{[]string{"randomized controlled trial", "rct", "randomised", "double-blind", "placebo-controlled", "randomized trial"}, types.StudyRCT, 0.90},
	{[]string{"cohort study", "prospective study", "longitudinal study", "prospective cohort"}, types.StudyCohort, 0.85},
	{[]string{"case-control study", "case control", "case-control"}, types.StudyCaseControl, 0.85},
	{[]string{"in vitro", "cell culture", "cultured cells", "cell-based", "cell line", "in vitro study"}, types.StudyInVitro, 0.75},
	{[]string{"in silico", "computational model", "simulation", "molecular dynamics", "bioinformatics", "machine learning", "deep learning", "structural modeling"}, types.StudyInSilico, 0.75},
	{[]string{"cross-sectional", "cross sectional", "observational study", "retrospective analysis"}, types.StudyCrossSectional, 0.80},
	{[]string{"case report", "case series"}, types.StudyCaseReport, 0.80},
	{[]string{"mouse model", "murine", "xenograft", "orthotopic", "animal model", "preclinical", "in vivo"}, types.StudyInVivo, 0.70},
}

var (
	sampleNEqRe       = regexp.MustCompile(`n\s*=\s*(\d+)`)
	sampleCountRe     = regexp.MustCompile(`(\d+)\s+(patients|participants|subjects|individuals|cases)`)
	sampleEnrolledRe  = regexp.MustCompile(`(enrolled|included|recruited)\s+(\d+)`)
	sampleCohortOfRe  = regexp.MustCompile(`(sample|cohort)\s+of\s+(\d+)`)
)

// DetectStudyType classifies the study methodology from title, abstract,
// and venue text. Venue matches (review series, preprint servers) take
// precedence over body text. Returns the type and the detection confidence.
func DetectStudyType(title, abstract, venue string) (types.StudyType, float64) {
	venueLower := strings.ToLower(venue)
	if containsAny(venueLower, []string{"nature reviews", "annual review", "trends in"}) {
		return types.StudyReview, 0.90
	}
	if containsAny(venueLower, []string{"arxiv", "biorxiv", "medrxiv"}) {
		return types.StudyPreprint, 0.95
	}

	text := strings.ToLower(title) + " " + strings.ToLower(abstract) + " " + venueLower
	for _, p := range studyPatterns {
		if containsAny(text, p.terms) {
			return p.studyType, p.confidence
		}
	}

	if strings.Contains(text, "review") && !strings.Contains(text, "systematic") {
		return types.StudyReview, 0.60
	}
	if containsAny(text, []string{"preprint", "biorxiv", "medrxiv"}) {
		return types.StudyPreprint, 0.90
	}

	return types.StudyUnknown, 0.25
}

// ExtractSampleSize parses a participant count out of abstract text.
// Recognized shapes: "n = 120", "120 patients", "enrolled 120",
// "cohort of 120". Returns nil when nothing matches.
func ExtractSampleSize(abstract string) *int {
	if abstract == "" {
		return nil
	}
	text := strings.ToLower(abstract)

	if m := sampleNEqRe.FindStringSubmatch(text); m != nil {
		return atoiPtr(m[1])
	}
	if m := sampleCountRe.FindStringSubmatch(text); m != nil {
		return atoiPtr(m[1])
	}
	if m := sampleEnrolledRe.FindStringSubmatch(text); m != nil {
		return atoiPtr(m[2])
	}
	if m := sampleCohortOfRe.FindStringSubmatch(text); m != nil {
		return atoiPtr(m[2])
	}
	return nil
}

// ExtractEpistemic builds the epistemic metadata for a record from its
// text. Large samples (≥1000) boost the weight by 10% (capped at 1.0);
// small samples (<50) shave 10% off.
func ExtractEpistemic(rec types.EvidenceRecord) types.EpistemicMetadata {
	studyType, confidence := DetectStudyType(rec.Title, rec.Abstract, rec.Citation)
	sampleSize := ExtractSampleSize(rec.Abstract)

	weight := StudyTypeWeight(studyType)
	if sampleSize != nil {
		if *sampleSize >= 1000 {
			weight = math.Min(weight*1.1, 1.0)
		} else if *sampleSize < 50 {
			weight *= 0.9
		}
	}

	return types.EpistemicMetadata{
		StudyType:  studyType,
		SampleSize: sampleSize,
		Weight:     round2(weight),
		Confidence: round2(confidence),
	}
}

// StrengthV2 summarizes epistemic quality over a set of records.
type StrengthV2 struct {
	// Strength is the weight sum normalized by the best possible sum, in [0,1].
	Strength float64

	// Total is the record count.
	Total int

	// Breakdown counts records per study type.
	Breakdown map[types.StudyType]int

	// WeightedTotal is the raw weight sum.
	WeightedTotal float64
}

// EvidenceStrengthV2 computes the epistemic-weighted strength of a record
// set. Records without epistemic tags contribute a 0.4 fallback weight.
func EvidenceStrengthV2(records []types.EvidenceRecord) StrengthV2 {
	out := StrengthV2{Breakdown: make(map[types.StudyType]int)}
	if len(records) == 0 {
		return out
	}

	for _, rec := range records {
		weight := rec.Epistemic.Weight
		if weight == 0 {
			weight = 0.4
		}
		st := rec.Epistemic.StudyType
		if st == "" {
			st = types.StudyUnknown
		}
		out.WeightedTotal += weight
		out.Breakdown[st]++
	}

	out.Total = len(records)
	out.Strength = round2(math.Min(out.WeightedTotal/float64(len(records)), 1.0))
	out.WeightedTotal = round2(out.WeightedTotal)
	return out
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
