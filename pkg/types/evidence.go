// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StudyType classifies the methodology of an evidence record.
type StudyType string

const (
	StudyMetaAnalysis     StudyType = "meta_analysis"
	StudySystematicReview StudyType = "systematic_review"
	StudyRCT              StudyType = "rct"
	StudyCohort           StudyType = "cohort"
	StudyCaseControl      StudyType = "case_control"
	StudyInVivo           StudyType = "in_vivo"
	StudyCrossSectional   StudyType = "cross_sectional"
	StudyReview           StudyType = "review"
	StudyCaseReport       StudyType = "case_report"
	StudyPreprint         StudyType = "preprint"
	StudyInVitro          StudyType = "in_vitro"
	StudyInSilico         StudyType = "in_silico"
	StudyUnknown          StudyType = "unknown"
)

// EpistemicMetadata captures the methodological weight of an evidence record.
type EpistemicMetadata struct {
	// StudyType is the detected methodology class.
	StudyType StudyType `json:"study_type" yaml:"study_type"`

	// SampleSize is the participant or specimen count, when parseable.
	SampleSize *int `json:"sample_size,omitempty" yaml:"sample_size,omitempty"`

	// Weight is the evidence-hierarchy weight for the study type, in [0,1],
	// adjusted for sample size.
	Weight float64 `json:"weight" yaml:"weight"`

	// Confidence is how certain the detector is about StudyType, in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// EvidenceTier is the ordinal quality bucket derived from a record's
// confidence score.
type EvidenceTier string

const (
	TierExceptional EvidenceTier = "exceptional"
	TierHigh        EvidenceTier = "high"
	TierModerate    EvidenceTier = "moderate"
	TierLow         EvidenceTier = "low"
	TierMarginal    EvidenceTier = "marginal"
)

// EvidenceRecord is one retrieved document, dataset, or trial from an
// external scientific source. Records are created by a source backend,
// then mutated in place by the expand → dedup → score stages.
type EvidenceRecord struct {
	// ID is a stable 12-hex identifier derived from the record content.
	ID string `json:"id" yaml:"id"`

	// Source names the backend that produced the record (e.g. "PubMed").
	Source string `json:"source" yaml:"source"`

	// Title is the document title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Citation is a free-form citation string; it may embed the publication
	// year, venue, and citation counts.
	Citation string `json:"citation" yaml:"citation"`

	// URL is the canonical link to the document.
	URL string `json:"url" yaml:"url"`

	// Abstract is the document abstract or summary.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Excerpts holds short verbatim passages from the document body.
	Excerpts []string `json:"excerpts,omitempty" yaml:"excerpts,omitempty"`

	// KeyFindings holds one-line findings extracted from the document.
	KeyFindings []string `json:"key_findings,omitempty" yaml:"key_findings,omitempty"`

	// Epistemic describes the methodological weight of the record.
	Epistemic EpistemicMetadata `json:"epistemic_metadata" yaml:"epistemic_metadata"`

	// RelevanceScore measures query-term overlap, in [0,1]. Set by scoring.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// QualityScore measures source credibility and venue, in [0,1].
	QualityScore float64 `json:"quality_score" yaml:"quality_score"`

	// RecencyScore decays exponentially with publication age, in [0,1].
	RecencyScore float64 `json:"recency_score" yaml:"recency_score"`

	// ImpactScore measures citations, downloads, or registry status, in [0,1].
	ImpactScore float64 `json:"impact_score" yaml:"impact_score"`

	// ConfidenceScore is the weighted combination of the four sub-scores,
	// optionally blended with domain relevance, in [0,1].
	ConfidenceScore float64 `json:"confidence_score" yaml:"confidence_score"`

	// Tier is the ordinal quality bucket derived from ConfidenceScore.
	Tier EvidenceTier `json:"evidence_tier,omitempty" yaml:"evidence_tier,omitempty"`
}
