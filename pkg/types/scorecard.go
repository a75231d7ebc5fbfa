// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FeasibilityLevel is the traffic-light summary of a simulation scorecard.
type FeasibilityLevel string

const (
	FeasibilityGreen FeasibilityLevel = "GREEN"
	FeasibilityAmber FeasibilityLevel = "AMBER"
	FeasibilityRed   FeasibilityLevel = "RED"
)

// Composite weights for the feasibility score. The overall label must
// always be recomputed from the composite, never asserted independently.
const (
	WeightTechnical  = 0.35
	WeightClinical   = 0.30
	WeightSafety     = 0.20
	WeightRegulatory = 0.15
)

// SimulationScorecard holds the four base feasibility dimensions. A nil
// dimension means the simulation stage did not produce it; the guard layer
// infers missing dimensions before computing the composite.
type SimulationScorecard struct {
	// TechnicalFeasibility scores whether the approach can be built, in [0,1].
	TechnicalFeasibility *float64 `json:"technical_feasibility,omitempty" yaml:"technical_feasibility,omitempty"`

	// ClinicalTranslatability scores the path to patient use, in [0,1].
	ClinicalTranslatability *float64 `json:"clinical_translatability,omitempty" yaml:"clinical_translatability,omitempty"`

	// SafetyProfile scores patient risk, in [0,1].
	SafetyProfile *float64 `json:"safety_profile,omitempty" yaml:"safety_profile,omitempty"`

	// RegulatoryPathReady scores regulatory clarity, in [0,1].
	RegulatoryPathReady *float64 `json:"regulatory_path_ready,omitempty" yaml:"regulatory_path_ready,omitempty"`

	// FeasibilityScore is the derived weighted composite, in [0,1].
	FeasibilityScore float64 `json:"feasibility_score" yaml:"feasibility_score"`

	// OverallFeasibility is the traffic-light label derived from
	// FeasibilityScore: GREEN ≥ 0.70, AMBER ≥ 0.50, else RED.
	OverallFeasibility FeasibilityLevel `json:"overall_feasibility" yaml:"overall_feasibility"`

	// Uncertainties lists open feasibility questions.
	Uncertainties []string `json:"uncertainties,omitempty" yaml:"uncertainties,omitempty"`

	// RiskFactors lists identified risks with mitigation notes.
	RiskFactors []string `json:"risk_factors,omitempty" yaml:"risk_factors,omitempty"`
}

// Complete reports whether all four base dimensions are present.
func (s SimulationScorecard) Complete() bool {
	return s.TechnicalFeasibility != nil && s.ClinicalTranslatability != nil &&
		s.SafetyProfile != nil && s.RegulatoryPathReady != nil
}

// OverallLabel maps a composite feasibility score onto its traffic-light
// level. This is the single source of truth for the label.
func OverallLabel(composite float64) FeasibilityLevel {
	switch {
	case composite >= 0.70:
		return FeasibilityGreen
	case composite >= 0.50:
		return FeasibilityAmber
	default:
		return FeasibilityRed
	}
}

// Float is a convenience for building scorecard literals.
func Float(v float64) *float64 { return &v }
