// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the hypothesis-engine
// pipeline: evidence records and their epistemic metadata, the hypothesis
// run aggregate with its per-stage outputs, the simulation scorecard, and
// stage configuration.
package types

import "time"

// RunStatus is the lifecycle state of a hypothesis run.
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// MedicalDomain names the research area a run targets.
type MedicalDomain string

const (
	DomainOncology         MedicalDomain = "oncology"
	DomainNeurology        MedicalDomain = "neurology"
	DomainCardiology       MedicalDomain = "cardiology"
	DomainImmunology       MedicalDomain = "immunology"
	DomainEndocrinology    MedicalDomain = "endocrinology"
	DomainInfectiousDisease MedicalDomain = "infectious_disease"
	DomainGenetics         MedicalDomain = "genetics"
	DomainPharmacology     MedicalDomain = "pharmacology"
	DomainRegenerative     MedicalDomain = "regenerative_medicine"
	DomainRareDiseases     MedicalDomain = "rare_diseases"
	DomainMentalHealth     MedicalDomain = "mental_health"
	DomainPediatrics       MedicalDomain = "pediatrics"
	DomainGeriatrics       MedicalDomain = "geriatrics"
	DomainDiagnostics      MedicalDomain = "diagnostics"
	DomainGeneral          MedicalDomain = "general"
)

// Agent names, one per pipeline stage, in execution order.
const (
	AgentVisioner          = "Visioner"
	AgentConceptLearner    = "ConceptLearner"
	AgentEvidenceMiner     = "EvidenceMiner"
	AgentCrossDomainMapper = "CrossDomainMapper"
	AgentSynthesizer       = "Synthesizer"
	AgentSimulator         = "Simulator"
	AgentEthicsValidator   = "EthicsValidator"
)

// Constraints restricts the hypothesis search space at submission time.
type Constraints struct {
	// MaxInvasiveness bounds acceptable procedures ("non-invasive",
	// "minimally-invasive", "invasive").
	MaxInvasiveness string `json:"max_invasiveness,omitempty" yaml:"max_invasiveness,omitempty"`

	// BudgetUSD is an approximate development budget ceiling.
	BudgetUSD float64 `json:"budget_usd,omitempty" yaml:"budget_usd,omitempty"`

	// TimelineMonths is the desired time to a testable result.
	TimelineMonths int `json:"timeline_months,omitempty" yaml:"timeline_months,omitempty"`

	// CrossDomainSources lists non-medical fields to mine for analogies.
	CrossDomainSources []string `json:"cross_domain_sources,omitempty" yaml:"cross_domain_sources,omitempty"`
}

// ReasoningStep is one audit record per pipeline stage. Steps are created
// once per stage, immutable afterward, and appended in stage order; the
// order is authoritative for narrative and flowchart rendering.
type ReasoningStep struct {
	// Agent identifies the stage that produced the step.
	Agent string `json:"agent" yaml:"agent"`

	// Action is the one-line description of what the stage did.
	Action string `json:"action" yaml:"action"`

	// InputSummary compresses the stage input into a sentence.
	InputSummary string `json:"input_summary" yaml:"input_summary"`

	// Reasoning is the stage's free-text rationale.
	Reasoning string `json:"reasoning" yaml:"reasoning"`

	// AlternativesConsidered lists approaches the stage weighed and dropped.
	AlternativesConsidered []string `json:"alternatives_considered,omitempty" yaml:"alternatives_considered,omitempty"`

	// DecisionRationale explains why Action won over the alternatives.
	DecisionRationale string `json:"decision_rationale" yaml:"decision_rationale"`

	// Confidence is the stage's self-assessed confidence, in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// SupportingEvidence lists evidence record IDs the stage relied on.
	SupportingEvidence []string `json:"supporting_evidence,omitempty" yaml:"supporting_evidence,omitempty"`

	// QuestionAsked is the question the stage set out to answer.
	QuestionAsked string `json:"question_asked,omitempty" yaml:"question_asked,omitempty"`

	// KeyInsight is the single most important discovery of the stage.
	KeyInsight string `json:"key_insight,omitempty" yaml:"key_insight,omitempty"`

	// ImpactOnHypothesis states how the step shaped the final hypothesis.
	ImpactOnHypothesis string `json:"impact_on_hypothesis,omitempty" yaml:"impact_on_hypothesis,omitempty"`
}

// TraceEntry is a lightweight per-stage execution record.
type TraceEntry struct {
	// Stage is the stage name.
	Stage string `json:"stage" yaml:"stage"`

	// InputSummary is a one-line summary of the stage input.
	InputSummary string `json:"input_summary" yaml:"input_summary"`

	// OutputSummary is a one-line summary of the stage output.
	OutputSummary string `json:"output_summary" yaml:"output_summary"`

	// Duration is the wall-clock time the stage took.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// KeyDecisions lists the decisions the stage recorded.
	KeyDecisions []string `json:"key_decisions,omitempty" yaml:"key_decisions,omitempty"`
}

// ResearchDirection is one candidate line of inquiry from the directions stage.
type ResearchDirection struct {
	// Title names the direction.
	Title string `json:"title" yaml:"title"`

	// Description expands the direction into a paragraph.
	Description string `json:"description" yaml:"description"`

	// MolecularTargets lists genes, proteins, or pathways involved.
	MolecularTargets []string `json:"molecular_targets,omitempty" yaml:"molecular_targets,omitempty"`

	// Pathways lists biological pathways the direction touches.
	Pathways []string `json:"pathways,omitempty" yaml:"pathways,omitempty"`

	// NoveltyScore estimates how unexplored the direction is, in [0,1].
	NoveltyScore float64 `json:"novelty_score" yaml:"novelty_score"`
}

// ConceptMap relates the core concepts the hypothesis builds on.
type ConceptMap struct {
	// CoreConcepts lists the central biomedical concepts.
	CoreConcepts []string `json:"core_concepts" yaml:"core_concepts"`

	// Relationships holds "A → B: mechanism" style links.
	Relationships []string `json:"relationships,omitempty" yaml:"relationships,omitempty"`

	// QueryTerms seeds evidence mining.
	QueryTerms []string `json:"query_terms" yaml:"query_terms"`

	// MeasurableSurrogates lists assayable proxies for the concepts.
	MeasurableSurrogates []string `json:"measurable_surrogates,omitempty" yaml:"measurable_surrogates,omitempty"`
}

// CrossDomainTransfer is one analogy imported from a non-medical field.
type CrossDomainTransfer struct {
	// SourceDomain is the field the idea comes from.
	SourceDomain string `json:"source_domain" yaml:"source_domain"`

	// Concept is the transferred idea.
	Concept string `json:"concept" yaml:"concept"`

	// Application states how the idea applies to the hypothesis.
	Application string `json:"application" yaml:"application"`

	// TransferabilityScore estimates how well the analogy holds, in [0,1].
	TransferabilityScore float64 `json:"transferability_score" yaml:"transferability_score"`
}

// HypothesisDocument is the synthesized hypothesis.
type HypothesisDocument struct {
	// Title is the hypothesis title.
	Title string `json:"title" yaml:"title"`

	// Statement is the testable hypothesis statement.
	Statement string `json:"statement" yaml:"statement"`

	// Mechanism describes the proposed biological mechanism.
	Mechanism string `json:"mechanism" yaml:"mechanism"`

	// Rationale links the statement to the gathered evidence.
	Rationale string `json:"rationale" yaml:"rationale"`

	// MolecularTargets lists the molecular entities involved.
	MolecularTargets []string `json:"molecular_targets,omitempty" yaml:"molecular_targets,omitempty"`

	// Assumptions lists what must hold for the hypothesis to work.
	Assumptions []string `json:"assumptions,omitempty" yaml:"assumptions,omitempty"`

	// Gaps lists open questions the hypothesis does not resolve.
	Gaps []string `json:"gaps,omitempty" yaml:"gaps,omitempty"`

	// DivergentVariants are alternative framings of the same hypothesis.
	DivergentVariants []string `json:"divergent_variants,omitempty" yaml:"divergent_variants,omitempty"`
}

// EthicsVerdict is the traffic-light outcome of the ethics stage.
type EthicsVerdict string

const (
	VerdictGreen EthicsVerdict = "green"
	VerdictAmber EthicsVerdict = "amber"
	VerdictRed   EthicsVerdict = "red"
)

// EthicsReport is the output of the ethics validation stage.
type EthicsReport struct {
	// Verdict is the traffic-light assessment.
	Verdict EthicsVerdict `json:"verdict" yaml:"verdict"`

	// Concerns lists identified ethical concerns.
	Concerns []string `json:"concerns,omitempty" yaml:"concerns,omitempty"`

	// FragileAssumptions lists hypothesis assumptions that would invalidate
	// the ethics assessment if wrong.
	FragileAssumptions []string `json:"fragile_assumptions,omitempty" yaml:"fragile_assumptions,omitempty"`

	// PotentialConfounders lists factors that could bias the evidence.
	PotentialConfounders []string `json:"potential_confounders,omitempty" yaml:"potential_confounders,omitempty"`

	// RecommendedSafeguards lists conditions under which work may proceed.
	RecommendedSafeguards []string `json:"recommended_safeguards,omitempty" yaml:"recommended_safeguards,omitempty"`

	// CapApplied is set when a guard downgraded the verdict after the fact.
	CapApplied string `json:"cap_applied,omitempty" yaml:"cap_applied,omitempty"`
}

// HypothesisRun is the aggregate root for one pipeline execution. It is
// created pending at submission, mutated by the running pipeline, and
// terminal at completed, failed, or cancelled. Once completed, every
// downstream field has been populated by its stage.
type HypothesisRun struct {
	// ID is the run identifier (UUID).
	ID string `json:"id" yaml:"id"`

	// Status is the lifecycle state.
	Status RunStatus `json:"status" yaml:"status"`

	// Domain is the medical research area.
	Domain MedicalDomain `json:"domain" yaml:"domain"`

	// Goal is the free-text research goal the run pursues.
	Goal string `json:"goal" yaml:"goal"`

	// Constraints restricts the hypothesis search space.
	Constraints Constraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`

	// Directions holds the candidate research directions from stage 1.
	Directions []ResearchDirection `json:"directions,omitempty" yaml:"directions,omitempty"`

	// Concepts is the concept map from stage 2.
	Concepts ConceptMap `json:"concept_map,omitempty" yaml:"concept_map,omitempty"`

	// EvidencePacks holds the scored, deduplicated evidence from stage 3.
	EvidencePacks []EvidenceRecord `json:"evidence_packs,omitempty" yaml:"evidence_packs,omitempty"`

	// Transfers holds the cross-domain analogies from stage 4.
	Transfers []CrossDomainTransfer `json:"cross_domain_transfers,omitempty" yaml:"cross_domain_transfers,omitempty"`

	// Document is the synthesized hypothesis from stage 5.
	Document HypothesisDocument `json:"hypothesis_document,omitempty" yaml:"hypothesis_document,omitempty"`

	// Scorecard is the feasibility assessment from stage 6.
	Scorecard SimulationScorecard `json:"simulation_scorecard,omitempty" yaml:"simulation_scorecard,omitempty"`

	// Ethics is the ethics assessment from stage 7.
	Ethics EthicsReport `json:"ethics_report,omitempty" yaml:"ethics_report,omitempty"`

	// ReasoningSteps is the ordered audit trail, one step per stage.
	ReasoningSteps []ReasoningStep `json:"reasoning_steps,omitempty" yaml:"reasoning_steps,omitempty"`

	// Trace holds lightweight per-stage execution records.
	Trace []TraceEntry `json:"reasoning_trace,omitempty" yaml:"reasoning_trace,omitempty"`

	// ExecutiveSummary is the derived prose summary.
	ExecutiveSummary string `json:"executive_summary,omitempty" yaml:"executive_summary,omitempty"`

	// ErrorMessage is set when Status is failed.
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`

	// CreatedAt is the submission time.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt is the last status-transition time.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}
