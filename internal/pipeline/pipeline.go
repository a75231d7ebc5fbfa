// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the seven-stage hypothesis generation sequence:
// research directions, concept map, evidence mining, cross-domain
// transfers, synthesis, feasibility simulation, and ethics validation.
// Stages run in a fixed order; every LLM-backed stage degrades to a
// hand-authored fallback rather than aborting the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/hypothesis-engine/internal/llm"
	"github.com/pdiddy/hypothesis-engine/internal/report"
	"github.com/pdiddy/hypothesis-engine/internal/sources"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// Store persists run state between stages. The pipeline only needs the
// update half of the run store.
type Store interface {
	UpdateRun(ctx context.Context, run *types.HypothesisRun) error
}

// Pipeline executes hypothesis runs. Backend and Sources are injected so
// tests can substitute mocks.
type Pipeline struct {
	Backend llm.Backend
	Sources []sources.Source
	Config  types.PipelineConfig

	// Store is optional; when set, status transitions and the final run
	// are persisted as the pipeline progresses.
	Store Store

	// Log receives structured stage events. Nil means no logging.
	Log *zap.Logger

	// Out receives human-readable progress and warning lines.
	Out io.Writer
}

type stageResult struct {
	step  types.ReasoningStep
	trace types.TraceEntry
}

// Execute runs all seven stages against the run in order, recording one
// reasoning step and one trace entry per stage. The run moves
// running → completed, or running → failed with the error captured on
// the run itself.
func (p *Pipeline) Execute(ctx context.Context, run *types.HypothesisRun) error {
	if run.Goal == "" {
		return fmt.Errorf("run %s has no goal", run.ID)
	}

	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	out := p.Out
	if out == nil {
		out = io.Discard
	}

	run.Status = types.StatusRunning
	if err := p.persist(ctx, run); err != nil {
		return err
	}

	log.Info("pipeline started",
		zap.String("run_id", run.ID),
		zap.String("domain", string(run.Domain)),
		zap.String("goal", run.Goal))

	stages := []struct {
		name string
		fn   func(context.Context, *types.HypothesisRun, io.Writer) (stageResult, error)
	}{
		{"visioner", p.runDirections},
		{"concept_learner", p.runConcepts},
		{"evidence_miner", p.runEvidence},
		{"cross_domain_mapper", p.runCrossDomain},
		{"synthesizer", p.runSynthesis},
		{"simulation", p.runSimulation},
		{"ethics_validator", p.runEthics},
	}

	for i, stage := range stages {
		fmt.Fprintf(out, "[%s] stage %d/%d: %s\n", run.ID, i+1, len(stages), stage.name)
		start := time.Now()

		res, err := stage.fn(ctx, run, out)
		if err != nil {
			run.Status = types.StatusFailed
			run.ErrorMessage = fmt.Sprintf("stage %s: %v", stage.name, err)
			if perr := p.persist(ctx, run); perr != nil {
				log.Warn("persisting failed run", zap.Error(perr))
			}
			log.Error("stage failed", zap.String("stage", stage.name), zap.Error(err))
			return fmt.Errorf("stage %s: %w", stage.name, err)
		}

		res.trace.Stage = stage.name
		res.trace.Duration = time.Since(start)
		run.ReasoningSteps = append(run.ReasoningSteps, res.step)
		run.Trace = append(run.Trace, res.trace)

		log.Info("stage completed",
			zap.String("stage", stage.name),
			zap.Duration("duration", res.trace.Duration),
			zap.String("output", res.trace.OutputSummary))
	}

	summary := report.BuildExecutiveSummary(run)
	run.ExecutiveSummary = summary.Markdown()
	run.Status = types.StatusCompleted
	if err := p.persist(ctx, run); err != nil {
		return err
	}

	log.Info("pipeline completed",
		zap.String("run_id", run.ID),
		zap.Int("evidence_records", len(run.EvidencePacks)),
		zap.String("feasibility", string(run.Scorecard.OverallFeasibility)),
		zap.String("ethics", string(run.Ethics.Verdict)))
	return nil
}

func (p *Pipeline) persist(ctx context.Context, run *types.HypothesisRun) error {
	if p.Store == nil {
		return nil
	}
	if err := p.Store.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("persisting run %s: %w", run.ID, err)
	}
	return nil
}

// maxRetries is the retry budget handed to the LLM layer.
func (p *Pipeline) maxRetries() int {
	return p.Config.LLM.MaxRetries
}

// constraintsText renders the run constraints for prompt inclusion.
func constraintsText(c types.Constraints) string {
	var parts []string
	if c.MaxInvasiveness != "" {
		parts = append(parts, fmt.Sprintf("Maximum invasiveness: %s", c.MaxInvasiveness))
	}
	if c.BudgetUSD > 0 {
		parts = append(parts, fmt.Sprintf("Development budget: about USD %.0f", c.BudgetUSD))
	}
	if c.TimelineMonths > 0 {
		parts = append(parts, fmt.Sprintf("Timeline: %d months to a testable result", c.TimelineMonths))
	}
	if len(c.CrossDomainSources) > 0 {
		parts = append(parts, fmt.Sprintf("Cross-domain fields to mine: %s", strings.Join(c.CrossDomainSources, ", ")))
	}
	if len(parts) == 0 {
		return ""
	}
	return "\nConstraints:\n- " + strings.Join(parts, "\n- ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
