// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/hypothesis-engine/internal/llm"
	"github.com/pdiddy/hypothesis-engine/internal/logging"
	"github.com/pdiddy/hypothesis-engine/internal/pipeline"
	"github.com/pdiddy/hypothesis-engine/internal/sources"
	"github.com/pdiddy/hypothesis-engine/internal/store"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [research goal]",
	Short: "Execute the seven-stage hypothesis pipeline for a research goal",
	Long: `Run executes the full pipeline for a medical research goal: research
directions, concept mapping, evidence mining, cross-domain transfer,
synthesis, feasibility simulation, and ethics validation. The run is
persisted at each status transition, so interrupted or failed runs remain
inspectable with show.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal := strings.TrimSpace(strings.Join(args, " "))
		if goal == "" {
			return fmt.Errorf("research goal is empty")
		}

		cfg := buildConfig()
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("no API key: set llm.api_key, HYPOTHESIS_LLM_API_KEY, or .secrets/ANTHROPIC_API_KEY")
		}

		domain, _ := cmd.Flags().GetString("domain")
		constraints, err := constraintsFromFlags(cmd)
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		defer logger.Sync()

		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		run := &types.HypothesisRun{
			ID:          uuid.NewString(),
			Goal:        goal,
			Domain:      types.MedicalDomain(domain),
			Constraints: constraints,
			Status:      types.StatusPending,
		}
		if run.Domain == "" {
			run.Domain = types.DomainGeneral
		}
		if err := st.CreateRun(cmd.Context(), run); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Created run %s\n", run.ID)

		p := &pipeline.Pipeline{
			Backend: llm.NewClaudeBackend(cfg.LLM, &http.Client{Timeout: cfg.LLM.Timeout}),
			Sources: buildSources(cfg.Sources),
			Config:  cfg,
			Store:   st,
			Log:     logger,
			Out:     os.Stderr,
		}
		if err := p.Execute(cmd.Context(), run); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Run %s completed: %d evidence records, feasibility %s, ethics %s\n",
			run.ID, len(run.EvidencePacks), run.Scorecard.OverallFeasibility, run.Ethics.Verdict)
		fmt.Println(run.ExecutiveSummary)
		return nil
	},
}

// buildSources assembles the enabled evidence backends.
func buildSources(cfg types.SourcesConfig) []sources.Source {
	client := &http.Client{Timeout: cfg.Timeout}
	var srcs []sources.Source
	if cfg.EnablePubMed {
		srcs = append(srcs, &sources.PubMedSource{Client: client})
	}
	if cfg.EnableClinicalTrials {
		srcs = append(srcs, &sources.ClinicalTrialsSource{Client: client})
	}
	if cfg.EnableEuropePMC {
		srcs = append(srcs, &sources.EuropePMCSource{Client: client})
	}
	return srcs
}

func constraintsFromFlags(cmd *cobra.Command) (types.Constraints, error) {
	var c types.Constraints
	c.MaxInvasiveness, _ = cmd.Flags().GetString("max-invasiveness")
	c.BudgetUSD, _ = cmd.Flags().GetFloat64("budget")
	c.TimelineMonths, _ = cmd.Flags().GetInt("timeline-months")
	raw, _ := cmd.Flags().GetString("cross-domains")
	if raw != "" {
		for _, d := range strings.Split(raw, ",") {
			if d = strings.TrimSpace(d); d != "" {
				c.CrossDomainSources = append(c.CrossDomainSources, d)
			}
		}
	}
	if c.BudgetUSD < 0 {
		return c, fmt.Errorf("budget must be non-negative")
	}
	if c.TimelineMonths < 0 {
		return c, fmt.Errorf("timeline-months must be non-negative")
	}
	return c, nil
}

func init() {
	runCmd.Flags().String("domain", "", "medical domain (oncology, neurology, cardiology, ...; default general)")
	runCmd.Flags().String("max-invasiveness", "", "constraint: maximum acceptable invasiveness (e.g. non-invasive)")
	runCmd.Flags().Float64("budget", 0, "constraint: development budget in USD")
	runCmd.Flags().Int("timeline-months", 0, "constraint: months to a testable result")
	runCmd.Flags().String("cross-domains", "", "constraint: comma-separated non-medical fields to mine for transfers")

	rootCmd.AddCommand(runCmd)
}
