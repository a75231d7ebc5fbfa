// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hypothesis-engine/internal/report"
	"github.com/pdiddy/hypothesis-engine/internal/store"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Display a stored run",
	Long: `Show prints a stored run. By default it prints an overview: status,
hypothesis document, scorecard, and ethics verdict. Flags select other
renderings: the executive summary, the step-by-step reasoning narrative, a
structured JSON narrative, a Mermaid flowchart of the reasoning chain, or
the raw run document.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig()
		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		run, err := st.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		switch {
		case flagBool(cmd, "json"):
			return printJSON(run)
		case flagBool(cmd, "summary"):
			fmt.Println(run.ExecutiveSummary)
			return nil
		case flagBool(cmd, "narrative"):
			fmt.Println(report.ReasoningNarrative(run.ReasoningSteps, run.EvidencePacks))
			return nil
		case flagBool(cmd, "narrative-json"):
			return printJSON(report.BuildNarrativeDocument(run))
		case flagBool(cmd, "flowchart"):
			fmt.Println(report.MermaidFlowchart(run.ReasoningSteps))
			return nil
		}

		printOverview(run)
		return nil
	},
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printOverview(run *types.HypothesisRun) {
	fmt.Printf("Run:      %s\n", run.ID)
	fmt.Printf("Status:   %s\n", run.Status)
	fmt.Printf("Domain:   %s\n", run.Domain)
	fmt.Printf("Goal:     %s\n", run.Goal)
	fmt.Printf("Created:  %s\n", run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if run.ErrorMessage != "" {
		fmt.Printf("Error:    %s\n", run.ErrorMessage)
	}

	if run.Document.Title != "" {
		fmt.Printf("\nHypothesis: %s\n", run.Document.Title)
		fmt.Printf("Statement:  %s\n", run.Document.Statement)
		if len(run.Document.MolecularTargets) > 0 {
			fmt.Printf("Targets:    %v\n", run.Document.MolecularTargets)
		}
	}

	if run.Scorecard.OverallFeasibility != "" {
		fmt.Printf("\nFeasibility: %s (%.2f)\n", run.Scorecard.OverallFeasibility, run.Scorecard.FeasibilityScore)
	}
	if run.Ethics.Verdict != "" {
		fmt.Printf("Ethics:      %s", run.Ethics.Verdict)
		if run.Ethics.CapApplied != "" {
			fmt.Printf(" (%s)", run.Ethics.CapApplied)
		}
		fmt.Println()
	}
	fmt.Printf("\nEvidence: %d records, %d reasoning steps, %d cross-domain transfers\n",
		len(run.EvidencePacks), len(run.ReasoningSteps), len(run.Transfers))
}

func init() {
	showCmd.Flags().Bool("json", false, "print the raw run document as JSON")
	showCmd.Flags().Bool("summary", false, "print the executive summary markdown")
	showCmd.Flags().Bool("narrative", false, "print the reasoning narrative markdown")
	showCmd.Flags().Bool("narrative-json", false, "print the structured narrative document as JSON")
	showCmd.Flags().Bool("flowchart", false, "print a Mermaid flowchart of the reasoning chain")

	rootCmd.AddCommand(showCmd)
}
