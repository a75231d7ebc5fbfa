// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hypothesis-engine/internal/store"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	Long: `List prints stored runs, newest first. --status and --domain filter the
listing; --search runs a full-text query against run goals and executive
summaries instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig()
		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		search, _ := cmd.Flags().GetString("search")

		var summaries []store.RunSummary
		if search != "" {
			summaries, err = st.SearchRuns(cmd.Context(), search, limit)
		} else {
			status, _ := cmd.Flags().GetString("status")
			domain, _ := cmd.Flags().GetString("domain")
			summaries, err = st.ListRuns(cmd.Context(), store.ListOptions{
				Status: types.RunStatus(status),
				Domain: types.MedicalDomain(domain),
				Limit:  limit,
			})
		}
		if err != nil {
			return err
		}

		if flagBool(cmd, "json") {
			return printJSON(summaries)
		}
		if len(summaries) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tDOMAIN\tCREATED\tGOAL")
		for _, s := range summaries {
			goal := s.Goal
			if len(goal) > 60 {
				goal = goal[:60] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				s.ID, s.Status, s.Domain, s.CreatedAt.Format("2006-01-02 15:04"), goal)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().String("status", "", "filter by status: pending, running, completed, failed, cancelled")
	listCmd.Flags().String("domain", "", "filter by medical domain")
	listCmd.Flags().String("search", "", "full-text search over goals and summaries")
	listCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	listCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(listCmd)
}
