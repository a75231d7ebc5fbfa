// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/hypothesis-engine/internal/evidence"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score <records-file>",
	Short: "Score and rank evidence records from a file",
	Long: `Score reads evidence records from a YAML or JSON file, deduplicates them,
scores each against the query terms (relevance, quality, recency, impact),
assigns tiers, and prints the ranked result. This is the evidence-mining
scoring path, runnable offline against saved records.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := readRecords(args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no evidence records in %s", args[0])
		}

		rawQuery, _ := cmd.Flags().GetString("query")
		var queryTerms []string
		for _, t := range strings.Split(rawQuery, ",") {
			if t = strings.TrimSpace(t); t != "" {
				queryTerms = append(queryTerms, t)
			}
		}

		dedup := evidence.NewDeduplicator()
		if threshold, _ := cmd.Flags().GetFloat64("similarity-threshold"); threshold > 0 {
			dedup.SimilarityThreshold = threshold
		}
		var removed int
		if flagBool(cmd, "merge") {
			before := len(records)
			records = dedup.Merge(records)
			removed = before - len(records)
		} else {
			records, removed = dedup.Deduplicate(records, true)
		}

		scorer := evidence.NewScorer()
		for i := range records {
			scorer.Apply(&records[i], queryTerms, -1)
		}
		topK, _ := cmd.Flags().GetInt("top-k")
		records = evidence.Rank(records, topK)

		if flagBool(cmd, "json") {
			return printJSON(records)
		}

		if removed > 0 {
			fmt.Fprintf(os.Stderr, "Removed %d duplicate records\n", removed)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CONFIDENCE\tTIER\tSOURCE\tTITLE")
		for _, rec := range records {
			title := rec.Title
			if len(title) > 70 {
				title = title[:70] + "..."
			}
			fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n", rec.ConfidenceScore, rec.Tier, rec.Source, title)
		}
		return w.Flush()
	},
}

// readRecords loads evidence records from a YAML or JSON file, chosen by
// extension.
func readRecords(path string) ([]types.EvidenceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []types.EvidenceRecord
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case strings.HasSuffix(path, ".json"):
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported records format for %s (use .yaml, .yml, or .json)", path)
	}
	return records, nil
}

func init() {
	scoreCmd.Flags().String("query", "", "comma-separated query terms for relevance scoring")
	scoreCmd.Flags().Int("top-k", 0, "keep only the top K records (0 for all)")
	scoreCmd.Flags().Float64("similarity-threshold", 0, "fuzzy title dedup threshold (default 0.85)")
	scoreCmd.Flags().Bool("merge", false, "merge duplicate metadata instead of dropping duplicates")
	scoreCmd.Flags().Bool("json", false, "output scored records as JSON")

	rootCmd.AddCommand(scoreCmd)
}
