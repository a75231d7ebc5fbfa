// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hypothesis-engine/internal/evidence"
)

var expandCmd = &cobra.Command{
	Use:   "expand [query]",
	Short: "Expand a search query into related literature terms",
	Long: `Expand turns a research query into a list of literature search terms:
medical synonyms, domain keywords, acronym expansions, and concept patterns.
Useful for previewing what the evidence-mining stage will search for.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		domain, _ := cmd.Flags().GetString("domain")
		maxTerms, _ := cmd.Flags().GetInt("max-terms")

		terms := evidence.Expand(query, evidence.ExpandOptions{
			Domain:                domain,
			MaxTerms:              maxTerms,
			IncludeSynonyms:       !flagBool(cmd, "no-synonyms"),
			IncludeDomainKeywords: !flagBool(cmd, "no-domain-keywords"),
			IncludeAcronyms:       !flagBool(cmd, "no-acronyms"),
		})

		if flagBool(cmd, "json") {
			return printJSON(terms)
		}
		for _, t := range terms {
			fmt.Println(t)
		}
		return nil
	},
}

func init() {
	expandCmd.Flags().String("domain", "", "medical domain for keyword expansion")
	expandCmd.Flags().Int("max-terms", 10, "maximum number of expanded terms")
	expandCmd.Flags().Bool("no-synonyms", false, "skip medical synonym expansion")
	expandCmd.Flags().Bool("no-domain-keywords", false, "skip domain keyword expansion")
	expandCmd.Flags().Bool("no-acronyms", false, "skip acronym expansion")
	expandCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(expandCmd)
}
