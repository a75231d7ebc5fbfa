// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hypothesis-engine/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a run to a YAML or JSON file",
	Long: `Export writes a stored run to a file. The output format follows the file
extension: .yaml/.yml for YAML, .json for JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = args[0] + ".yaml"
		}

		cfg := buildConfig()
		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		if err := st.ExportRun(cmd.Context(), args[0], output); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported run %s to %s\n", args[0], output)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("output", "", "output file path (default <run-id>.yaml)")

	rootCmd.AddCommand(exportCmd)
}
