// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hypothesis-engine/internal/store"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a terminal run",
	Long: `Delete removes a stored run. Only terminal runs (completed, failed, or
cancelled) can be deleted; a pending or running run must finish or fail
first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig()
		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		if err := st.DeleteRun(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Deleted run %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
