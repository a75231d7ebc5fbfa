// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the hypothesis-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/hypothesis-engine/internal/secrets"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the hypothesis-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "hypothesis-engine",
	Short: "Medical research hypothesis generation pipeline",
	Long: `hypothesis-engine turns a medical research goal into a structured,
evidence-grounded hypothesis. A run walks seven stages: research directions,
concept mapping, evidence mining across PubMed, ClinicalTrials.gov and Europe
PMC, cross-domain innovation transfer, hypothesis synthesis, feasibility
simulation, and ethics validation. Completed runs are persisted to a local
SQLite store and can be listed, inspected, and exported.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./hypothesis-engine.yaml or ~/.config/hypothesis-engine/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (overrides store.path)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("hypothesis-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "hypothesis-engine"))
		}
	}

	viper.SetDefault("llm.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("llm.max_retries", 3)
	viper.SetDefault("llm.max_tokens", 4096)
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.timeout", "120s")
	viper.SetDefault("sources.enable_pubmed", true)
	viper.SetDefault("sources.enable_clinicaltrials", true)
	viper.SetDefault("sources.enable_europepmc", true)
	viper.SetDefault("sources.max_per_source", 10)
	viper.SetDefault("sources.max_query_terms", 10)
	viper.SetDefault("sources.title_similarity_threshold", 0.85)
	viper.SetDefault("sources.top_k", 25)
	viper.SetDefault("sources.timeout", "30s")
	viper.SetDefault("sources.user_agent", "hypothesis-engine/"+version)
	viper.SetDefault("store.path", "hypothesis.db")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	viper.SetEnvPrefix("HYPOTHESIS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the pipeline configuration from viper state,
// secrets, and flag overrides.
func buildConfig() types.PipelineConfig {
	var cfg types.PipelineConfig

	cfg.LLM.Model = viper.GetString("llm.model")
	cfg.LLM.APIKey = secretDefault("ANTHROPIC_API_KEY", viper.GetString("llm.api_key"))
	cfg.LLM.MaxRetries = viper.GetInt("llm.max_retries")
	cfg.LLM.MaxTokens = viper.GetInt("llm.max_tokens")
	cfg.LLM.Temperature = viper.GetFloat64("llm.temperature")
	cfg.LLM.Timeout = viper.GetDuration("llm.timeout")

	cfg.Sources.EnablePubMed = viper.GetBool("sources.enable_pubmed")
	cfg.Sources.EnableClinicalTrials = viper.GetBool("sources.enable_clinicaltrials")
	cfg.Sources.EnableEuropePMC = viper.GetBool("sources.enable_europepmc")
	cfg.Sources.MaxPerSource = viper.GetInt("sources.max_per_source")
	cfg.Sources.MaxQueryTerms = viper.GetInt("sources.max_query_terms")
	cfg.Sources.TitleSimilarityThreshold = viper.GetFloat64("sources.title_similarity_threshold")
	cfg.Sources.MergeDuplicates = viper.GetBool("sources.merge_duplicates")
	cfg.Sources.TopK = viper.GetInt("sources.top_k")
	cfg.Sources.Timeout = viper.GetDuration("sources.timeout")
	cfg.Sources.UserAgent = viper.GetString("sources.user_agent")

	cfg.Store.Path = viper.GetString("store.path")
	if db, _ := rootCmd.PersistentFlags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}

	cfg.Log.Level = viper.GetString("log.level")
	cfg.Log.Format = viper.GetString("log.format")
	cfg.Log.File = viper.GetString("log.file")
	cfg.Log.MaxSizeMB = viper.GetInt("log.max_size_mb")
	cfg.Log.MaxBackups = viper.GetInt("log.max_backups")

	if cfg.Sources.Timeout <= 0 {
		cfg.Sources.Timeout = 30 * time.Second
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = 120 * time.Second
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
