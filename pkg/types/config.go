// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "hypothesis-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourcesConfig holds settings for the evidence-gathering stage.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxPerSource is the maximum number of records requested from each
	// backend (default 10).
	MaxPerSource int `json:"max_per_source" yaml:"max_per_source"`

	// EnablePubMed controls whether the PubMed backend is used.
	EnablePubMed bool `json:"enable_pubmed" yaml:"enable_pubmed"`

	// EnableClinicalTrials controls whether the ClinicalTrials.gov backend is used.
	EnableClinicalTrials bool `json:"enable_clinicaltrials" yaml:"enable_clinicaltrials"`

	// EnableEuropePMC controls whether the Europe PMC backend is used.
	EnableEuropePMC bool `json:"enable_europepmc" yaml:"enable_europepmc"`

	// MaxQueryTerms bounds query expansion (default 10).
	MaxQueryTerms int `json:"max_query_terms" yaml:"max_query_terms"`

	// TitleSimilarityThreshold is the fuzzy-dedup cutoff (default 0.85).
	TitleSimilarityThreshold float64 `json:"title_similarity_threshold" yaml:"title_similarity_threshold"`

	// MergeDuplicates unions metadata from duplicates instead of dropping
	// the lower-confidence record.
	MergeDuplicates bool `json:"merge_duplicates" yaml:"merge_duplicates"`

	// TopK truncates the scored evidence list (0 means keep all).
	TopK int `json:"top_k" yaml:"top_k"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed or malformed
	// API responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxTokens bounds the response length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature controls sampling randomness (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// LLMConfig holds settings for the generative-text collaborator.
type LLMConfig struct {
	AIConfig   `yaml:",inline"`
	HTTPConfig `yaml:",inline"`
}

// StoreConfig holds settings for the run store.
type StoreConfig struct {
	// Path is the SQLite database file (default "hypothesis.db").
	Path string `json:"path" yaml:"path"`
}

// LogConfig holds settings for the structured logger.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string `json:"level" yaml:"level"`

	// Format selects the encoder: "console" or "json".
	Format string `json:"format" yaml:"format"`

	// File is an optional log file path; empty logs to stderr only.
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// MaxSizeMB rotates the log file once it exceeds this size (default 50).
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups bounds the number of rotated files kept (default 3).
	MaxBackups int `json:"max_backups" yaml:"max_backups"`
}

// PipelineConfig groups all stage configurations for one engine instance.
type PipelineConfig struct {
	Sources SourcesConfig `json:"sources" yaml:"sources"`
	LLM     LLMConfig     `json:"llm" yaml:"llm"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Log     LogConfig     `json:"log" yaml:"log"`
}
