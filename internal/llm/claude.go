// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/hypothesis-engine/internal/httputil"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude Messages API and returns the raw text of
// the first text content block.
type ClaudeBackend struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Client      *http.Client
}

// NewClaudeBackend builds a backend from the LLM configuration.
func NewClaudeBackend(cfg types.LLMConfig, client *http.Client) *ClaudeBackend {
	return &ClaudeBackend{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Client:      client,
	}
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// GenerateJSON sends the prompt and returns the model's text verbatim.
func (c *ClaudeBackend) GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	reqBody := claudeRequest{
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: c.Temperature,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	// Rate limits surface as 429; DoWithRetry backs off and retries those
	// before the error ever reaches CallWithRetry.
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return nil, fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return json.RawMessage(block.Text), nil
		}
	}

	return nil, fmt.Errorf("no text content in Claude API response")
}
