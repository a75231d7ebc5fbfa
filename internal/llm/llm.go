// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the generative AI API used by the pipeline
// stages. Each stage renders its own prompt and asks the backend for a
// JSON document; the Backend interface lets tests supply a mock per the
// Strategy pattern.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Backend generates a JSON document from a prompt.
type Backend interface {
	GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error)
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// CallWithRetry calls the backend with exponential backoff. Stage agents
// go through this entry point so that retry policy lives in one place.
func CallWithRetry(ctx context.Context, backend Backend, prompt string, maxRetries int) (json.RawMessage, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		raw, err := backend.GenerateJSON(ctx, prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// Decode unmarshals a backend response into v. Responses wrapped in
// Markdown code fences are unwrapped first, since models sometimes add
// them despite instructions.
func Decode(raw json.RawMessage, v any) error {
	text := stripCodeFence(string(raw))
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("parsing model response: %w", err)
	}
	return nil
}

// stripCodeFence removes a surrounding ```json ... ``` fence if present.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if i := strings.LastIndex(trimmed, "```"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return strings.TrimSpace(trimmed)
}
