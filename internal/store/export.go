// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ExportRun writes a single run to path as YAML or JSON, chosen by the
// file extension (.yaml/.yml or .json).
func (s *Store) ExportRun(ctx context.Context, id, path string) error {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return err
	}

	var data []byte
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		data, err = yaml.Marshal(run)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case strings.HasSuffix(path, ".json"):
		data, err = json.MarshalIndent(run, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format for %s (use .yaml, .yml, or .json)", path)
	}

	return os.WriteFile(path, data, 0o644)
}
