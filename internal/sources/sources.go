// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources queries external scientific databases and returns raw
// evidence records. Each backend (PubMed, ClinicalTrials.gov, Europe PMC)
// implements the Source interface per the Strategy pattern; Gather fans a
// query out to all enabled backends concurrently and collects whatever
// they return, tolerating per-backend failures.
package sources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// Source searches a single scientific database.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, cfg types.SourcesConfig) ([]types.EvidenceRecord, error)
}

// GatherOutput holds the flattened records and per-source failure notes.
type GatherOutput struct {
	Records      []types.EvidenceRecord
	SourceErrors []string
}

// maxConcurrentSources bounds the fan-out so a wide source list does not
// hammer the network all at once.
const maxConcurrentSources = 4

// Gather fans the query out to every source concurrently and flattens the
// results. A failed source contributes zero records and a warning line on
// w; it never aborts the gather. Records are assigned stable IDs before
// return.
func Gather(ctx context.Context, query string, srcs []Source, cfg types.SourcesConfig, w io.Writer) (GatherOutput, error) {
	if query == "" {
		return GatherOutput{}, fmt.Errorf("query is empty")
	}
	if len(srcs) == 0 {
		return GatherOutput{}, fmt.Errorf("no evidence sources configured")
	}

	type sourceResult struct {
		records []types.EvidenceRecord
		err     error
		name    string
	}

	results := make([]sourceResult, len(srcs))
	g := &errgroup.Group{}
	g.SetLimit(maxConcurrentSources)

	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			records, err := src.Search(ctx, query, cfg)
			results[i] = sourceResult{records: records, err: err, name: src.Name()}
			return nil
		})
	}
	// Goroutines never return errors; failures are per-slot.
	_ = g.Wait()

	var out GatherOutput
	for _, sr := range results {
		if sr.err != nil {
			out.SourceErrors = append(out.SourceErrors, fmt.Sprintf("%s: %v", sr.name, sr.err))
			fmt.Fprintf(w, "warning: source %s failed: %v\n", sr.name, sr.err)
			continue
		}
		out.Records = append(out.Records, sr.records...)
	}

	for i := range out.Records {
		if out.Records[i].ID == "" {
			out.Records[i].ID = stableID(out.Records[i].Source + "|" + out.Records[i].Title + "|" + out.Records[i].URL)
		}
	}

	return out, nil
}

// stableID returns the first 12 hex characters of the SHA-256 of s.
func stableID(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
