// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"strings"
	"testing"
)

func defaultOpts() ExpandOptions {
	return ExpandOptions{
		MaxTerms:              10,
		IncludeSynonyms:       true,
		IncludeDomainKeywords: true,
		IncludeAcronyms:       true,
	}
}

func TestExpandOriginalFirst(t *testing.T) {
	terms := Expand("insulin resistance", defaultOpts())
	if len(terms) == 0 || terms[0] != "insulin resistance" {
		t.Fatalf("first term = %v, want original query first", terms)
	}
}

func TestExpandSynonymCap(t *testing.T) {
	// "cancer" has 5 synonyms in the table; only 3 may be added.
	terms := Expand("cancer", ExpandOptions{MaxTerms: 20, IncludeSynonyms: true})

	added := 0
	for _, term := range terms[1:] {
		for _, group := range medicalSynonyms {
			if group.base != "cancer" {
				continue
			}
			for _, syn := range group.synonyms {
				if term == syn {
					added++
				}
			}
		}
	}
	if added != 3 {
		t.Errorf("synonyms added = %d, want 3 (got %v)", added, terms)
	}
}

func TestExpandDomainKeywordsRequirePresence(t *testing.T) {
	opts := defaultOpts()
	opts.Domain = "oncology"

	// "tumor" appears in the query so it qualifies; "apoptosis" does not.
	terms := Expand("tumor growth", opts)
	if !contains(terms, "tumor") {
		t.Errorf("expected domain keyword 'tumor' in %v", terms)
	}
	if contains(terms, "apoptosis") {
		t.Errorf("keyword absent from query must not be added: %v", terms)
	}
}

func TestExpandAcronyms(t *testing.T) {
	terms := Expand("AMR surveillance", ExpandOptions{MaxTerms: 10, IncludeAcronyms: true})
	if !contains(terms, "antimicrobial resistance") {
		t.Errorf("expected acronym expansion in %v", terms)
	}
}

func TestExpandConceptPatterns(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"EGFR receptor inhibition", "egfr receptor"},
		{"mTOR pathway analysis", "mtor pathway"},
		{"WNT signaling in cancer", "wnt signaling"},
		{"crohn disease biomarkers", "crohn disease"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			terms := Expand(tt.query, ExpandOptions{MaxTerms: 10})
			if !contains(terms, tt.want) {
				t.Errorf("Expand(%q) = %v, want to contain %q", tt.query, terms, tt.want)
			}
		})
	}
}

func TestExpandDedupCaseInsensitive(t *testing.T) {
	terms := Expand("Diabetes", defaultOpts())

	seen := make(map[string]bool)
	for _, term := range terms {
		key := strings.ToLower(term)
		if seen[key] {
			t.Errorf("duplicate term %q in %v", term, terms)
		}
		seen[key] = true
	}
}

func TestExpandMaxTerms(t *testing.T) {
	opts := defaultOpts()
	opts.MaxTerms = 3
	terms := Expand("diabetes insulin glucose treatment", opts)
	if len(terms) != 3 {
		t.Errorf("len(terms) = %d, want 3", len(terms))
	}
	if terms[0] != "diabetes insulin glucose treatment" {
		t.Errorf("truncation must not drop the original query: %v", terms)
	}
}

func TestExpandDeterministic(t *testing.T) {
	// A query hitting several synonym groups must expand to the same
	// ordered terms on every call, even when MaxTerms truncates.
	opts := ExpandOptions{
		Domain:                "diabetes",
		MaxTerms:              6,
		IncludeSynonyms:       true,
		IncludeDomainKeywords: true,
		IncludeAcronyms:       true,
	}
	query := "insulin and glucose treatment for diabetes"

	first := Expand(query, opts)
	for i := 0; i < 100; i++ {
		got := Expand(query, opts)
		if strings.Join(got, "|") != strings.Join(first, "|") {
			t.Fatalf("run %d diverged:\n  %v\nvs\n  %v", i, got, first)
		}
	}
}

func contains(terms []string, want string) bool {
	for _, t := range terms {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}
