// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// DefaultTitleSimilarity is the fuzzy-dedup cutoff used when the config
// does not override it.
const DefaultTitleSimilarity = 0.85

var (
	doiURLRe      = regexp.MustCompile(`10\.\d{4,}/[^\s]+`)
	doiCitationRe = regexp.MustCompile(`10\.\d{4,}/[^\s,;]+`)
	pmidURLRe     = regexp.MustCompile(`pubmed/(\d+)`)
	pmidRe        = regexp.MustCompile(`(?i)PMID:?\s*(\d+)`)
	nctRe         = regexp.MustCompile(`(?i)NCT\d{8}`)
	arxivRe       = regexp.MustCompile(`(?i)arxiv:?\s*(\d{4}\.\d{4,5})`)
	protocolRe    = regexp.MustCompile(`^https?://`)
	punctRe       = regexp.MustCompile(`[^\w\s]`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// Deduplicator collapses evidence records that refer to the same source
// document, by extracted identifier first and fuzzy title similarity second.
type Deduplicator struct {
	// SimilarityThreshold is the minimum title similarity ratio for two
	// records without a shared strong identifier to count as duplicates.
	SimilarityThreshold float64
}

// NewDeduplicator returns a Deduplicator with the default threshold.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{SimilarityThreshold: DefaultTitleSimilarity}
}

// Deduplicate removes duplicate records, preserving first-seen order.
// With keepHighestQuality, a later duplicate with a higher confidence
// score replaces the one already kept; otherwise later duplicates are
// dropped. Returns the surviving records and the number removed.
func (d *Deduplicator) Deduplicate(records []types.EvidenceRecord, keepHighestQuality bool) ([]types.EvidenceRecord, int) {
	if len(records) == 0 {
		return nil, 0
	}

	var unique []types.EvidenceRecord
	seen := make(map[string]bool)

	for _, rec := range records {
		sig := Signature(rec)
		if seen[sig] {
			continue
		}

		dupIdx := -1
		for i := range unique {
			if d.isFuzzyDuplicate(rec, unique[i]) {
				dupIdx = i
				break
			}
		}

		if dupIdx >= 0 {
			if keepHighestQuality && qualityOf(rec) > qualityOf(unique[dupIdx]) {
				delete(seen, Signature(unique[dupIdx]))
				unique[dupIdx] = rec
				seen[sig] = true
			}
			continue
		}

		unique = append(unique, rec)
		seen[sig] = true
	}

	return unique, len(records) - len(unique)
}

// Merge collapses duplicate records by combining their metadata instead of
// dropping them: key findings are unioned, excerpts unioned and capped at
// 3, distinct source labels concatenated, and the highest confidence score
// kept. Groups are keyed by identifier signature only.
func (d *Deduplicator) Merge(records []types.EvidenceRecord) []types.EvidenceRecord {
	groups := make(map[string][]types.EvidenceRecord)
	var order []string
	for _, rec := range records {
		sig := Signature(rec)
		if _, ok := groups[sig]; !ok {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], rec)
	}

	var merged []types.EvidenceRecord
	for _, sig := range order {
		group := groups[sig]
		if len(group) == 1 {
			merged = append(merged, group[0])
			continue
		}
		merged = append(merged, mergeGroup(group))
	}
	return merged
}

func mergeGroup(group []types.EvidenceRecord) types.EvidenceRecord {
	sort.SliceStable(group, func(i, j int) bool {
		return qualityOf(group[i]) > qualityOf(group[j])
	})
	out := group[0]

	var findings, excerpts []string
	findingSeen := make(map[string]bool)
	excerptSeen := make(map[string]bool)
	sourceSeen := map[string]bool{out.Source: true}
	var extraSources []string

	for _, rec := range group {
		for _, f := range rec.KeyFindings {
			if !findingSeen[f] {
				findingSeen[f] = true
				findings = append(findings, f)
			}
		}
		for _, e := range rec.Excerpts {
			if !excerptSeen[e] {
				excerptSeen[e] = true
				excerpts = append(excerpts, e)
			}
		}
		if !sourceSeen[rec.Source] {
			sourceSeen[rec.Source] = true
			extraSources = append(extraSources, rec.Source)
		}
		if rec.ConfidenceScore > out.ConfidenceScore {
			out.ConfidenceScore = rec.ConfidenceScore
		}
	}

	out.KeyFindings = findings
	if len(excerpts) > 3 {
		excerpts = excerpts[:3]
	}
	out.Excerpts = excerpts
	if len(extraSources) > 0 {
		out.Source = fmt.Sprintf("%s (also in: %s)", out.Source, strings.Join(extraSources, ", "))
	}
	return out
}

// Signature derives the identity key for a record, in priority order:
// DOI, PMID, clinical-trial NCT ID, arXiv ID, normalized URL, normalized
// title.
func Signature(rec types.EvidenceRecord) string {
	if doi := extractDOI(rec); doi != "" {
		return "doi:" + doi
	}
	if pmid := extractPMID(rec); pmid != "" {
		return "pmid:" + pmid
	}
	if nct := extractNCT(rec); nct != "" {
		return "nct:" + nct
	}
	if arxiv := extractArxivID(rec); arxiv != "" {
		return "arxiv:" + arxiv
	}
	if rec.URL != "" {
		u := protocolRe.ReplaceAllString(rec.URL, "")
		u = strings.SplitN(strings.TrimRight(u, "/"), "?", 2)[0]
		return "url:" + u
	}
	return "title:" + normalizeTitle(rec.Title)
}

func (d *Deduplicator) isFuzzyDuplicate(a, b types.EvidenceRecord) bool {
	if doiA, doiB := extractDOI(a), extractDOI(b); doiA != "" && doiA == doiB {
		return true
	}
	if pmidA, pmidB := extractPMID(a), extractPMID(b); pmidA != "" && pmidA == pmidB {
		return true
	}

	titleA := strings.TrimSpace(strings.ToLower(a.Title))
	titleB := strings.TrimSpace(strings.ToLower(b.Title))
	if titleA == "" || titleB == "" {
		return false
	}
	return similarityRatio(titleA, titleB) >= d.SimilarityThreshold
}

func extractDOI(rec types.EvidenceRecord) string {
	if m := doiURLRe.FindString(rec.URL); m != "" {
		return strings.TrimRight(m, "/")
	}
	if m := doiCitationRe.FindString(rec.Citation); m != "" {
		return strings.TrimRight(m, ".,;")
	}
	return ""
}

func extractPMID(rec types.EvidenceRecord) string {
	if m := pmidURLRe.FindStringSubmatch(rec.URL); m != nil {
		return m[1]
	}
	if m := pmidRe.FindStringSubmatch(rec.Citation); m != nil {
		return m[1]
	}
	return ""
}

func extractNCT(rec types.EvidenceRecord) string {
	return strings.ToUpper(nctRe.FindString(rec.Citation + " " + rec.URL))
}

func extractArxivID(rec types.EvidenceRecord) string {
	if m := arxivRe.FindStringSubmatch(rec.Citation + " " + rec.URL); m != nil {
		return m[1]
	}
	return ""
}

func qualityOf(rec types.EvidenceRecord) float64 {
	if rec.ConfidenceScore > 0 {
		return rec.ConfidenceScore
	}
	if rec.QualityScore > 0 {
		return rec.QualityScore
	}
	return 0.5
}

// normalizeTitle lower-cases, strips punctuation, and collapses whitespace.
func normalizeTitle(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	t = punctRe.ReplaceAllString(t, "")
	return spaceRe.ReplaceAllString(t, " ")
}

// similarityRatio computes the classic matching-blocks ratio 2M/T over two
// strings, where M is the total length of the longest common blocks and T
// the combined length.
func similarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	m := matchingLen(a, b)
	return 2.0 * float64(m) / float64(len(a)+len(b))
}

// matchingLen finds the longest common substring and recurses on the
// unmatched prefixes and suffixes, mirroring difference-engine ratio
// semantics.
func matchingLen(a, b string) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingLen(a[:ai], b[:bi])
	total += matchingLen(a[ai+size:], b[bi+size:])
	return total
}

func longestCommonSubstring(a, b string) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					ai = i - size
					bi = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return ai, bi, size
}
