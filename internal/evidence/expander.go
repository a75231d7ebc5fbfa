// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"regexp"
	"strings"
)

type synonymGroup struct {
	base     string
	synonyms []string
}

// medicalSynonyms relates a recognized term (matched as a substring of the
// lower-cased query) to related terms. At most 3 synonyms per hit are added.
// The slice order is fixed so repeated expansions of the same query return
// the same terms even under MaxTerms truncation.
var medicalSynonyms = []synonymGroup{
	{"diabetes", []string{"diabetes mellitus", "diabetic", "hyperglycemia", "glucose intolerance"}},
	{"insulin", []string{"insulin hormone", "insulin secretion", "insulin resistance"}},
	{"glucose", []string{"blood glucose", "blood sugar", "glycemia", "dextrose"}},
	{"type 2 diabetes", []string{"T2D", "T2DM", "NIDDM", "non-insulin dependent diabetes"}},
	{"type 1 diabetes", []string{"T1D", "T1DM", "IDDM", "insulin dependent diabetes"}},

	{"heart", []string{"cardiac", "cardiovascular", "myocardial"}},
	{"heart failure", []string{"cardiac failure", "HF", "CHF", "congestive heart failure"}},
	{"hypertension", []string{"high blood pressure", "HTN", "elevated blood pressure"}},
	{"stroke", []string{"cerebrovascular accident", "CVA", "brain attack"}},

	{"cancer", []string{"carcinoma", "tumor", "malignancy", "neoplasm", "oncology"}},
	{"chemotherapy", []string{"chemo", "cytotoxic therapy", "cancer treatment"}},
	{"metastasis", []string{"metastatic", "spread", "secondary cancer"}},

	{"alzheimer", []string{"AD", "alzheimer disease", "dementia"}},
	{"parkinson", []string{"PD", "parkinson disease", "parkinsonian"}},
	{"epilepsy", []string{"seizure disorder", "convulsions"}},

	{"immune", []string{"immunity", "immunological", "immune system"}},
	{"antibody", []string{"immunoglobulin", "Ig", "antibodies"}},
	{"inflammation", []string{"inflammatory", "inflamed"}},

	{"treatment", []string{"therapy", "intervention", "therapeutic"}},
	{"drug", []string{"medication", "pharmaceutical", "medicine"}},
	{"protein", []string{"polypeptide", "peptide"}},
	{"gene", []string{"genetic", "genome", "genomic"}},
	{"pathway", []string{"signaling pathway", "metabolic pathway", "cellular pathway"}},
}

// domainKeywords enriches queries per medical domain. A keyword is only
// added when it already appears in the query, which prevents topic drift.
var domainKeywords = map[string][]string{
	"diabetes": {
		"insulin", "glucose", "pancreas", "beta cell", "metabolic",
		"glycemic control", "HbA1c", "glucagon", "GLP-1",
	},
	"cardiology": {
		"heart", "cardiac", "vascular", "blood pressure", "coronary",
		"artery", "ECG", "echocardiogram", "myocardial",
	},
	"oncology": {
		"cancer", "tumor", "malignant", "metastasis", "chemotherapy",
		"radiation", "oncogene", "apoptosis", "proliferation",
	},
	"neurology": {
		"brain", "neural", "neuron", "cognitive", "neurological",
		"CNS", "neurotransmitter", "synaptic",
	},
	"immunology": {
		"immune", "antibody", "T cell", "B cell", "cytokine",
		"inflammation", "autoimmune", "immunotherapy",
	},
	"infectious_disease": {
		"infection", "pathogen", "bacteria", "virus", "antimicrobial",
		"antibiotic", "resistance", "vaccine",
	},
}

// acronymExpansions maps common medical acronyms to their long forms.
var acronymExpansions = map[string]string{
	"AMR":  "antimicrobial resistance",
	"T2D":  "type 2 diabetes",
	"T1D":  "type 1 diabetes",
	"CVD":  "cardiovascular disease",
	"CHD":  "coronary heart disease",
	"COPD": "chronic obstructive pulmonary disease",
	"HIV":  "human immunodeficiency virus",
	"AIDS": "acquired immunodeficiency syndrome",
	"DNA":  "deoxyribonucleic acid",
	"RNA":  "ribonucleic acid",
	"MRNA": "messenger RNA",
	"PCR":  "polymerase chain reaction",
	"MRI":  "magnetic resonance imaging",
	"CT":   "computed tomography",
	"PET":  "positron emission tomography",
	"FDA":  "food and drug administration",
	"NIH":  "national institutes of health",
	"WHO":  "world health organization",
}

var (
	receptorRe  = regexp.MustCompile(`(\w+)\s+receptor`)
	pathwayRe   = regexp.MustCompile(`(\w+)\s+pathway`)
	signalingRe = regexp.MustCompile(`(\w+)\s+signaling`)
)

var diseaseSuffixes = []string{"disease", "syndrome", "disorder", "condition"}

// ExpandOptions controls which expansion passes run.
type ExpandOptions struct {
	Domain                string
	MaxTerms              int
	IncludeSynonyms       bool
	IncludeDomainKeywords bool
	IncludeAcronyms       bool
}

// Expand grows a raw search query into an ordered list of related terms.
// The original query always comes first; duplicates are removed
// case-insensitively with first-seen order preserved; the result is
// truncated to MaxTerms when MaxTerms > 0.
func Expand(query string, opts ExpandOptions) []string {
	queryLower := strings.ToLower(query)

	seen := make(map[string]bool)
	var terms []string
	add := func(term string) {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		terms = append(terms, term)
	}

	add(query)

	if opts.IncludeSynonyms {
		for _, group := range medicalSynonyms {
			if !strings.Contains(queryLower, group.base) {
				continue
			}
			limit := 3
			if len(group.synonyms) < limit {
				limit = len(group.synonyms)
			}
			for _, syn := range group.synonyms[:limit] {
				add(syn)
			}
		}
	}

	if opts.IncludeDomainKeywords && opts.Domain != "" {
		for _, kw := range domainKeywords[strings.ToLower(opts.Domain)] {
			if strings.Contains(queryLower, strings.ToLower(kw)) {
				add(kw)
			}
		}
	}

	if opts.IncludeAcronyms {
		for _, word := range strings.Fields(query) {
			trimmed := strings.ToUpper(strings.Trim(word, ".,;:"))
			if long, ok := acronymExpansions[trimmed]; ok {
				add(long)
			}
		}
	}

	for _, concept := range extractConcepts(queryLower) {
		add(concept)
	}

	if opts.MaxTerms > 0 && len(terms) > opts.MaxTerms {
		terms = terms[:opts.MaxTerms]
	}
	return terms
}

// extractConcepts pulls structural medical concepts out of a lower-cased
// query: "<word> receptor/pathway/signaling" and
// "<word> disease/syndrome/disorder/condition".
func extractConcepts(queryLower string) []string {
	var concepts []string
	for _, re := range []*regexp.Regexp{receptorRe, pathwayRe, signalingRe} {
		for _, m := range re.FindAllStringSubmatch(queryLower, -1) {
			concepts = append(concepts, m[0])
		}
	}
	for _, suffix := range diseaseSuffixes {
		re := regexp.MustCompile(`(\w+)\s+` + suffix)
		for _, m := range re.FindAllStringSubmatch(queryLower, -1) {
			concepts = append(concepts, m[0])
		}
	}
	return concepts
}
