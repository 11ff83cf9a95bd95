package chunking

import (
	"regexp"
	"strings"

	"github.com/finsight/finsight/internal/core/domain"
)

// rowOfNumbersPattern is a cheap pre-filter for a line of three or more
// numeric/currency/percent tokens. It runs ahead of the full table
// heuristic during classification only.
var rowOfNumbersPattern = regexp.MustCompile(`(\n[\s\t]*[\d$%(),.-]+(?:\s+[\d$%(),.-]+){2,}\s*\n)`)

// IdentifySection assigns a taxonomy section to a block of text. The
// taxonomy is scanned in its declared order and the first match wins;
// text matching nothing is "general". This never fails.
func IdentifySection(text string) domain.Section {
	if rowOfNumbersPattern.MatchString(text) {
		return domain.SectionTable
	}
	for _, category := range compiledTaxonomy {
		if category.Pattern.MatchString(text) {
			return category.Section
		}
	}
	return domain.SectionGeneral
}

// ExtractMetrics returns the distinct metric substrings in text, in
// first-occurrence order.
func ExtractMetrics(text string) []string {
	matches := metricsPattern.FindAllString(text, -1)
	return dedupe(matches)
}

// ExtractKeywords matches text against the union of every taxonomy
// pattern. Results are lower-cased, deduplicated, and filtered to
// length > 2.
func ExtractKeywords(text string) []string {
	matches := keywordPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		lowered := strings.ToLower(m)
		if len(lowered) > 2 {
			out = append(out, lowered)
		}
	}
	return dedupe(out)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
