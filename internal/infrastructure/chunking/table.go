package chunking

import (
	"regexp"
	"strings"
)

// Table detection is a conjunctive heuristic over plain-text layout cues.
// Every predicate below must hold; on ambiguity the answer is "not a
// table", since a missed table costs less than annotating prose as one.
var (
	tableHeaderPattern  = regexp.MustCompile(`^(?:The following table|.*summarizes|.*shows).*:`)
	tablePeriodPattern  = regexp.MustCompile(`Three Months Ended|Year Ended|Nine Months Ended`)
	columnYearsPattern  = regexp.MustCompile(`(19|20)\d{2}\s*(19|20)\d{2}`)
	columnMonthPattern  = regexp.MustCompile(`March|June|September|December`)
	columnDollarPattern = regexp.MustCompile(`\$\s*\d+`)

	alignedDollarPattern  = regexp.MustCompile(`^\s*\$\s*\d+,\d+`)
	parenNegativePattern  = regexp.MustCompile(`\(\$?\d+(?:,\d{3})*(?:\.\d+)?\)`)
	labelTrailingNumber   = regexp.MustCompile(`^\s*[A-Z].*\d+$`)
	indentedLabelWithNum  = regexp.MustCompile(`^\s*[A-Z][a-zA-Z\s-]+\s+\$?\d`)
	dollarPositionPattern = regexp.MustCompile(`\$\s*\d`)
	numberPositionPattern = regexp.MustCompile(`\d+,\d{3}`)

	rowLabelPattern = regexp.MustCompile(`(?i)(?:Total|Beginning|Ending|Net|Cost of|Sales|General|Operating|Income|Loss)`)

	tableTotalEndPattern  = regexp.MustCompile(`^\s*Total\s+(?:ending|assets|liabilities)`)
	tableDoubleRule       = regexp.MustCompile(`^={2,}$`)
	trailingDollarPattern = regexp.MustCompile(`\$\s*\d+,\d+\s*$`)
)

// IsFinancialTable reports whether text looks like a financial table.
func IsFinancialTable(text string) bool {
	lines := nonEmptyLines(text)
	if len(lines) < 3 {
		return false
	}

	hasTableHeader := false
	hasColumnHeaders := false
	for _, line := range lines {
		if tableHeaderPattern.MatchString(line) || tablePeriodPattern.MatchString(line) {
			hasTableHeader = true
		}
		if columnYearsPattern.MatchString(line) ||
			columnMonthPattern.MatchString(line) ||
			columnDollarPattern.MatchString(line) {
			hasColumnHeaders = true
		}
	}
	if !hasTableHeader && !hasColumnHeaders {
		return false
	}

	financialDataLines := 0
	for _, line := range lines {
		if alignedDollarPattern.MatchString(line) ||
			parenNegativePattern.MatchString(line) ||
			labelTrailingNumber.MatchString(line) ||
			indentedLabelWithNum.MatchString(line) {
			financialDataLines++
		}
	}
	financialLineRatio := float64(financialDataLines) / float64(len(lines))

	// Columns are aligned when dollar signs and comma-grouped numbers
	// start at only a handful of distinct offsets.
	dollarPositions := make(map[int]struct{})
	numberPositions := make(map[int]struct{})
	for _, line := range lines {
		if loc := dollarPositionPattern.FindStringIndex(line); loc != nil {
			dollarPositions[loc[0]] = struct{}{}
		}
		if loc := numberPositionPattern.FindStringIndex(line); loc != nil {
			numberPositions[loc[0]] = struct{}{}
		}
	}
	hasConsistentAlignment := len(dollarPositions) > 0 && len(dollarPositions) <= 3 &&
		len(numberPositions) > 0 && len(numberPositions) <= 4

	hasFinancialRowLabels := false
	for _, line := range lines {
		if rowLabelPattern.MatchString(line) {
			hasFinancialRowLabels = true
			break
		}
	}

	return hasConsistentAlignment &&
		hasFinancialRowLabels &&
		financialLineRatio >= 0.3 &&
		(hasTableHeader || hasColumnHeaders)
}

// ExtractCompleteTable returns the contiguous line span of the table in
// text, with a line of leading and trailing context. If either boundary
// cannot be located the original text is returned unchanged.
func ExtractCompleteTable(text string) string {
	lines := strings.Split(text, "\n")
	startIndex := -1
	endIndex := -1

	for i, line := range lines {
		if tableHeaderPattern.MatchString(line) ||
			tablePeriodPattern.MatchString(line) ||
			alignedDollarPattern.MatchString(line) {
			startIndex = max(0, i-1)
			break
		}
	}

	for i := len(lines) - 1; i >= 0; i-- {
		if tableTotalEndPattern.MatchString(lines[i]) ||
			tableDoubleRule.MatchString(lines[i]) ||
			trailingDollarPattern.MatchString(lines[i]) {
			endIndex = min(len(lines)-1, i+2)
			break
		}
	}

	if startIndex == -1 || endIndex == -1 || startIndex > endIndex {
		return text
	}
	return strings.Join(lines[startIndex:endIndex+1], "\n")
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
