package chunking

import (
	"regexp"
	"strings"

	"github.com/finsight/finsight/internal/core/domain"
)

const tableAnnotation = "[FINANCIAL TABLE]\nThis is a financial data table containing numerical information and financial metrics.\n\n"

// extraTableKeywords are appended to table chunks so that plain-language
// table questions still match on keywords.
var extraTableKeywords = []string{"table", "tables", "financial table", "financial data"}

var (
	boilerplatePattern = regexp.MustCompile(`Table of Contents\s*`)
	sectionBreak       = regexp.MustCompile(`(?:\r?\n){2,}`)
)

// FinancialSplitter turns one page of extracted text into annotated chunk
// drafts using the table heuristic and the section classifier.
type FinancialSplitter struct{}

func NewFinancialSplitter() *FinancialSplitter {
	return &FinancialSplitter{}
}

// SplitPage walks a cleaned page and emits chunk drafts. Page sections
// carrying neither metrics nor keywords are dropped on purpose; that is
// the noise floor, not lost data.
func (s *FinancialSplitter) SplitPage(text string) []domain.ChunkDraft {
	cleaned := CleanPageText(text)

	if IsFinancialTable(cleaned) {
		tableContent := ExtractCompleteTable(cleaned)
		return []domain.ChunkDraft{{
			Content:  tableContent,
			Section:  domain.SectionTable,
			Metrics:  ExtractMetrics(tableContent),
			Keywords: ExtractKeywords(tableContent),
		}}
	}

	sections := sectionBreak.Split(cleaned, -1)
	chunks := make([]domain.ChunkDraft, 0, len(sections))

	for i := 0; i < len(sections); i++ {
		if strings.TrimSpace(sections[i]) == "" {
			continue
		}

		window := surroundingContext(sections, i, 1)

		if IsFinancialTable(window) {
			tableContent := ExtractCompleteTable(window)
			chunks = append(chunks, domain.ChunkDraft{
				Content:  tableAnnotation + tableContent,
				Section:  domain.SectionTable,
				Metrics:  ExtractMetrics(tableContent),
				Keywords: append(ExtractKeywords(tableContent), extraTableKeywords...),
			})
			// Skip the sections consumed by this window so overlapping
			// table chunks are not emitted again.
			i += len(strings.Split(window, "\n")) - 1
			continue
		}

		sectionType := IdentifySection(window)
		metrics := ExtractMetrics(window)
		keywords := ExtractKeywords(window)

		if len(metrics) > 0 || len(keywords) > 0 {
			chunks = append(chunks, domain.ChunkDraft{
				Content:  strings.TrimSpace(window),
				Section:  sectionType,
				Metrics:  metrics,
				Keywords: keywords,
			})
		}
	}

	return chunks
}

// CleanPageText strips the repeated "Table of Contents" navigation
// artifact left behind by the PDF extractor and trims the page.
func CleanPageText(text string) string {
	if loc := boilerplatePattern.FindStringIndex(text); loc != nil {
		text = text[:loc[0]] + text[loc[1]:]
	}
	return strings.TrimSpace(text)
}

// surroundingContext joins a section with up to windowSize neighbors on
// each side, clipped at the page edges.
func surroundingContext(sections []string, currentIndex, windowSize int) string {
	start := max(0, currentIndex-windowSize)
	end := min(len(sections), currentIndex+windowSize+1)
	return strings.Join(sections[start:end], "\n\n")
}
