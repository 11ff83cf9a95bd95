package gemini

import (
	"fmt"
	"strings"

	"github.com/finsight/finsight/internal/core/domain"
)

// buildAnswerPrompt renders the retrieved context into a financial-analyst
// prompt. Context items must already be in ranked order.
func buildAnswerPrompt(query string, contextItems []domain.ContextItem, tableIntent bool) string {
	snippets := make([]string, 0, len(contextItems))
	for _, item := range contextItems {
		snippets = append(snippets, fmt.Sprintf("From document %s:\n%s", item.DocumentID, item.Content))
	}
	relevantContext := strings.Join(snippets, "\n\n")

	var prompt strings.Builder
	fmt.Fprintf(&prompt, `As a financial analyst, analyze the following from a financial document:

"%s"

Question: %s

Please provide a detailed, sectioned response that:`, relevantContext, query)

	if tableIntent {
		prompt.WriteString(`
1. Focuses on analyzing and explaining the financial tables in the document.
2. Explains the relationships between different numbers in the tables.
3. Highlights any important trends or patterns visible in the tabular data.
`)
	} else {
		prompt.WriteString(`
1. Directly answers the question using specific data from the provided context.
2. Presents exact figures without rounding off (e.g., if the data is in millions or billions, ensure this is clear and accurate).
3. Highlights important financial details or trends in sections.
4. Notes any discrepancies, missing data, or ambiguities in the context.
5. Does not include assumptions or extrapolated data unless explicitly instructed.`)
	}

	prompt.WriteString(`

DO not hallucinate, know which company this document is about.
DO not present in table format.

Ensure the response gives full information.`)

	return prompt.String()
}
