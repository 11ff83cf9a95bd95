package chunking

import (
	"regexp"
	"strings"

	"github.com/finsight/finsight/internal/core/domain"
)

// categoryPatterns binds one taxonomy section to its detection patterns.
// The slice below is matched first-to-last and the first hit wins, so the
// order is part of the classifier's contract.
type categoryPatterns struct {
	Section  domain.Section
	Patterns []string
}

var taxonomy = []categoryPatterns{
	{domain.SectionStatements, []string{
		`financial statements?`,
		`balance sheet`,
		`income statement`,
		`cash flow statement`,
		`statement of financial position`,
		`profit and loss`,
		`comprehensive income`,
	}},
	{domain.SectionNotes, []string{
		`notes to.*statements?`,
		`financial footnotes`,
		`disclosures`,
		`accounting policies`,
	}},
	{domain.SectionDebt, []string{
		`debt`,
		`loans?`,
		`borrowings?`,
		`credit facilities`,
		`bonds`,
		`notes payable`,
	}},
	{domain.SectionAssets, []string{
		`assets?`,
		`property`,
		`equipment`,
		`inventory`,
		`receivables`,
		`intangible assets?`,
	}},
	{domain.SectionAccounting, []string{
		`accounting policies`,
		`accounting standards?`,
		`accounting principles`,
		`gaap`,
		`ifrs`,
	}},
	{domain.SectionWorkingCapital, []string{
		`working capital`,
		`current assets?`,
		`current liabilities`,
		`operating capital`,
	}},
	{domain.SectionEquity, []string{
		`shareholders?['’]? equity`,
		`stock`,
		`shares?`,
		`capital stock`,
		`retained earnings`,
	}},
	{domain.SectionObligations, []string{
		`obligations?`,
		`commitments?`,
		`contingent liabilities`,
		`guarantees?`,
	}},
	{domain.SectionFinancial, []string{
		`financial`,
		`financing`,
		`monetary`,
		`fiscal`,
	}},
	{domain.SectionEmployee, []string{
		`employee benefits?`,
		`compensation`,
		`pension`,
		`retirement`,
		`stock options`,
	}},
	{domain.SectionReporting, []string{
		`reporting`,
		`disclosure`,
		`segment`,
		`business units?`,
	}},
	{domain.SectionCurrency, []string{
		`currency`,
		`foreign exchange`,
		`forex`,
		`exchange rates?`,
	}},
	{domain.SectionTax, []string{
		`tax(?:es|ation)?`,
		`income tax`,
		`deferred tax`,
		`tax assets?`,
		`tax liabilities`,
	}},
	{domain.SectionOperations, []string{
		`operations?`,
		`operating activities`,
		`business operations?`,
	}},
	{domain.SectionInvestments, []string{
		`investments?`,
		`securities`,
		`financial instruments?`,
		`derivatives`,
	}},
	{domain.SectionTransactions, []string{
		`transactions?`,
		`business combinations?`,
		`acquisitions?`,
		`disposals?`,
	}},
	{domain.SectionLiquidity, []string{
		`liquidity`,
		`cash`,
		`cash equivalents`,
		`solvency`,
	}},
	{domain.SectionMetrics, []string{
		// Numbers with currency symbols.
		`\$\d+(?:,\d{3})*(?:\.\d{2})?(?:\s*(?:million|billion|trillion|M|B|T))?`,
		// Percentages.
		`\d+(?:\.\d{1,2})?\s*%`,
		// Large numbers without currency symbols.
		`\d+(?:,\d{3})*(?:\.\d{1,2})?\s*(?:million|billion|trillion|M|B|T)`,
		// Named ratio terms.
		`ratio`,
		`margin`,
		`return on`,
		`ROI`,
		`ROE`,
		`ROA`,
		`EPS`,
		`P/E`,
		`EBITDA`,
	}},
}

// compiledCategory is a taxonomy entry with its alternation pre-compiled.
type compiledCategory struct {
	Section domain.Section
	Pattern *regexp.Regexp
}

var (
	compiledTaxonomy []compiledCategory

	// metricsPattern matches currency amounts, percentages,
	// magnitude-suffixed numbers and named ratio terms.
	metricsPattern *regexp.Regexp

	// keywordPattern is the union of every category's patterns.
	keywordPattern *regexp.Regexp
)

func init() {
	all := make([]string, 0, 96)
	for _, entry := range taxonomy {
		compiledTaxonomy = append(compiledTaxonomy, compiledCategory{
			Section: entry.Section,
			Pattern: regexp.MustCompile(`(?i)` + strings.Join(entry.Patterns, "|")),
		})
		if entry.Section == domain.SectionMetrics {
			metricsPattern = regexp.MustCompile(`(?i)` + strings.Join(entry.Patterns, "|"))
		}
		all = append(all, entry.Patterns...)
	}
	keywordPattern = regexp.MustCompile(`(?i)` + strings.Join(all, "|"))
}
