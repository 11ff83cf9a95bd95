package domain

// Section is one label from the closed financial taxonomy assigned to a
// chunk. The matching order of the taxonomy is defined in the chunking
// package; precedence there is load-bearing.
type Section string

const (
	SectionStatements     Section = "statements"
	SectionNotes          Section = "notes"
	SectionDebt           Section = "debt"
	SectionAssets         Section = "assets"
	SectionAccounting     Section = "accounting"
	SectionWorkingCapital Section = "workingCapital"
	SectionEquity         Section = "equity"
	SectionObligations    Section = "obligations"
	SectionFinancial      Section = "financial"
	SectionEmployee       Section = "employee"
	SectionReporting      Section = "reporting"
	SectionCurrency       Section = "currency"
	SectionTax            Section = "tax"
	SectionOperations     Section = "operations"
	SectionInvestments    Section = "investments"
	SectionTransactions   Section = "transactions"
	SectionLiquidity      Section = "liquidity"
	SectionMetrics        Section = "metrics"
	SectionTable          Section = "table"
	SectionGeneral        Section = "general"
)

// ChunkDraft is the splitter's output for a single page section, before
// an embedding has been attached.
type ChunkDraft struct {
	Content  string
	Section  Section
	Metrics  []string
	Keywords []string
}

// Chunk is a persisted unit of document text with retrieval metadata.
// Chunks are created only during ingestion and are immutable afterwards.
type Chunk struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"document_id"`
	Content    string   `json:"content"`
	Section    Section  `json:"section_type"`
	Metrics    []string `json:"financial_metrics"`
	Keywords   []string `json:"keywords"`
	PageNumber int      `json:"page_number"`
}
