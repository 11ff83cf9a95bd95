package domain

// ContextItem is one ranked retrieval result. Similarity is 0 when the
// item came from the non-vector fallback lookup. Order is significant
// and is preserved into the prompt and the response payload.
type ContextItem struct {
	Content    string  `json:"content"`
	PageNumber int     `json:"page_number"`
	Similarity float64 `json:"similarity"`
	DocumentID string  `json:"documentId"`
	Section    Section `json:"section_type"`
}

type Answer struct {
	Text    string        `json:"answer"`
	Context []ContextItem `json:"context"`
	// FallbackUsed reports that the context came from the non-vector
	// lookup. Internal signal for instrumentation, not part of the
	// response payload.
	FallbackUsed bool `json:"-"`
}
