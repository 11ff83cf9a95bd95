package domain

import "time"

// Document is an uploaded financial PDF tracked through ingestion.
// Processed means "a processing attempt finished"; whether it succeeded
// is carried by ProcessingError being empty. Status derives the readable
// tri-state from that pair.
type Document struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename"`
	StoragePath     string    `json:"storage_path"`
	PageCount       int       `json:"page_count"`
	Processed       bool      `json:"processed"`
	ProcessingError string    `json:"processing_error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type DocumentStatus string

const (
	StatusPending DocumentStatus = "pending"
	StatusReady   DocumentStatus = "ready"
	StatusFailed  DocumentStatus = "failed"
)

func (d *Document) Status() DocumentStatus {
	switch {
	case !d.Processed:
		return StatusPending
	case d.ProcessingError != "":
		return StatusFailed
	default:
		return StatusReady
	}
}

// Page is the ephemeral per-page input to ingestion. Pages are produced
// by an extraction step and consumed once; they are never persisted.
type Page struct {
	PageNumber int    `json:"pageNumber"`
	Text       string `json:"text"`
}
