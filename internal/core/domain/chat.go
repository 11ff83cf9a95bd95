package domain

import "time"

// Chat binds a set of document IDs that queries in the chat run against.
type Chat struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	DocumentIDs []string  `json:"document_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChatMessage records one question/answer exchange together with the
// context snippets the answer was grounded on.
type ChatMessage struct {
	ID        string        `json:"id"`
	ChatID    string        `json:"chat_id"`
	Query     string        `json:"query"`
	Answer    string        `json:"answer"`
	Context   []ContextItem `json:"context"`
	CreatedAt time.Time     `json:"created_at"`
}
