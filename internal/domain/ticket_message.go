package domain

import "time"

// TicketMessage is one message in a ticket thread.
type TicketMessage struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Body       string    `json:"body"`
	Internal   bool      `json:"internal,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Attachment stores metadata for a file attached to a ticket.
type Attachment struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType,omitempty"`
	SizeBytes  int64     `json:"sizeBytes"`
	StorageKey string    `json:"storageKey,omitempty"`
	UploadedBy string    `json:"uploadedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WorkLogEntry is an agent note appended by explicit action, never by diffing.
type WorkLogEntry struct {
	ID           string    `json:"id"`
	AgentID      string    `json:"agentId"`
	AgentName    string    `json:"agentName"`
	Note         string    `json:"note"`
	MinutesSpent int       `json:"minutesSpent,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
