package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload. Enum fields are validated while decoding.
type CreateTicketRequest struct {
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	Category           string                 `json:"category"`
	SubCategoryID      string                 `json:"subCategoryId"`
	Priority           domain.TicketPriority  `json:"priority"`
	RequesterID        string                 `json:"requesterId"`
	AssignedAgentID    string                 `json:"assignedAgentId"`
	AssignedAgents     []string               `json:"assignedAgents"`
	EscalationLevel    domain.EscalationLevel `json:"escalationLevel"`
	Location           domain.Location        `json:"location"`
	AdditionalContacts []domain.Contact       `json:"additionalContacts"`
	Tags               []string               `json:"tags"`
}

// UpdateTicketRequest is a partial update. Omitted or null fields are left
// untouched; "" and [] clear a field.
type UpdateTicketRequest struct {
	Title              *string                 `json:"title"`
	Description        *string                 `json:"description"`
	Category           *string                 `json:"category"`
	SubCategoryID      *string                 `json:"subCategoryId"`
	Priority           *domain.TicketPriority  `json:"priority"`
	Status             *domain.TicketStatus    `json:"status"`
	AssignedAgentID    *string                 `json:"assignedAgentId"`
	AssignedAgents     *[]string               `json:"assignedAgents"`
	EscalationLevel    *domain.EscalationLevel `json:"escalationLevel"`
	Location           *domain.Location        `json:"location"`
	AdditionalContacts *[]domain.Contact       `json:"additionalContacts"`
	Tags               *[]string               `json:"tags"`
	ResolutionNotes    *string                 `json:"resolutionNotes"`
	ResolutionSteps    *[]string               `json:"resolutionSteps"`
}

// ResolveTicketRequest payload.
type ResolveTicketRequest struct {
	ResolutionNotes string   `json:"resolutionNotes"`
	ResolutionSteps []string `json:"resolutionSteps"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body     string `json:"body"`
	Internal bool   `json:"internal"`
}

// CreateAttachmentRequest carries metadata for an already uploaded file.
type CreateAttachmentRequest struct {
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	SizeBytes  int64  `json:"sizeBytes"`
	StorageKey string `json:"storageKey"`
}

// CreateWorkLogRequest payload.
type CreateWorkLogRequest struct {
	Note         string `json:"note"`
	MinutesSpent int    `json:"minutesSpent"`
}

// TicketSummary is the list view of a ticket.
type TicketSummary struct {
	ID                string                 `json:"id"`
	Title             string                 `json:"title"`
	Category          string                 `json:"category"`
	Priority          domain.TicketPriority  `json:"priority"`
	Status            domain.TicketStatus    `json:"status"`
	EscalationLevel   domain.EscalationLevel `json:"escalationLevel"`
	RequesterID       string                 `json:"requesterId"`
	RequesterName     string                 `json:"requesterName"`
	AssignedAgentID   string                 `json:"assignedAgentId,omitempty"`
	AssignedAgentName string                 `json:"assignedAgentName,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// PaginationResponse mirrors the query engine pagination block.
type PaginationResponse struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// TicketListResponse is one page of summaries.
type TicketListResponse struct {
	Data       []TicketSummary    `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}
