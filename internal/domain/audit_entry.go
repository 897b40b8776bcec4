package domain

import "time"

// AuditAction captures what kind of change a history entry records.
type AuditAction string

const (
	ActionCreated       AuditAction = "created"
	ActionUpdated       AuditAction = "updated"
	ActionAssigned      AuditAction = "assigned"
	ActionStatusChanged AuditAction = "status_changed"
	ActionResolved      AuditAction = "resolved"
	ActionClosed        AuditAction = "closed"
	ActionReopened      AuditAction = "reopened"
	ActionCommented     AuditAction = "commented"
)

// AuditEntry is an immutable audit trail entry. Actor name and email are
// captured when the entry is written and never re-resolved.
type AuditEntry struct {
	ID          string         `json:"id"`
	TicketID    string         `json:"ticketId"`
	ActorID     string         `json:"actorId"`
	ActorName   string         `json:"actorName"`
	ActorEmail  string         `json:"actorEmail"`
	Action      AuditAction    `json:"action"`
	Field       string         `json:"field,omitempty"`
	OldValue    string         `json:"oldValue,omitempty"`
	NewValue    string         `json:"newValue,omitempty"`
	Description string         `json:"description"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
