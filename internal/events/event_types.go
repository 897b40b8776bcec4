package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketCommented     EventType = "ticket_commented"
	EventTicketWorkLogAdded  EventType = "ticket_worklog_added"
)

// AllTicketEvents lists every event type, for subscribers that want everything.
var AllTicketEvents = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketAssigned,
	EventTicketStatusChanged,
	EventTicketCommented,
	EventTicketWorkLogAdded,
}

// TypeForAction maps an audit action to the event published for it.
func TypeForAction(action domain.AuditAction) EventType {
	switch action {
	case domain.ActionCreated:
		return EventTicketCreated
	case domain.ActionAssigned:
		return EventTicketAssigned
	case domain.ActionStatusChanged, domain.ActionResolved, domain.ActionClosed, domain.ActionReopened:
		return EventTicketStatusChanged
	case domain.ActionCommented:
		return EventTicketCommented
	default:
		return EventTicketUpdated
	}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AuditRecordedPayload carries the audit entry behind a ticket event.
type AuditRecordedPayload struct {
	Entry  domain.AuditEntry   `json:"entry"`
	Status domain.TicketStatus `json:"status"`
}

// WorkLogAddedPayload payload.
type WorkLogAddedPayload struct {
	WorkLog domain.WorkLogEntry `json:"work_log"`
}
