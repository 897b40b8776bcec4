package service

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ApplyAssignmentTransition moves a ticket to In Progress after a meaningful
// assignment change. trigger is the assignment field that changed, or "" when
// none did. It only fires from New; In Progress stays put and Waiting,
// Resolved and Closed tickets are never touched. Reports whether the status
// was changed.
func ApplyAssignmentTransition(t *domain.Ticket, trigger string) bool {
	if trigger == "" || !t.Status.AutoProgressable() {
		return false
	}
	if t.Status == domain.TicketStatusInProgress {
		return false
	}
	t.Status = domain.TicketStatusInProgress
	return true
}

// syncResolution keeps resolvedAt in line with the status: set on the first
// move into a closed-type state, cleared when the ticket opens again.
func syncResolution(t *domain.Ticket, now time.Time) {
	switch {
	case t.Status.IsClosed() && t.ResolvedAt == nil:
		resolved := now
		t.ResolvedAt = &resolved
	case t.Status.IsOpen():
		t.ResolvedAt = nil
	}
}
