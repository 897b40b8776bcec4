package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/catalog"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TrailBuilder turns detected changes into audit entries. Catalog lookups
// are best effort: a dangling id renders as a placeholder instead of failing.
type TrailBuilder struct {
	users      catalog.UserCatalog
	categories catalog.CategoryCatalog

	// Now and NewID are replaceable for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

// NewTrailBuilder wires the read-only catalogs used for label resolution.
func NewTrailBuilder(users catalog.UserCatalog, categories catalog.CategoryCatalog) *TrailBuilder {
	return &TrailBuilder{
		users:      users,
		categories: categories,
		Now:        time.Now,
		NewID:      uuid.NewString,
	}
}

// EntryInput describes one change to record.
type EntryInput struct {
	TicketID    string
	ActorID     string
	Action      domain.AuditAction
	Field       string
	OldValue    any
	NewValue    any
	Description string
	Metadata    map[string]any

	// Category scopes sub-category label lookups.
	Category string
}

// BuildEntry creates an audit entry. The actor is resolved against the user
// catalog now and the result is frozen into the entry.
func (b *TrailBuilder) BuildEntry(in EntryInput) domain.AuditEntry {
	description := in.Description
	if description == "" {
		description = b.describe(in.Category, in.Action, in.Field, in.OldValue, in.NewValue)
	}

	entry := domain.AuditEntry{
		ID:          b.NewID(),
		TicketID:    in.TicketID,
		ActorID:     in.ActorID,
		ActorName:   unknownUser,
		Action:      in.Action,
		Field:       in.Field,
		Description: description,
		Timestamp:   b.Now().UTC(),
		Metadata:    in.Metadata,
	}
	if in.Action != domain.ActionCreated && in.Action != domain.ActionCommented {
		entry.OldValue = Stringify(in.OldValue)
		entry.NewValue = Stringify(in.NewValue)
	}
	if b.users != nil {
		if actor, ok := b.users.FindUserByID(in.ActorID); ok {
			if name := actor.Name(); name != "" {
				entry.ActorName = name
			}
			entry.ActorEmail = actor.Email
		}
	}
	return entry
}

// Append adds entry to history, nudging its timestamp forward when needed so
// that timestamps stay strictly increasing. history itself is not modified.
func Append(history []domain.AuditEntry, entry domain.AuditEntry) []domain.AuditEntry {
	if n := len(history); n > 0 {
		last := history[n-1].Timestamp
		if !entry.Timestamp.After(last) {
			entry.Timestamp = last.Add(time.Millisecond)
		}
	}
	out := make([]domain.AuditEntry, len(history), len(history)+1)
	copy(out, history)
	return append(out, entry)
}
