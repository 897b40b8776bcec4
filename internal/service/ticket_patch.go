package service

import (
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/audit"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketPatch is a partial ticket update. A nil field is absent from the
// update; to clear a value send its empty form ("" or []).
type TicketPatch struct {
	Title              *string
	Description        *string
	Category           *string
	SubCategoryID      *string
	Priority           *domain.TicketPriority
	Status             *domain.TicketStatus
	AssignedAgentID    *string
	AssignedAgents     *[]string
	EscalationLevel    *domain.EscalationLevel
	Location           *domain.Location
	AdditionalContacts *[]domain.Contact
	Tags               *[]string
	ResolutionNotes    *string
	ResolutionSteps    *[]string
}

// IsEmpty reports whether no field is present.
func (p TicketPatch) IsEmpty() bool {
	for _, f := range patchableFields {
		if _, ok := f.patched(&p); ok {
			return false
		}
	}
	return true
}

func (p *TicketPatch) normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(p.Title)
	trim(p.Description)
	trim(p.Category)
	trim(p.SubCategoryID)
	trim(p.AssignedAgentID)
	trim(p.ResolutionNotes)
}

// ticketField binds a patchable field name to its ticket and patch slots.
type ticketField struct {
	name    string
	get     func(t *domain.Ticket) any
	patched func(p *TicketPatch) (any, bool)
	set     func(t *domain.Ticket, p *TicketPatch)
}

func field[V any](name string, slot func(*domain.Ticket) *V, patchSlot func(*TicketPatch) *V) ticketField {
	return ticketField{
		name: name,
		get:  func(t *domain.Ticket) any { return *slot(t) },
		patched: func(p *TicketPatch) (any, bool) {
			v := patchSlot(p)
			if v == nil {
				return nil, false
			}
			return *v, true
		},
		set: func(t *domain.Ticket, p *TicketPatch) {
			if v := patchSlot(p); v != nil {
				*slot(t) = *v
			}
		},
	}
}

// patchableFields is also the order in which changes are diffed and recorded.
var patchableFields = []ticketField{
	field(audit.FieldTitle,
		func(t *domain.Ticket) *string { return &t.Title },
		func(p *TicketPatch) *string { return p.Title }),
	field(audit.FieldDescription,
		func(t *domain.Ticket) *string { return &t.Description },
		func(p *TicketPatch) *string { return p.Description }),
	field(audit.FieldCategory,
		func(t *domain.Ticket) *string { return &t.Category },
		func(p *TicketPatch) *string { return p.Category }),
	field(audit.FieldSubCategoryID,
		func(t *domain.Ticket) *string { return &t.SubCategoryID },
		func(p *TicketPatch) *string { return p.SubCategoryID }),
	field(audit.FieldPriority,
		func(t *domain.Ticket) *domain.TicketPriority { return &t.Priority },
		func(p *TicketPatch) *domain.TicketPriority { return p.Priority }),
	field(audit.FieldStatus,
		func(t *domain.Ticket) *domain.TicketStatus { return &t.Status },
		func(p *TicketPatch) *domain.TicketStatus { return p.Status }),
	field(audit.FieldAssignedAgentID,
		func(t *domain.Ticket) *string { return &t.AssignedAgentID },
		func(p *TicketPatch) *string { return p.AssignedAgentID }),
	field(audit.FieldAssignedAgents,
		func(t *domain.Ticket) *[]string { return &t.AssignedAgents },
		func(p *TicketPatch) *[]string { return p.AssignedAgents }),
	field(audit.FieldEscalationLevel,
		func(t *domain.Ticket) *domain.EscalationLevel { return &t.EscalationLevel },
		func(p *TicketPatch) *domain.EscalationLevel { return p.EscalationLevel }),
	field(audit.FieldLocation,
		func(t *domain.Ticket) *domain.Location { return &t.Location },
		func(p *TicketPatch) *domain.Location { return p.Location }),
	field(audit.FieldAdditionalContacts,
		func(t *domain.Ticket) *[]domain.Contact { return &t.AdditionalContacts },
		func(p *TicketPatch) *[]domain.Contact { return p.AdditionalContacts }),
	field(audit.FieldTags,
		func(t *domain.Ticket) *[]string { return &t.Tags },
		func(p *TicketPatch) *[]string { return p.Tags }),
	field(audit.FieldResolutionNotes,
		func(t *domain.Ticket) *string { return &t.ResolutionNotes },
		func(p *TicketPatch) *string { return p.ResolutionNotes }),
	field(audit.FieldResolutionSteps,
		func(t *domain.Ticket) *[]string { return &t.ResolutionSteps },
		func(p *TicketPatch) *[]string { return p.ResolutionSteps }),
}
