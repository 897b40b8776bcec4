package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "New"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusWaiting    TicketStatus = "Waiting"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

var ticketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusInProgress,
	TicketStatusWaiting,
	TicketStatusResolved,
	TicketStatusClosed,
}

// ParseTicketStatus resolves a status name case-insensitively. Spaces, dashes
// and underscores are interchangeable, so "in-progress" and "IN_PROGRESS" both
// resolve to In Progress.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	key := normalizeEnumKey(raw)
	for _, s := range ticketStatuses {
		if normalizeEnumKey(string(s)) == key {
			return s, true
		}
	}
	return "", false
}

// IsOpen reports whether the status counts as open work.
func (s TicketStatus) IsOpen() bool {
	return s == TicketStatusNew || s == TicketStatusInProgress || s == TicketStatusWaiting
}

// IsClosed reports whether the status is a closed-type state.
func (s TicketStatus) IsClosed() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// AutoProgressable reports whether an assignment may move the ticket to In Progress.
func (s TicketStatus) AutoProgressable() bool {
	return s == TicketStatusNew || s == TicketStatusInProgress
}

func (s *TicketStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "status", func(raw string) bool {
		parsed, ok := ParseTicketStatus(raw)
		*s = parsed
		return ok
	})
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

var ticketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

// ParseTicketPriority resolves a priority name case-insensitively.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	key := normalizeEnumKey(raw)
	for _, p := range ticketPriorities {
		if normalizeEnumKey(string(p)) == key {
			return p, true
		}
	}
	return "", false
}

func (p *TicketPriority) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "priority", func(raw string) bool {
		parsed, ok := ParseTicketPriority(raw)
		*p = parsed
		return ok
	})
}

// EscalationLevel is one of three ordered support tiers.
type EscalationLevel string

const (
	EscalationTier1 EscalationLevel = "Tier 1"
	EscalationTier2 EscalationLevel = "Tier 2"
	EscalationTier3 EscalationLevel = "Tier 3"
)

var escalationLevels = []EscalationLevel{EscalationTier1, EscalationTier2, EscalationTier3}

// ParseEscalationLevel accepts "Tier 2", "tier-2", "tier_2" or a bare "2".
func ParseEscalationLevel(raw string) (EscalationLevel, bool) {
	key := normalizeEnumKey(raw)
	for _, l := range escalationLevels {
		canonical := normalizeEnumKey(string(l))
		if canonical == key || strings.TrimPrefix(canonical, "tier") == key {
			return l, true
		}
	}
	return "", false
}

// Rank returns 1..3 for known tiers and 0 otherwise.
func (l EscalationLevel) Rank() int {
	for i, candidate := range escalationLevels {
		if candidate == l {
			return i + 1
		}
	}
	return 0
}

func (l *EscalationLevel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "escalation level", func(raw string) bool {
		parsed, ok := ParseEscalationLevel(raw)
		*l = parsed
		return ok
	})
}

// unmarshalEnum decodes a JSON string and canonicalizes it. Empty strings and
// null decode to the zero value.
func unmarshalEnum(data []byte, kind string, parse func(string) bool) error {
	var raw string
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		parse("")
		return nil
	}
	if !parse(raw) {
		return fmt.Errorf("unknown %s %q", kind, raw)
	}
	return nil
}

func normalizeEnumKey(raw string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(raw)))
}
