package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTicketStatus(t *testing.T) {
	cases := map[string]TicketStatus{
		"new":         TicketStatusNew,
		"In Progress": TicketStatusInProgress,
		"in-progress": TicketStatusInProgress,
		"IN_PROGRESS": TicketStatusInProgress,
		" waiting ":   TicketStatusWaiting,
		"RESOLVED":    TicketStatusResolved,
		"closed":      TicketStatusClosed,
	}
	for raw, want := range cases {
		got, ok := ParseTicketStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseTicketStatus("archived")
	assert.False(t, ok)
}

func TestStatusGroups(t *testing.T) {
	for _, s := range ticketStatuses {
		assert.NotEqual(t, s.IsOpen(), s.IsClosed(), s)
	}
	assert.True(t, TicketStatusNew.AutoProgressable())
	assert.True(t, TicketStatusInProgress.AutoProgressable())
	assert.False(t, TicketStatusWaiting.AutoProgressable())
	assert.False(t, TicketStatusResolved.AutoProgressable())
}

func TestEscalationLevel(t *testing.T) {
	level, ok := ParseEscalationLevel("tier-2")
	require.True(t, ok)
	assert.Equal(t, EscalationTier2, level)

	level, ok = ParseEscalationLevel("3")
	require.True(t, ok)
	assert.Equal(t, EscalationTier3, level)

	assert.Less(t, EscalationTier1.Rank(), EscalationTier3.Rank())
	assert.Zero(t, EscalationLevel("Tier 9").Rank())
}

func TestTicketJSONCanonicalizesEnums(t *testing.T) {
	var ticket Ticket
	payload := `{"id":"TKT-001","status":"in_progress","priority":"HIGH","escalationLevel":"tier 1"}`
	require.NoError(t, json.Unmarshal([]byte(payload), &ticket))

	assert.Equal(t, TicketStatusInProgress, ticket.Status)
	assert.Equal(t, TicketPriorityHigh, ticket.Priority)
	assert.Equal(t, EscalationTier1, ticket.EscalationLevel)

	out, err := json.Marshal(ticket)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"status":"In Progress"`)
}

func TestTicketJSONRejectsUnknownStatus(t *testing.T) {
	var ticket Ticket
	err := json.Unmarshal([]byte(`{"status":"archived"}`), &ticket)
	assert.Error(t, err)
}

func TestUserName(t *testing.T) {
	assert.Equal(t, "Jo", User{DisplayName: "Jo", FirstName: "Joanna", LastName: "Smith"}.Name())
	assert.Equal(t, "Joanna Smith", User{FirstName: "Joanna", LastName: "Smith"}.Name())
}
