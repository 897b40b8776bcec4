package main

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/catalog"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

const fixtureYAML = `
tickets:
  - title: Printer jams on floor 3
    category: Hardware
    priority: high
    requesterId: req-1
    location:
      building: HQ
      floor: "3"
    tags: [printer]
  - title: Email bounces
    requesterId: req-1
    assignedAgentId: agent-7
    comments: ["still broken"]
    status: resolved
    resolutionNotes: Fixed the MX record
  - title: Old laptop
    requesterId: req-1
    status: closed
`

func TestParseFixtures(t *testing.T) {
	fixtures, err := parseFixtures([]byte(fixtureYAML))
	require.NoError(t, err)
	require.Len(t, fixtures, 3)
	assert.Equal(t, "HQ", fixtures[0].Location.Building)
	assert.Equal(t, []string{"printer"}, fixtures[0].Tags)

	_, err = parseFixtures([]byte("tickets:\n  - title: x\n    priority: urgent\n"))
	assert.ErrorContains(t, err, "unknown priority")

	_, err = parseFixtures([]byte("tickets:\n  - title: x\n    status: resolved\n"))
	assert.ErrorContains(t, err, "resolutionNotes")

	_, err = parseFixtures([]byte("tickets:\n  - description: no title\n"))
	assert.ErrorContains(t, err, "title is required")
}

func TestSeedTicketReplaysThroughService(t *testing.T) {
	cat := catalog.New([]domain.User{
		{ID: "req-1", FirstName: "Dana", LastName: "Lee", Role: domain.UserRoleRequester},
		{ID: "agent-7", FirstName: "Alex", LastName: "Rivera", Role: domain.UserRoleAgent},
	}, nil)
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repository.NewTicketRepository(repository.NewMemoryBackend(), ""),
		Users:      cat,
		Categories: cat,
	})
	fixtures, err := parseFixtures([]byte(fixtureYAML))
	require.NoError(t, err)

	ctx := context.Background()
	first, err := seedTicket(ctx, tickets, fixtures[0], "agent-7")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, first.Priority)
	assert.Equal(t, domain.TicketStatusNew, first.Status)
	require.Len(t, first.UpdateHistory, 1)
	assert.Equal(t, domain.ActionCreated, first.UpdateHistory[0].Action)

	second, err := seedTicket(ctx, tickets, fixtures[1], "agent-7")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, second.Status)
	assert.Equal(t, "Fixed the MX record", second.ResolutionNotes)
	assert.NotNil(t, second.ResolvedAt)
	actions := make([]domain.AuditAction, 0, len(second.UpdateHistory))
	for _, entry := range second.UpdateHistory {
		actions = append(actions, entry.Action)
	}
	assert.Contains(t, actions, domain.ActionCommented)
	assert.Contains(t, actions, domain.ActionResolved)

	third, err := seedTicket(ctx, tickets, fixtures[2], "agent-7")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, third.Status)
	assert.Equal(t, "TKT-003", third.ID)
}

func TestBundledSamplesLoad(t *testing.T) {
	data, err := os.ReadFile("../../fixtures/tickets.yaml")
	require.NoError(t, err)
	fixtures, err := parseFixtures(data)
	require.NoError(t, err)
	assert.Len(t, fixtures, 4)

	cat, err := catalog.LoadFile("../../catalog.yaml")
	require.NoError(t, err)
	for _, f := range fixtures {
		_, ok := cat.FindUserByID(f.RequesterID)
		assert.True(t, ok, "requester %s", f.RequesterID)
		if f.SubCategoryID != "" {
			_, ok = cat.FindSubCategory(f.Category, f.SubCategoryID)
			assert.True(t, ok, "sub-category %s", f.SubCategoryID)
		}
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc…", truncate("abcdef", 4))
}
