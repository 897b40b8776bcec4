package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

func backends(t *testing.T) map[string]repository.Backend {
	t.Helper()
	db, err := persistence.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "docs.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return map[string]repository.Backend{
		"memory": repository.NewMemoryBackend(),
		"sqlite": repository.NewSQLiteBackend(db.DB),
	}
}

func TestTicketRepositoryRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := repository.NewTicketRepository(backend, "")

			created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
			ticket := domain.Ticket{
				ID:              "TKT-002",
				Title:           "Printer jam",
				Status:          domain.TicketStatusNew,
				Priority:        domain.TicketPriorityHigh,
				EscalationLevel: domain.EscalationTier1,
				AssignedAgents:  []string{"agent-1", "agent-2"},
				Location:        domain.Location{Building: "HQ", Floor: "3"},
				UpdateHistory: []domain.AuditEntry{{
					ID: "a1", TicketID: "TKT-002", Action: domain.ActionCreated,
					Description: "Ticket created", Timestamp: created,
				}},
				CreatedAt: created,
				UpdatedAt: created,
			}
			require.NoError(t, repo.Put(ctx, ticket))
			require.NoError(t, repo.Put(ctx, domain.Ticket{ID: "TKT-001", Title: "First"}))

			got, err := repo.Get(ctx, "TKT-002")
			require.NoError(t, err)
			assert.Equal(t, ticket.Title, got.Title)
			assert.Equal(t, ticket.Location, got.Location)
			assert.Equal(t, ticket.AssignedAgents, got.AssignedAgents)
			require.Len(t, got.UpdateHistory, 1)
			assert.True(t, created.Equal(got.UpdateHistory[0].Timestamp))

			ticket.Title = "Printer jam on floor 3"
			require.NoError(t, repo.Put(ctx, ticket))

			all, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "TKT-001", all[0].ID)
			assert.Equal(t, "Printer jam on floor 3", all[1].Title)
		})
	}
}

func TestTicketRepositoryNotFound(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := repository.NewTicketRepository(backend, "tickets")
			_, err := repo.Get(context.Background(), "TKT-404")
			assert.ErrorIs(t, err, repository.ErrNotFound)
		})
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	backend := repository.NewMemoryBackend()
	ctx := context.Background()
	a := repository.NewTicketRepository(backend, "a")
	b := repository.NewTicketRepository(backend, "b")

	require.NoError(t, a.Put(ctx, domain.Ticket{ID: "TKT-001"}))

	items, err := b.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPutRejectsEmptyID(t *testing.T) {
	repo := repository.NewTicketRepository(repository.NewMemoryBackend(), "")
	assert.Error(t, repo.Put(context.Background(), domain.Ticket{}))
}
