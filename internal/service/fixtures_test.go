package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/catalog"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// stepClock returns base, base+step, base+2*step, ...
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]domain.User{
			{ID: "actor-1", FirstName: "Dana", LastName: "Lee", Email: "dana@example.com", Department: "Finance", Phone: "555-0101", Role: domain.UserRoleRequester},
			{ID: "agent-7", FirstName: "Alex", LastName: "Rivera", DisplayName: "Alex R.", Email: "alex@example.com", Role: domain.UserRoleAgent},
			{ID: "agent-9", FirstName: "Kim", LastName: "Park", Email: "kim@example.com", Role: domain.UserRoleAgent},
		},
		[]domain.Category{{
			Name: "Hardware",
			SubCategories: []domain.SubCategory{
				{ID: "hw-printer", Name: "Printer"},
				{ID: "hw-laptop", Name: "Laptop"},
			},
		}},
	)
}

type harness struct {
	svc    *TicketService
	query  *QueryService
	repo   repository.TicketRepository
	events *recordedEvents
}

func newHarness(t *testing.T, step time.Duration) *harness {
	t.Helper()
	repo := repository.NewTicketRepository(repository.NewMemoryBackend(), "")
	cat := testCatalog()
	dispatcher := events.NewInMemoryDispatcher(nil)
	rec := &recordedEvents{}
	for _, et := range events.AllTicketEvents {
		dispatcher.Subscribe(et, rec.handle)
	}

	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Users:      cat,
		Categories: cat,
		Dispatcher: dispatcher,
	})
	clock := &stepClock{now: baseTime, step: step}
	svc.Now = clock.Now
	ids := 0
	svc.NewID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}

	return &harness{
		svc:    svc,
		query:  NewQueryService(repo, cat, config.QueryConfig{}, nil),
		repo:   repo,
		events: rec,
	}
}

// put stores a ticket with a single created entry, bypassing the service.
func (h *harness) put(t *testing.T, ticket domain.Ticket) domain.Ticket {
	t.Helper()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = baseTime.Add(-24 * time.Hour)
	}
	if ticket.UpdatedAt.IsZero() {
		ticket.UpdatedAt = ticket.CreatedAt
	}
	if ticket.UpdateHistory == nil {
		ticket.UpdateHistory = []domain.AuditEntry{{
			ID:          "seed-" + ticket.ID,
			TicketID:    ticket.ID,
			ActorID:     "actor-1",
			Action:      domain.ActionCreated,
			Description: "Ticket created",
			Timestamp:   ticket.CreatedAt,
		}}
	}
	require.NoError(t, h.repo.Put(context.Background(), ticket))
	return ticket
}

// seedTwentyThree stores 23 tickets, 8 of them Resolved or Closed.
func (h *harness) seedTwentyThree(t *testing.T) {
	t.Helper()
	open := []domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusInProgress, domain.TicketStatusWaiting}
	categories := []string{"Hardware", "Software", "Network"}
	priorities := []domain.TicketPriority{domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh, domain.TicketPriorityCritical}

	for i := 1; i <= 23; i++ {
		status := open[i%len(open)]
		switch {
		case i <= 4:
			status = domain.TicketStatusResolved
		case i <= 8:
			status = domain.TicketStatusClosed
		}
		ticket := domain.Ticket{
			ID:          fmt.Sprintf("TKT-%03d", i),
			Title:       fmt.Sprintf("Ticket %d", i),
			Description: "Routine request",
			Category:    categories[i%len(categories)],
			Priority:    priorities[i%len(priorities)],
			Status:      status,
			Requester:   domain.RequesterInfo{ID: "actor-1", Name: "Dana Lee"},
			CreatedAt:   baseTime.AddDate(0, 0, i),
			UpdatedAt:   baseTime.AddDate(0, 0, i).Add(time.Duration(i%5) * time.Hour),
		}
		if i%2 == 0 {
			ticket.AssignedAgentID = "agent-7"
			ticket.AssignedAgentName = "Alex R."
		}
		if i == 11 {
			ticket.Title = "VPN drops every hour"
			ticket.AssignedAgentID = "agent-9"
			ticket.AssignedAgents = []string{"agent-7"}
		}
		h.put(t, ticket)
	}
}
