package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func ids(items []domain.Ticket) []string {
	out := make([]string, 0, len(items))
	for _, t := range items {
		out = append(out, t.ID)
	}
	return out
}

func TestQueryResolvedAndClosed(t *testing.T) {
	h := newHarness(t, 0)
	h.seedTwentyThree(t)

	for _, status := range []string{"Resolved,Closed", "resolved, CLOSED"} {
		page, err := h.query.QueryTickets(context.Background(), TicketQuery{Status: status, Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 8, page.Pagination.TotalItems)
		assert.Equal(t, 1, page.Pagination.TotalPages)
		assert.Len(t, page.Items, 8)
		assert.False(t, page.Pagination.HasNextPage)
		assert.False(t, page.Pagination.HasPrevPage)
	}
}

func TestQueryPagesCoverEveryItem(t *testing.T) {
	h := newHarness(t, 0)
	h.seedTwentyThree(t)
	ctx := context.Background()

	filters := []TicketQuery{
		{},
		{OpenOnly: true},
		{Category: "Hardware,network"},
		{Priority: "high"},
		{AssigneeID: "agent-7"},
		{Status: "Nonsense"},
	}
	for _, f := range filters {
		f.Limit = 4
		first, err := h.query.QueryTickets(ctx, f)
		require.NoError(t, err)
		total := first.Pagination.TotalItems

		seen := map[string]bool{}
		sum := 0
		for p := 1; p <= first.Pagination.TotalPages; p++ {
			f.Page = p
			page, err := h.query.QueryTickets(ctx, f)
			require.NoError(t, err)
			sum += len(page.Items)
			for _, it := range page.Items {
				assert.False(t, seen[it.ID], "ticket %s returned twice", it.ID)
				seen[it.ID] = true
			}
		}
		assert.Equal(t, total, sum)

		f.Page = first.Pagination.TotalPages + 1
		beyond, err := h.query.QueryTickets(ctx, f)
		require.NoError(t, err)
		assert.Empty(t, beyond.Items)
		assert.NotNil(t, beyond.Items)
		assert.Equal(t, total, beyond.Pagination.TotalItems)
	}
}

func TestQueryOpenAndClosedAreDisjoint(t *testing.T) {
	h := newHarness(t, 0)
	h.seedTwentyThree(t)
	ctx := context.Background()

	open, err := h.query.QueryTickets(ctx, TicketQuery{OpenOnly: true, Limit: 100})
	require.NoError(t, err)
	closed, err := h.query.QueryTickets(ctx, TicketQuery{ClosedOnly: true, Limit: 100})
	require.NoError(t, err)

	openIDs := map[string]bool{}
	for _, id := range ids(open.Items) {
		openIDs[id] = true
	}
	for _, id := range ids(closed.Items) {
		assert.False(t, openIDs[id], "%s is both open and closed", id)
	}
	assert.Equal(t, 23, open.Pagination.TotalItems+closed.Pagination.TotalItems)

	both, err := h.query.QueryTickets(ctx, TicketQuery{OpenOnly: true, ClosedOnly: true})
	require.NoError(t, err)
	assert.Zero(t, both.Pagination.TotalItems)
}

func TestQuerySortsByUpdatedAtDescending(t *testing.T) {
	h := newHarness(t, 0)
	h.seedTwentyThree(t)

	page, err := h.query.QueryTickets(context.Background(), TicketQuery{Limit: 100})
	require.NoError(t, err)
	require.Len(t, page.Items, 23)
	for i := 1; i < len(page.Items); i++ {
		prev, cur := page.Items[i-1], page.Items[i]
		assert.False(t, cur.UpdatedAt.After(prev.UpdatedAt), "%s sorted before %s", prev.ID, cur.ID)
	}
	assert.Equal(t, "TKT-023", page.Items[0].ID)
}

func TestQueryFilters(t *testing.T) {
	h := newHarness(t, 0)
	h.seedTwentyThree(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		query TicketQuery
		want  []string
	}{
		{"search title", TicketQuery{Search: "vpn"}, []string{"TKT-011"}},
		{"assignee name via catalog", TicketQuery{AssigneeName: "kim"}, []string{"TKT-011"}},
		{"co-assignee name", TicketQuery{AssigneeName: "alex r", Search: "vpn"}, []string{"TKT-011"}},
		{"created window", TicketQuery{CreatedFrom: "2024-03-05", CreatedTo: "2024-03-06"}, []string{"TKT-005", "TKT-004"}},
		{"rfc3339 bound", TicketQuery{CreatedFrom: "2024-03-24T23:59:00Z"}, []string{"TKT-023"}},
		{"unassigned open", TicketQuery{UnassignedOnly: true, OpenOnly: true, Priority: "Critical"}, []string{"TKT-023", "TKT-019", "TKT-015"}},
		{"requester", TicketQuery{RequesterID: "someone-else"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := h.query.QueryTickets(ctx, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(page.Items))
		})
	}
}

func TestQueryLimits(t *testing.T) {
	h := newHarness(t, 0)
	h.seedTwentyThree(t)
	ctx := context.Background()

	page, err := h.query.QueryTickets(ctx, TicketQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.Limit)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNextPage)

	capped := NewQueryService(h.repo, nil, config.QueryConfig{DefaultLimit: 5, MaxLimit: 20}, nil)
	page, err = capped.QueryTickets(ctx, TicketQuery{Limit: 500, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 20, page.Pagination.Limit)
	assert.Len(t, page.Items, 3)
	assert.True(t, page.Pagination.HasPrevPage)
}

func TestQueryPageFarPastTheEnd(t *testing.T) {
	h := newHarness(t, 0)
	h.seedTwentyThree(t)

	for _, page := range []int{math.MaxInt, math.MaxInt/10 + 3, 4} {
		result, err := h.query.QueryTickets(context.Background(), TicketQuery{Page: page, Limit: 10})
		require.NoError(t, err)
		assert.NotNil(t, result.Items)
		assert.Empty(t, result.Items)
		assert.Equal(t, page, result.Pagination.Page)
		assert.Equal(t, 23, result.Pagination.TotalItems)
		assert.Equal(t, 3, result.Pagination.TotalPages)
		assert.False(t, result.Pagination.HasNextPage)
		assert.True(t, result.Pagination.HasPrevPage)
	}
}

func TestQueryRejectsBadDates(t *testing.T) {
	h := newHarness(t, 0)
	_, err := h.query.QueryTickets(context.Background(), TicketQuery{CreatedTo: "last tuesday"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}
