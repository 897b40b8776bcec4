package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/catalog"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const dayLayout = "2006-01-02"

// TicketQuery is a declarative filter set. All filters are ANDed; the list
// filters (status, category, priority) take comma separated values that are
// ORed within the field.
type TicketQuery struct {
	Search         string `query:"search"`
	Status         string `query:"status"`
	Category       string `query:"category"`
	Priority       string `query:"priority"`
	AssigneeID     string `query:"assigneeId"`
	RequesterID    string `query:"requesterId"`
	AssigneeName   string `query:"assigneeName"`
	CreatedFrom    string `query:"createdFrom"`
	CreatedTo      string `query:"createdTo"`
	OpenOnly       bool   `query:"openOnly"`
	ClosedOnly     bool   `query:"closedOnly"`
	UnassignedOnly bool   `query:"unassignedOnly"`
	Page           int    `query:"page"`
	Limit          int    `query:"limit"`
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// TicketPage is one page of query results.
type TicketPage struct {
	Items      []domain.Ticket `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

// QueryService filters, sorts and paginates the ticket collection.
type QueryService struct {
	tickets repository.TicketRepository
	users   catalog.UserCatalog
	limits  config.QueryConfig
	logger  *zap.Logger
}

// NewQueryService constructs the service. Zero limits fall back to 10 per
// page and at most 100.
func NewQueryService(tickets repository.TicketRepository, users catalog.UserCatalog, limits config.QueryConfig, logger *zap.Logger) *QueryService {
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = 10
	}
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = 100
	}
	if limits.DefaultLimit > limits.MaxLimit {
		limits.DefaultLimit = limits.MaxLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{tickets: tickets, users: users, limits: limits, logger: logger}
}

// QueryTickets returns the requested page, newest update first. A page past
// the end is empty but still reports the true totals.
func (q *QueryService) QueryTickets(ctx context.Context, query TicketQuery) (*TicketPage, error) {
	match, err := q.compile(query)
	if err != nil {
		return nil, err
	}

	all, err := q.tickets.List(ctx)
	if err != nil {
		q.logger.Error("ticket list failed", zap.Error(err))
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	filtered := make([]domain.Ticket, 0, len(all))
	for i := range all {
		if match(&all[i]) {
			filtered = append(filtered, all[i])
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})

	page, limit := q.window(query)
	total := len(filtered)
	totalPages := (total + limit - 1) / limit

	// compare pages before multiplying so a huge page cannot overflow
	items := []domain.Ticket{}
	if page <= totalPages {
		start := (page - 1) * limit
		end := start + limit
		if end > total {
			end = total
		}
		items = filtered[start:end]
	}

	return &TicketPage{
		Items: items,
		Pagination: Pagination{
			Page:        page,
			Limit:       limit,
			TotalItems:  total,
			TotalPages:  totalPages,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}, nil
}

func (q *QueryService) window(query TicketQuery) (page, limit int) {
	page = query.Page
	if page < 1 {
		page = 1
	}
	limit = query.Limit
	switch {
	case limit < 1:
		limit = q.limits.DefaultLimit
	case limit > q.limits.MaxLimit:
		limit = q.limits.MaxLimit
	}
	return page, limit
}

type predicate func(t *domain.Ticket) bool

// compile turns the filter set into a single predicate, rejecting bad dates
// up front.
func (q *QueryService) compile(query TicketQuery) (predicate, error) {
	var preds []predicate

	if search := strings.ToLower(strings.TrimSpace(query.Search)); search != "" {
		preds = append(preds, func(t *domain.Ticket) bool {
			return strings.Contains(strings.ToLower(t.Title), search) ||
				strings.Contains(strings.ToLower(t.Description), search)
		})
	}
	if statuses := enumSet(query.Status, func(raw string) (string, bool) {
		s, ok := domain.ParseTicketStatus(raw)
		return string(s), ok
	}); statuses != nil {
		preds = append(preds, func(t *domain.Ticket) bool { return statuses[string(t.Status)] })
	}
	if priorities := enumSet(query.Priority, func(raw string) (string, bool) {
		p, ok := domain.ParseTicketPriority(raw)
		return string(p), ok
	}); priorities != nil {
		preds = append(preds, func(t *domain.Ticket) bool { return priorities[string(t.Priority)] })
	}
	if categories := enumSet(query.Category, func(raw string) (string, bool) {
		return strings.ToLower(raw), true
	}); categories != nil {
		preds = append(preds, func(t *domain.Ticket) bool { return categories[strings.ToLower(t.Category)] })
	}
	if id := strings.TrimSpace(query.AssigneeID); id != "" {
		preds = append(preds, func(t *domain.Ticket) bool { return t.AssignedAgentID == id })
	}
	if id := strings.TrimSpace(query.RequesterID); id != "" {
		preds = append(preds, func(t *domain.Ticket) bool { return t.Requester.ID == id })
	}
	if name := strings.ToLower(strings.TrimSpace(query.AssigneeName)); name != "" {
		preds = append(preds, func(t *domain.Ticket) bool { return q.assigneeNameMatches(t, name) })
	}

	if raw := strings.TrimSpace(query.CreatedFrom); raw != "" {
		from, err := parseDay(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid createdFrom", map[string]any{"createdFrom": raw})
		}
		preds = append(preds, func(t *domain.Ticket) bool { return !t.CreatedAt.Before(from) })
	}
	if raw := strings.TrimSpace(query.CreatedTo); raw != "" {
		to, err := parseDay(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid createdTo", map[string]any{"createdTo": raw})
		}
		end := to.AddDate(0, 0, 1)
		preds = append(preds, func(t *domain.Ticket) bool { return t.CreatedAt.Before(end) })
	}

	if query.OpenOnly {
		preds = append(preds, func(t *domain.Ticket) bool { return t.Status.IsOpen() })
	}
	if query.ClosedOnly {
		preds = append(preds, func(t *domain.Ticket) bool { return t.Status.IsClosed() })
	}
	if query.UnassignedOnly {
		preds = append(preds, func(t *domain.Ticket) bool { return !t.IsAssigned() })
	}

	return func(t *domain.Ticket) bool {
		for _, p := range preds {
			if !p(t) {
				return false
			}
		}
		return true
	}, nil
}

func (q *QueryService) assigneeNameMatches(t *domain.Ticket, needle string) bool {
	ids := append([]string{t.AssignedAgentID}, t.AssignedAgents...)
	for _, id := range ids {
		if id == "" {
			continue
		}
		name := ""
		if q.users != nil {
			if user, ok := q.users.FindUserByID(id); ok {
				name = user.Name()
			}
		}
		if name == "" && id == t.AssignedAgentID {
			name = t.AssignedAgentName
		}
		if name != "" && strings.Contains(strings.ToLower(name), needle) {
			return true
		}
	}
	return false
}

// enumSet splits a comma separated filter into canonical values. Unknown
// values are kept verbatim so they match nothing. Returns nil when the
// filter is blank.
func enumSet(raw string, canonical func(string) (string, bool)) map[string]bool {
	var set map[string]bool
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if set == nil {
			set = make(map[string]bool)
		}
		if value, ok := canonical(part); ok {
			set[value] = true
		} else {
			set["\x00"+part] = true
		}
	}
	return set
}

// parseDay reads YYYY-MM-DD or RFC3339 and returns the start of that UTC day.
func parseDay(raw string) (time.Time, error) {
	if t, err := time.Parse(dayLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
