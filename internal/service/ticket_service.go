package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/audit"
	"github.com/spec-kit/helpdesk-service/internal/catalog"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const ticketIDPrefix = "TKT-"

// TicketService applies mutations to tickets and records their audit trail.
type TicketService struct {
	tickets    repository.TicketRepository
	users      catalog.UserCatalog
	trail      *audit.TrailBuilder
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	// createMu serializes id allocation with the first write of a ticket.
	createMu sync.Mutex

	// Now and NewID are replaceable for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Users      catalog.UserCatalog
	Categories catalog.CategoryCatalog
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload. RequesterID defaults
// to the acting user.
type TicketCreateInput struct {
	Title              string
	Description        string
	Category           string
	SubCategoryID      string
	Priority           domain.TicketPriority
	RequesterID        string
	AssignedAgentID    string
	AssignedAgents     []string
	EscalationLevel    domain.EscalationLevel
	Location           domain.Location
	AdditionalContacts []domain.Contact
	Tags               []string
}

// ResolveInput carries the resolution written when a ticket is resolved.
type ResolveInput struct {
	Notes string
	Steps []string
}

// CommentInput is a new message on the ticket thread.
type CommentInput struct {
	Body     string
	Internal bool
}

// AttachmentInput defines attachment metadata.
type AttachmentInput struct {
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
}

// WorkLogInput is an agent work log note.
type WorkLogInput struct {
	Note         string
	MinutesSpent int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.Users,
		trail:      audit.NewTrailBuilder(deps.Users, deps.Categories),
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		Now:        time.Now,
		NewID:      uuid.NewString,
	}
	s.trail.Now = func() time.Time { return s.Now() }
	s.trail.NewID = func() string { return s.NewID() }
	return s
}

// CreateTicket creates a ticket. The history always starts with exactly one
// created entry, whatever fields are populated.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput, actorID string) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	id, err := s.nextTicketID(ctx)
	if err != nil {
		return nil, err
	}

	requesterID := strings.TrimSpace(input.RequesterID)
	if requesterID == "" {
		requesterID = actorID
	}

	now := s.Now().UTC()
	ticket := domain.Ticket{
		ID:                 id,
		Title:              title,
		Description:        strings.TrimSpace(input.Description),
		Category:           strings.TrimSpace(input.Category),
		SubCategoryID:      strings.TrimSpace(input.SubCategoryID),
		Priority:           input.Priority,
		Status:             domain.TicketStatusNew,
		Requester:          s.requesterSnapshot(requesterID),
		AssignedAgentID:    strings.TrimSpace(input.AssignedAgentID),
		AssignedAgents:     input.AssignedAgents,
		EscalationLevel:    input.EscalationLevel,
		Location:           input.Location,
		AdditionalContacts: input.AdditionalContacts,
		Tags:               input.Tags,
		CreatedAt:          now,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if ticket.EscalationLevel == "" {
		ticket.EscalationLevel = domain.EscalationTier1
	}
	ticket.AssignedAgentName = s.userName(ticket.AssignedAgentID)

	entry := s.trail.BuildEntry(audit.EntryInput{
		TicketID: id,
		ActorID:  actorID,
		Action:   domain.ActionCreated,
	})
	ticket.UpdateHistory = audit.Append(nil, entry)

	if err := s.commit(ctx, &ticket, now, actorID, ticket.UpdateHistory); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ApplyUpdate applies a partial update. Every meaningful field change gets
// exactly one audit entry, then the assignment rule may move the status, and
// the merged ticket is written once.
func (s *TicketService) ApplyUpdate(ctx context.Context, ticketID string, patch TicketPatch, actorID string) (*domain.Ticket, error) {
	return s.applyUpdate(ctx, ticketID, patch, actorID, updateOptions{})
}

// ResolveTicket moves a ticket to Resolved and records the resolution.
func (s *TicketService) ResolveTicket(ctx context.Context, ticketID string, input ResolveInput, actorID string) (*domain.Ticket, error) {
	notes := strings.TrimSpace(input.Notes)
	if notes == "" {
		return nil, apperrors.NewValidationError("resolution notes are required", map[string]any{"field": "resolutionNotes"})
	}
	resolved := domain.TicketStatusResolved
	patch := TicketPatch{Status: &resolved, ResolutionNotes: &notes}
	if input.Steps != nil {
		steps := input.Steps
		patch.ResolutionSteps = &steps
	}
	return s.applyUpdate(ctx, ticketID, patch, actorID, updateOptions{
		statusAction: domain.ActionResolved,
		prepare: func(t *domain.Ticket, _ *TicketPatch) error {
			if t.Status.IsClosed() {
				return apperrors.NewConflict("ticket is already "+strings.ToLower(string(t.Status)), map[string]any{"ticket_id": t.ID})
			}
			return nil
		},
	})
}

// CloseTicket moves a ticket to Closed.
func (s *TicketService) CloseTicket(ctx context.Context, ticketID, actorID string) (*domain.Ticket, error) {
	closed := domain.TicketStatusClosed
	return s.applyUpdate(ctx, ticketID, TicketPatch{Status: &closed}, actorID, updateOptions{
		statusAction: domain.ActionClosed,
		prepare: func(t *domain.Ticket, _ *TicketPatch) error {
			if t.Status == domain.TicketStatusClosed {
				return apperrors.NewConflict("ticket is already closed", map[string]any{"ticket_id": t.ID})
			}
			return nil
		},
	})
}

// ReopenTicket returns a resolved or closed ticket to work: In Progress when
// an agent is assigned, New otherwise.
func (s *TicketService) ReopenTicket(ctx context.Context, ticketID, actorID string) (*domain.Ticket, error) {
	return s.applyUpdate(ctx, ticketID, TicketPatch{}, actorID, updateOptions{
		statusAction: domain.ActionReopened,
		prepare: func(t *domain.Ticket, p *TicketPatch) error {
			if !t.Status.IsClosed() {
				return apperrors.NewConflict("only resolved or closed tickets can be reopened", map[string]any{
					"ticket_id": t.ID,
					"status":    t.Status,
				})
			}
			status := domain.TicketStatusNew
			if t.IsAssigned() {
				status = domain.TicketStatusInProgress
			}
			p.Status = &status
			return nil
		},
	})
}

// AddComment appends a message to the thread and a commented entry.
func (s *TicketService) AddComment(ctx context.Context, ticketID string, input CommentInput, actorID string) (*domain.Ticket, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body is required", map[string]any{"field": "body"})
	}

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	message := domain.TicketMessage{
		ID:         s.NewID(),
		AuthorID:   actorID,
		AuthorName: s.userName(actorID),
		Body:       body,
		Internal:   input.Internal,
		CreatedAt:  now,
	}
	ticket.Messages = append(append([]domain.TicketMessage{}, ticket.Messages...), message)

	entry := s.trail.BuildEntry(audit.EntryInput{
		TicketID: ticket.ID,
		ActorID:  actorID,
		Action:   domain.ActionCommented,
		NewValue: input.Internal,
		Metadata: map[string]any{"messageId": message.ID, "internal": input.Internal},
	})
	before := len(ticket.UpdateHistory)
	ticket.UpdateHistory = audit.Append(ticket.UpdateHistory, entry)

	if err := s.commit(ctx, &ticket, now, actorID, ticket.UpdateHistory[before:]); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// AddAttachment records attachment metadata. The file itself lives
// elsewhere, addressed by StorageKey.
func (s *TicketService) AddAttachment(ctx context.Context, ticketID string, input AttachmentInput, actorID string) (*domain.Ticket, error) {
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, apperrors.NewValidationError("file name is required", map[string]any{"field": "fileName"})
	}
	if input.SizeBytes < 0 {
		return nil, apperrors.NewValidationError("size must not be negative", map[string]any{"field": "sizeBytes"})
	}

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	attachment := domain.Attachment{
		ID:         s.NewID(),
		FileName:   fileName,
		MimeType:   strings.TrimSpace(input.MimeType),
		SizeBytes:  input.SizeBytes,
		StorageKey: strings.TrimSpace(input.StorageKey),
		UploadedBy: actorID,
		CreatedAt:  now,
	}
	ticket.Attachments = append(append([]domain.Attachment{}, ticket.Attachments...), attachment)

	entry := s.trail.BuildEntry(audit.EntryInput{
		TicketID:    ticket.ID,
		ActorID:     actorID,
		Action:      domain.ActionUpdated,
		Field:       audit.FieldAttachments,
		NewValue:    fileName,
		Description: fmt.Sprintf("Attachment %q added", fileName),
		Metadata:    map[string]any{"attachmentId": attachment.ID},
	})
	before := len(ticket.UpdateHistory)
	ticket.UpdateHistory = audit.Append(ticket.UpdateHistory, entry)

	if err := s.commit(ctx, &ticket, now, actorID, ticket.UpdateHistory[before:]); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// AddWorkLog appends a work log note. Work logs have their own timeline and
// do not produce audit entries.
func (s *TicketService) AddWorkLog(ctx context.Context, ticketID string, input WorkLogInput, actorID string) (*domain.Ticket, error) {
	note := strings.TrimSpace(input.Note)
	if note == "" {
		return nil, apperrors.NewValidationError("work log note is required", map[string]any{"field": "note"})
	}
	if input.MinutesSpent < 0 {
		return nil, apperrors.NewValidationError("minutes spent must not be negative", map[string]any{"field": "minutesSpent"})
	}

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	workLog := domain.WorkLogEntry{
		ID:           s.NewID(),
		AgentID:      actorID,
		AgentName:    s.userName(actorID),
		Note:         note,
		MinutesSpent: input.MinutesSpent,
		CreatedAt:    now,
	}
	ticket.WorkLogs = append(append([]domain.WorkLogEntry{}, ticket.WorkLogs...), workLog)

	if err := s.commit(ctx, &ticket, now, actorID, nil); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		ID:        s.NewID(),
		Type:      events.EventTicketWorkLogAdded,
		TicketID:  ticket.ID,
		ActorID:   actorID,
		Timestamp: now,
		Payload:   events.WorkLogAddedPayload{WorkLog: workLog},
	})
	return &ticket, nil
}

// GetTicket returns a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetHistory returns the audit trail of a ticket, oldest first.
func (s *TicketService) GetHistory(ctx context.Context, ticketID string) ([]domain.AuditEntry, error) {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UpdateHistory == nil {
		return []domain.AuditEntry{}, nil
	}
	return ticket.UpdateHistory, nil
}

type updateOptions struct {
	// statusAction replaces status_changed for an explicit status entry.
	statusAction domain.AuditAction
	// prepare runs against the loaded ticket before diffing and may veto
	// the update or fill in the patch.
	prepare func(t *domain.Ticket, p *TicketPatch) error
}

func (s *TicketService) applyUpdate(ctx context.Context, ticketID string, patch TicketPatch, actorID string, opts updateOptions) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if opts.prepare != nil {
		if err := opts.prepare(&ticket, &patch); err != nil {
			return nil, err
		}
	}
	patch.normalize()

	originalStatus := ticket.Status
	history := ticket.UpdateHistory
	before := len(history)
	record := func(in audit.EntryInput) {
		in.TicketID = ticket.ID
		in.ActorID = actorID
		in.Category = ticket.Category
		history = audit.Append(history, s.trail.BuildEntry(in))
	}

	var trigger string
	for _, f := range patchableFields {
		newValue, ok := f.patched(&patch)
		if !ok || audit.IsExcluded(f.name) {
			continue
		}
		oldValue := f.get(&ticket)
		f.set(&ticket, &patch)

		if !audit.IsMeaningfulChange(f.name, oldValue, newValue) {
			continue
		}
		if f.name == audit.FieldAssignedAgents && audit.SameIDSet(ticket.AssignedAgents, oldValue.([]string)) {
			continue
		}

		action := audit.ActionFor(f.name)
		if f.name == audit.FieldStatus && opts.statusAction != "" {
			action = opts.statusAction
		}
		record(audit.EntryInput{Action: action, Field: f.name, OldValue: oldValue, NewValue: newValue})

		if action == domain.ActionAssigned && trigger == "" {
			trigger = f.name
		}
	}

	if ApplyAssignmentTransition(&ticket, trigger) && audit.IsMeaningfulChange(audit.FieldStatus, originalStatus, ticket.Status) {
		record(audit.EntryInput{
			Action:   domain.ActionStatusChanged,
			Field:    audit.FieldStatus,
			OldValue: originalStatus,
			NewValue: ticket.Status,
			Metadata: map[string]any{"automatic": true, "trigger": trigger},
		})
	}

	now := s.Now().UTC()
	syncResolution(&ticket, now)
	ticket.AssignedAgentName = s.userName(ticket.AssignedAgentID)
	ticket.UpdateHistory = history

	if err := s.commit(ctx, &ticket, now, actorID, history[before:]); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// commit stamps updatedAt, writes the ticket and publishes one event per
// new audit entry.
func (s *TicketService) commit(ctx context.Context, ticket *domain.Ticket, now time.Time, actorID string, recorded []domain.AuditEntry) error {
	ticket.UpdatedAt = now
	if last, ok := ticket.LastHistoryEntry(); ok && last.Timestamp.After(now) {
		ticket.UpdatedAt = last.Timestamp
	}

	if err := s.tickets.Put(ctx, *ticket); err != nil {
		s.logger.Error("ticket write failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		return fmt.Errorf("save ticket %s: %w", ticket.ID, err)
	}

	for _, entry := range recorded {
		s.metrics.RecordMutation(string(entry.Action), 1)
		s.publishEvent(ctx, events.Event{
			ID:        s.NewID(),
			Type:      events.TypeForAction(entry.Action),
			TicketID:  ticket.ID,
			ActorID:   actorID,
			Timestamp: entry.Timestamp,
			Payload:   events.AuditRecordedPayload{Entry: entry, Status: ticket.Status},
		})
	}

	s.logger.Info("ticket saved",
		zap.String("ticket_id", ticket.ID),
		zap.String("actor_id", actorID),
		zap.String("status", string(ticket.Status)),
		zap.Int("entries", len(recorded)))
	return nil
}

func (s *TicketService) load(ctx context.Context, ticketID string) (domain.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, strings.TrimSpace(ticketID))
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Ticket{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("load ticket %s: %w", ticketID, err)
	}
	return ticket, nil
}

// nextTicketID returns TKT-NNN one past the highest numbered ticket.
func (s *TicketService) nextTicketID(ctx context.Context) (string, error) {
	existing, err := s.tickets.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list tickets: %w", err)
	}
	highest := 0
	for _, t := range existing {
		n, err := strconv.Atoi(strings.TrimPrefix(t.ID, ticketIDPrefix))
		if err != nil || !strings.HasPrefix(t.ID, ticketIDPrefix) {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", ticketIDPrefix, highest+1), nil
}

func (s *TicketService) requesterSnapshot(userID string) domain.RequesterInfo {
	info := domain.RequesterInfo{ID: userID}
	if s.users == nil {
		return info
	}
	if user, ok := s.users.FindUserByID(userID); ok {
		info.Name = user.Name()
		info.Email = user.Email
		info.Department = user.Department
		info.Phone = user.Phone
	}
	return info
}

func (s *TicketService) userName(userID string) string {
	if userID == "" || s.users == nil {
		return ""
	}
	if user, ok := s.users.FindUserByID(userID); ok {
		return user.Name()
	}
	return ""
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
