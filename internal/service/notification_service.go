package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// NotificationService handles emitting notifications for ticket events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketCommented, n.handleTicketCommented)
	n.dispatcher.Subscribe(events.EventTicketWorkLogAdded, n.handleWorkLogAdded)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.String("actor_id", event.ActorID))
	n.sendEmailNotificationStub(ctx, event, "requester")
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	entry, status := auditPayload(event)
	n.logger.Info("TicketStatusChanged",
		zap.String("ticket_id", event.TicketID),
		zap.String("action", string(entry.Action)),
		zap.String("from", entry.OldValue),
		zap.String("to", entry.NewValue))
	if status.IsClosed() {
		n.sendEmailNotificationStub(ctx, event, "requester")
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	entry, _ := auditPayload(event)
	n.logger.Info("TicketAssigned",
		zap.String("ticket_id", event.TicketID),
		zap.String("field", entry.Field),
		zap.String("description", entry.Description))
	n.sendEmailNotificationStub(ctx, event, "assignee")
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketCommented(ctx context.Context, event events.Event) error {
	entry, _ := auditPayload(event)
	n.logger.Info("TicketCommented", zap.String("ticket_id", event.TicketID), zap.String("actor_id", event.ActorID))
	// internal notes stay inside the agent team
	if internal, _ := entry.Metadata["internal"].(bool); internal {
		return nil
	}
	n.sendEmailNotificationStub(ctx, event, "requester")
	return nil
}

func (n *NotificationService) handleWorkLogAdded(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.WorkLogAddedPayload)
	n.logger.Debug("TicketWorkLogAdded",
		zap.String("ticket_id", event.TicketID),
		zap.Int("minutes", payload.WorkLog.MinutesSpent))
	return nil
}

func auditPayload(event events.Event) (domain.AuditEntry, domain.TicketStatus) {
	payload, ok := event.Payload.(events.AuditRecordedPayload)
	if !ok {
		return domain.AuditEntry{}, ""
	}
	return payload.Entry, payload.Status
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, recipient string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", recipient),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
