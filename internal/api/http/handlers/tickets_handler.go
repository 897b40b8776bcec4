package handlers

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler serves the ticket endpoints. Requesters only see and touch
// their own tickets; agents and admins see everything.
type TicketsHandler struct {
	tickets *service.TicketService
	queries *service.QueryService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, queryService *service.QueryService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, queries: queryService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}

	input := service.TicketCreateInput{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		SubCategoryID:      req.SubCategoryID,
		Priority:           req.Priority,
		RequesterID:        req.RequesterID,
		AssignedAgentID:    req.AssignedAgentID,
		AssignedAgents:     req.AssignedAgents,
		EscalationLevel:    req.EscalationLevel,
		Location:           req.Location,
		AdditionalContacts: req.AdditionalContacts,
		Tags:               req.Tags,
	}
	// only agents file tickets on behalf of someone else or pre-assign them
	if !principal.User.IsAgent() {
		input.RequesterID = principal.ActorID()
		input.AssignedAgentID = ""
		input.AssignedAgents = nil
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), input, principal.ActorID())
	if err != nil {
		return err
	}
	c.Location("/tickets/" + ticket.ID)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticket})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var query service.TicketQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", map[string]any{"reason": err.Error()})
	}
	if !principal.User.IsAgent() {
		query.RequesterID = principal.ActorID()
	}

	page, err := h.queries.QueryTickets(c.UserContext(), query)
	if err != nil {
		return err
	}

	items := make([]dto.TicketSummary, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ticketSummary(&page.Items[i]))
	}
	return c.JSON(dto.TicketListResponse{
		Data: items,
		Pagination: dto.PaginationResponse{
			Page:        page.Pagination.Page,
			Limit:       page.Pagination.Limit,
			TotalItems:  page.Pagination.TotalItems,
			TotalPages:  page.Pagination.TotalPages,
			HasNextPage: page.Pagination.HasNextPage,
			HasPrevPage: page.Pagination.HasPrevPage,
		},
	})
}

// GetTicket GET /tickets/:id. Responds 304 when If-None-Match carries the
// current ETag.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.visibleTicket(c)
	if err != nil {
		return err
	}

	body, err := json.Marshal(fiber.Map{"data": ticket})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	etag := ticketETag(body)
	c.Set(fiber.HeaderETag, etag)
	if match := c.Get(fiber.HeaderIfNoneMatch); match != "" && match == etag {
		return c.SendStatus(http.StatusNotModified)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}

	ticket, err := h.tickets.ApplyUpdate(c.UserContext(), c.Params("id"), patchFromRequest(req), principal.ActorID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// GetHistory GET /tickets/:id/history.
func (h *TicketsHandler) GetHistory(c *fiber.Ctx) error {
	ticket, err := h.visibleTicket(c)
	if err != nil {
		return err
	}
	history := ticket.UpdateHistory
	if history == nil {
		history = []domain.AuditEntry{}
	}
	return c.JSON(fiber.Map{"data": history})
}

// AddComment POST /tickets/:id/comments. Internal notes are agent only.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	ticket, err := h.visibleTicket(c)
	if err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Internal && !principal.User.IsAgent() {
		return apperrors.NewForbidden("internal notes require an agent")
	}

	updated, err := h.tickets.AddComment(c.UserContext(), ticket.ID, service.CommentInput{
		Body:     req.Body,
		Internal: req.Internal,
	}, principal.ActorID())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": updated})
}

// AddAttachment POST /tickets/:id/attachments.
func (h *TicketsHandler) AddAttachment(c *fiber.Ctx) error {
	ticket, err := h.visibleTicket(c)
	if err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.CreateAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.tickets.AddAttachment(c.UserContext(), ticket.ID, service.AttachmentInput{
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
		StorageKey: req.StorageKey,
	}, principal.ActorID())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": updated})
}

// AddWorkLog POST /tickets/:id/worklogs.
func (h *TicketsHandler) AddWorkLog(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateWorkLogRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.tickets.AddWorkLog(c.UserContext(), c.Params("id"), service.WorkLogInput{
		Note:         req.Note,
		MinutesSpent: req.MinutesSpent,
	}, principal.ActorID())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": updated})
}

// ResolveTicket POST /tickets/:id/resolve.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.ResolveTicket(c.UserContext(), c.Params("id"), service.ResolveInput{
		Notes: req.ResolutionNotes,
		Steps: req.ResolutionSteps,
	}, principal.ActorID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.CloseTicket(c.UserContext(), c.Params("id"), principal.ActorID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// ReopenTicket POST /tickets/:id/reopen. Requesters may reopen their own tickets.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	ticket, err := h.visibleTicket(c)
	if err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromContext(c)
	reopened, err := h.tickets.ReopenTicket(c.UserContext(), ticket.ID, principal.ActorID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reopened})
}

// visibleTicket loads :id and hides other people's tickets from requesters.
func (h *TicketsHandler) visibleTicket(c *fiber.Ctx) (*domain.Ticket, error) {
	principal, err := currentPrincipal(c)
	if err != nil {
		return nil, err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return nil, err
	}
	if !principal.User.IsAgent() && ticket.Requester.ID != principal.ActorID() {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": c.Params("id")})
	}
	return ticket, nil
}

func currentPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func patchFromRequest(req dto.UpdateTicketRequest) service.TicketPatch {
	return service.TicketPatch{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		SubCategoryID:      req.SubCategoryID,
		Priority:           req.Priority,
		Status:             req.Status,
		AssignedAgentID:    req.AssignedAgentID,
		AssignedAgents:     req.AssignedAgents,
		EscalationLevel:    req.EscalationLevel,
		Location:           req.Location,
		AdditionalContacts: req.AdditionalContacts,
		Tags:               req.Tags,
		ResolutionNotes:    req.ResolutionNotes,
		ResolutionSteps:    req.ResolutionSteps,
	}
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:                ticket.ID,
		Title:             ticket.Title,
		Category:          ticket.Category,
		Priority:          ticket.Priority,
		Status:            ticket.Status,
		EscalationLevel:   ticket.EscalationLevel,
		RequesterID:       ticket.Requester.ID,
		RequesterName:     ticket.Requester.Name,
		AssignedAgentID:   ticket.AssignedAgentID,
		AssignedAgentName: ticket.AssignedAgentName,
		CreatedAt:         ticket.CreatedAt,
		UpdatedAt:         ticket.UpdatedAt,
	}
}

// ticketETag is a strong validator over the rendered representation.
func ticketETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
