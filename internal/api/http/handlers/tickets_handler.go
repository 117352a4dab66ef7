package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bugtracker/internal/api/dto"
	"github.com/spec-kit/bugtracker/internal/auth"
	"github.com/spec-kit/bugtracker/internal/domain"
	"github.com/spec-kit/bugtracker/internal/service"
	apperrors "github.com/spec-kit/bugtracker/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create handles POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), principal, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, dto.NewTicketResponse(ticket))
}

// List handles GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	input := parseTicketListQuery(c)
	tickets, total, err := h.service.ListTickets(c.UserContext(), principal, input)
	if err != nil {
		return err
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	return success(c, http.StatusOK, dto.NewTicketListResponse(tickets, page, pageSize, total))
}

// Get handles GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.service.GetTicket(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewTicketResponse(ticket))
}

// Replace handles PUT /api/tickets/:id.
func (h *TicketsHandler) Replace(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReplaceTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.ReplaceTicket(c.UserContext(), principal, c.Params("id"), service.TicketReplaceInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewTicketResponse(ticket))
}

// Patch handles PATCH /api/tickets/:id.
func (h *TicketsHandler) Patch(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.PatchTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.PatchTicket(c.UserContext(), principal, c.Params("id"), service.TicketPatchInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewTicketResponse(ticket))
}

// Delete handles DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeleteTicket(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return success(c, http.StatusOK, fiber.Map{"message": "ticket deleted"})
}

func parseTicketListQuery(c *fiber.Ctx) service.TicketListInput {
	input := service.TicketListInput{
		Page:     parseIntQuery(c.Query("page"), 1),
		PageSize: parseIntQuery(c.Query("page_size"), 10),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.TicketStatus(statusStr)
		input.Status = &status
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		priority := domain.TicketPriority(priorityStr)
		input.Priority = &priority
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		input.AssigneeID = &assignee
	}
	return input
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
