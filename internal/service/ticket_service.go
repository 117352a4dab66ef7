package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bugtracker/internal/domain"
	"github.com/spec-kit/bugtracker/internal/policy"
	"github.com/spec-kit/bugtracker/internal/repository"
	apperrors "github.com/spec-kit/bugtracker/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets repository.TicketRepository
	tx      repository.TxManager
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Tx         repository.TxManager
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets: deps.TicketRepo,
		tx:      deps.Tx,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// TicketListInput describes list filters before visibility scoping.
type TicketListInput struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	AssigneeID *string
	Page       int
	PageSize   int
}

// TicketReplaceInput carries a full update: every field must be present.
type TicketReplaceInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Status      domain.TicketStatus
	AssigneeID  *string
}

// TicketPatchInput carries a partial update; nil means not provided.
type TicketPatchInput struct {
	Title       *string
	Description *string
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
	AssigneeID  *string
}

// CreateTicket files a new ticket. Only the user role may create; the
// ticket starts with status and assignee unset.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if !policy.Allows(actor.Role, policy.OpTicketCreate) {
		return nil, apperrors.NewForbidden("only users may create tickets")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityLow
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority: must be low, medium, high or critical", nil)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusUnset,
		Priority:    priority,
		ReporterID:  actor.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	ticket.ReporterUsername = actor.Username
	return ticket, nil
}

// GetTicket fetches a ticket the actor may see. A staff read claims
// untouched tickets as a side effect: unset status becomes open and a
// missing assignee becomes the reader. Admin reads never mutate.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewTicket(actor.Role, actor.ID, ticket) {
		return nil, viewDeniedError(actor.Role)
	}

	if actor.Role == domain.RoleStaff {
		changed := false
		if !ticket.Status.IsSet() {
			ticket.Status = domain.TicketStatusOpen
			changed = true
		}
		if ticket.AssigneeID == nil {
			assigneeID := actor.ID
			assigneeName := actor.Username
			ticket.AssigneeID = &assigneeID
			ticket.AssigneeUsername = &assigneeName
			changed = true
		}
		if changed {
			if err := s.tickets.Update(ctx, ticket); err != nil {
				return nil, err
			}
		}
	}
	return ticket, nil
}

// ListTickets returns a visibility-scoped page of tickets plus the total
// count under the same predicates.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, input TicketListInput) ([]domain.Ticket, int, error) {
	if !policy.AllowsAny(actor.Role, policy.OpTicketReadOwn, policy.OpTicketReadAssigned, policy.OpTicketReadAll) {
		return nil, 0, apperrors.NewForbidden("insufficient permissions")
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, apperrors.NewValidationError("invalid status filter", nil)
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, 0, apperrors.NewValidationError("invalid priority filter", nil)
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	filter := repository.TicketFilter{
		Status:     input.Status,
		Priority:   input.Priority,
		AssigneeID: input.AssigneeID,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}

	// Narrow per access policy: users see their own reports, staff see
	// their queue plus unclaimed tickets, admins see everything.
	switch actor.Role {
	case domain.RoleUser:
		reporterID := actor.ID
		filter.ReporterID = &reporterID
	case domain.RoleStaff:
		staffID := actor.ID
		filter.ScopeStaffID = &staffID
	}

	return s.tickets.List(ctx, filter)
}

// ReplaceTicket is the full update: all fields must be present and valid,
// then only the actor role's writable fields are applied.
func (s *TicketService) ReplaceTicket(ctx context.Context, actor *domain.User, ticketID string, input TicketReplaceInput) (*domain.Ticket, error) {
	if actor.Role == domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admins may only view tickets, not modify them")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModifyTicket(actor.Role, actor.ID, ticket) {
		return nil, modifyDeniedError(actor.Role)
	}

	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" ||
		input.Priority == "" || input.Status == "" {
		return nil, apperrors.NewValidationError("title, description, priority and status are required", nil)
	}
	if !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority: must be low, medium, high or critical", nil)
	}
	if !input.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status: must be open, in_progress, resolved or closed", nil)
	}

	patch := TicketPatchInput{
		Title:       &input.Title,
		Description: &input.Description,
		Priority:    &input.Priority,
		Status:      &input.Status,
		AssigneeID:  input.AssigneeID,
	}
	return s.applyPatch(ctx, actor, ticket, patch)
}

// PatchTicket is the partial update: provided fields are intersected with
// the actor role's writable set, the rest are silently dropped. An empty
// intersection is a validation error, not a permission error.
func (s *TicketService) PatchTicket(ctx context.Context, actor *domain.User, ticketID string, input TicketPatchInput) (*domain.Ticket, error) {
	if actor.Role == domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admins may only view tickets, not modify them")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModifyTicket(actor.Role, actor.ID, ticket) {
		return nil, modifyDeniedError(actor.Role)
	}
	return s.applyPatch(ctx, actor, ticket, input)
}

func (s *TicketService) applyPatch(ctx context.Context, actor *domain.User, ticket *domain.Ticket, input TicketPatchInput) (*domain.Ticket, error) {
	applied := 0

	if input.Title != nil && policy.FieldWritable(actor.Role, "title") {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be blank", nil)
		}
		ticket.Title = title
		applied++
	}
	if input.Description != nil && policy.FieldWritable(actor.Role, "description") {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, apperrors.NewValidationError("description cannot be blank", nil)
		}
		ticket.Description = description
		applied++
	}
	if input.Status != nil && policy.FieldWritable(actor.Role, "status") {
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("invalid status: must be open, in_progress, resolved or closed", nil)
		}
		ticket.Status = *input.Status
		applied++
	}
	if input.Priority != nil && policy.FieldWritable(actor.Role, "priority") {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority: must be low, medium, high or critical", nil)
		}
		ticket.Priority = *input.Priority
		applied++
	}
	if input.AssigneeID != nil && policy.FieldWritable(actor.Role, "assignee_id") {
		assigneeID := *input.AssigneeID
		ticket.AssigneeID = &assigneeID
		ticket.AssigneeUsername = nil
		applied++
	}

	if applied == 0 {
		return nil, apperrors.NewValidationError("no valid fields to update for your role", nil)
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return s.loadTicket(ctx, ticket.ID)
}

// DeleteTicket removes a ticket and, transactionally, its comments.
// Only the reporter or the current assignee may delete.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID string) error {
	if actor.Role == domain.RoleAdmin {
		return apperrors.NewForbidden("admins may only view tickets, not delete them")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if !policy.CanDeleteTicket(actor.Role, actor.ID, ticket) {
		return apperrors.NewForbidden("you may only delete tickets you reported or are assigned to")
	}
	return s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.tickets.Delete(ctx, ticket.ID)
	})
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, err
	}
	return ticket, nil
}

func viewDeniedError(role domain.UserRole) error {
	if role == domain.RoleStaff {
		return apperrors.NewForbidden("you may only view tickets assigned to you or unassigned tickets")
	}
	return apperrors.NewForbidden("you may only view your own tickets")
}

func modifyDeniedError(role domain.UserRole) error {
	if role == domain.RoleStaff {
		return apperrors.NewForbidden("you may only update tickets assigned to you")
	}
	return apperrors.NewForbidden("you may only update your own tickets")
}
