package dto

import (
	"time"

	"github.com/spec-kit/bugtracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// ReplaceTicketRequest payload for full updates; all fields required.
type ReplaceTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	AssigneeID  *string               `json:"assignee_id"`
}

// PatchTicketRequest payload for partial updates; nil means not provided.
type PatchTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Priority    *domain.TicketPriority `json:"priority"`
	Status      *domain.TicketStatus   `json:"status"`
	AssigneeID  *string                `json:"assignee_id"`
}

// TicketResponse is the public shape of a ticket. Status is null until
// a staff member first touches the ticket.
type TicketResponse struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Status           *domain.TicketStatus  `json:"status"`
	Priority         domain.TicketPriority `json:"priority"`
	ReporterID       string                `json:"reporter_id"`
	ReporterUsername string                `json:"reporter_username"`
	AssigneeID       *string               `json:"assignee_id"`
	AssigneeUsername *string               `json:"assignee_username"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// TicketListResponse is a page of tickets plus pagination metadata.
type TicketListResponse struct {
	Tickets    []TicketResponse `json:"tickets"`
	Pagination Pagination       `json:"pagination"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:               ticket.ID,
		Title:            ticket.Title,
		Description:      ticket.Description,
		Priority:         ticket.Priority,
		ReporterID:       ticket.ReporterID,
		ReporterUsername: ticket.ReporterUsername,
		AssigneeID:       ticket.AssigneeID,
		AssigneeUsername: ticket.AssigneeUsername,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
	}
	if ticket.Status.IsSet() {
		status := ticket.Status
		resp.Status = &status
	}
	return resp
}

// NewTicketListResponse maps a page of tickets.
func NewTicketListResponse(tickets []domain.Ticket, page, pageSize, total int) TicketListResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return TicketListResponse{
		Tickets: items,
		Pagination: Pagination{
			CurrentPage:  page,
			TotalPages:   totalPages,
			TotalItems:   total,
			ItemsPerPage: pageSize,
		},
	}
}
