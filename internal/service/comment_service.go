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

// CommentService coordinates the ticket comment thread, including the
// comment-driven lifecycle side effects.
type CommentService struct {
	comments repository.CommentRepository
	tickets  repository.TicketRepository
	tx       repository.TxManager
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	Tx          repository.TxManager
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments: deps.CommentRepo,
		tickets:  deps.TicketRepo,
		tx:       deps.Tx,
	}
}

// ListByTicket returns the comment thread for a ticket the actor may see.
func (s *CommentService) ListByTicket(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewTicket(actor.Role, actor.ID, ticket) {
		return nil, viewDeniedError(actor.Role)
	}
	return s.comments.ListByTicket(ctx, ticketID)
}

// Create appends a comment and applies the role-keyed side effects, in
// this order:
//
//  1. admins are observational and may not comment
//  2. blank content is rejected
//  3. the ticket must exist
//  4. the actor must be able to see the ticket
//  5. a staff comment claims the ticket and moves it to in_progress
//     unless work already started
//  6. a reporter comment resets the inactivity clock
//  7. the comment row is inserted
//
// Steps 5-7 run in one transaction so a failed insert cannot leave a
// claimed ticket without its claiming comment.
func (s *CommentService) Create(ctx context.Context, actor *domain.User, ticketID, content string) (*domain.Comment, error) {
	if actor.Role == domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admins may only view tickets and comments, not create them")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content is required", nil)
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewTicket(actor.Role, actor.ID, ticket) {
		if actor.Role == domain.RoleStaff {
			return nil, apperrors.NewForbidden("you may only comment on tickets assigned to you")
		}
		return nil, apperrors.NewForbidden("you may only comment on your own tickets")
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Content:  content,
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if actor.Role == domain.RoleStaff {
			changed := false
			switch ticket.Status {
			case domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed:
				// work already started or finished; leave status alone
			default:
				ticket.Status = domain.TicketStatusInProgress
				changed = true
			}
			if ticket.AssigneeID == nil {
				assigneeID := actor.ID
				ticket.AssigneeID = &assigneeID
				changed = true
			}
			if changed {
				if err := s.tickets.Update(ctx, ticket); err != nil {
					return err
				}
			}
		}

		if actor.ID == ticket.ReporterID {
			if err := s.tickets.Touch(ctx, ticket.ID); err != nil {
				return err
			}
		}

		return s.comments.Create(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	comment.AuthorUsername = actor.Username
	comment.AuthorRole = actor.Role
	return comment, nil
}

// Delete removes a comment. Only its author may delete it.
func (s *CommentService) Delete(ctx context.Context, actor *domain.User, commentID string) error {
	if actor.Role == domain.RoleAdmin {
		return apperrors.NewForbidden("admins may only view comments, not delete them")
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("comment")
		}
		return err
	}
	if !policy.CanDeleteComment(actor.Role, actor.ID, comment) {
		return apperrors.NewForbidden("you may only delete your own comments")
	}
	return s.comments.Delete(ctx, commentID)
}

func (s *CommentService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, err
	}
	return ticket, nil
}
