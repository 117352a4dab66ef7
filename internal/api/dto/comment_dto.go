package dto

import (
	"time"

	"github.com/spec-kit/bugtracker/internal/domain"
)

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse is the public shape of a comment.
type CommentResponse struct {
	ID             string          `json:"id"`
	TicketID       string          `json:"ticket_id"`
	AuthorID       string          `json:"author_id"`
	AuthorUsername string          `json:"author_username"`
	AuthorRole     domain.UserRole `json:"author_role"`
	Content        string          `json:"content"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:             comment.ID,
		TicketID:       comment.TicketID,
		AuthorID:       comment.AuthorID,
		AuthorUsername: comment.AuthorUsername,
		AuthorRole:     comment.AuthorRole,
		Content:        comment.Content,
		CreatedAt:      comment.CreatedAt,
	}
}

// NewCommentListResponse maps a comment thread.
func NewCommentListResponse(comments []domain.Comment) []CommentResponse {
	items := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, NewCommentResponse(&comments[i]))
	}
	return items
}
