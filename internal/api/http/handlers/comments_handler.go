package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bugtracker/internal/api/dto"
	"github.com/spec-kit/bugtracker/internal/auth"
	"github.com/spec-kit/bugtracker/internal/service"
	apperrors "github.com/spec-kit/bugtracker/pkg/util"
)

// CommentsHandler manages ticket comment endpoints.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// ListByTicket handles GET /api/tickets/:id/comments.
func (h *CommentsHandler) ListByTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	comments, err := h.service.ListByTicket(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewCommentListResponse(comments))
}

// Create handles POST /api/tickets/:id/comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.service.Create(c.UserContext(), principal, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, dto.NewCommentResponse(comment))
}

// Delete handles DELETE /api/comments/:id.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return success(c, http.StatusOK, fiber.Map{"message": "comment deleted"})
}
