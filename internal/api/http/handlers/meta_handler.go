package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bugtracker/internal/api/dto"
	"github.com/spec-kit/bugtracker/internal/auth"
	"github.com/spec-kit/bugtracker/internal/service"
	apperrors "github.com/spec-kit/bugtracker/pkg/util"
)

// MetaHandler exposes metadata, the user directory and dashboard stats.
type MetaHandler struct {
	dashboard *service.DashboardService
}

// NewMetaHandler constructs handler.
func NewMetaHandler(dashboardService *service.DashboardService) *MetaHandler {
	return &MetaHandler{dashboard: dashboardService}
}

// Statuses handles GET /api/statuses.
func (h *MetaHandler) Statuses(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	statuses, err := h.dashboard.Statuses(principal)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, statuses)
}

// Priorities handles GET /api/priorities.
func (h *MetaHandler) Priorities(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	priorities, err := h.dashboard.Priorities(principal)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, priorities)
}

// Users handles GET /api/users.
func (h *MetaHandler) Users(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	users, err := h.dashboard.ListUsers(c.UserContext(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return success(c, http.StatusOK, items)
}

// Stats handles GET /api/stats.
func (h *MetaHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.dashboard.Stats(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, stats)
}
