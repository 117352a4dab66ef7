package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bugtracker/internal/api/dto"
	"github.com/spec-kit/bugtracker/internal/auth"
	"github.com/spec-kit/bugtracker/internal/domain"
	"github.com/spec-kit/bugtracker/internal/service"
	apperrors "github.com/spec-kit/bugtracker/pkg/util"
)

// OpsHandler exposes the manual lifecycle sweep trigger. The sweep
// itself is a system action, so these endpoints are the one place an
// admin causes writes; only admins may reach them.
type OpsHandler struct {
	sweeper    *service.SweepService
	thresholds service.SweepThresholds
}

// NewOpsHandler constructs handler.
func NewOpsHandler(sweeper *service.SweepService, thresholds service.SweepThresholds) *OpsHandler {
	return &OpsHandler{sweeper: sweeper, thresholds: thresholds}
}

// Sweep handles POST /api/ops/sweep. Threshold hours in the body
// override config for this run only.
func (h *OpsHandler) Sweep(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if principal.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins may trigger a sweep")
	}

	th := h.thresholds
	var req dto.SweepRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		if req.ResolveAfterHours < 0 || req.CloseAfterHours < 0 {
			return apperrors.NewValidationError("threshold hours must be positive", nil)
		}
		if req.ResolveAfterHours > 0 {
			th.Resolve = time.Duration(req.ResolveAfterHours) * time.Hour
		}
		if req.CloseAfterHours > 0 {
			th.Close = time.Duration(req.CloseAfterHours) * time.Hour
		}
	}

	summary, err := h.sweeper.Run(c.UserContext(), th)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, summary)
}

// SweepPreview handles GET /api/ops/sweep/preview.
func (h *OpsHandler) SweepPreview(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if principal.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins may preview a sweep")
	}

	preview, err := h.sweeper.Preview(c.UserContext(), h.thresholds)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, preview)
}
