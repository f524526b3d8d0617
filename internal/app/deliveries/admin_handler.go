package deliveries

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"github.com/safatanc/hypergiga-core/internal/app/middlewares"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/internal/app/pkg"
	"github.com/safatanc/hypergiga-core/internal/app/services"
	"github.com/safatanc/hypergiga-core/internal/infrastructures"
)

type AdminHandler struct {
	quotaService        *services.QuotaService
	rateLimitService    *services.RateLimitService
	userService         *services.UserService
	validator           *infrastructures.Validator
	apiKeyMiddleware    *middlewares.APIKeyMiddleware
	rateLimitMiddleware *middlewares.RateLimitMiddleware
}

func NewAdminHandler(
	quotaService *services.QuotaService,
	rateLimitService *services.RateLimitService,
	userService *services.UserService,
	validator *infrastructures.Validator,
	apiKeyMiddleware *middlewares.APIKeyMiddleware,
	rateLimitMiddleware *middlewares.RateLimitMiddleware,
) *AdminHandler {
	return &AdminHandler{
		quotaService:        quotaService,
		rateLimitService:    rateLimitService,
		userService:         userService,
		validator:           validator,
		apiKeyMiddleware:    apiKeyMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	adminGroup := router.Group("/admin",
		h.rateLimitMiddleware.LimitByIP(middlewares.AdminLimit),
		h.apiKeyMiddleware.AuthAdmin,
	)

	adminGroup.Get("/quotas/stats", h.GetQuotaStats)
	adminGroup.Get("/users/:id", h.GetUser)
	adminGroup.Put("/users/:id/role", h.UpdateUserRole)
	adminGroup.Post("/users/:id/quota/reset", h.ResetUserQuota)
	adminGroup.Post("/users/:id/quota/increase", h.IncreaseUserQuota)

	adminGroup.Get("/rate-limits", h.GetRateLimitConfigs)
	adminGroup.Get("/rate-limits/status", h.GetRateLimitStatus)
	adminGroup.Post("/rate-limits/reset", h.ResetRateLimit)
	adminGroup.Put("/rate-limits/:class", h.UpdateRateLimitConfig)
}

func userID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, errors.NewValidationError("Invalid user id")
	}
	return id, nil
}

func (h *AdminHandler) GetQuotaStats(c *fiber.Ctx) error {
	stats, err := h.quotaService.GetQuotaStats(c.UserContext())
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, stats)
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	user, err := h.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	usage, err := h.quotaService.GetUserQuotaUsage(c.UserContext(), id, models.ParseRole(string(user.Role)))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, models.UserDetail{User: user, Quota: usage})
}

func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var req models.UserRoleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}
	if err := h.validator.Validate(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	if err := h.userService.SetRole(c.UserContext(), id, req.Role); err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse[any](c, nil)
}

func (h *AdminHandler) ResetUserQuota(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	// An empty body resets every quota type.
	var req models.QuotaResetRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
		}
	}
	if err := h.validator.Validate(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	if err := h.quotaService.ResetUserQuota(c.UserContext(), id, req.QuotaType); err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse[any](c, nil)
}

func (h *AdminHandler) IncreaseUserQuota(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var req models.QuotaIncreaseRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}
	if err := h.validator.Validate(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	if err := h.quotaService.IncreaseUserQuota(c.UserContext(), id, req.QuotaType, req.Amount); err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse[any](c, nil)
}

func (h *AdminHandler) GetRateLimitConfigs(c *fiber.Ctx) error {
	return pkg.SuccessResponse(c, h.rateLimitService.Configs())
}

func (h *AdminHandler) GetRateLimitStatus(c *fiber.Ctx) error {
	req := models.RateLimitResetRequest{
		Class: models.RateLimitClass(c.Query("class")),
		Key:   c.Query("key"),
	}
	if err := h.validator.Validate(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	status, err := h.rateLimitService.Status(c.UserContext(), req.Class, req.Key)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, status)
}

func (h *AdminHandler) ResetRateLimit(c *fiber.Ctx) error {
	var req models.RateLimitResetRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}
	if err := h.validator.Validate(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	if err := h.rateLimitService.Reset(c.UserContext(), req.Class, req.Key); err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse[any](c, nil)
}

// UpdateRateLimitConfig changes a class budget for this process. Omitted
// fields keep their current value.
func (h *AdminHandler) UpdateRateLimitConfig(c *fiber.Ctx) error {
	var req models.RateLimitConfig
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	updated, err := h.rateLimitService.UpdateConfig(models.RateLimitClass(c.Params("class")), req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, updated)
}
