package deliveries

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/hypergiga-core/internal/app/dispatch"
	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"github.com/safatanc/hypergiga-core/internal/app/middlewares"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/internal/app/pkg"
	"github.com/safatanc/hypergiga-core/internal/infrastructures"
)

// UpdateHandler accepts inbound chat events from the transport and answers
// with the messages to send back.
type UpdateHandler struct {
	pipeline            *dispatch.Pipeline
	validator           *infrastructures.Validator
	apiKeyMiddleware    *middlewares.APIKeyMiddleware
	rateLimitMiddleware *middlewares.RateLimitMiddleware
}

func NewUpdateHandler(pipeline *dispatch.Pipeline, validator *infrastructures.Validator, apiKeyMiddleware *middlewares.APIKeyMiddleware, rateLimitMiddleware *middlewares.RateLimitMiddleware) *UpdateHandler {
	return &UpdateHandler{
		pipeline:            pipeline,
		validator:           validator,
		apiKeyMiddleware:    apiKeyMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (h *UpdateHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/updates",
		h.rateLimitMiddleware.LimitByIP(middlewares.IngestLimit),
		h.apiKeyMiddleware.AuthWebhook,
		h.HandleUpdate,
	)
}

func (h *UpdateHandler) HandleUpdate(c *fiber.Ctx) error {
	var event models.Event
	if err := c.BodyParser(&event); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}
	if err := h.validator.Validate(&event); err != nil {
		return pkg.ErrorResponse(c, err)
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}

	return pkg.SuccessResponse(c, h.pipeline.Handle(c.UserContext(), &event))
}
