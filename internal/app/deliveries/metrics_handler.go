package deliveries

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// MetricsHandler serves the Prometheus exposition. It registers nothing when
// metrics are disabled.
type MetricsHandler struct {
	handler http.Handler
}

func NewMetricsHandler(handler http.Handler) *MetricsHandler {
	return &MetricsHandler{handler: handler}
}

func (h *MetricsHandler) RegisterRoutes(router fiber.Router) {
	if h.handler == nil {
		return
	}
	router.Get("/metrics", adaptor.HTTPHandler(h.handler))
}
