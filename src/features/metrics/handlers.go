package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler handles HTTP requests for the metrics feature.
type Handler struct {
	scrape fiber.Handler
}

// NewHandler creates a new metrics handler.
func NewHandler(m *Metrics) *Handler {
	return &Handler{
		scrape: adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})),
	}
}

// GetMetrics serves the Prometheus text exposition.
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	return h.scrape(c)
}
