package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/helpdesk-service/internal/api/dto"
	"github.com/deskline/helpdesk-service/internal/auth"
	"github.com/deskline/helpdesk-service/internal/service"
)

// DashboardHandler serves ticket aggregates.
type DashboardHandler struct {
	metrics *service.MetricsService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(metricsService *service.MetricsService) *DashboardHandler {
	return &DashboardHandler{metrics: metricsService}
}

// Metrics GET /api/dashboard/metrics.
func (h *DashboardHandler) Metrics(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	summary, err := h.metrics.Summary(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMetricsResponse(summary)})
}

// Timeline GET /api/dashboard/timeline.
func (h *DashboardHandler) Timeline(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	points, err := h.metrics.Timeline(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTimelineResponse(points)})
}

// Categories GET /api/dashboard/categories.
func (h *DashboardHandler) Categories(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	counts, err := h.metrics.Categories(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResponse(counts)})
}

// Agents GET /api/dashboard/agents.
func (h *DashboardHandler) Agents(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	rows, err := h.metrics.AgentPerformance(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentPerformanceResponse(rows)})
}
