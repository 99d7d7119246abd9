package api

import (
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/bobby-s-dev/weather-widget/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	widget   *services.Widget
	renderer *Renderer
	logger   *zap.Logger
}

func NewHandler(widget *services.Widget, renderer *Renderer, logger *zap.Logger) *Handler {
	return &Handler{
		widget:   widget,
		renderer: renderer,
		logger:   logger,
	}
}

type settingsRequest struct {
	ForecastDays    *int    `json:"forecast_days"`
	ShowHourly      *bool   `json:"show_hourly"`
	ShowForecast    *bool   `json:"show_forecast"`
	RefreshInterval *string `json:"refresh_interval"`
	Units           *string `json:"units"`
}

// GetWidget handles GET /api/v1/widget
func (h *Handler) GetWidget(c *fiber.Ctx) error {
	return c.JSON(h.renderer.Latest())
}

// Refresh handles POST /api/v1/widget/refresh. With ?async=true the run is
// queued and the current view is returned under 202.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	if c.QueryBool("async") {
		h.logger.Info("Background widget refresh requested")
		if err := h.widget.RefreshAsync(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusAccepted).JSON(h.renderer.Latest())
	}

	h.logger.Info("Manual widget refresh requested")
	return h.respond(c, h.widget.Refresh(c.UserContext()))
}

// Retry handles POST /api/v1/widget/retry
func (h *Handler) Retry(c *fiber.Ctx) error {
	h.logger.Info("Widget retry requested")
	return h.respond(c, h.widget.Retry(c.UserContext()))
}

// ToggleUnits handles POST /api/v1/widget/units/toggle
func (h *Handler) ToggleUnits(c *fiber.Ctx) error {
	return h.respond(c, h.widget.ToggleUnits(c.UserContext()))
}

// UpdateSettings handles PUT /api/v1/widget/settings
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid settings body",
		})
	}

	var interval time.Duration
	if req.RefreshInterval != nil {
		d, err := time.ParseDuration(*req.RefreshInterval)
		if err != nil || d <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "refresh_interval must be a positive duration",
			})
		}
		interval = d
	}
	var units models.Units
	if req.Units != nil {
		u, err := models.ParseUnits(*req.Units)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		units = u
	}

	if req.ShowHourly != nil {
		h.widget.SetShowHourly(*req.ShowHourly)
	}
	if req.ShowForecast != nil {
		h.widget.SetShowForecast(*req.ShowForecast)
	}
	if interval > 0 {
		if err := h.widget.SetRefreshInterval(interval); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	var err error
	if req.ForecastDays != nil {
		err = h.widget.SetForecastDays(c.UserContext(), *req.ForecastDays)
	}
	if units != "" && units != h.widget.Config().Units {
		if unitsErr := h.widget.SetUnits(c.UserContext(), units); unitsErr != nil {
			err = unitsErr
		}
	}

	h.logger.Info("Widget settings updated", zap.Any("config", h.widget.Config()))
	return h.respond(c, err)
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"renders":   h.renderer.Renders(),
		"widget":    h.widget.GetStatus(),
	})
}

// respond writes the latest view. A failed pipeline run still answers with
// the error view, under 502.
func (h *Handler) respond(c *fiber.Ctx, err error) error {
	if err != nil {
		h.logger.Warn("Widget action failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(h.renderer.Latest())
	}
	return c.JSON(h.renderer.Latest())
}

var startTime = time.Now()
