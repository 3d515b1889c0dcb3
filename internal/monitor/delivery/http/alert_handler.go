package http

import (
	"net/http"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/service"
	"golang-options-monitor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AlertHandler handles HTTP requests for alerts.
type AlertHandler struct {
	alertService service.AlertService
	logger       *logger.Logger
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService service.AlertService, logger *logger.Logger) *AlertHandler {
	return &AlertHandler{alertService: alertService, logger: logger}
}

// RegisterRoutes registers the alert routes to the Echo group.
func (h *AlertHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetAlertHistory)
	g.GET("/pending", h.GetPendingAlerts)
	g.GET("/history", h.GetAlertHistory)
	g.GET("/:id", h.GetAlertByID)
	g.POST("/:id/ack", h.AcknowledgeAlert)
}

func (h *AlertHandler) GetPendingAlerts(c echo.Context) error {
	alerts, err := h.alertService.ListByStatus(c.Request().Context(), entity.AlertStatusPending, intQuery(c, "limit", 100))
	if err != nil {
		h.logger.Error("Failed to list pending alerts", logger.ErrorField(err))
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *AlertHandler) GetAlertHistory(c echo.Context) error {
	alerts, err := h.alertService.History(c.Request().Context(), uintQuery(c, "account_id"), intQuery(c, "limit", 100))
	if err != nil {
		h.logger.Error("Failed to list alert history", logger.ErrorField(err))
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *AlertHandler) GetAlertByID(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid alert ID"})
	}

	alert, err := h.alertService.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, alert)
}

func (h *AlertHandler) AcknowledgeAlert(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid alert ID"})
	}

	if err := h.alertService.Acknowledge(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
