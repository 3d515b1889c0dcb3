package http

import (
	"net/http"

	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/service"
	"golang-options-monitor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NotificationHandler handles manual notification requests.
type NotificationHandler struct {
	notificationService service.NotificationService
	logger              *logger.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService service.NotificationService, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

// RegisterRoutes registers the notification routes to the Echo group.
func (h *NotificationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/send", h.Send)
	g.POST("/test", h.SendTest)
}

func (h *NotificationHandler) Send(c echo.Context) error {
	var req dto.SendNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	alert, err := h.notificationService.Send(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, alert)
}

func (h *NotificationHandler) SendTest(c echo.Context) error {
	var req dto.SendNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	alert, err := h.notificationService.SendTest(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, alert)
}
