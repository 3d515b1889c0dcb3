package http

import (
	"net/http"

	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/service"
	"golang-options-monitor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RollHandler handles HTTP requests for roll economics and simulations.
type RollHandler struct {
	rollService service.RollService
	logger      *logger.Logger
}

// NewRollHandler creates a new RollHandler.
func NewRollHandler(rollService service.RollService, logger *logger.Logger) *RollHandler {
	return &RollHandler{rollService: rollService, logger: logger}
}

// RegisterRoutes registers the roll routes to the Echo group.
func (h *RollHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/calculate", h.Calculate)
	g.POST("/simulate", h.Simulate)
	g.GET("/analysis/:account_id", h.Analysis)
}

func (h *RollHandler) Calculate(c echo.Context) error {
	var req dto.RollCalculateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	economics, err := h.rollService.Calculate(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, economics)
}

func (h *RollHandler) Simulate(c echo.Context) error {
	var req dto.RollSimulateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	result, err := h.rollService.Simulate(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *RollHandler) Analysis(c echo.Context) error {
	accountID, err := parseIDParam(c, "account_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid account ID"})
	}

	entries, err := h.rollService.Analysis(c.Request().Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to build roll analysis", logger.ErrorField(err))
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}
