package http

import (
	"net/http"

	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/service"
	"golang-options-monitor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// OptionHandler handles HTTP requests for option positions.
type OptionHandler struct {
	optionService service.OptionService
	logger        *logger.Logger
}

// NewOptionHandler creates a new OptionHandler.
func NewOptionHandler(optionService service.OptionService, logger *logger.Logger) *OptionHandler {
	return &OptionHandler{optionService: optionService, logger: logger}
}

// RegisterRoutes registers the position routes to the Echo group.
func (h *OptionHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.OpenPosition)
	g.GET("", h.GetPositions)
	g.GET("/:id", h.GetPositionByID)
	g.POST("/:id/close", h.ClosePosition)
	// The roll endpoint keeps the legacy "retry" path segment used by
	// existing terminal-side automation.
	g.POST("/:id/retry", h.RollPosition)
}

func (h *OptionHandler) OpenPosition(c echo.Context) error {
	var req dto.CreatePositionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	position, err := h.optionService.Open(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, position)
}

func (h *OptionHandler) GetPositions(c echo.Context) error {
	param := dto.GetPositionsParam{
		AccountID:   uintQuery(c, "account_id"),
		AssetID:     uintQuery(c, "asset_id"),
		AssetTicker: stringQuery(c, "ticker"),
		Status:      stringQuery(c, "status"),
	}

	positions, err := h.optionService.List(c.Request().Context(), param)
	if err != nil {
		h.logger.Error("Failed to list positions", logger.ErrorField(err))
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, positions)
}

func (h *OptionHandler) GetPositionByID(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid position ID"})
	}

	position, err := h.optionService.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, position)
}

func (h *OptionHandler) ClosePosition(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid position ID"})
	}

	var req dto.ClosePositionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	position, err := h.optionService.Close(c.Request().Context(), id, req.ClosingPremium)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, position)
}

func (h *OptionHandler) RollPosition(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid position ID"})
	}

	var req dto.RollPositionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	replacement, err := h.optionService.Roll(c.Request().Context(), id, &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, replacement)
}
