package http

import (
	"net/http"

	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/service"
	"golang-options-monitor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RuleHandler handles HTTP requests for trigger rules.
type RuleHandler struct {
	ruleService service.RuleService
	logger      *logger.Logger
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleService service.RuleService, logger *logger.Logger) *RuleHandler {
	return &RuleHandler{ruleService: ruleService, logger: logger}
}

// RegisterRoutes registers the rule routes to the Echo group.
func (h *RuleHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateRule)
	g.GET("", h.GetRules)
	g.GET("/:id", h.GetRuleByID)
	g.PUT("/:id", h.UpdateRule)
	g.PATCH("/:id", h.UpdateRule)
	g.POST("/:id/toggle", h.ToggleRule)
	g.DELETE("/:id", h.DeleteRule)
}

func (h *RuleHandler) CreateRule(c echo.Context) error {
	var req dto.RulePayload
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	rule, err := h.ruleService.Create(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, rule)
}

func (h *RuleHandler) GetRules(c echo.Context) error {
	param := dto.GetRulesParam{
		AccountID:   uintQuery(c, "account_id"),
		AssetTicker: stringQuery(c, "ticker"),
		IsActive:    boolQuery(c, "is_active"),
	}

	rules, err := h.ruleService.List(c.Request().Context(), param)
	if err != nil {
		h.logger.Error("Failed to list rules", logger.ErrorField(err))
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rules)
}

func (h *RuleHandler) GetRuleByID(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid rule ID"})
	}

	rule, err := h.ruleService.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rule)
}

func (h *RuleHandler) UpdateRule(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid rule ID"})
	}

	var req dto.RulePayload
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	rule, err := h.ruleService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rule)
}

func (h *RuleHandler) ToggleRule(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid rule ID"})
	}

	rule, err := h.ruleService.Toggle(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rule)
}

func (h *RuleHandler) DeleteRule(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid rule ID"})
	}

	if err := h.ruleService.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
