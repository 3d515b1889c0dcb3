package http

import (
	"net/http"
	"strings"

	"golang-options-monitor/internal/monitor/repository"
	"golang-options-monitor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketHandler exposes the latest quotes held in the quote store.
type MarketHandler struct {
	quoteStore repository.QuoteStore
	logger     *logger.Logger
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(quoteStore repository.QuoteStore, logger *logger.Logger) *MarketHandler {
	return &MarketHandler{quoteStore: quoteStore, logger: logger}
}

// RegisterRoutes registers the market data routes to the Echo group.
func (h *MarketHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/quote/:symbol", h.GetQuote)
	g.GET("/symbols", h.GetSymbols)
}

func (h *MarketHandler) GetQuote(c echo.Context) error {
	symbol := strings.TrimSpace(c.Param("symbol"))
	quote, err := h.quoteStore.Latest(c.Request().Context(), symbol)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

func (h *MarketHandler) GetSymbols(c echo.Context) error {
	return c.JSON(http.StatusOK, h.quoteStore.Symbols())
}
