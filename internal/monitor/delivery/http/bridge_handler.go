package http

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"golang-options-monitor/internal/monitor/config"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/service"
	"golang-options-monitor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// BridgeHandler handles the terminal bridge ingestion endpoints. Every route
// requires the bridge bearer token; an optional IP allowlist narrows it
// further.
type BridgeHandler struct {
	bridgeService service.BridgeService
	cfg           config.Bridge
	logger        *logger.Logger
}

// NewBridgeHandler creates a new BridgeHandler.
func NewBridgeHandler(bridgeService service.BridgeService, cfg config.Bridge, logger *logger.Logger) *BridgeHandler {
	return &BridgeHandler{bridgeService: bridgeService, cfg: cfg, logger: logger}
}

// RegisterRoutes registers the bridge routes to the Echo group.
func (h *BridgeHandler) RegisterRoutes(g *echo.Group) {
	g.Use(h.authMiddleware)
	g.POST("/heartbeat", h.Heartbeat)
	g.POST("/quotes", h.IngestQuotes)
	g.GET("/status", h.Status)
}

func (h *BridgeHandler) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if h.cfg.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.Token)) != 1 {
			h.logger.Warn("Bridge request with invalid token",
				logger.StringField("remote_ip", c.RealIP()))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid bridge token"})
		}

		if len(h.cfg.AllowedIPs) > 0 && !h.ipAllowed(c.RealIP()) {
			h.logger.Warn("Bridge request from disallowed IP",
				logger.StringField("remote_ip", c.RealIP()))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "IP not allowed"})
		}
		return next(c)
	}
}

func (h *BridgeHandler) ipAllowed(remoteIP string) bool {
	ip := net.ParseIP(remoteIP)
	for _, allowed := range h.cfg.AllowedIPs {
		if allowed == remoteIP {
			return true
		}
		if _, cidr, err := net.ParseCIDR(allowed); err == nil && ip != nil && cidr.Contains(ip) {
			return true
		}
	}
	return false
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func (h *BridgeHandler) Heartbeat(c echo.Context) error {
	var req dto.HeartbeatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	h.bridgeService.Heartbeat(c.Request().Context(), &req)
	return c.NoContent(http.StatusNoContent)
}

func (h *BridgeHandler) IngestQuotes(c echo.Context) error {
	var req dto.BridgeQuotesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	accepted := h.bridgeService.IngestQuotes(c.Request().Context(), &req)
	return c.JSON(http.StatusOK, dto.BridgeQuotesResponse{Accepted: accepted})
}

func (h *BridgeHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.bridgeService.Status(c.Request().Context()))
}
