package http

import (
	"net/http"

	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/service"
	"golang-options-monitor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AssetHandler handles HTTP requests for underlying assets.
type AssetHandler struct {
	assetService service.AssetService
	logger       *logger.Logger
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService service.AssetService, logger *logger.Logger) *AssetHandler {
	return &AssetHandler{assetService: assetService, logger: logger}
}

// RegisterRoutes registers the asset routes to the Echo group.
func (h *AssetHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateAsset)
	g.GET("", h.GetAllAssets)
}

func (h *AssetHandler) CreateAsset(c echo.Context) error {
	var req dto.CreateAssetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	asset, err := h.assetService.Create(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, asset)
}

func (h *AssetHandler) GetAllAssets(c echo.Context) error {
	assets, err := h.assetService.List(c.Request().Context(), uintQuery(c, "account_id"))
	if err != nil {
		h.logger.Error("Failed to list assets", logger.ErrorField(err))
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, assets)
}
