package http

import (
	"net/http"

	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/service"
	"golang-options-monitor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AccountHandler handles HTTP requests for accounts.
type AccountHandler struct {
	accountService service.AccountService
	logger         *logger.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService service.AccountService, logger *logger.Logger) *AccountHandler {
	return &AccountHandler{accountService: accountService, logger: logger}
}

// RegisterRoutes registers the account routes to the Echo group.
func (h *AccountHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateAccount)
	g.GET("", h.GetAllAccounts)
	g.GET("/:id", h.GetAccountByID)
}

func (h *AccountHandler) CreateAccount(c echo.Context) error {
	var req dto.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	account, err := h.accountService.Create(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) GetAccountByID(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid account ID"})
	}

	account, err := h.accountService.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) GetAllAccounts(c echo.Context) error {
	accounts, err := h.accountService.List(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to list accounts", logger.ErrorField(err))
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, accounts)
}
