package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	portssvc "github.com/temmy669/imprest-portal-back-up/internal/core/ports/services"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
	"github.com/temmy669/imprest-portal-back-up/internal/middleware"
)

// bankHandler handles HTTP requests related to disbursement banks and accounts.
type bankHandler struct {
	bankService portssvc.BankSvcFacade
}

// newBankHandler creates a new bankHandler.
func newBankHandler(bankService portssvc.BankSvcFacade) *bankHandler {
	return &bankHandler{
		bankService: bankService,
	}
}

// registerBankRoutes registers routes for payout bank administration.
func registerBankRoutes(rg *gin.RouterGroup, bankService portssvc.BankSvcFacade) {
	h := newBankHandler(bankService)

	banks := rg.Group("/banks")
	{
		banks.GET("", h.listBanks)
		banks.GET("/:bank_id", h.getBank)
	}

	treasury := rg.Group("/banks", middleware.RequireRoles(domain.RoleTreasurer))
	{
		treasury.POST("", h.createBank)
		treasury.POST("/accounts", h.createAccount)
		treasury.PATCH("/:bank_id/status", h.toggleBankStatus)
		treasury.PATCH("/accounts/:account_id/status", h.toggleAccountStatus)
	}
}

// createBank godoc
// @Summary Create a bank
// @Description Registers a disbursement bank. Treasurer or admin only
// @Tags banks
// @Accept json
// @Produce json
// @Param request body dto.CreateBankRequest true "Bank"
// @Success 201 {object} dto.BankResponse
// @Failure 409 {object} map[string]string "Short code already exists"
// @Security BearerAuth
// @Router /banks [post]
func (h *bankHandler) createBank(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	createReq := dto.CreateBankRequest{}
	if err := c.ShouldBindJSON(&createReq); err != nil {
		logger.Error("Failed to bind JSON for createBank", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	bank, err := h.bankService.CreateBank(c.Request.Context(), actor, createReq)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create bank")
		return
	}

	logger.Info("Bank created", slog.String("bank_id", bank.BankID), slog.String("short_code", bank.ShortCode))
	c.JSON(http.StatusCreated, dto.ToBankResponse(*bank, nil))
}

// createAccount godoc
// @Summary Create a payout account
// @Description Registers a payout account under an existing bank. Treasurer or admin only
// @Tags banks
// @Accept json
// @Produce json
// @Param request body dto.CreateAccountRequest true "Account"
// @Success 201 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Bank not found"
// @Security BearerAuth
// @Router /banks/accounts [post]
func (h *bankHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	createReq := dto.CreateAccountRequest{}
	if err := c.ShouldBindJSON(&createReq); err != nil {
		logger.Error("Failed to bind JSON for createAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	account, err := h.bankService.CreateAccount(c.Request.Context(), actor, createReq)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Payout account created", slog.String("account_id", account.AccountID), slog.String("bank_id", account.BankID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(*account))
}

// listBanks godoc
// @Summary List banks
// @Description Lists banks with their payout accounts; activeOnly limits the result to usable payout targets
// @Tags banks
// @Produce json
// @Param activeOnly query bool false "Only active banks and accounts"
// @Success 200 {array} dto.BankResponse
// @Security BearerAuth
// @Router /banks [get]
func (h *bankHandler) listBanks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	activeOnly := c.Query("activeOnly") == "true"

	banks, err := h.bankService.ListBanks(c.Request.Context(), activeOnly)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list banks")
		return
	}

	c.JSON(http.StatusOK, banks)
}

// getBank godoc
// @Summary Get a bank
// @Description Retrieves a bank with its payout accounts
// @Tags banks
// @Produce json
// @Param bank_id path string true "Bank ID"
// @Success 200 {object} dto.BankResponse
// @Failure 404 {object} map[string]string "Bank not found"
// @Security BearerAuth
// @Router /banks/{bank_id} [get]
func (h *bankHandler) getBank(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	bankID := c.Param("bank_id")
	if bankID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bank_id in path"})
		return
	}

	bank, err := h.bankService.GetBankByID(c.Request.Context(), bankID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve bank")
		return
	}

	c.JSON(http.StatusOK, bank)
}

// toggleBankStatus godoc
// @Summary Toggle a bank's status
// @Description Flips a bank between active and inactive. Treasurer or admin only
// @Tags banks
// @Produce json
// @Param bank_id path string true "Bank ID"
// @Success 200 {object} dto.BankResponse
// @Security BearerAuth
// @Router /banks/{bank_id}/status [patch]
func (h *bankHandler) toggleBankStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	bankID := c.Param("bank_id")
	bank, err := h.bankService.ToggleBankStatus(c.Request.Context(), actor, bankID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to toggle bank status")
		return
	}

	logger.Info("Bank status toggled", slog.String("bank_id", bankID), slog.String("status", string(bank.Status)))
	c.JSON(http.StatusOK, dto.ToBankResponse(*bank, nil))
}

// toggleAccountStatus godoc
// @Summary Toggle a payout account's status
// @Description Flips an account between active and inactive. Treasurer or admin only
// @Tags banks
// @Produce json
// @Param account_id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Security BearerAuth
// @Router /banks/accounts/{account_id}/status [patch]
func (h *bankHandler) toggleAccountStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	accountID := c.Param("account_id")
	account, err := h.bankService.ToggleAccountStatus(c.Request.Context(), actor, accountID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to toggle account status")
		return
	}

	logger.Info("Payout account status toggled", slog.String("account_id", accountID), slog.String("status", string(account.Status)))
	c.JSON(http.StatusOK, dto.ToAccountResponse(*account))
}
