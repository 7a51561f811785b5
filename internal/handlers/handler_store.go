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

// storeHandler handles HTTP requests related to stores.
type storeHandler struct {
	storeService portssvc.StoreSvcFacade
}

// newStoreHandler creates a new storeHandler.
func newStoreHandler(storeService portssvc.StoreSvcFacade) *storeHandler {
	return &storeHandler{
		storeService: storeService,
	}
}

// registerStoreRoutes registers routes for store administration and lookups.
func registerStoreRoutes(rg *gin.RouterGroup, storeService portssvc.StoreSvcFacade) {
	h := newStoreHandler(storeService)

	stores := rg.Group("/stores")
	{
		stores.GET("", h.listStores)
		stores.GET("/:store_id", h.getStore)
		stores.GET("/:store_id/balance", h.getStoreBalance)
	}

	adminOnly := rg.Group("/stores", middleware.RequireRoles(domain.RoleAdmin))
	{
		adminOnly.POST("", h.createStore)
		adminOnly.PATCH("/:store_id", h.updateStore)
		adminOnly.GET("/:store_id/budget-history", h.listBudgetHistory)
	}
}

// createStore godoc
// @Summary Create a store
// @Description Registers a retail location with its imprest budget. Admin only
// @Tags stores
// @Accept json
// @Produce json
// @Param request body dto.CreateStoreRequest true "Store"
// @Success 201 {object} dto.StoreResponse
// @Failure 409 {object} map[string]string "Store code already exists"
// @Security BearerAuth
// @Router /stores [post]
func (h *storeHandler) createStore(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	createReq := dto.CreateStoreRequest{}
	if err := c.ShouldBindJSON(&createReq); err != nil {
		logger.Error("Failed to bind JSON for createStore", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	store, err := h.storeService.CreateStore(c.Request.Context(), actor, createReq)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create store")
		return
	}

	logger.Info("Store created", slog.Int64("store_id", store.StoreID), slog.String("code", store.Code))
	c.JSON(http.StatusCreated, dto.ToStoreResponse(*store, store.Budget))
}

// updateStore godoc
// @Summary Update a store
// @Description Updates store attributes; budget changes are recorded in the budget history. Admin only
// @Tags stores
// @Accept json
// @Produce json
// @Param store_id path int true "Store ID"
// @Param request body dto.UpdateStoreRequest true "Changes"
// @Success 200 {object} dto.StoreResponse
// @Security BearerAuth
// @Router /stores/{store_id} [patch]
func (h *storeHandler) updateStore(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	storeID, ok := pathID(c, "store_id")
	if !ok {
		return
	}

	updateReq := dto.UpdateStoreRequest{}
	if err := c.ShouldBindJSON(&updateReq); err != nil {
		logger.Error("Failed to bind JSON for updateStore", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	store, err := h.storeService.UpdateStore(c.Request.Context(), actor, storeID, updateReq)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update store")
		return
	}

	balance, err := h.storeService.GetStoreBalance(c.Request.Context(), storeID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute store balance")
		return
	}

	logger.Info("Store updated", slog.Int64("store_id", storeID))
	c.JSON(http.StatusOK, dto.ToStoreResponse(*store, balance))
}

// listStores godoc
// @Summary List stores
// @Description Lists the stores visible to the actor with derived imprest balances
// @Tags stores
// @Produce json
// @Success 200 {array} dto.StoreResponse
// @Security BearerAuth
// @Router /stores [get]
func (h *storeHandler) listStores(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	stores, err := h.storeService.ListStores(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list stores")
		return
	}

	c.JSON(http.StatusOK, stores)
}

// getStore godoc
// @Summary Get a store
// @Description Retrieves a store together with its derived imprest balance
// @Tags stores
// @Produce json
// @Param store_id path int true "Store ID"
// @Success 200 {object} dto.StoreResponse
// @Failure 404 {object} map[string]string "Store not found"
// @Security BearerAuth
// @Router /stores/{store_id} [get]
func (h *storeHandler) getStore(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	storeID, ok := pathID(c, "store_id")
	if !ok {
		return
	}

	store, err := h.storeService.GetStoreByID(c.Request.Context(), actor, storeID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve store")
		return
	}

	c.JSON(http.StatusOK, store)
}

// getStoreBalance godoc
// @Summary Get a store's imprest balance
// @Description Returns budget minus fully approved reimbursement totals
// @Tags stores
// @Produce json
// @Param store_id path int true "Store ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /stores/{store_id}/balance [get]
func (h *storeHandler) getStoreBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	storeID, ok := pathID(c, "store_id")
	if !ok {
		return
	}

	if !actor.CanActOnStore(storeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "store outside the actor's scope"})
		return
	}

	balance, err := h.storeService.GetStoreBalance(c.Request.Context(), storeID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute store balance")
		return
	}

	c.JSON(http.StatusOK, gin.H{"storeID": storeID, "balance": balance})
}

// listBudgetHistory godoc
// @Summary List a store's budget history
// @Description Retrieves the audit trail of budget changes. Admin only
// @Tags stores
// @Produce json
// @Param store_id path int true "Store ID"
// @Success 200 {array} dto.BudgetChangeResponse
// @Security BearerAuth
// @Router /stores/{store_id}/budget-history [get]
func (h *storeHandler) listBudgetHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	storeID, ok := pathID(c, "store_id")
	if !ok {
		return
	}

	history, err := h.storeService.ListBudgetHistory(c.Request.Context(), actor, storeID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list budget history")
		return
	}

	c.JSON(http.StatusOK, history)
}
