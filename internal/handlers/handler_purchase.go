package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/temmy669/imprest-portal-back-up/internal/core/ports/services"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
	"github.com/temmy669/imprest-portal-back-up/internal/middleware"
)

// purchaseHandler handles HTTP requests related to purchase requests.
type purchaseHandler struct {
	purchaseService portssvc.PurchaseRequestSvcFacade
	notifier        portssvc.NotificationDispatcher
}

// newPurchaseHandler creates a new purchaseHandler.
func newPurchaseHandler(purchaseService portssvc.PurchaseRequestSvcFacade, notifier portssvc.NotificationDispatcher) *purchaseHandler {
	return &purchaseHandler{
		purchaseService: purchaseService,
		notifier:        notifier,
	}
}

// registerPurchaseRoutes registers routes for the purchase request workflow.
func registerPurchaseRoutes(rg *gin.RouterGroup, purchaseService portssvc.PurchaseRequestSvcFacade, notifier portssvc.NotificationDispatcher) {
	h := newPurchaseHandler(purchaseService, notifier)

	requests := rg.Group("/purchase-requests")
	{
		requests.POST("", h.createRequest)
		requests.GET("", h.listRequests)
		requests.GET("/approved-references", h.listApprovedReferences)
		requests.GET("/:request_id", h.getRequest)
		requests.PATCH("/:request_id/items", h.updateItems)
		requests.POST("/:request_id/approve", h.approveRequest)
		requests.POST("/:request_id/decline", h.declineRequest)
		requests.POST("/:request_id/items/:item_id/approve", h.approveItem)
		requests.POST("/:request_id/items/:item_id/decline", h.declineItem)
	}
}

// createRequest godoc
// @Summary Create a purchase request
// @Description Creates a pending purchase request with its expense items
// @Tags purchase-requests
// @Accept json
// @Produce json
// @Param request body dto.CreatePurchaseRequestRequest true "Purchase request"
// @Success 201 {object} dto.PurchaseRequestResponse
// @Failure 400 {object} map[string]string "Invalid request format or item over threshold"
// @Failure 403 {object} map[string]string "Store outside the actor's scope"
// @Security BearerAuth
// @Router /purchase-requests [post]
func (h *purchaseHandler) createRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	createReq := dto.CreatePurchaseRequestRequest{}
	if err := c.ShouldBindJSON(&createReq); err != nil {
		logger.Error("Failed to bind JSON for createRequest", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	request, events, err := h.purchaseService.CreateRequest(c.Request.Context(), actor, createReq)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create purchase request")
		return
	}

	h.notifier.Dispatch(c.Request.Context(), events)
	logger.Info("Purchase request created", slog.Int64("request_id", request.RequestID))
	c.JSON(http.StatusCreated, dto.ToPurchaseRequestResponse(request))
}

// listRequests godoc
// @Summary List purchase requests
// @Description Lists the actor's role-scoped purchase requests with dashboard status counts
// @Tags purchase-requests
// @Produce json
// @Param status query string false "Filter by status"
// @Param storeID query int false "Filter by store"
// @Param dateFrom query string false "Window start (YYYY-MM-DD)"
// @Param dateTo query string false "Window end (YYYY-MM-DD)"
// @Param search query string false "PR-XXXX reference or item name fragment"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListResponse[dto.PurchaseRequestResponse]
// @Security BearerAuth
// @Router /purchase-requests [get]
func (h *purchaseHandler) listRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	query := dto.ListQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Invalid query parameters for listRequests", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.purchaseService.ListRequests(c.Request.Context(), actor, query)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list purchase requests")
		return
	}

	c.JSON(http.StatusOK, page)
}

// listApprovedReferences godoc
// @Summary List approved requests for referencing
// @Description Lists the actor's approved, voucher-bearing requests for use as reimbursement references
// @Tags purchase-requests
// @Produce json
// @Success 200 {array} dto.ApprovedPurchaseRequestResponse
// @Security BearerAuth
// @Router /purchase-requests/approved-references [get]
func (h *purchaseHandler) listApprovedReferences(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	refs, err := h.purchaseService.ListApprovedForReferencing(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list approved references")
		return
	}

	c.JSON(http.StatusOK, refs)
}

// getRequest godoc
// @Summary Get a purchase request
// @Description Retrieves a purchase request with its items and comment trail
// @Tags purchase-requests
// @Produce json
// @Param request_id path int true "Request ID"
// @Success 200 {object} dto.PurchaseRequestResponse
// @Failure 404 {object} map[string]string "Request not found"
// @Security BearerAuth
// @Router /purchase-requests/{request_id} [get]
func (h *purchaseHandler) getRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}

	request, err := h.purchaseService.GetRequestByID(c.Request.Context(), actor, requestID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve purchase request")
		return
	}

	c.JSON(http.StatusOK, dto.ToPurchaseRequestResponse(request))
}

// updateItems godoc
// @Summary Edit purchase request items
// @Description Edits items before final approval; touched items and the request return to pending
// @Tags purchase-requests
// @Accept json
// @Produce json
// @Param request_id path int true "Request ID"
// @Param request body dto.UpdatePurchaseRequestRequest true "Item changes"
// @Success 200 {object} dto.PurchaseRequestResponse
// @Failure 409 {object} map[string]string "Request already finalized or locked"
// @Security BearerAuth
// @Router /purchase-requests/{request_id}/items [patch]
func (h *purchaseHandler) updateItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}

	updateReq := dto.UpdatePurchaseRequestRequest{}
	if err := c.ShouldBindJSON(&updateReq); err != nil {
		logger.Error("Failed to bind JSON for updateItems", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	request, err := h.purchaseService.UpdateItems(c.Request.Context(), actor, requestID, updateReq)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update purchase request items")
		return
	}

	logger.Info("Purchase request items updated", slog.Int64("request_id", requestID))
	c.JSON(http.StatusOK, dto.ToPurchaseRequestResponse(request))
}

// approveRequest godoc
// @Summary Approve a purchase request
// @Description Approves the whole request and assigns its payment voucher
// @Tags purchase-requests
// @Produce json
// @Param request_id path int true "Request ID"
// @Success 200 {object} dto.PurchaseRequestResponse
// @Failure 409 {object} map[string]string "Already finalized or locked by a concurrent operation"
// @Security BearerAuth
// @Router /purchase-requests/{request_id}/approve [post]
func (h *purchaseHandler) approveRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}

	request, events, err := h.purchaseService.Approve(c.Request.Context(), actor, requestID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to approve purchase request")
		return
	}

	h.notifier.Dispatch(c.Request.Context(), events)
	logger.Info("Purchase request approved", slog.Int64("request_id", requestID), slog.String("voucher_id", request.VoucherID))
	c.JSON(http.StatusOK, dto.ToPurchaseRequestResponse(request))
}

// declineRequest godoc
// @Summary Decline a purchase request
// @Description Declines the whole request; a comment is mandatory
// @Tags purchase-requests
// @Accept json
// @Produce json
// @Param request_id path int true "Request ID"
// @Param request body dto.DeclineRequest true "Decline comment"
// @Success 200 {object} dto.PurchaseRequestResponse
// @Security BearerAuth
// @Router /purchase-requests/{request_id}/decline [post]
func (h *purchaseHandler) declineRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}

	declineReq := dto.DeclineRequest{}
	if err := c.ShouldBindJSON(&declineReq); err != nil {
		logger.Warn("Missing decline comment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A decline comment is required"})
		return
	}

	request, events, err := h.purchaseService.Decline(c.Request.Context(), actor, requestID, declineReq.Comment)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to decline purchase request")
		return
	}

	h.notifier.Dispatch(c.Request.Context(), events)
	logger.Info("Purchase request declined", slog.Int64("request_id", requestID))
	c.JSON(http.StatusOK, dto.ToPurchaseRequestResponse(request))
}

// approveItem godoc
// @Summary Approve a purchase request item
// @Description Approves one item; when every item is approved the request finalizes
// @Tags purchase-requests
// @Produce json
// @Param request_id path int true "Request ID"
// @Param item_id path int true "Item ID"
// @Success 200 {object} dto.PurchaseRequestResponse
// @Security BearerAuth
// @Router /purchase-requests/{request_id}/items/{item_id}/approve [post]
func (h *purchaseHandler) approveItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	request, events, err := h.purchaseService.ApproveItem(c.Request.Context(), actor, requestID, itemID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to approve purchase request item")
		return
	}

	h.notifier.Dispatch(c.Request.Context(), events)
	logger.Info("Purchase request item approved", slog.Int64("request_id", requestID), slog.Int64("item_id", itemID))
	c.JSON(http.StatusOK, dto.ToPurchaseRequestResponse(request))
}

// declineItem godoc
// @Summary Decline a purchase request item
// @Description Declines one item, which declines the whole request; a comment is mandatory
// @Tags purchase-requests
// @Accept json
// @Produce json
// @Param request_id path int true "Request ID"
// @Param item_id path int true "Item ID"
// @Param request body dto.DeclineRequest true "Decline comment"
// @Success 200 {object} dto.PurchaseRequestResponse
// @Security BearerAuth
// @Router /purchase-requests/{request_id}/items/{item_id}/decline [post]
func (h *purchaseHandler) declineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	declineReq := dto.DeclineRequest{}
	if err := c.ShouldBindJSON(&declineReq); err != nil {
		logger.Warn("Missing decline comment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A decline comment is required"})
		return
	}

	request, events, err := h.purchaseService.DeclineItem(c.Request.Context(), actor, requestID, itemID, declineReq.Comment)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to decline purchase request item")
		return
	}

	h.notifier.Dispatch(c.Request.Context(), events)
	logger.Info("Purchase request item declined", slog.Int64("request_id", requestID), slog.Int64("item_id", itemID))
	c.JSON(http.StatusOK, dto.ToPurchaseRequestResponse(request))
}
