package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	portssvc "github.com/temmy669/imprest-portal-back-up/internal/core/ports/services"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
	"github.com/temmy669/imprest-portal-back-up/internal/middleware"
)

// receiptExtensions is the closed set of upload types accepted as receipts.
var receiptExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// reimbursementHandler handles HTTP requests related to reimbursements.
type reimbursementHandler struct {
	reimbursementService portssvc.ReimbursementSvcFacade
	notifier             portssvc.NotificationDispatcher
	uploadDir            string
}

// newReimbursementHandler creates a new reimbursementHandler.
func newReimbursementHandler(reimbursementService portssvc.ReimbursementSvcFacade, notifier portssvc.NotificationDispatcher, uploadDir string) *reimbursementHandler {
	return &reimbursementHandler{
		reimbursementService: reimbursementService,
		notifier:             notifier,
		uploadDir:            uploadDir,
	}
}

// registerReimbursementRoutes registers routes for the reimbursement workflow.
func registerReimbursementRoutes(rg *gin.RouterGroup, reimbursementService portssvc.ReimbursementSvcFacade, notifier portssvc.NotificationDispatcher, uploadDir string) {
	h := newReimbursementHandler(reimbursementService, notifier, uploadDir)

	reimbursements := rg.Group("/reimbursements")
	{
		reimbursements.POST("", h.createReimbursement)
		reimbursements.GET("", h.listReimbursements)
		reimbursements.POST("/disburse-bulk", h.bulkDisburse)
		reimbursements.GET("/:reimbursement_id", h.getReimbursement)
		reimbursements.POST("/:reimbursement_id/submit", h.submitReimbursement)
		reimbursements.PATCH("/:reimbursement_id/items", h.updateItems)
		reimbursements.POST("/:reimbursement_id/approve", h.approveReimbursement)
		reimbursements.POST("/:reimbursement_id/decline", h.declineReimbursement)
		reimbursements.POST("/:reimbursement_id/items/:item_id/approve", h.approveItem)
		reimbursements.POST("/:reimbursement_id/items/:item_id/decline", h.declineItem)
		reimbursements.POST("/:reimbursement_id/items/:item_id/receipt", h.uploadReceipt)
		reimbursements.POST("/:reimbursement_id/disburse", h.disburse)
	}
}

// createReimbursement godoc
// @Summary Create a reimbursement
// @Description Creates a reimbursement, optionally as a draft; purchase request references are resolved into links
// @Tags reimbursements
// @Accept json
// @Produce json
// @Param request body dto.CreateReimbursementRequest true "Reimbursement"
// @Success 201 {object} dto.ReimbursementResponse
// @Failure 400 {object} map[string]string "Invalid request, unknown reference or missing receipt"
// @Security BearerAuth
// @Router /reimbursements [post]
func (h *reimbursementHandler) createReimbursement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	createReq := dto.CreateReimbursementRequest{}
	if err := c.ShouldBindJSON(&createReq); err != nil {
		logger.Error("Failed to bind JSON for createReimbursement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	reimbursement, events, err := h.reimbursementService.CreateReimbursement(c.Request.Context(), actor, createReq)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create reimbursement")
		return
	}

	h.notifier.Dispatch(c.Request.Context(), events)
	logger.Info("Reimbursement created",
		slog.Int64("reimbursement_id", reimbursement.ReimbursementID),
		slog.Bool("is_draft", reimbursement.IsDraft))
	c.JSON(http.StatusCreated, dto.ToReimbursementResponse(reimbursement))
}

// listReimbursements godoc
// @Summary List reimbursements
// @Description Lists the actor's role-scoped reimbursements; Internal Control sees area-manager-approved requests only
// @Tags reimbursements
// @Produce json
// @Param status query string false "Filter by area manager track status"
// @Param internalControlStatus query string false "Filter by internal control track status"
// @Param includeDrafts query bool false "Include the requester's drafts"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListResponse[dto.ReimbursementResponse]
// @Security BearerAuth
// @Router /reimbursements [get]
func (h *reimbursementHandler) listReimbursements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	query := dto.ReimbursementListQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Invalid query parameters for listReimbursements", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.reimbursementService.ListReimbursements(c.Request.Context(), actor, query)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list reimbursements")
		return
	}

	c.JSON(http.StatusOK, page)
}

// getReimbursement godoc
// @Summary Get a reimbursement
// @Description Retrieves a reimbursement with items, comment trail and linked purchase requests
// @Tags reimbursements
// @Produce json
// @Param reimbursement_id path int true "Reimbursement ID"
// @Success 200 {object} dto.ReimbursementResponse
// @Failure 404 {object} map[string]string "Reimbursement not found"
// @Security BearerAuth
// @Router /reimbursements/{reimbursement_id} [get]
func (h *reimbursementHandler) getReimbursement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	reimbursementID, ok := pathID(c, "reimbursement_id")
	if !ok {
		return
	}

	reimbursement, err := h.reimbursementService.GetReimbursementByID(c.Request.Context(), actor, reimbursementID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve reimbursement")
		return
	}

	c.JSON(http.StatusOK, dto.ToReimbursementResponse(reimbursement))
}

// submitReimbursement godoc
// @Summary Submit a draft reimbursement
// @Description Finalizes a draft; every item requiring a receipt must carry one
// @Tags reimbursements
// @Produce json
// @Param reimbursement_id path int true "Reimbursement ID"
// @Success 200 {object} dto.ReimbursementResponse
// @Failure 400 {object} map[string]string "Missing receipts"
// @Security BearerAuth
// @Router /reimbursements/{reimbursement_id}/submit [post]
func (h *reimbursementHandler) submitReimbursement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	reimbursementID, ok := pathID(c, "reimbursement_id")
	if !ok {
		return
	}

	reimbursement, err := h.reimbursementService.Submit(c.Request.Context(), actor, reimbursementID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to submit reimbursement")
		return
	}

	logger.Info("Reimbursement submitted", slog.Int64("reimbursement_id", reimbursementID))
	c.JSON(http.StatusOK, dto.ToReimbursementResponse(reimbursement))
}

// updateItems godoc
// @Summary Edit reimbursement items
// @Description Edits items before disbursement; both approval tracks return to pending
// @Tags reimbursements
// @Accept json
// @Produce json
// @Param reimbursement_id path int true "Reimbursement ID"
// @Param request body dto.UpdateReimbursementRequest true "Item changes"
// @Success 200 {object} dto.ReimbursementResponse
// @Security BearerAuth
// @Router /reimbursements/{reimbursement_id}/items [patch]
func (h *reimbursementHandler) updateItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	reimbursementID, ok := pathID(c, "reimbursement_id")
	if !ok {
		return
	}

	updateReq := dto.UpdateReimbursementRequest{}
	if err := c.ShouldBindJSON(&updateReq); err != nil {
		logger.Error("Failed to bind JSON for updateItems", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	reimbursement, err := h.reimbursementService.UpdateItems(c.Request.Context(), actor, reimbursementID, updateReq)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update reimbursement items")
		return
	}

	logger.Info("Reimbursement items updated", slog.Int64("reimbursement_id", reimbursementID))
	c.JSON(http.StatusOK, dto.ToReimbursementResponse(reimbursement))
}

// approveReimbursement godoc
// @Summary Approve a reimbursement
// @Description Completes the approval track matching the actor's role
// @Tags reimbursements
// @Produce json
// @Param reimbursement_id path int true "Reimbursement ID"
// @Success 200 {object} dto.ReimbursementResponse
// @Failure 409 {object} map[string]string "Track already finalized or locked"
// @Security BearerAuth
// @Router /reimbursements/{reimbursement_id}/approve [post]
func (h *reimbursementHandler) approveReimbursement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	reimbursementID, ok := pathID(c, "reimbursement_id")
	if !ok {
		return
	}

	reimbursement, events, err := h.reimbursementService.Approve(c.Request.Context(), actor, reimbursementID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to approve reimbursement")
		return
	}

	h.notifier.Dispatch(c.Request.Context(), events)
	logger.Info("Reimbursement approved", slog.Int64("reimbursement_id", reimbursementID), slog.String("role", string(actor.Role)))
	c.JSON(http.StatusOK, dto.ToReimbursementResponse(reimbursement))
}

// declineReimbursement godoc
// @Summary Decline a reimbursement
// @Description Declines on the actor's track; an Internal Control decline re-opens the area manager track
// @Tags reimbursements
// @Accept json
// @Produce json
// @Param reimbursement_id path int true "Reimbursement ID"
// @Param request body dto.DeclineRequest true "Decline comment"
// @Success 200 {object} dto.ReimbursementResponse
// @Security BearerAuth
// @Router /reimbursements/{reimbursement_id}/decline [post]
func (h *reimbursementHandler) declineReimbursement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	reimbursementID, ok := pathID(c, "reimbursement_id")
	if !ok {
		return
	}

	declineReq := dto.DeclineRequest{}
	if err := c.ShouldBindJSON(&declineReq); err != nil {
		logger.Warn("Missing decline comment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A decline comment is required"})
		return
	}

	reimbursement, events, err := h.reimbursementService.Decline(c.Request.Context(), actor, reimbursementID, declineReq.Comment)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to decline reimbursement")
		return
	}

	h.notifier.Dispatch(c.Request.Context(), events)
	logger.Info("Reimbursement declined", slog.Int64("reimbursement_id", reimbursementID), slog.String("role", string(actor.Role)))
	c.JSON(http.StatusOK, dto.ToReimbursementResponse(reimbursement))
}

// approveItem godoc
// @Summary Approve a reimbursement item
// @Description Approves one item on the actor's track
// @Tags reimbursements
// @Produce json
// @Param reimbursement_id path int true "Reimbursement ID"
// @Param item_id path int true "Item ID"
// @Success 200 {object} dto.ReimbursementResponse
// @Security BearerAuth
// @Router /reimbursements/{reimbursement_id}/items/{item_id}/approve [post]
func (h *reimbursementHandler) approveItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	reimbursementID, ok := pathID(c, "reimbursement_id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	reimbursement, events, err := h.reimbursementService.ApproveItem(c.Request.Context(), actor, reimbursementID, itemID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to approve reimbursement item")
		return
	}

	h.notifier.Dispatch(c.Request.Context(), events)
	logger.Info("Reimbursement item approved", slog.Int64("reimbursement_id", reimbursementID), slog.Int64("item_id", itemID))
	c.JSON(http.StatusOK, dto.ToReimbursementResponse(reimbursement))
}

// declineItem godoc
// @Summary Decline a reimbursement item
// @Description Declines one item on the actor's track; a comment is mandatory
// @Tags reimbursements
// @Accept json
// @Produce json
// @Param reimbursement_id path int true "Reimbursement ID"
// @Param item_id path int true "Item ID"
// @Param request body dto.DeclineRequest true "Decline comment"
// @Success 200 {object} dto.ReimbursementResponse
// @Security BearerAuth
// @Router /reimbursements/{reimbursement_id}/items/{item_id}/decline [post]
func (h *reimbursementHandler) declineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	reimbursementID, ok := pathID(c, "reimbursement_id")
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

	reimbursement, events, err := h.reimbursementService.DeclineItem(c.Request.Context(), actor, reimbursementID, itemID, declineReq.Comment)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to decline reimbursement item")
		return
	}

	h.notifier.Dispatch(c.Request.Context(), events)
	logger.Info("Reimbursement item declined", slog.Int64("reimbursement_id", reimbursementID), slog.Int64("item_id", itemID))
	c.JSON(http.StatusOK, dto.ToReimbursementResponse(reimbursement))
}

// uploadReceipt godoc
// @Summary Upload a receipt for an item
// @Description Stores the uploaded file and attaches it to the item
// @Tags reimbursements
// @Accept multipart/form-data
// @Produce json
// @Param reimbursement_id path int true "Reimbursement ID"
// @Param item_id path int true "Item ID"
// @Param receipt formData file true "Receipt file (pdf, png or jpeg)"
// @Success 200 {object} dto.ReimbursementResponse
// @Failure 400 {object} map[string]string "Missing file or unsupported type"
// @Security BearerAuth
// @Router /reimbursements/{reimbursement_id}/items/{item_id}/receipt [post]
func (h *reimbursementHandler) uploadReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	reimbursementID, ok := pathID(c, "reimbursement_id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		logger.Warn("Receipt file missing from upload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A receipt file is required"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !receiptExtensions[ext] {
		logger.Warn("Unsupported receipt file type", slog.String("filename", file.Filename))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported receipt file type"})
		return
	}

	storedName := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, storedName)); err != nil {
		logger.Error("Failed to store receipt file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store receipt file"})
		return
	}

	reimbursement, err := h.reimbursementService.AttachReceipt(c.Request.Context(), actor, reimbursementID, itemID, storedName)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to attach receipt")
		return
	}

	logger.Info("Receipt attached",
		slog.Int64("reimbursement_id", reimbursementID),
		slog.Int64("item_id", itemID),
		slog.String("receipt", storedName))
	c.JSON(http.StatusOK, dto.ToReimbursementResponse(reimbursement))
}

// disburse godoc
// @Summary Disburse a reimbursement
// @Description Pays out a fully approved reimbursement exactly once from an active bank account
// @Tags reimbursements
// @Accept json
// @Produce json
// @Param reimbursement_id path int true "Reimbursement ID"
// @Param request body dto.DisburseRequest true "Payout bank and account"
// @Success 200 {object} dto.ReimbursementResponse
// @Failure 409 {object} map[string]string "Already disbursed or locked"
// @Security BearerAuth
// @Router /reimbursements/{reimbursement_id}/disburse [post]
func (h *reimbursementHandler) disburse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}
	reimbursementID, ok := pathID(c, "reimbursement_id")
	if !ok {
		return
	}

	disburseReq := dto.DisburseRequest{}
	if err := c.ShouldBindJSON(&disburseReq); err != nil {
		logger.Warn("Invalid disburse payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A payout bank and account are required"})
		return
	}

	reimbursement, events, err := h.reimbursementService.Disburse(c.Request.Context(), actor, reimbursementID, disburseReq)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to disburse reimbursement")
		return
	}

	h.notifier.Dispatch(c.Request.Context(), events)
	logger.Info("Reimbursement disbursed", slog.Int64("reimbursement_id", reimbursementID))
	c.JSON(http.StatusOK, dto.ToReimbursementResponse(reimbursement))
}

// bulkDisburse godoc
// @Summary Disburse several reimbursements
// @Description Pays out several reimbursements from one account; failures are reported per id and successes stand
// @Tags reimbursements
// @Accept json
// @Produce json
// @Param request body dto.BulkDisburseRequest true "Reimbursement ids and payout account"
// @Success 200 {object} map[string]any "Per-id outcome"
// @Security BearerAuth
// @Router /reimbursements/disburse-bulk [post]
func (h *reimbursementHandler) bulkDisburse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	bulkReq := dto.BulkDisburseRequest{}
	if err := c.ShouldBindJSON(&bulkReq); err != nil {
		logger.Warn("Invalid bulk disburse payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	results, events, err := h.reimbursementService.BulkDisburse(c.Request.Context(), actor, bulkReq)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to disburse reimbursements")
		return
	}

	h.notifier.Dispatch(c.Request.Context(), events)

	disbursed := make([]int64, 0, len(bulkReq.ReimbursementIDs))
	failed := make(map[string]string)
	for _, id := range bulkReq.ReimbursementIDs {
		if resErr, found := results[id]; found && resErr != nil {
			failed[strconv.FormatInt(id, 10)] = resErr.Error()
			continue
		}
		disbursed = append(disbursed, id)
	}

	logger.Info("Bulk disbursement processed",
		slog.Int("disbursed", len(disbursed)),
		slog.Int("failed", len(failed)))
	c.JSON(http.StatusOK, gin.H{"disbursed": disbursed, "failed": failed})
}
