package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/temmy669/imprest-portal-back-up/internal/core/ports/services"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
	"github.com/temmy669/imprest-portal-back-up/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// reportingHandler handles spreadsheet export requests.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers the export routes. They sit alongside the
// listing routes and accept the same query parameters.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	rg.GET("/purchase-requests/export", h.exportPurchaseRequests)
	rg.GET("/reimbursements/export", h.exportReimbursements)
}

// exportPurchaseRequests godoc
// @Summary Export purchase requests
// @Description Renders the actor's role-scoped purchase request listing as an xlsx workbook
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Filter by status"
// @Param dateFrom query string false "Window start (YYYY-MM-DD)"
// @Param dateTo query string false "Window end (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /purchase-requests/export [get]
func (h *reportingHandler) exportPurchaseRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	query := dto.ListQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Invalid query parameters for export", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	workbook, filename, err := h.reportingService.ExportPurchaseRequests(c.Request.Context(), actor, query)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to export purchase requests")
		return
	}

	logger.Info("Purchase request export generated", slog.String("filename", filename), slog.Int("bytes", len(workbook)))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, workbook)
}

// exportReimbursements godoc
// @Summary Export reimbursements
// @Description Renders the actor's role-scoped reimbursement listing as an xlsx workbook
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Filter by area manager track status"
// @Param internalControlStatus query string false "Filter by internal control track status"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reimbursements/export [get]
func (h *reportingHandler) exportReimbursements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	query := dto.ReimbursementListQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Invalid query parameters for export", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	workbook, filename, err := h.reportingService.ExportReimbursements(c.Request.Context(), actor, query)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to export reimbursements")
		return
	}

	logger.Info("Reimbursement export generated", slog.String("filename", filename), slog.Int("bytes", len(workbook)))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, workbook)
}
