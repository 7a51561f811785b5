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

// limitHandler handles HTTP requests for the purchase request threshold.
type limitHandler struct {
	limitService portssvc.LimitSvcFacade
}

// newLimitHandler creates a new limitHandler.
func newLimitHandler(limitService portssvc.LimitSvcFacade) *limitHandler {
	return &limitHandler{
		limitService: limitService,
	}
}

// registerLimitRoutes registers routes for the global threshold configuration.
func registerLimitRoutes(rg *gin.RouterGroup, limitService portssvc.LimitSvcFacade) {
	h := newLimitHandler(limitService)

	limit := rg.Group("/limit")
	{
		limit.GET("", h.getLimit)
		limit.PUT("", middleware.RequireRoles(domain.RoleAdmin), h.updateLimit)
	}
}

// getLimit godoc
// @Summary Get the purchase request threshold
// @Description Returns the per-item price ceiling; the documented default applies when none is configured
// @Tags limit
// @Produce json
// @Success 200 {object} dto.LimitResponse
// @Security BearerAuth
// @Router /limit [get]
func (h *limitHandler) getLimit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	cfg, err := h.limitService.GetLimit(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve limit")
		return
	}

	c.JSON(http.StatusOK, dto.ToLimitResponse(cfg))
}

// updateLimit godoc
// @Summary Update the purchase request threshold
// @Description Sets the per-item price ceiling. Admin only
// @Tags limit
// @Accept json
// @Produce json
// @Param request body dto.UpdateLimitRequest true "New threshold"
// @Success 200 {object} dto.LimitResponse
// @Failure 400 {object} map[string]string "Threshold must be positive"
// @Security BearerAuth
// @Router /limit [put]
func (h *limitHandler) updateLimit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	updateReq := dto.UpdateLimitRequest{}
	if err := c.ShouldBindJSON(&updateReq); err != nil {
		logger.Warn("Invalid limit payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	cfg, err := h.limitService.UpdateLimit(c.Request.Context(), actor, updateReq)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update limit")
		return
	}

	logger.Info("Purchase limit updated", slog.String("limit", cfg.Limit.String()))
	c.JSON(http.StatusOK, dto.ToLimitResponse(cfg))
}
