package controllers

import (
	"net/http"

	"invoicing-backend/services"
	"invoicing-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardController serves the aggregated metrics of the current user
type DashboardController struct {
	dashboard *services.DashboardService
	logger    *zap.Logger
}

func NewDashboardController(dashboard *services.DashboardService, logger *zap.Logger) *DashboardController {
	return &DashboardController{dashboard: dashboard, logger: logger}
}

// GetDashboard returns the complete dashboard summary
func (dc *DashboardController) GetDashboard(c *gin.Context) {
	user := utils.CurrentUser(c)

	overview, err := dc.dashboard.Overview(c.Request.Context(), user.ID)
	if err != nil {
		dc.logger.Error("failed to build dashboard", zap.Uint("user_id", user.ID), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, overview)
}
