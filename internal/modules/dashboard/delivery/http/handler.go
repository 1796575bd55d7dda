package handler

import (
	"net/http"

	"anoa.com/schoolhub/internal/middleware"
	dashboardService "anoa.com/schoolhub/internal/modules/dashboard/service"
	"anoa.com/schoolhub/internal/view"
	"anoa.com/schoolhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService dashboardService.DashboardService
	view             *view.Renderer
}

func NewDashboardHandler(dashboardService dashboardService.DashboardService, renderer *view.Renderer) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		view:             renderer,
	}
}

func (h *DashboardHandler) Show(c *gin.Context) {
	dashboard, err := h.dashboardService.For(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, dashboard.Template, gin.H{
		"Title":     "Dashboard",
		"Dashboard": dashboard,
	})
}

// Stats is the admin counters as JSON.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, stats)
}
