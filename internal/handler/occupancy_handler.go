package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/tenancy-management/internal/service"
	"github.com/taichu-system/tenancy-management/pkg/utils"
)

type OccupancyHandler struct {
	occupancyService *service.OccupancyService
}

func NewOccupancyHandler(occupancyService *service.OccupancyService) *OccupancyHandler {
	return &OccupancyHandler{occupancyService: occupancyService}
}

// GetStats 入住率统计
func (h *OccupancyHandler) GetStats(c *gin.Context) {
	stats, err := h.occupancyService.ComputeStats(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, stats)
}
