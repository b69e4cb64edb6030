package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/tenancy-management/internal/database"
	"github.com/taichu-system/tenancy-management/internal/service"
	"github.com/taichu-system/tenancy-management/pkg/utils"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := database.Ping(ctx, h.db); err != nil {
		utils.HandleError(c, &service.Error{Kind: service.KindUnavailable, Message: "database is unreachable", Err: err})
		return
	}

	utils.Success(c, http.StatusOK, gin.H{"status": "ok"})
}
