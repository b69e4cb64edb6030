package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/repository"
	"github.com/taichu-system/tenancy-management/internal/service"
	internalutils "github.com/taichu-system/tenancy-management/internal/utils"
	"github.com/taichu-system/tenancy-management/pkg/utils"
)

type AuditHandler struct {
	auditService *service.AuditService
}

type AuditListResponse struct {
	Events []*model.AuditEvent `json:"events"`
	Total  int64               `json:"total"`
	Page   int                 `json:"page"`
	Limit  int                 `json:"limit"`
}

func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// ListAuditEvents 审计记录，按时间倒序分页
func (h *AuditHandler) ListAuditEvents(c *gin.Context) {
	page := internalutils.ParseInt(c.Query("page"), 1)
	limit := internalutils.ParseInt(c.Query("limit"), 20)

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}

	params := repository.AuditListParams{
		ActorID:    c.Query("actor_id"),
		Action:     c.Query("action"),
		Resource:   c.Query("resource"),
		ResourceID: c.Query("resource_id"),
		Result:     c.Query("result"),
		Limit:      limit,
		Offset:     (page - 1) * limit,
		SortBy:     c.DefaultQuery("sort_by", "timestamp"),
		SortOrder:  c.DefaultQuery("sort_order", "desc"),
	}

	if startTimeStr := c.Query("start_time"); startTimeStr != "" {
		startTime, err := time.Parse(time.RFC3339, startTimeStr)
		if err != nil {
			utils.InvalidInput(c, "start_time must be RFC3339")
			return
		}
		params.StartTime = startTime
	}

	if endTimeStr := c.Query("end_time"); endTimeStr != "" {
		endTime, err := time.Parse(time.RFC3339, endTimeStr)
		if err != nil {
			utils.InvalidInput(c, "end_time must be RFC3339")
			return
		}
		params.EndTime = endTime
	}

	events, total, err := h.auditService.List(c.Request.Context(), params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, AuditListResponse{
		Events: events,
		Total:  total,
		Page:   page,
		Limit:  limit,
	})
}
