package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/tenancy-management/internal/middleware"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/service"
	internalutils "github.com/taichu-system/tenancy-management/internal/utils"
	"github.com/taichu-system/tenancy-management/pkg/utils"
)

type LeaseHandler struct {
	onboardingService *service.OnboardingService
}

func NewLeaseHandler(onboardingService *service.OnboardingService) *LeaseHandler {
	return &LeaseHandler{onboardingService: onboardingService}
}

// ListLeases 租约历史
func (h *LeaseHandler) ListLeases(c *gin.Context) {
	var (
		filter model.LeaseFilter
		err    error
	)
	if filter.TenantID, err = internalutils.ParseOptionalUUID(c.Query("tenant_id")); err != nil {
		utils.InvalidInput(c, "invalid tenant_id %q", c.Query("tenant_id"))
		return
	}
	if filter.UnitID, err = internalutils.ParseOptionalUUID(c.Query("unit_id")); err != nil {
		utils.InvalidInput(c, "invalid unit_id %q", c.Query("unit_id"))
		return
	}
	if filter.Active, err = internalutils.ParseOptionalBool(c.Query("active")); err != nil {
		utils.InvalidInput(c, "active must be true or false")
		return
	}

	leases, err := h.onboardingService.ListLeases(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, leases)
}

// TerminateLease 终止租约并释放房源
func (h *LeaseHandler) TerminateLease(c *gin.Context) {
	id, err := internalutils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.InvalidInput(c, "invalid lease id %q", c.Param("id"))
		return
	}

	lease, err := h.onboardingService.TerminateLease(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, lease)
}
