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

// TenantHandler 租户处理器
type TenantHandler struct {
	onboardingService *service.OnboardingService
}

// NewTenantHandler 创建租户处理器
func NewTenantHandler(onboardingService *service.OnboardingService) *TenantHandler {
	return &TenantHandler{
		onboardingService: onboardingService,
	}
}

// OnboardTenant 入住：创建账号、档案与租约
func (h *TenantHandler) OnboardTenant(c *gin.Context) {
	var req model.OnboardTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.InvalidInput(c, "invalid request body: %v", err)
		return
	}

	tenant, err := h.onboardingService.OnboardTenant(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusCreated, tenant)
}

// ListTenants 获取租户列表，q 按姓名或邮箱搜索
func (h *TenantHandler) ListTenants(c *gin.Context) {
	tenants, err := h.onboardingService.ListTenants(c.Request.Context(), model.TenantFilter{Query: c.Query("q")})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, tenants)
}

// GetMyProfile 租户查看自己的档案
func (h *TenantHandler) GetMyProfile(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	tenant, err := h.onboardingService.GetTenantForUser(c.Request.Context(), sess.UserID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, tenant)
}

// GetTenant 获取租户详情
func (h *TenantHandler) GetTenant(c *gin.Context) {
	id, err := internalutils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.InvalidInput(c, "invalid tenant id %q", c.Param("id"))
		return
	}

	sess, _ := middleware.GetSession(c)
	tenant, err := h.onboardingService.GetTenantAs(c.Request.Context(), sess, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, tenant)
}

// UpdateTenant 更新租户档案
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	id, err := internalutils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.InvalidInput(c, "invalid tenant id %q", c.Param("id"))
		return
	}

	var req model.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.InvalidInput(c, "invalid request body: %v", err)
		return
	}

	tenant, err := h.onboardingService.EditTenantProfile(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, tenant)
}

// OffboardTenant 退租
func (h *TenantHandler) OffboardTenant(c *gin.Context) {
	id, err := internalutils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.InvalidInput(c, "invalid tenant id %q", c.Param("id"))
		return
	}

	if err := h.onboardingService.OffboardTenant(c.Request.Context(), middleware.Actor(c), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, gin.H{"id": id})
}
