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

// UnitHandler 房源处理器
type UnitHandler struct {
	unitService *service.UnitService
}

func NewUnitHandler(unitService *service.UnitService) *UnitHandler {
	return &UnitHandler{unitService: unitService}
}

// ListUnits 房源列表，可按楼栋和状态过滤
func (h *UnitHandler) ListUnits(c *gin.Context) {
	filter := model.UnitFilter{
		Building: c.Query("building"),
		Status:   model.UnitStatus(c.Query("status")),
	}

	units, err := h.unitService.ListAll(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, units)
}

// ListAvailableUnits 可入住房源，入住表单使用
func (h *UnitHandler) ListAvailableUnits(c *gin.Context) {
	units, err := h.unitService.ListAvailable(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, units)
}

func (h *UnitHandler) GetUnit(c *gin.Context) {
	id, err := internalutils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.InvalidInput(c, "invalid unit id %q", c.Param("id"))
		return
	}

	unit, err := h.unitService.Get(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, unit)
}

// CreateUnit 创建房源
func (h *UnitHandler) CreateUnit(c *gin.Context) {
	var req model.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.InvalidInput(c, "invalid request body: %v", err)
		return
	}

	unit, err := h.unitService.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusCreated, unit)
}

// UpdateUnit 修改房源属性
func (h *UnitHandler) UpdateUnit(c *gin.Context) {
	id, err := internalutils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.InvalidInput(c, "invalid unit id %q", c.Param("id"))
		return
	}

	var req model.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.InvalidInput(c, "invalid request body: %v", err)
		return
	}

	unit, err := h.unitService.Update(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, unit)
}

// DeleteUnit 删除空置房源
func (h *UnitHandler) DeleteUnit(c *gin.Context) {
	id, err := internalutils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.InvalidInput(c, "invalid unit id %q", c.Param("id"))
		return
	}

	if err := h.unitService.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, gin.H{"id": id})
}
