package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/tenancy-management/internal/middleware"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/service"
	"github.com/taichu-system/tenancy-management/pkg/utils"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.InvalidInput(c, "invalid request body: %v", err)
		return
	}

	authResp, err := h.authService.Authenticate(c.Request.Context(), req.Email, req.Password, middleware.RequestMeta(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, authResp)
}

// Logout 吊销当前会话
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	if err := h.authService.Logout(c.Request.Context(), sess); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}

// Me 获取当前用户信息
func (h *AuthHandler) Me(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	user, err := h.authService.CurrentUser(c.Request.Context(), sess)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, gin.H{
		"user":      user,
		"expiresAt": sess.ExpiresAt,
	})
}
