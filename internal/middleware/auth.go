package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/tenancy-management/internal/constants"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/service"
	"github.com/taichu-system/tenancy-management/pkg/utils"
)

// SessionResolver 将令牌解析为服务端会话
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*model.Session, error)
	Authorize(sess *model.Session, allowed ...model.Role) error
}

// SessionMiddleware 会话认证中间件，每个请求都回查会话存储
func SessionMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortWithError(c, service.ErrSessionInvalid.Withf(constants.AuthHeaderRequired))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
			utils.AbortWithError(c, service.ErrSessionInvalid.Withf(constants.AuthHeaderInvalidFormat))
			return
		}

		sess, err := resolver.ResolveSession(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}

		c.Set(constants.ContextKeySession, sess)
		c.Next()
	}
}

// RoleMiddleware 角色权限中间件
func RoleMiddleware(resolver SessionResolver, allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := GetSession(c)
		if !ok {
			utils.AbortWithError(c, service.ErrSessionInvalid.Withf(constants.AuthSessionMissing))
			return
		}

		if err := resolver.Authorize(sess, allowedRoles...); err != nil {
			utils.AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// GetSession 取出认证中间件写入的会话
func GetSession(c *gin.Context) (*model.Session, bool) {
	value, exists := c.Get(constants.ContextKeySession)
	if !exists {
		return nil, false
	}
	sess, ok := value.(*model.Session)
	return sess, ok && sess != nil
}

// RequestMeta 客户端地址与 UA
func RequestMeta(c *gin.Context) model.RequestMeta {
	return model.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// Actor 当前请求的操作者，用于审计
func Actor(c *gin.Context) model.Actor {
	meta := RequestMeta(c)
	actor := model.Actor{IPAddress: meta.IPAddress, UserAgent: meta.UserAgent}
	if sess, ok := GetSession(c); ok {
		actor.UserID = sess.UserID
		actor.Role = sess.Role
	}
	return actor
}
