package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taichu-system/tenancy-management/internal/constants"
	"github.com/taichu-system/tenancy-management/internal/logger"
	"github.com/taichu-system/tenancy-management/internal/utils"
	response "github.com/taichu-system/tenancy-management/pkg/utils"
	"go.uber.org/zap"
)

// RequestID 复用或生成请求ID，并写入请求上下文供日志使用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(constants.ContextKeyRequestID, requestID)
		c.Header(constants.HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// RequestLogger 访问日志
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if sess, ok := GetSession(c); ok {
			fields = append(fields, zap.String("user_id", sess.UserID.String()))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		ctx := c.Request.Context()
		switch status := c.Writer.Status(); {
		case status >= 500:
			log.ErrorContext(ctx, "Request failed", fields...)
		case status >= 400:
			log.WarnContext(ctx, "Request rejected", fields...)
		default:
			log.InfoContext(ctx, "Request completed", fields...)
		}
	}
}

// NoRoute 未匹配的路径
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, utils.ErrCodeNotFound, "route %s %s not found", c.Request.Method, c.Request.URL.Path)
	}
}

// Recovery 捕获 panic 并返回 500
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.ErrorContext(c.Request.Context(), "Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path))
		response.Error(c, utils.ErrCodeInternalError, "internal error")
		c.Abort()
	})
}
