package utils

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/tenancy-management/internal/service"
	"github.com/taichu-system/tenancy-management/internal/utils"
)

type Response struct {
	Code    int         `json:"code"`
	Kind    string      `json:"kind,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.JSON(statusCode, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 按错误码直接写出错误，用于没有业务错误对象的场景（路由未匹配、panic 恢复）
func Error(c *gin.Context, errCode int, format string, args ...interface{}) {
	c.Header("Content-Type", "application/json; charset=utf-8")
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}

	statusCode := utils.GetHTTPStatusCode(errCode)
	c.JSON(statusCode, Response{
		Code:    errCode,
		Kind:    utils.KindForCode(errCode),
		Message: message,
	})
}

// AbortWithError 中间件中使用，写出错误并终止后续处理
func AbortWithError(c *gin.Context, err error) {
	HandleError(c, err)
	c.Abort()
}

// HandleError 将业务错误映射为 HTTP 状态码与错误码，内部错误不暴露细节
func HandleError(c *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		_ = c.Error(err)
		writeError(c, string(service.KindInternal), service.ErrInternal.Message)
		return
	}

	message := svcErr.Message
	if svcErr.Kind == service.KindInternal {
		_ = c.Error(err)
		message = service.ErrInternal.Message
	}
	writeError(c, string(svcErr.Kind), message)
}

func writeError(c *gin.Context, kind, message string) {
	code := utils.CodeForKind(kind)
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.JSON(utils.GetHTTPStatusCode(code), Response{
		Code:    code,
		Kind:    kind,
		Message: message,
	})
}

// InvalidInput 请求体或参数无法解析
func InvalidInput(c *gin.Context, format string, args ...interface{}) {
	writeError(c, string(service.KindValidation), fmt.Sprintf(format, args...))
}
