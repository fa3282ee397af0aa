package shared

import (
	"github.com/luxdecor-shop/internal/http/response"
	"github.com/luxdecor-shop/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get(ContextKeyRequestID); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	writeAppError(c, response.WrapError(code, msg, err))
}

// RespondError 按映射表把业务错误转换为接口错误响应；未命中时按内部错误处理并记录日志。
func RespondError(c *gin.Context, err error) {
	writeAppError(c, MapError(err))
}

func writeAppError(c *gin.Context, appErr *response.AppError) {
	if appErr.Err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", appErr.Err,
		)
	}
	appErr.Write(c)
}
