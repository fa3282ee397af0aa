package response

import "github.com/gin-gonic/gin"

// AppError 处理器层错误：状态码、对外消息与可选数据，Err 仅用于日志
type AppError struct {
	Code    int
	Message string
	Data    gin.H
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithData 附带响应数据
func (e *AppError) WithData(data gin.H) *AppError {
	e.Data = data
	return e
}

// Write 输出错误响应
func (e *AppError) Write(c *gin.Context) {
	if e.Data != nil {
		ErrorWithData(c, e.Code, e.Message, e.Data)
		return
	}
	Error(c, e.Code, e.Message)
}
