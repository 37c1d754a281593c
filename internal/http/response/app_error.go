package response

import "github.com/gin-gonic/gin"

// AppError 接口错误：HTTP 状态、对外消息与内部原因
// 内部原因只写日志，debug 模式下才放进响应
type AppError struct {
	Code    int
	Message string
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
		Code:    normalizeStatus(code),
		Message: message,
		Err:     err,
	}
}

// Write 写入错误响应，withDetail 为 true 时在 data.detail 附带内部原因
func (e *AppError) Write(c *gin.Context, withDetail bool) {
	if withDetail && e.Err != nil {
		ErrorWithData(c, e.Code, e.Message, gin.H{"detail": e.Err.Error()})
		return
	}
	Error(c, e.Code, e.Message)
}
