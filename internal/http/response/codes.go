package response

import "net/http"

// 响应状态码，与 HTTP 状态一致
const (
	CodeOK                 = http.StatusOK
	CodeBadRequest         = http.StatusBadRequest
	CodeUnauthorized       = http.StatusUnauthorized
	CodeForbidden          = http.StatusForbidden
	CodeNotFound           = http.StatusNotFound
	CodeConflict           = http.StatusConflict
	CodeTooManyRequests    = http.StatusTooManyRequests
	CodeInternal           = http.StatusInternalServerError
	CodeBadGateway         = http.StatusBadGateway
	CodeServiceUnavailable = http.StatusServiceUnavailable
)
