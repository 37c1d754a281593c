package router

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/devfolio-next/internal/config"
	"github.com/devfolio-next/internal/constants"
	"github.com/devfolio-next/internal/http/response"
	"github.com/devfolio-next/internal/i18n"
	"github.com/devfolio-next/internal/logger"
	"github.com/devfolio-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{"Content-Type", "Authorization", "Accept-Language", requestIDHeader}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		allowedOrigin := resolveAllowedOrigin(c.GetHeader("Origin"), allowedOrigins, cfg.AllowCredentials)
		header := c.Writer.Header()
		if allowedOrigin != "" {
			header.Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				header.Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		header.Set("Access-Control-Allow-Headers", headersHeader)
		header.Set("Access-Control-Allow-Methods", methodsHeader)
		header.Set("Access-Control-Expose-Headers", requestIDHeader)
		if cfg.MaxAge > 0 {
			header.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	for _, allowed := range allowedOrigins {
		if allowed != "*" {
			continue
		}
		// 携带凭证时浏览器不接受通配符
		if allowCredentials && origin != "" {
			return origin
		}
		return "*"
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件，沿用客户端传入的 X-Request-ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Z()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := sugar.With(
			"request_id", c.GetString(constants.ContextKeyRequestID),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		switch {
		case len(c.Errors) > 0:
			entry.Errorw("http_request", "errors", c.Errors.String())
		case c.Writer.Status() >= 500:
			entry.Warnw("http_request")
		default:
			entry.Infow("http_request")
		}
	}
}

// SessionAuthMiddleware 会话鉴权中间件
// 只放行 session 用途的令牌，待二次验证或待重置密码的令牌返回 403。
func SessionAuthMiddleware(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := i18n.ResolveLocale(c)
		if tokens == nil {
			response.AbortWithError(c, response.CodeUnauthorized, i18n.T(locale, "error.token_invalid"))
			return
		}
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.AbortWithError(c, response.CodeUnauthorized, i18n.T(locale, "error.auth_header_missing"))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.AbortWithError(c, response.CodeUnauthorized, i18n.T(locale, "error.auth_header_invalid"))
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			key := "error.token_invalid"
			if errors.Is(err, service.ErrTokenExpired) {
				key = "error.token_expired"
			}
			logger.Debugw("session_token_rejected",
				"request_id", c.GetString(constants.ContextKeyRequestID),
				"error", err,
			)
			response.AbortWithError(c, response.CodeUnauthorized, i18n.T(locale, key))
			return
		}

		decision := service.AuthorizeFullAccess(claims)
		if !decision.Allowed {
			if errors.Is(decision.Reason, service.ErrForbidden) {
				logger.Warnw("session_pending_token_denied",
					"request_id", c.GetString(constants.ContextKeyRequestID),
					"user_id", claims.UserID(),
					"purpose", claims.Purpose,
					"path", c.FullPath(),
				)
				response.AbortWithError(c, response.CodeForbidden, i18n.T(locale, "error.forbidden"))
				return
			}
			response.AbortWithError(c, response.CodeUnauthorized, i18n.T(locale, "error.token_invalid"))
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID())
		c.Set(constants.ContextKeyTokenPurpose, string(claims.Purpose))
		c.Next()
	}
}
