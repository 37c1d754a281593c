package router

import (
	"github.com/devfolio-next/internal/cache"
	"github.com/devfolio-next/internal/config"
	handlershared "github.com/devfolio-next/internal/http/handlers/shared"
	publichandlers "github.com/devfolio-next/internal/http/handlers/public"
	"github.com/devfolio-next/internal/http/response"
	"github.com/devfolio-next/internal/logger"
	"github.com/devfolio-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	handlershared.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	h := publichandlers.New(c)
	redisClient := cache.Client()
	limits := cfg.Security.RateLimit
	loginLimit := RateLimitMiddleware(redisClient, NewRateLimitRule(cache.BuildKey("rate:login"), limits.Login), KeyByIPAndJSONField("email"))
	twoFactorLimit := RateLimitMiddleware(redisClient, NewRateLimitRule(cache.BuildKey("rate:2fa"), limits.TwoFactor), KeyByIP)
	recoveryRequestLimit := RateLimitMiddleware(redisClient, NewRateLimitRule(cache.BuildKey("rate:recovery_request"), limits.RecoveryRequest), KeyByIPAndJSONField("email"))
	recoveryVerifyLimit := RateLimitMiddleware(redisClient, NewRateLimitRule(cache.BuildKey("rate:recovery_verify"), limits.RecoveryVerify), KeyByIPAndJSONField("email"))

	r.GET("/health", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.GET("/captcha", h.GetImageCaptcha)
			auth.POST("/register", h.Register)
			auth.POST("/login", loginLimit, h.Login)
			auth.POST("/2fa/confirm", twoFactorLimit, h.ConfirmTwoFactor)
			auth.POST("/recovery/request", recoveryRequestLimit, h.RequestRecovery)
			auth.POST("/recovery/verify", recoveryVerifyLimit, h.VerifyRecovery)
			auth.POST("/recovery/reset", h.ResetPassword)
		}

		// 以下接口只接受 session 令牌
		me := apiV1.Group("/me")
		me.Use(SessionAuthMiddleware(c.TokenService))
		{
			me.GET("", h.GetMe)
			me.PUT("", h.UpdateMe)
			me.GET("/login-logs", h.GetLoginHistory)
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		handlershared.RespondError(ctx, response.CodeNotFound, "error.not_found", nil)
	})

	return r
}
