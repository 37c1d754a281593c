package provider

import (
	"github.com/devfolio-next/internal/cache"
	"github.com/devfolio-next/internal/config"
	"github.com/devfolio-next/internal/logger"
	"github.com/devfolio-next/internal/models"
	"github.com/devfolio-next/internal/queue"
	"github.com/devfolio-next/internal/repository"
	"github.com/devfolio-next/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo             repository.UserRepository
	VerificationCodeRepo repository.VerificationCodeRepository
	LoginLogRepo         repository.LoginLogRepository

	// Services
	PasswordHasher      *service.PasswordHasher
	CodeIssuer          *service.CodeIssuer
	TokenService        *service.TokenService
	FingerprintGuard    *service.FingerprintGuard
	EmailService        *service.EmailService
	CaptchaService      *service.CaptchaService
	NotificationService *service.NotificationService
	LoginLogService     *service.LoginLogService
	AuthFlowService     *service.AuthFlowService
	ProfileService      *service.ProfileService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories(models.DB)
	c.initServices()
	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.UserRepo = repository.NewUserRepository(db)
	c.VerificationCodeRepo = repository.NewVerificationCodeRepository(db)
	c.LoginLogRepo = repository.NewLoginLogRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.PasswordHasher = service.NewPasswordHasher(cfg.Security.BcryptCost)
	c.CodeIssuer = service.NewCodeIssuer(c.VerificationCodeRepo, c.PasswordHasher, cfg.Auth)
	c.TokenService = service.NewTokenService(cfg.Auth)
	c.FingerprintGuard = service.NewFingerprintGuard(cfg.Auth.ResolveFingerprintLength())
	c.EmailService = service.NewEmailService(&cfg.Email)
	c.CaptchaService = service.NewCaptchaService(cfg.Captcha)
	c.NotificationService = service.NewNotificationService(c.UserRepo, c.EmailService, c.QueueClient, cfg.Email.Subjects)
	c.LoginLogService = service.NewLoginLogService(c.LoginLogRepo)

	c.AuthFlowService = service.NewAuthFlowService(service.AuthFlowDeps{
		Users:          c.UserRepo,
		Hasher:         c.PasswordHasher,
		Codes:          c.CodeIssuer,
		Tokens:         c.TokenService,
		Fingerprints:   c.FingerprintGuard,
		Email:          c.EmailService,
		Notifications:  c.NotificationService,
		LoginLogs:      c.LoginLogService,
		Auth:           cfg.Auth,
		Subjects:       cfg.Email.Subjects,
		PasswordPolicy: cfg.Security.PasswordPolicy,
	})
	c.ProfileService = service.NewProfileService(c.UserRepo, c.PasswordHasher, c.NotificationService, cfg.Security.PasswordPolicy)
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
