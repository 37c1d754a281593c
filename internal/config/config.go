package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/devfolio-next/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Email    EmailConfig    `mapstructure:"email"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Captcha  CaptchaConfig  `mapstructure:"captcha"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// Addr 监听地址
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}

// IsDebug 是否为调试模式
func (c ServerConfig) IsDebug() bool {
	return strings.EqualFold(strings.TrimSpace(c.Mode), "debug")
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver               string             `mapstructure:"driver"` // sqlite / postgres
	DSN                  string             `mapstructure:"dsn"`
	SlowQueryThresholdMS int                `mapstructure:"slow_query_threshold_ms"`
	Pool                 DatabasePoolConfig `mapstructure:"pool"`
}

// AuthConfig 令牌与一次性验证码配置
type AuthConfig struct {
	Secret              string `mapstructure:"secret"`
	Issuer              string `mapstructure:"issuer"`
	Audience            string `mapstructure:"audience"`
	SessionTTLMinutes   int    `mapstructure:"session_ttl_minutes"`
	TwoFactorTTLMinutes int    `mapstructure:"two_factor_ttl_minutes"`
	ResetTTLMinutes     int    `mapstructure:"reset_ttl_minutes"`
	CodeTTLMinutes      int    `mapstructure:"code_ttl_minutes"`
	FingerprintLength   int    `mapstructure:"fingerprint_length"`
	CodeMaxAttempts     int    `mapstructure:"code_max_attempts"`
}

// SessionTTL 会话令牌有效期
func (c AuthConfig) SessionTTL() time.Duration {
	return minutesOr(c.SessionTTLMinutes, 8*60)
}

// TwoFactorTTL 二次验证待定令牌有效期
func (c AuthConfig) TwoFactorTTL() time.Duration {
	return minutesOr(c.TwoFactorTTLMinutes, 5)
}

// ResetTTL 重置密码待定令牌有效期
func (c AuthConfig) ResetTTL() time.Duration {
	return minutesOr(c.ResetTTLMinutes, 5)
}

// CodeTTL 一次性验证码有效期
func (c AuthConfig) CodeTTL() time.Duration {
	return minutesOr(c.CodeTTLMinutes, 5)
}

// ResolveFingerprintLength 密码指纹截取长度
func (c AuthConfig) ResolveFingerprintLength() int {
	if c.FingerprintLength <= 0 {
		return 10
	}
	return c.FingerprintLength
}

// ResolveCodeMaxAttempts 单个验证码允许的错误次数
func (c AuthConfig) ResolveCodeMaxAttempts() int {
	if c.CodeMaxAttempts <= 0 {
		return 5
	}
	return c.CodeMaxAttempts
}

func minutesOr(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Minute
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	// ProfileTTLSeconds 个人资料缓存时长
	ProfileTTLSeconds int `mapstructure:"profile_ttl_seconds"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	MaxRetry    int            `mapstructure:"max_retry"`
	Queues      map[string]int `mapstructure:"queues"`
}

// EmailConfig 邮件服务配置
type EmailConfig struct {
	Enabled       bool               `mapstructure:"enabled"`
	Host          string             `mapstructure:"host"`
	Port          int                `mapstructure:"port"`
	Username      string             `mapstructure:"username"`
	Password      string             `mapstructure:"password"`
	From          string             `mapstructure:"from"`
	FromName      string             `mapstructure:"from_name"`
	UseSSL        bool               `mapstructure:"use_ssl"`
	SkipTLSVerify bool               `mapstructure:"skip_tls_verify"`
	TemplateDir   string             `mapstructure:"template_dir"` // 为空时使用内置模板
	Subjects      EmailSubjectConfig `mapstructure:"subjects"`
}

// EmailSubjectConfig 邮件主题配置
type EmailSubjectConfig struct {
	TwoFactor       string `mapstructure:"two_factor"`
	Recovery        string `mapstructure:"recovery"`
	PasswordChanged string `mapstructure:"password_changed"`
}

// CaptchaConfig 图形验证码配置
type CaptchaConfig struct {
	Provider string             `mapstructure:"provider"` // none / image
	Scenes   CaptchaSceneConfig `mapstructure:"scenes"`
	Image    CaptchaImageConfig `mapstructure:"image"`
}

// CaptchaSceneConfig 验证码场景开关
type CaptchaSceneConfig struct {
	Login    bool `mapstructure:"login"`
	Recovery bool `mapstructure:"recovery"`
}

// CaptchaImageConfig 图片验证码配置
type CaptchaImageConfig struct {
	Length        int `mapstructure:"length"`
	Width         int `mapstructure:"width"`
	Height        int `mapstructure:"height"`
	NoiseCount    int `mapstructure:"noise_count"`
	ShowLine      int `mapstructure:"show_line"`
	ExpireSeconds int `mapstructure:"expire_seconds"`
	MaxStore      int `mapstructure:"max_store"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	BcryptCost     int                  `mapstructure:"bcrypt_cost"`
	PasswordPolicy PasswordPolicyConfig `mapstructure:"password_policy"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
}

// RateLimitConfig 接口限流配置
type RateLimitConfig struct {
	Login           RateLimitRuleConfig `mapstructure:"login"`
	TwoFactor       RateLimitRuleConfig `mapstructure:"two_factor"`
	RecoveryRequest RateLimitRuleConfig `mapstructure:"recovery_request"`
	RecoveryVerify  RateLimitRuleConfig `mapstructure:"recovery_verify"`
}

// RateLimitRuleConfig 单条限流规则
type RateLimitRuleConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// PasswordPolicyConfig 密码策略配置
type PasswordPolicyConfig struct {
	MinLength      int  `mapstructure:"min_length"`
	RequireUpper   bool `mapstructure:"require_upper"`
	RequireLower   bool `mapstructure:"require_lower"`
	RequireNumber  bool `mapstructure:"require_number"`
	RequireSpecial bool `mapstructure:"require_special"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./")
	v.AddConfigPath("../") // 从 cmd/server 运行时
	v.AddConfigPath("./etc")

	setDefaults(v)

	// 环境变量覆盖，例如 auth.secret -> AUTH_SECRET
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("config unmarshal failed: %w", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/devfolio.db")
	v.SetDefault("database.slow_query_threshold_ms", 200)
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)

	v.SetDefault("auth.secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "devfolio-api")
	v.SetDefault("auth.audience", "devfolio-web")
	v.SetDefault("auth.session_ttl_minutes", 480)
	v.SetDefault("auth.two_factor_ttl_minutes", 5)
	v.SetDefault("auth.reset_ttl_minutes", 5)
	v.SetDefault("auth.code_ttl_minutes", 5)
	v.SetDefault("auth.fingerprint_length", 10)
	v.SetDefault("auth.code_max_attempts", 5)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "devfolio")
	v.SetDefault("redis.profile_ttl_seconds", 300)

	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.max_retry", 5)
	v.SetDefault("queue.queues", map[string]int{"default": 1})

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.host", "")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.from_name", "Portfolio Dev")
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.skip_tls_verify", false)
	v.SetDefault("email.template_dir", "")
	v.SetDefault("email.subjects.two_factor", "Your login code - Portfolio Dev")
	v.SetDefault("email.subjects.recovery", "Account recovery - Portfolio Dev")
	v.SetDefault("email.subjects.password_changed", "Your password was changed - Portfolio Dev")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Accept-Language",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 600)

	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("security.password_policy.min_length", 6)
	v.SetDefault("security.password_policy.require_upper", false)
	v.SetDefault("security.password_policy.require_lower", false)
	v.SetDefault("security.password_policy.require_number", false)
	v.SetDefault("security.password_policy.require_special", false)
	v.SetDefault("security.rate_limit.login.window_seconds", 300)
	v.SetDefault("security.rate_limit.login.max_requests", 10)
	v.SetDefault("security.rate_limit.two_factor.window_seconds", 300)
	v.SetDefault("security.rate_limit.two_factor.max_requests", 10)
	v.SetDefault("security.rate_limit.recovery_request.window_seconds", 600)
	v.SetDefault("security.rate_limit.recovery_request.max_requests", 5)
	v.SetDefault("security.rate_limit.recovery_verify.window_seconds", 300)
	v.SetDefault("security.rate_limit.recovery_verify.max_requests", 10)

	v.SetDefault("captcha.provider", "none")
	v.SetDefault("captcha.scenes.login", false)
	v.SetDefault("captcha.scenes.recovery", false)
	v.SetDefault("captcha.image.length", 5)
	v.SetDefault("captcha.image.width", 240)
	v.SetDefault("captcha.image.height", 80)
	v.SetDefault("captcha.image.noise_count", 2)
	v.SetDefault("captcha.image.show_line", 2)
	v.SetDefault("captcha.image.expire_seconds", 300)
	v.SetDefault("captcha.image.max_store", 10240)
}
