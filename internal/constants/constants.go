package constants

// 验证码流程类型
const (
	FlowTwoFactor = "two_factor"
	FlowRecovery  = "recovery"
)

// 一次性验证码位数
const VerificationCodeDigits = 6

// 登录日志步骤与状态
const (
	LoginStepCredentials  = "credentials"
	LoginStepSecondFactor = "second_factor"

	LoginStatusSuccess = "success"
	LoginStatusFailed  = "failed"
)

// RateLimitBodyMaxBytes 限流中间件读取请求体的上限
const RateLimitBodyMaxBytes = 64 << 10

// 登录日志查询条数
const (
	LoginLogDefaultLimit = 20
	LoginLogMaxLimit     = 100
)

// 登录失败原因
const (
	LoginFailInvalidCredentials = "invalid_credentials"
	LoginFailNoPendingCode      = "no_pending_code"
	LoginFailCodeExpired        = "code_expired"
	LoginFailCodeMismatch       = "code_mismatch"
	LoginFailTokenInvalid       = "token_invalid"
	LoginFailEmailDelivery      = "email_delivery_failed"
	LoginFailInternalError      = "internal_error"
)

// 邮件模板名称
const (
	EmailTemplateTwoFactor       = "Email2fa"
	EmailTemplatePasswordChanged = "PasswordChanged"
)

// 邮件模板占位符
const (
	EmailPlaceholderUser    = "Usuario"
	EmailPlaceholderCode    = "Codigo"
	EmailPlaceholderMinutes = "Minutos"
)

// 异步队列
const (
	QueueDefault             = "default"
	TaskPasswordChangedEmail = "account:password_changed_email"
)

// 图形验证码
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"

	CaptchaSceneLogin    = "login"
	CaptchaSceneRecovery = "recovery"
)

// gin 上下文键
const (
	ContextKeyRequestID    = "request_id"
	ContextKeyUserID       = "user_id"
	ContextKeyTokenPurpose = "token_purpose"
)
