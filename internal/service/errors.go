package service

import "errors"

// 认证流程错误
var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrNoPendingCode           = errors.New("no pending verification code")
	ErrCodeExpired             = errors.New("verification code expired")
	ErrCodeMismatch            = errors.New("verification code mismatch")
	ErrTokenInvalid            = errors.New("token invalid")
	ErrTokenExpired            = errors.New("token expired")
	ErrWrongPurpose            = errors.New("token purpose mismatch")
	ErrStaleResetToken         = errors.New("reset token is stale")
	ErrAccountNotFound         = errors.New("account not found")
	ErrEmailInUse              = errors.New("email already in use")
	ErrWeakPassword            = errors.New("weak password")
	ErrForbidden               = errors.New("forbidden")
	ErrPasswordConfirmMismatch = errors.New("password confirmation mismatch")
	ErrInvalidEmail            = errors.New("invalid email")
	ErrInvalidFlowKind         = errors.New("invalid verification flow")
	ErrTokenSecretMissing      = errors.New("token secret missing")
)

// 邮件错误
var (
	ErrEmailDeliveryFailed       = errors.New("email delivery failed")
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailTemplateNotFound     = errors.New("email template not found")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)

// 图形验证码错误
var (
	ErrCaptchaRequired    = errors.New("captcha required")
	ErrCaptchaInvalid     = errors.New("captcha invalid")
	ErrCaptchaUnavailable = errors.New("captcha unavailable")
)
