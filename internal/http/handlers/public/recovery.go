package public

import (
	"github.com/devfolio-next/internal/constants"
	handlershared "github.com/devfolio-next/internal/http/handlers/shared"
	"github.com/devfolio-next/internal/http/response"
	"github.com/devfolio-next/internal/i18n"
	"github.com/devfolio-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RecoveryRequest 找回密码请求
type RecoveryRequest struct {
	Email          string                              `json:"email" binding:"required,email"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// RecoveryVerifyRequest 找回密码验证码校验请求
type RecoveryVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// RequestRecovery 发送找回密码验证码
// 无论邮箱是否存在都返回相同的提示
func (h *Handler) RequestRecovery(c *gin.Context) {
	var req RecoveryRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.CaptchaService.Verify(constants.CaptchaSceneRecovery, req.CaptchaPayload.ToServicePayload()); err != nil {
		respondWithMappedError(c, err, captchaErrorRules, response.CodeInternal, "error.recovery_failed")
		return
	}

	if err := h.AuthFlowService.RequestRecovery(c.Request.Context(), req.Email); err != nil {
		respondWithMappedError(c, err, emailErrorRules, response.CodeInternal, "error.recovery_failed")
		return
	}

	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.recovery_ack"), nil)
}

// VerifyRecovery 校验找回密码验证码并签发重置令牌
func (h *Handler) VerifyRecovery(c *gin.Context) {
	var req RecoveryVerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	issued, err := h.AuthFlowService.VerifyRecoveryCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		respondWithMappedError(c, err, recoveryVerifyErrorRules, response.CodeInternal, "error.recovery_failed")
		return
	}

	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.code_verified"), gin.H{
		"reset_token": issued.Token,
		"expires_at":  issued.ExpiresAt,
	})
}

// ResetPassword 使用重置令牌设置新密码
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.AuthFlowService.ResetPassword(c.Request.Context(), service.ResetPasswordInput{
		Token:        req.Token,
		NewPassword:  req.NewPassword,
		Confirmation: req.ConfirmPassword,
	})
	if err != nil {
		respondWithMappedError(c, err, resetPasswordErrorRules, response.CodeInternal, "error.recovery_failed")
		return
	}

	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.password_changed"), nil)
}
