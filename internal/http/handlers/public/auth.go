package public

import (
	"time"

	"github.com/devfolio-next/internal/constants"
	handlershared "github.com/devfolio-next/internal/http/handlers/shared"
	"github.com/devfolio-next/internal/http/response"
	"github.com/devfolio-next/internal/i18n"
	"github.com/devfolio-next/internal/models"
	"github.com/devfolio-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	DisplayName string `json:"display_name" binding:"omitempty,max=50,displayname"`
	Email       string `json:"email" binding:"required,email,max=100"`
	Password    string `json:"password" binding:"required,max=72"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email          string                              `json:"email" binding:"required,email"`
	Password       string                              `json:"password" binding:"required"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// ConfirmTwoFactorRequest 二次验证请求
type ConfirmTwoFactorRequest struct {
	Token string `json:"token" binding:"required"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// AccountView 对外展示的账号信息
type AccountView struct {
	ID          uint      `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

func newAccountView(user *models.User) AccountView {
	return AccountView{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		CreatedAt:   user.CreatedAt,
	}
}

// Register 注册账号
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.AuthFlowService.Register(c.Request.Context(), service.RegisterInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		respondWithMappedError(c, err, registerErrorRules, response.CodeInternal, "error.register_failed")
		return
	}

	response.Created(c, i18n.T(i18n.ResolveLocale(c), "message.registered"), gin.H{"id": user.ID})
}

// Login 校验邮箱密码并发送二次验证码
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.CaptchaService.Verify(constants.CaptchaSceneLogin, req.CaptchaPayload.ToServicePayload()); err != nil {
		respondWithMappedError(c, err, captchaErrorRules, response.CodeInternal, "error.login_failed")
		return
	}

	pending, err := h.AuthFlowService.Login(c.Request.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: getRequestID(c),
	})
	if err != nil {
		respondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "error.login_failed")
		return
	}

	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.login_code_sent"), gin.H{
		"token":      pending.Token,
		"purpose":    pending.Purpose,
		"expires_at": pending.ExpiresAt,
	})
}

// ConfirmTwoFactor 校验二次验证码并签发会话令牌
func (h *Handler) ConfirmTwoFactor(c *gin.Context) {
	var req ConfirmTwoFactorRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.AuthFlowService.ConfirmTwoFactor(c.Request.Context(), service.ConfirmTwoFactorInput{
		Token:     req.Token,
		Code:      req.Code,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: getRequestID(c),
	})
	if err != nil {
		respondWithMappedError(c, err, confirmTwoFactorErrorRules, response.CodeInternal, "error.login_failed")
		return
	}

	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.login_success"), gin.H{
		"token":      session.Token,
		"purpose":    service.PurposeSession,
		"expires_at": session.ExpiresAt,
		"user": gin.H{
			"id":           session.User.ID,
			"display_name": session.User.DisplayName,
			"email":        session.User.Email,
		},
	})
}

// GetImageCaptcha 获取图片验证码挑战
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	challenge, err := h.CaptchaService.Generate()
	if err != nil {
		respondWithMappedError(c, err, captchaErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, challenge)
}
