package public

import (
	"github.com/devfolio-next/internal/constants"
	handlershared "github.com/devfolio-next/internal/http/handlers/shared"
	"github.com/devfolio-next/internal/http/response"
	"github.com/devfolio-next/internal/i18n"
	"github.com/devfolio-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateProfileRequest 更新个人资料请求，未提供的字段保持不变
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=50,displayname"`
	Email       *string `json:"email" binding:"omitempty,email,max=100"`
	Password    *string `json:"password" binding:"omitempty,max=72"`
}

// GetMe 获取当前账号资料
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.ProfileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondWithMappedError(c, err, profileErrorRules, response.CodeInternal, "error.profile_load_failed")
		return
	}
	response.Success(c, newAccountView(user))
}

// UpdateMe 更新当前账号资料
func (h *Handler) UpdateMe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.ProfileService.UpdateProfile(c.Request.Context(), userID, service.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		respondWithMappedError(c, err, profileErrorRules, response.CodeInternal, "error.profile_update_failed")
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.profile_updated"), newAccountView(user))
}

// GetLoginHistory 获取当前账号最近的登录记录
func (h *Handler) GetLoginHistory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	limit := handlershared.NormalizeLimit(c.Query("limit"), constants.LoginLogDefaultLimit, constants.LoginLogMaxLimit)
	logs, err := h.LoginLogService.ListRecent(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, response.CodeInternal, "error.login_history_failed", err)
		return
	}
	response.Success(c, logs)
}
